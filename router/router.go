package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stake-ledger/controller"
	"stake-ledger/service"
)

func Init(s service.IService) *gin.Engine {
	r := gin.Default()
	// on the engine so preflights of unrouted OPTIONS requests get it too
	r.Use(Cors())
	group := r.Group("")

	group.GET("/position", controller.PositionEndpoint(s))
	group.GET("/balance", controller.BalanceEndpoint(s))
	group.GET("/accountHistory", controller.AccountHistoryEndpoint(s))
	group.GET("/totalStake", controller.TotalStakeEndpoint(s))
	group.GET("/stakeHistory", controller.StakeHistoryEndpoint(s))

	signed := group.Group("", controller.RequireCaller())
	signed.POST("/stake", controller.StakeEndpoint(s))
	signed.POST("/unstake", controller.UnstakeEndpoint(s))
	signed.POST("/approve", controller.ApproveEndpoint(s))
	return r
}

func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, "+controller.CallerHeader)
			c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		if method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
		}
		c.Next()
	}
}
