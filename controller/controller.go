package controller

import (
	"errors"
	"net/http"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/gin-gonic/gin"

	"stake-ledger/logger"
	"stake-ledger/service"
	"stake-ledger/util"
)

const (
	ResponseCodeOk            = 200
	ResponseCodeInternalError = 50000
	ResponseCodeParamsError   = 50001
	ResponseCodeLedgerError   = 50002
)

// CallerHeader carries the authenticated account of the request. It is
// set by the gateway in front of the service.
const (
	CallerHeader = "X-Account"
	callerKey    = "caller"
)

type Response struct {
	Code  int         `json:"code"`
	Msg   string      `json:"msg"`
	Data  interface{} `json:"data"`
	Total int         `json:"total"`
}

type ErrorResp struct {
	Codespace string `json:"codespace"`
	Code      uint32 `json:"code"`
}

func paramsError(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, &Response{
		Code: ResponseCodeParamsError,
		Msg:  msg,
		Data: "",
	})
}

// errorResponse reports err with the code it was registered under.
func errorResponse(c *gin.Context, err error) {
	var registered *errorsmod.Error
	if !errors.As(err, &registered) {
		c.JSON(http.StatusOK, &Response{
			Code: ResponseCodeInternalError,
			Msg:  err.Error(),
			Data: "",
		})
		return
	}
	code := ResponseCodeLedgerError
	if registered.Codespace() == service.Codespace {
		code = ResponseCodeParamsError
	}
	c.JSON(http.StatusOK, &Response{
		Code: code,
		Msg:  err.Error(),
		Data: &ErrorResp{Codespace: registered.Codespace(), Code: registered.ABCICode()},
	})
}

func ok(c *gin.Context, data interface{}, total int) {
	c.JSON(http.StatusOK, &Response{
		Code:  ResponseCodeOk,
		Msg:   "",
		Data:  data,
		Total: total,
	})
}

// RequireCaller rejects requests without a valid caller account.
func RequireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetHeader(CallerHeader)
		if caller == "" {
			paramsError(c, "missing "+CallerHeader+" header")
			c.Abort()
			return
		}
		if err := service.ValidateAccount(caller); err != nil {
			errorResponse(c, err)
			c.Abort()
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

type AmountReq struct {
	Amount string `json:"amount" binding:"required"`
}

func bindAmount(c *gin.Context) (sdkmath.Uint, bool) {
	var req AmountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		paramsError(c, err.Error())
		return sdkmath.Uint{}, false
	}
	amount, err := sdkmath.ParseUint(req.Amount)
	if err != nil {
		paramsError(c, err.Error())
		return sdkmath.Uint{}, false
	}
	return amount, true
}

func StakeEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		amount, valid := bindAmount(c)
		if !valid {
			return
		}
		caller := c.GetString(callerKey)
		if err := s.Stake(c.Request.Context(), caller, amount); err != nil {
			errorResponse(c, err)
			return
		}
		positionResponse(c, s, caller)
	}
}

func UnstakeEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		amount, valid := bindAmount(c)
		if !valid {
			return
		}
		caller := c.GetString(callerKey)
		if err := s.Unstake(c.Request.Context(), caller, amount); err != nil {
			errorResponse(c, err)
			return
		}
		positionResponse(c, s, caller)
	}
}

func ApproveEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		amount, valid := bindAmount(c)
		if !valid {
			return
		}
		if err := s.Approve(c.GetString(callerKey), amount); err != nil {
			errorResponse(c, err)
			return
		}
		ok(c, amount.String(), 0)
	}
}

type PositionResp struct {
	Account   string `json:"account"`
	Staked    bool   `json:"staked"`
	Amount    string `json:"amount"`
	Reward    string `json:"reward"`
	Available string `json:"available"`
	Display   string `json:"display"`
	Symbol    string `json:"symbol"`
	Timestamp uint64 `json:"timestamp"`
	Time      uint64 `json:"time"`
}

func positionResponse(c *gin.Context, s service.IService, account string) {
	pos, err := s.GetPosition(account)
	if err != nil {
		logger.Logger.Errorf("GetPosition error : %s", err)
		errorResponse(c, err)
		return
	}
	tokenConf := s.Token()
	result := &PositionResp{
		Account:   account,
		Amount:    "0",
		Reward:    "0",
		Available: "0",
		Display:   "0",
		Symbol:    tokenConf.Symbol,
	}
	if pos != nil {
		result.Staked = true
		result.Amount = pos.Record.Amount.String()
		result.Reward = pos.Reward.String()
		result.Available = pos.Available.String()
		result.Display = util.FormatAmount(pos.Available, tokenConf.Decimals)
		result.Timestamp = pos.Record.Timestamp
		result.Time = pos.Time
	}
	ok(c, result, 0)
}

func PositionEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, exist := c.GetQuery("account")
		if !exist {
			paramsError(c, "missing account")
			return
		}
		positionResponse(c, s, account)
	}
}

type BalanceResp struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
	Display string `json:"display"`
	Symbol  string `json:"symbol"`
}

func BalanceEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, exist := c.GetQuery("account")
		if !exist {
			paramsError(c, "missing account")
			return
		}
		balance, err := s.GetBalance(account)
		if err != nil {
			errorResponse(c, err)
			return
		}
		tokenConf := s.Token()
		ok(c, &BalanceResp{
			Account: account,
			Amount:  balance.String(),
			Display: util.FormatAmount(balance, tokenConf.Decimals),
			Symbol:  tokenConf.Symbol,
		}, 0)
	}
}

type History struct {
	Account   string `json:"account"`
	Token     string `json:"token"`
	Operation string `json:"operation"`
	Amount    string `json:"amount"`
	Reward    string `json:"reward"`
	Balance   string `json:"balance"`
	Time      int64  `json:"time"`
}

func AccountHistoryEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, exist := c.GetQuery("account")
		if !exist {
			paramsError(c, "missing account")
			return
		}
		limitStr, _ := c.GetQuery("limit")
		limit, _ := strconv.Atoi(limitStr)
		offsetStr, _ := c.GetQuery("offset")
		offset, _ := strconv.Atoi(offsetStr)

		ascStr, _ := c.GetQuery("asc")
		asc := false
		if ascStr == "true" {
			asc = true
		}

		records, total, err := s.GetAccountHistory(account, validLimit(limit, 20, 100), validOffset(offset), asc)
		if err != nil {
			logger.Logger.Errorf("GetAccountHistory endpoint error : %s", err)
			errorResponse(c, err)
			return
		}

		result := []*History{}
		for _, record := range records {
			result = append(result, &History{
				Account:   record.Account,
				Token:     record.Token,
				Operation: record.Operation.String(),
				Amount:    record.Amount.String(),
				Reward:    record.Reward.String(),
				Balance:   record.Balance.String(),
				Time:      record.Time.Unix(),
			})
		}
		ok(c, result, total)
	}
}

func TotalStakeEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := s.GetTotalStake()
		if err != nil {
			logger.Logger.Errorf("GetTotalStake error : %s", err)
			errorResponse(c, err)
			return
		}
		ok(c, total.String(), 0)
	}
}

type StakeHistory struct {
	Amount string `json:"amount"`
	Time   int64  `json:"time"`
}

func StakeHistoryEndpoint(s service.IService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limitStr, _ := c.GetQuery("limit")
		limit, _ := strconv.Atoi(limitStr)
		offsetStr, _ := c.GetQuery("offset")
		offset, _ := strconv.Atoi(offsetStr)

		records, total, err := s.GetStakeHistory(validLimit(limit, 20, 100), validOffset(offset))
		if err != nil {
			logger.Logger.Errorf("GetStakeHistory endpoint error : %s", err)
			errorResponse(c, err)
			return
		}

		result := []*StakeHistory{}
		for _, record := range records {
			result = append(result, &StakeHistory{
				Amount: record.Amount.String(),
				Time:   record.Time.Unix(),
			})
		}
		ok(c, result, total)
	}
}

func validLimit(originLimit, defaultLimit, maxLimit int) int {
	if originLimit <= 0 {
		return defaultLimit
	}
	if originLimit > maxLimit {
		return maxLimit
	}
	return originLimit
}

func validOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
