package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	sdkTypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"stake-ledger/config"
	"stake-ledger/controller"
	"stake-ledger/db"
	"stake-ledger/ledger"
	"stake-ledger/router"
	"stake-ledger/service"
	"stake-ledger/token"
)

const testToken = "STK"

var (
	alice   = sdkTypes.AccAddress(bytes.Repeat([]byte{1}, 20)).String()
	custody = sdkTypes.AccAddress(bytes.Repeat([]byte{9}, 20)).String()
)

type testEnv struct {
	engine *gin.Engine
	now    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ldb, err := db.NewMemLdb()
	require.NoError(t, err)
	t.Cleanup(func() { ldb.Close() })

	bank := token.NewBank()
	require.NoError(t, bank.Register(testToken, []token.Allocation{
		{Account: alice, Amount: sdkmath.NewUint(5_000_000)},
		{Account: custody, Amount: sdkmath.NewUint(1_000_000)},
	}))

	env := &testEnv{now: time.Unix(1_700_000_000, 0)}
	store := service.NewLdbStore(ldb)
	l := ledger.New(store, bank.Operator(custody), custody, testToken,
		ledger.WithClock(func() time.Time { return env.now }))
	svc := service.NewService(ldb, store, l, bank, config.TokenConf{ID: testToken, Symbol: "STK", Decimals: 6})
	env.engine = router.Init(svc)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, caller, body string) *controller.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(controller.CallerHeader, caller)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	resp := &controller.Response{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), resp))
	return resp
}

func dataMap(t *testing.T, resp *controller.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return data
}

func TestStakeFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/approve", alice, `{"amount":"2000000"}`)
	require.Equal(t, controller.ResponseCodeOk, resp.Code)

	resp = env.do(t, http.MethodPost, "/stake", alice, `{"amount":"2000000"}`)
	require.Equal(t, controller.ResponseCodeOk, resp.Code, resp.Msg)
	data := dataMap(t, resp)
	require.Equal(t, true, data["staked"])
	require.Equal(t, "2000000", data["amount"])

	env.now = env.now.Add(24 * time.Hour)
	resp = env.do(t, http.MethodGet, "/position?account="+alice, "", "")
	require.Equal(t, controller.ResponseCodeOk, resp.Code)
	data = dataMap(t, resp)
	require.Equal(t, "2000", data["reward"])
	require.Equal(t, "2002000", data["available"])
	require.Equal(t, "2.002", data["display"])

	resp = env.do(t, http.MethodPost, "/unstake", alice, `{"amount":"2002000"}`)
	require.Equal(t, controller.ResponseCodeOk, resp.Code, resp.Msg)
	require.Equal(t, false, dataMap(t, resp)["staked"])

	resp = env.do(t, http.MethodGet, "/balance?account="+alice, "", "")
	require.Equal(t, "5002000", dataMap(t, resp)["amount"])
	require.Equal(t, "5.002", dataMap(t, resp)["display"])

	resp = env.do(t, http.MethodGet, "/accountHistory?account="+alice+"&asc=true", "", "")
	require.Equal(t, controller.ResponseCodeOk, resp.Code)
	require.Equal(t, 2, resp.Total)
	history := resp.Data.([]interface{})
	require.Equal(t, "stake", history[0].(map[string]interface{})["operation"])
	require.Equal(t, "unstake", history[1].(map[string]interface{})["operation"])

	resp = env.do(t, http.MethodGet, "/totalStake", "", "")
	require.Equal(t, "0", resp.Data)
}

func TestStakeRequiresCaller(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/stake", "", `{"amount":"1"}`)
	require.Equal(t, controller.ResponseCodeParamsError, resp.Code)

	resp = env.do(t, http.MethodPost, "/stake", "bogus", `{"amount":"1"}`)
	require.Equal(t, controller.ResponseCodeParamsError, resp.Code)
	require.Equal(t, service.Codespace, dataMap(t, resp)["codespace"])
}

func TestStakeBadAmount(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/stake", alice, `{"amount":"-5"}`)
	require.Equal(t, controller.ResponseCodeParamsError, resp.Code)

	resp = env.do(t, http.MethodPost, "/stake", alice, `{}`)
	require.Equal(t, controller.ResponseCodeParamsError, resp.Code)
}

func TestLedgerErrorCodes(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/stake", alice, `{"amount":"10"}`)
	require.Equal(t, controller.ResponseCodeLedgerError, resp.Code)
	data := dataMap(t, resp)
	require.Equal(t, ledger.Codespace, data["codespace"])
	require.EqualValues(t, ledger.ErrTransferFailed.ABCICode(), data["code"])

	env.do(t, http.MethodPost, "/approve", alice, `{"amount":"10"}`)
	env.do(t, http.MethodPost, "/stake", alice, `{"amount":"10"}`)
	resp = env.do(t, http.MethodPost, "/unstake", alice, `{"amount":"11"}`)
	require.Equal(t, controller.ResponseCodeLedgerError, resp.Code)
	require.EqualValues(t, ledger.ErrGreaterAmountRequested.ABCICode(), dataMap(t, resp)["code"])
}

func TestPositionWithoutStake(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/position?account="+alice, "", "")
	require.Equal(t, controller.ResponseCodeOk, resp.Code)
	data := dataMap(t, resp)
	require.Equal(t, false, data["staked"])
	require.Equal(t, "0", data["available"])

	resp = env.do(t, http.MethodGet, "/position", "", "")
	require.Equal(t, controller.ResponseCodeParamsError, resp.Code)
}

func TestAccountHistoryInvalidAccount(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/accountHistory?account=bogus", "", "")
	require.Equal(t, controller.ResponseCodeParamsError, resp.Code)
	require.Equal(t, service.Codespace, dataMap(t, resp)["codespace"])
}

func TestCorsPreflight(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/stake", "/unstake", "/approve", "/position"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://wallet.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", controller.CallerHeader)
		w := httptest.NewRecorder()
		env.engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusNoContent, w.Code, path)
		require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), path)
		require.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), controller.CallerHeader, path)
	}
}

func TestStakeHistory(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/stakeHistory?limit=5", "", "")
	require.Equal(t, controller.ResponseCodeOk, resp.Code)
	require.Equal(t, 1, resp.Total)
	require.Len(t, resp.Data.([]interface{}), 1)
}
