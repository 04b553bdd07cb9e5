package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmath "cosmossdk.io/math"
	sdkTypes "github.com/cosmos/cosmos-sdk/types"

	"stake-ledger/config"
	"stake-ledger/cornjob"
	"stake-ledger/db"
	"stake-ledger/ledger"
	"stake-ledger/logger"
	"stake-ledger/router"
	"stake-ledger/service"
	"stake-ledger/token"
	"stake-ledger/util"
)

var (
	configFlag = flag.String("config", "config.yaml", "Config file")
)

func setAccountPrefix(prefix string) {
	if prefix == "" {
		return
	}
	accountPubKeyPrefix := prefix + "pub"
	validatorAddressPrefix := prefix + "valoper"
	validatorPubKeyPrefix := prefix + "valoperpub"
	consNodeAddressPrefix := prefix + "valcons"
	consNodePubKeyPrefix := prefix + "valconspub"

	sdkConfig := sdkTypes.GetConfig()
	sdkConfig.SetBech32PrefixForAccount(prefix, accountPubKeyPrefix)
	sdkConfig.SetBech32PrefixForValidator(validatorAddressPrefix, validatorPubKeyPrefix)
	sdkConfig.SetBech32PrefixForConsensusNode(consNodeAddressPrefix, consNodePubKeyPrefix)
	sdkConfig.Seal()
}

func openLdb(cfg *config.Conf) (*db.LDB, error) {
	if cfg.DbPath != "" {
		return db.OpenLdb(cfg.DbPath)
	}
	return db.NewLdb(cfg.DbTailFix)
}

func genesis(conf config.TokenConf) ([]token.Allocation, error) {
	allocations := make([]token.Allocation, 0, len(conf.Genesis))
	for _, g := range conf.Genesis {
		if err := service.ValidateAccount(g.Account); err != nil {
			return nil, err
		}
		amount, err := sdkmath.ParseUint(g.Amount)
		if err != nil {
			return nil, fmt.Errorf("genesis amount of %s: %w", g.Account, err)
		}
		allocations = append(allocations, token.Allocation{Account: g.Account, Amount: amount})
	}
	return allocations, nil
}

func main() {
	flag.Parse()
	util.LoadConfig(*configFlag, &config.Cfg)
	cfg := &config.Cfg
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Logger.Sync()
	setAccountPrefix(cfg.AccountPrefix)

	if err := service.ValidateAccount(cfg.LedgerAccount); err != nil {
		logger.Logger.Fatalf("ledger_account: %v", err)
	}

	ldb, err := openLdb(cfg)
	if err != nil {
		logger.Logger.Fatal(err)
	}
	defer ldb.Close()

	bank := token.NewBank()
	if cfg.Token.ID != "" {
		allocations, err := genesis(cfg.Token)
		if err != nil {
			logger.Logger.Fatal(err)
		}
		if err := bank.Register(cfg.Token.ID, allocations); err != nil {
			logger.Logger.Fatal(err)
		}
	} else {
		logger.Logger.Warn("no staking token configured, stake and unstake will fail")
	}

	store := service.NewLdbStore(ldb)
	l := ledger.New(store, bank.Operator(cfg.LedgerAccount), cfg.LedgerAccount, cfg.Token.ID)
	newService := service.NewService(ldb, store, l, bank, cfg.Token)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := cornjob.CronJobLedgerInit(ctx, ldb, store, l, cfg.SnapshotSpec); err != nil {
			logger.Logger.Errorf("snapshot job: %v", err)
		}
	}()

	engine := router.Init(newService)
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatalf("listen addr:%s,err:%v", addr, err)
		}
	}()
	logger.Logger.Infof("stake ledger listening on %s token:%s custody:%s", addr, cfg.Token.ID, cfg.LedgerAccount)

	<-ctx.Done()
	logger.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Errorf("server shutdown: %v", err)
	}
}
