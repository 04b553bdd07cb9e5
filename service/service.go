package service

import (
	"context"
	"errors"
	"time"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdkTypes "github.com/cosmos/cosmos-sdk/types"

	"stake-ledger/config"
	"stake-ledger/db"
	"stake-ledger/ledger"
	"stake-ledger/logger"
	"stake-ledger/token"
	"stake-ledger/types"
)

const Codespace = "stakeledger_api"

var ErrInvalidAccount = errorsmod.Register(Codespace, 2, "invalid account")

type IService interface {
	Token() config.TokenConf
	Stake(ctx context.Context, caller string, amount sdkmath.Uint) error
	Unstake(ctx context.Context, caller string, amount sdkmath.Uint) error
	Approve(caller string, amount sdkmath.Uint) error
	GetPosition(account string) (*ledger.Position, error)
	GetBalance(account string) (sdkmath.Uint, error)
	GetAccountHistory(account string, limit, offset int, asc bool) ([]*types.AccountRecord, int, error)
	GetTotalStake() (sdkmath.Uint, error)
	GetStakeHistory(limit, offset int) ([]*types.StakeHistory, int, error)
}

type Service struct {
	ldb    *db.LDB
	store  *LdbStore
	ledger *ledger.Ledger
	bank   *token.Bank
	token  config.TokenConf
}

func NewService(ldb *db.LDB, store *LdbStore, l *ledger.Ledger, bank *token.Bank, tokenConf config.TokenConf) *Service {
	return &Service{
		ldb:    ldb,
		store:  store,
		ledger: l,
		bank:   bank,
		token:  tokenConf,
	}
}

// ValidateAccount checks that account is a bech32 address with the
// configured account prefix.
func ValidateAccount(account string) error {
	if _, err := sdkTypes.AccAddressFromBech32(account); err != nil {
		return ErrInvalidAccount.Wrapf("%q: %v", account, err)
	}
	return nil
}

func (s *Service) Token() config.TokenConf {
	return s.token
}

func (s *Service) Stake(ctx context.Context, caller string, amount sdkmath.Uint) error {
	if err := ValidateAccount(caller); err != nil {
		return err
	}
	if err := s.ledger.Stake(ctx, caller, amount); err != nil {
		logOperationError("stake", caller, amount, err)
		return err
	}
	logger.Logger.Infof("stake account:%s amount:%s token:%s", caller, amount, s.ledger.Token())
	return nil
}

func (s *Service) Unstake(ctx context.Context, caller string, amount sdkmath.Uint) error {
	if err := ValidateAccount(caller); err != nil {
		return err
	}
	if err := s.ledger.Unstake(ctx, caller, amount); err != nil {
		logOperationError("unstake", caller, amount, err)
		return err
	}
	logger.Logger.Infof("unstake account:%s amount:%s token:%s", caller, amount, s.ledger.Token())
	return nil
}

// Approve lets the ledger's custody account pull up to amount of the
// staking token from caller.
func (s *Service) Approve(caller string, amount sdkmath.Uint) error {
	if err := ValidateAccount(caller); err != nil {
		return err
	}
	return s.bank.Approve(s.ledger.Token(), caller, s.ledger.Account(), amount)
}

func (s *Service) GetPosition(account string) (*ledger.Position, error) {
	if err := ValidateAccount(account); err != nil {
		return nil, err
	}
	return s.ledger.Position(account)
}

func (s *Service) GetBalance(account string) (sdkmath.Uint, error) {
	if err := ValidateAccount(account); err != nil {
		return sdkmath.Uint{}, err
	}
	return s.bank.BalanceOf(s.ledger.Token(), account)
}

func (s *Service) GetAccountHistory(account string, limit, offset int, asc bool) ([]*types.AccountRecord, int, error) {
	if err := ValidateAccount(account); err != nil {
		return nil, 0, err
	}
	recordsIFace, total, err := s.ldb.GetAllRecordsWithAutoId(&types.AccountRecord{Account: account}, limit, offset, asc)
	if err != nil {
		return nil, total, err
	}
	records := []*types.AccountRecord{}
	for _, record := range recordsIFace {
		if accountRecord, ok := record.(*types.AccountRecord); ok {
			records = append(records, accountRecord)
		}
	}
	return records, total, nil
}

func (s *Service) GetTotalStake() (sdkmath.Uint, error) {
	return s.store.TotalStake()
}

// GetStakeHistory returns the current total followed by the saved
// snapshots, newest first.
func (s *Service) GetStakeHistory(limit, offset int) ([]*types.StakeHistory, int, error) {
	recordsIFace, total, err := s.ldb.GetAllRecordsWithAutoId(&types.StakeHistory{}, limit, offset, false)
	if err != nil {
		return nil, total, err
	}
	current, err := s.store.TotalStake()
	if err != nil {
		return nil, total, err
	}

	records := []*types.StakeHistory{{
		Amount: current,
		Time:   time.Now(),
	}}
	for _, record := range recordsIFace {
		if stakeHistory, ok := record.(*types.StakeHistory); ok {
			records = append(records, stakeHistory)
		}
	}
	return records, total + 1, nil
}

func logOperationError(op, account string, amount sdkmath.Uint, err error) {
	switch {
	case errors.Is(err, ledger.ErrGreaterAmountRequested),
		errors.Is(err, ledger.ErrTransferFailed),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrPendingCommit):
		logger.Logger.Warnf("%s rejected account:%s amount:%s err:%v", op, account, amount, err)
	default:
		logger.Logger.Errorf("%s failed account:%s amount:%s err:%v", op, account, amount, err)
	}
}
