package types

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
)

type OperationType uint8

const (
	OpStake OperationType = iota
	OpUnstake
)

func (o OperationType) String() string {
	switch o {
	case OpStake:
		return "stake"
	case OpUnstake:
		return "unstake"
	}
	return fmt.Sprintf("OperationType(%d)", uint8(o))
}

type DbRecord interface {
	Key() string
}

type DbRecordAutoId interface {
	DbRecord
	Prefix() string
	SetId(uint64)
}

// AccountRecord is one committed ledger operation of an account.
type AccountRecord struct {
	ID        uint64
	Account   string
	Token     string
	Operation OperationType
	Amount    sdkmath.Uint
	Reward    sdkmath.Uint // interest folded into principal by this operation
	Balance   sdkmath.Uint // recorded principal after the operation
	Time      time.Time
}

func (a *AccountRecord) Key() string {
	return fmt.Sprintf("%s%020d", a.Prefix(), a.ID)
}

func (a *AccountRecord) Prefix() string {
	return fmt.Sprintf("AccountRecord_%s_", a.Account)
}

func (a *AccountRecord) SetId(id uint64) {
	a.ID = id
}
