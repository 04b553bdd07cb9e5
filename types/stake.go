package types

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
)

// StakeRecord is the stake an account holds in the ledger. Amount already
// contains every reward folded in up to Timestamp (unix seconds).
type StakeRecord struct {
	Account   string
	Amount    sdkmath.Uint
	Timestamp uint64
}

func (s *StakeRecord) Key() string {
	return fmt.Sprintf("StakeRecord_%s", s.Account)
}

func (s *StakeRecord) Clone() *StakeRecord {
	if s == nil {
		return nil
	}
	return &StakeRecord{
		Account:   s.Account,
		Amount:    s.Amount,
		Timestamp: s.Timestamp,
	}
}

// Stake is the sum of the principal recorded over all accounts.
type Stake struct {
	Amount sdkmath.Uint
}

func (c *Stake) Key() string {
	return "total_stake"
}

type StakeHistory struct {
	ID     uint64
	Amount sdkmath.Uint
	Time   time.Time
}

func (s *StakeHistory) Key() string {
	return fmt.Sprintf("%s%020d", s.Prefix(), s.ID)
}

func (s *StakeHistory) Prefix() string {
	return "StakeHistory_"
}

func (s *StakeHistory) SetId(id uint64) {
	s.ID = id
}
