package service

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/syndtr/goleveldb/leveldb"

	"stake-ledger/db"
	"stake-ledger/ledger"
	"stake-ledger/types"
)

// LdbStore keeps stake records in leveldb. Every mutation writes the
// record, an account history entry and the total stake in one batch.
type LdbStore struct {
	ldb *db.LDB
}

func NewLdbStore(ldb *db.LDB) *LdbStore {
	return &LdbStore{ldb: ldb}
}

func (s *LdbStore) Get(account string) (*types.StakeRecord, error) {
	record, err := s.ldb.GetRecordByType(&types.StakeRecord{Account: account})
	if err != nil || record == nil {
		return nil, err
	}
	stake, ok := record.(*types.StakeRecord)
	if !ok {
		return nil, fmt.Errorf("unexpected record type %T", record)
	}
	return stake, nil
}

func (s *LdbStore) Apply(m *ledger.Mutation) error {
	return s.ldb.Transaction(func(l *db.LDB, batch *leveldb.Batch) error {
		total, err := totalStake(l)
		if err != nil {
			return err
		}
		prev, next := sdkmath.ZeroUint(), sdkmath.ZeroUint()
		if m.Prev != nil {
			prev = m.Prev.Amount
		}
		if m.Next != nil {
			next = m.Next.Amount
		}
		total = total.Add(next)
		if total.LT(prev) {
			return fmt.Errorf("total stake %s below recorded stake %s of %s", total, prev, m.Account)
		}
		total = total.Sub(prev)

		if m.Next == nil {
			db.DeleteRecord(batch, &types.StakeRecord{Account: m.Account})
		} else if err := db.StoreRecord(l.DB, batch, m.Next); err != nil {
			return err
		}

		err = db.StoreRecord(l.DB, batch, &types.AccountRecord{
			Account:   m.Account,
			Token:     m.Token,
			Operation: m.Operation,
			Amount:    m.Amount,
			Reward:    m.Reward,
			Balance:   next,
			Time:      m.Time,
		})
		if err != nil {
			return err
		}
		return db.StoreRecord(l.DB, batch, &types.Stake{Amount: total})
	})
}

// TotalStake returns the principal recorded over all accounts.
func (s *LdbStore) TotalStake() (sdkmath.Uint, error) {
	return totalStake(s.ldb)
}

func totalStake(l *db.LDB) (sdkmath.Uint, error) {
	record, err := l.GetRecordByType(&types.Stake{})
	if err != nil {
		return sdkmath.Uint{}, err
	}
	if stake, ok := record.(*types.Stake); ok && !stake.Amount.IsNil() {
		return stake.Amount, nil
	}
	return sdkmath.ZeroUint(), nil
}
