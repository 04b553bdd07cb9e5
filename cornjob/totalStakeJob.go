package cornjob

import (
	"context"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"stake-ledger/db"
	"stake-ledger/ledger"
	"stake-ledger/logger"
	"stake-ledger/service"
	"stake-ledger/types"
	"stake-ledger/util/cron"
)

const (
	DefaultSnapshotSpec = "0 0 0 * * *"
	ReconcileSpec       = "0 * * * * *"
)

type TotalStakeJob struct {
	ldb   *db.LDB
	store *service.LdbStore
	now   func() time.Time
}

// CronJobLedgerInit snapshots the total stake on spec and retries the
// ledger's failed commits every minute until ctx is done.
func CronJobLedgerInit(ctx context.Context, ldb *db.LDB, store *service.LdbStore, l *ledger.Ledger, spec string) error {
	if spec == "" {
		spec = DefaultSnapshotSpec
	}
	c := cron.NewCron(ctx)
	if err := c.Register("Ledger job", spec, NewTotalStakeJob(ldb, store).saveStake); err != nil {
		return err
	}
	if err := c.Register("Reconcile job", ReconcileSpec, reconcileJob(l)); err != nil {
		return err
	}
	c.Run()
	return nil
}

func reconcileJob(l *ledger.Ledger) cron.Handler {
	return func(ctx context.Context) error {
		pending := l.PendingAccounts()
		if len(pending) == 0 {
			return nil
		}
		logger.Logger.Warnf("reconciling %d frozen accounts: %v", len(pending), pending)
		return l.ReconcileAll()
	}
}

func NewTotalStakeJob(ldb *db.LDB, store *service.LdbStore) *TotalStakeJob {
	return &TotalStakeJob{ldb: ldb, store: store, now: time.Now}
}

func (t *TotalStakeJob) saveStake(ctx context.Context) error {
	amount, err := t.store.TotalStake()
	if err != nil {
		return err
	}

	stakeHis := &types.StakeHistory{
		Amount: amount,
		Time:   t.now(),
	}
	err = t.ldb.Transaction(
		func(l *db.LDB, batch *leveldb.Batch) error {
			return db.StoreRecord(l.DB, batch, stakeHis)
		})
	if err != nil {
		logger.Logger.Errorf("corn job t.ldb.Transaction : %v", err)
	}
	return err
}
