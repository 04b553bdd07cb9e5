package cornjob

import (
	"context"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"stake-ledger/db"
	"stake-ledger/ledger"
	"stake-ledger/service"
	"stake-ledger/types"
)

func TestSaveStake(t *testing.T) {
	ldb, err := db.NewMemLdb()
	require.NoError(t, err)
	defer ldb.Close()
	store := service.NewLdbStore(ldb)

	job := NewTotalStakeJob(ldb, store)
	job.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	require.NoError(t, job.saveStake(context.Background()))

	err = store.Apply(&ledger.Mutation{
		Account:   "alice",
		Token:     "STK",
		Operation: types.OpStake,
		Amount:    sdkmath.NewUint(700),
		Reward:    sdkmath.ZeroUint(),
		Next:      &types.StakeRecord{Account: "alice", Amount: sdkmath.NewUint(700), Timestamp: 1_700_000_000},
		Time:      time.Unix(1_700_000_000, 0),
	})
	require.NoError(t, err)
	job.now = func() time.Time { return time.Unix(1_700_086_400, 0) }
	require.NoError(t, job.saveStake(context.Background()))

	records, total, err := ldb.GetAllRecordsWithAutoId(&types.StakeHistory{}, 10, 0, true)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	first := records[0].(*types.StakeHistory)
	second := records[1].(*types.StakeHistory)
	require.True(t, first.Amount.IsZero())
	require.Equal(t, "700", second.Amount.String())
	require.Equal(t, int64(1_700_086_400), second.Time.Unix())
}

func TestCronJobLedgerInitRejectsSpec(t *testing.T) {
	ldb, err := db.NewMemLdb()
	require.NoError(t, err)
	defer ldb.Close()

	store := service.NewLdbStore(ldb)
	l := ledger.New(store, nil, "ledger", "STK")
	err = CronJobLedgerInit(context.Background(), ldb, store, l, "every day")
	require.Error(t, err)
}

func TestCronJobLedgerInitStopsWithContext(t *testing.T) {
	ldb, err := db.NewMemLdb()
	require.NoError(t, err)
	defer ldb.Close()

	store := service.NewLdbStore(ldb)
	l := ledger.New(store, nil, "ledger", "STK")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- CronJobLedgerInit(ctx, ldb, store, l, "")
	}()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("job did not stop")
	}
}

func TestReconcileJobWithoutPending(t *testing.T) {
	ldb, err := db.NewMemLdb()
	require.NoError(t, err)
	defer ldb.Close()

	l := ledger.New(service.NewLdbStore(ldb), nil, "ledger", "STK")
	require.NoError(t, reconcileJob(l)(context.Background()))
}
