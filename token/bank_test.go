package token

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func newTestBank(t *testing.T) *Bank {
	t.Helper()
	b := NewBank()
	require.NoError(t, b.Register("STK", []Allocation{
		{Account: "alice", Amount: sdkmath.NewUint(10_000_000)},
		{Account: "bob", Amount: sdkmath.NewUint(1_000)},
	}))
	return b
}

func requireBalance(t *testing.T, b *Bank, account string, want uint64) {
	t.Helper()
	got, err := b.BalanceOf("STK", account)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewUint(want).String(), got.String(), "balance of %s", account)
}

func TestRegister(t *testing.T) {
	b := newTestBank(t)

	supply, err := b.TotalSupply("STK")
	require.NoError(t, err)
	require.Equal(t, "10001000", supply.String())
	requireBalance(t, b, "carol", 0)

	require.ErrorIs(t, b.Register("STK", nil), ErrTokenExists)
	require.ErrorIs(t, b.Register("BAD", []Allocation{{Account: "", Amount: sdkmath.OneUint()}}), ErrZeroAccount)
	_, err = b.BalanceOf("NOPE", "alice")
	require.ErrorIs(t, err, ErrUnknownToken)
}

func TestTransfer(t *testing.T) {
	b := newTestBank(t)

	require.NoError(t, b.Transfer("STK", "alice", "bob", sdkmath.NewUint(1_000)))
	requireBalance(t, b, "alice", 9_999_000)
	requireBalance(t, b, "bob", 2_000)

	err := b.Transfer("STK", "bob", "alice", sdkmath.NewUint(2_001))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	requireBalance(t, b, "bob", 2_000)

	require.ErrorIs(t, b.Transfer("STK", "", "alice", sdkmath.ZeroUint()), ErrZeroAccount)
	require.ErrorIs(t, b.Transfer("STK", "alice", "bob", sdkmath.Uint{}), ErrInvalidAmount)
}

func TestTransferFromSpendsAllowance(t *testing.T) {
	b := newTestBank(t)

	err := b.TransferFrom("STK", "ledger", "alice", "ledger", sdkmath.NewUint(10))
	require.ErrorIs(t, err, ErrInsufficientAllowance)

	require.NoError(t, b.Approve("STK", "alice", "ledger", sdkmath.NewUint(100)))
	require.NoError(t, b.TransferFrom("STK", "ledger", "alice", "ledger", sdkmath.NewUint(60)))

	allowance, err := b.Allowance("STK", "alice", "ledger")
	require.NoError(t, err)
	require.Equal(t, "40", allowance.String())
	requireBalance(t, b, "ledger", 60)

	err = b.TransferFrom("STK", "ledger", "alice", "ledger", sdkmath.NewUint(41))
	require.ErrorIs(t, err, ErrInsufficientAllowance)

	require.NoError(t, b.Approve("STK", "bob", "ledger", sdkmath.NewUint(5_000)))
	err = b.TransferFrom("STK", "ledger", "bob", "ledger", sdkmath.NewUint(1_001))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	allowance, err = b.Allowance("STK", "bob", "ledger")
	require.NoError(t, err)
	require.Equal(t, "5000", allowance.String())
}

func TestTransferFromZeroWithoutAllowance(t *testing.T) {
	b := newTestBank(t)
	require.NoError(t, b.TransferFrom("STK", "ledger", "carol", "ledger", sdkmath.ZeroUint()))
	requireBalance(t, b, "ledger", 0)
}

func TestOperator(t *testing.T) {
	b := newTestBank(t)
	op := b.Operator("ledger")
	ctx := context.Background()

	require.NoError(t, b.Approve("STK", "alice", op.Account(), sdkmath.NewUint(500)))
	require.NoError(t, op.TransferFrom(ctx, "STK", "alice", op.Account(), sdkmath.NewUint(500)))
	require.NoError(t, op.Transfer(ctx, "STK", "bob", sdkmath.NewUint(200)))

	requireBalance(t, b, "alice", 9_999_500)
	requireBalance(t, b, "ledger", 300)
	requireBalance(t, b, "bob", 1_200)

	require.ErrorIs(t, op.Transfer(ctx, "STK", "bob", sdkmath.NewUint(301)), ErrInsufficientBalance)
	require.ErrorIs(t, op.Transfer(ctx, "XYZ", "bob", sdkmath.NewUint(1)), ErrUnknownToken)
}
