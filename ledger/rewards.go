package ledger

import (
	"math/big"

	sdkmath "cosmossdk.io/math"

	"stake-ledger/types"
)

// Interest is a simple daily rate expressed in parts per billion:
// InterestRateNumerator / RateDenominator = 0.1% per day.
const (
	RateDenominator       = 1_000_000_000
	InterestRateNumerator = 1_000_000
	SecondsPerDay         = 86400
)

// BalanceBits is the width of a recorded balance. Intermediate interest
// products are computed in the 256 bits of sdkmath.Uint, which cannot
// overflow for a 128-bit principal and a 64-bit elapsed time.
const BalanceBits = 128

// MaxBalance is the largest amount a stake record or a single operation
// can carry.
var MaxBalance = sdkmath.NewUintFromBigInt(
	new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), BalanceBits), big.NewInt(1)),
)

// AccumulatedRewards returns the interest earned by record between its
// timestamp and now (unix seconds). Nothing is stored; the caller folds
// the result into principal.
//
//	reward = (elapsed * amount * InterestRateNumerator) / SecondsPerDay / RateDenominator
//
// Each division floors, in that order.
func AccumulatedRewards(record *types.StakeRecord, now uint64) (sdkmath.Uint, error) {
	if now < record.Timestamp {
		return sdkmath.Uint{}, ErrClockRegression.Wrapf("now %d, stake timestamp %d", now, record.Timestamp)
	}
	if err := checkBalance(record.Amount); err != nil {
		return sdkmath.Uint{}, err
	}
	elapsed := now - record.Timestamp
	perDay := record.Amount.MulUint64(InterestRateNumerator)
	reward := perDay.MulUint64(elapsed).
		QuoUint64(SecondsPerDay).
		QuoUint64(RateDenominator)
	if err := checkBalance(reward); err != nil {
		return sdkmath.Uint{}, err
	}
	return reward, nil
}

// checkBalance rejects uninitialised amounts and amounts wider than
// BalanceBits.
func checkBalance(amount sdkmath.Uint) error {
	if amount.IsNil() {
		return ErrInvalidAmount.Wrap("amount is not set")
	}
	if amount.GT(MaxBalance) {
		return ErrArithmeticOverflow.Wrapf("%s exceeds %d bits", amount, BalanceBits)
	}
	return nil
}

// addBalances sums amounts and fails when the total no longer fits a
// balance.
func addBalances(amounts ...sdkmath.Uint) (sdkmath.Uint, error) {
	total := sdkmath.ZeroUint()
	for _, amount := range amounts {
		if err := checkBalance(amount); err != nil {
			return sdkmath.Uint{}, err
		}
		total = total.Add(amount)
	}
	if err := checkBalance(total); err != nil {
		return sdkmath.Uint{}, err
	}
	return total, nil
}
