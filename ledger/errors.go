package ledger

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

// Codespace of the errors registered by the ledger.
const Codespace = "stakeledger"

var (
	ErrTokenNotSet            = errorsmod.Register(Codespace, 2, "token not set")
	ErrGreaterAmountRequested = errorsmod.Register(Codespace, 3, "requested amount greater than available stake")
	ErrTransferFailed         = errorsmod.Register(Codespace, 4, "token transfer failed")
	ErrArithmeticOverflow     = errorsmod.Register(Codespace, 5, "arithmetic overflow")
	ErrClockRegression        = errorsmod.Register(Codespace, 6, "current time is before the stake timestamp")
	ErrReentrantCall          = errorsmod.Register(Codespace, 7, "reentrant ledger call")
	ErrCommitFailed           = errorsmod.Register(Codespace, 8, "failed to commit stake record")
	ErrInvalidAmount          = errorsmod.Register(Codespace, 9, "invalid amount")
	ErrPendingCommit          = errorsmod.Register(Codespace, 10, "account has an uncommitted operation")
)

// transferFailed keeps both ErrTransferFailed and the collaborator error
// reachable through errors.Is.
func transferFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrTransferFailed, err)
}
