// Package ledger keeps the stake of every account of a single token and
// accrues a fixed daily interest on it. Value never moves inside the
// ledger: deposits and withdrawals go through a FungibleToken
// collaborator, and a stake record is committed only after the
// collaborator accepted the transfer.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"

	"stake-ledger/types"
)

// FungibleToken moves token value on behalf of the ledger's custody
// account.
type FungibleToken interface {
	// TransferFrom pulls amount from `from` into `to`, spending the
	// allowance `from` granted to the ledger.
	TransferFrom(ctx context.Context, token, from, to string, amount sdkmath.Uint) error
	// Transfer pushes amount from the ledger's custody to `to`.
	Transfer(ctx context.Context, token, to string, amount sdkmath.Uint) error
}

// Mutation is the outcome of one successful operation, handed to the
// Store after the token transfer went through.
type Mutation struct {
	Account   string
	Token     string
	Operation types.OperationType
	Amount    sdkmath.Uint
	Reward    sdkmath.Uint
	Prev      *types.StakeRecord // nil when the account had no stake
	Next      *types.StakeRecord // nil when the stake was fully withdrawn
	Time      time.Time
}

// Store holds the stake records. Get returns nil for an account without
// a stake. Apply must write a mutation atomically.
type Store interface {
	Get(account string) (*types.StakeRecord, error)
	Apply(m *Mutation) error
}

// Position is a read-only view of an account's stake at a given time.
type Position struct {
	Record    *types.StakeRecord
	Reward    sdkmath.Uint
	Available sdkmath.Uint
	Time      uint64
}

type Option func(*Ledger)

// WithClock replaces time.Now as the ledger's time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

type Ledger struct {
	mu sync.Mutex

	store   Store
	bank    FungibleToken
	account string
	token   string
	now     func() time.Time

	// pending holds mutations whose transfer went through but whose
	// commit failed. The account is frozen until Reconcile stores them.
	pending map[string]*Mutation
}

// New creates a ledger holding its custody at account and staking token.
// An empty token leaves the ledger unconfigured: every operation that
// moves value fails with ErrTokenNotSet.
func New(store Store, bank FungibleToken, account, token string, opts ...Option) *Ledger {
	l := &Ledger{
		store:   store,
		bank:    bank,
		account: account,
		token:   token,
		now:     time.Now,
		pending: make(map[string]*Mutation),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) Token() string {
	return l.token
}

func (l *Ledger) Account() string {
	return l.account
}

// Stake deposits amount for caller. Interest accrued on an existing
// stake is folded into principal and its clock restarts.
func (l *Ledger) Stake(ctx context.Context, caller string, amount sdkmath.Uint) error {
	if isEntered(ctx) {
		return ErrReentrantCall
	}
	if err := checkBalance(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkPending(caller); err != nil {
		return err
	}
	now := l.now()
	ts := unixSeconds(now)
	prev, err := l.store.Get(caller)
	if err != nil {
		return err
	}

	reward := sdkmath.ZeroUint()
	next := &types.StakeRecord{Account: caller, Amount: amount, Timestamp: ts}
	if prev != nil {
		if reward, err = AccumulatedRewards(prev, ts); err != nil {
			return err
		}
		if next.Amount, err = addBalances(prev.Amount, reward, amount); err != nil {
			return err
		}
	}

	if l.token == "" {
		return ErrTokenNotSet
	}
	if err := l.bank.TransferFrom(enter(ctx), l.token, caller, l.account, amount); err != nil {
		return transferFailed(err)
	}

	m := &Mutation{
		Account:   caller,
		Token:     l.token,
		Operation: types.OpStake,
		Amount:    amount,
		Reward:    reward,
		Prev:      prev,
		Next:      next,
		Time:      now,
	}
	if err := l.store.Apply(m); err != nil {
		if rerr := l.bank.Transfer(enter(ctx), l.token, caller, amount); rerr != nil {
			// the deposit is held by the custody, so the record has to land
			l.pending[caller] = m
			return fmt.Errorf("%w: %w (refund failed: %v)", ErrCommitFailed, err, rerr)
		}
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}
	return nil
}

// Unstake withdraws amount from caller's stake, principal and accrued
// interest together. An account without a stake is left alone and no
// error is returned.
func (l *Ledger) Unstake(ctx context.Context, caller string, amount sdkmath.Uint) error {
	if isEntered(ctx) {
		return ErrReentrantCall
	}
	if err := checkBalance(amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkPending(caller); err != nil {
		return err
	}
	prev, err := l.store.Get(caller)
	if err != nil {
		return err
	}
	if prev == nil {
		return nil
	}

	now := l.now()
	ts := unixSeconds(now)
	reward, err := AccumulatedRewards(prev, ts)
	if err != nil {
		return err
	}
	available, err := addBalances(prev.Amount, reward)
	if err != nil {
		return err
	}

	var next *types.StakeRecord
	switch {
	case amount.GT(available):
		return ErrGreaterAmountRequested.Wrapf("requested %s, available %s", amount, available)
	case amount.LT(available):
		next = &types.StakeRecord{Account: caller, Amount: available.Sub(amount), Timestamp: ts}
	}

	if l.token == "" {
		return ErrTokenNotSet
	}
	if err := l.bank.Transfer(enter(ctx), l.token, caller, amount); err != nil {
		return transferFailed(err)
	}

	m := &Mutation{
		Account:   caller,
		Token:     l.token,
		Operation: types.OpUnstake,
		Amount:    amount,
		Reward:    reward,
		Prev:      prev,
		Next:      next,
		Time:      now,
	}
	if err := l.store.Apply(m); err != nil {
		l.pending[caller] = m
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}
	return nil
}

// Position reports account's stake and the interest it accrued so far.
// It returns nil when the account has no stake.
func (l *Ledger) Position(account string) (*Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var record *types.StakeRecord
	if m, ok := l.pending[account]; ok {
		record = m.Next.Clone()
	} else {
		var err error
		if record, err = l.store.Get(account); err != nil {
			return nil, err
		}
	}
	if record == nil {
		return nil, nil
	}
	ts := unixSeconds(l.now())
	reward, err := AccumulatedRewards(record, ts)
	if err != nil {
		return nil, err
	}
	available, err := addBalances(record.Amount, reward)
	if err != nil {
		return nil, err
	}
	return &Position{
		Record:    record,
		Reward:    reward,
		Available: available,
		Time:      ts,
	}, nil
}

func (l *Ledger) checkPending(account string) error {
	if _, ok := l.pending[account]; ok {
		return ErrPendingCommit.Wrapf("account %s", account)
	}
	return nil
}

// Reconcile commits the pending mutation of account, if any. Until it
// succeeds the account cannot stake or unstake.
func (l *Ledger) Reconcile(account string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reconcile(account)
}

// ReconcileAll retries every pending mutation and returns the first
// failure. Accounts that commit are released even when others fail.
func (l *Ledger) ReconcileAll() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var first error
	for account := range l.pending {
		if err := l.reconcile(account); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PendingAccounts lists the accounts frozen by a failed commit.
func (l *Ledger) PendingAccounts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts := make([]string, 0, len(l.pending))
	for account := range l.pending {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	return accounts
}

func (l *Ledger) reconcile(account string) error {
	m, ok := l.pending[account]
	if !ok {
		return nil
	}
	if err := l.store.Apply(m); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}
	delete(l.pending, account)
	return nil
}

func unixSeconds(t time.Time) uint64 {
	if s := t.Unix(); s > 0 {
		return uint64(s)
	}
	return 0
}

type enteredKey struct{}

// enter marks the context handed to the token collaborator so a call
// that comes back into the ledger can be refused instead of blocking on
// the ledger lock.
func enter(ctx context.Context) context.Context {
	return context.WithValue(ctx, enteredKey{}, true)
}

func isEntered(ctx context.Context) bool {
	entered, _ := ctx.Value(enteredKey{}).(bool)
	return entered
}
