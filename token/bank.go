// Package token hosts fungible tokens in process: balances, allowances
// and the transfers the stake ledger asks for.
package token

import (
	"context"
	"sync"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

const Codespace = "psp22"

var (
	ErrUnknownToken          = errorsmod.Register(Codespace, 2, "unknown token")
	ErrTokenExists           = errorsmod.Register(Codespace, 3, "token already registered")
	ErrInsufficientBalance   = errorsmod.Register(Codespace, 4, "insufficient balance")
	ErrInsufficientAllowance = errorsmod.Register(Codespace, 5, "insufficient allowance")
	ErrZeroAccount           = errorsmod.Register(Codespace, 6, "zero account not allowed")
	ErrInvalidAmount         = errorsmod.Register(Codespace, 7, "invalid amount")
)

// Allocation is a genesis balance.
type Allocation struct {
	Account string
	Amount  sdkmath.Uint
}

type fungible struct {
	supply     sdkmath.Uint
	balances   map[string]sdkmath.Uint
	allowances map[string]map[string]sdkmath.Uint
}

func (f *fungible) balanceOf(account string) sdkmath.Uint {
	if b, ok := f.balances[account]; ok {
		return b
	}
	return sdkmath.ZeroUint()
}

func (f *fungible) allowance(owner, spender string) sdkmath.Uint {
	if a, ok := f.allowances[owner][spender]; ok {
		return a
	}
	return sdkmath.ZeroUint()
}

func (f *fungible) setAllowance(owner, spender string, amount sdkmath.Uint) {
	if f.allowances[owner] == nil {
		f.allowances[owner] = make(map[string]sdkmath.Uint)
	}
	f.allowances[owner][spender] = amount
}

func (f *fungible) move(from, to string, amount sdkmath.Uint) error {
	if from == "" || to == "" {
		return ErrZeroAccount
	}
	balance := f.balanceOf(from)
	if balance.LT(amount) {
		return ErrInsufficientBalance.Wrapf("%s has %s, needs %s", from, balance, amount)
	}
	f.balances[from] = balance.Sub(amount)
	f.balances[to] = f.balanceOf(to).Add(amount)
	return nil
}

// Bank is a registry of tokens. Every call is serialized.
type Bank struct {
	lock   sync.Mutex
	tokens map[string]*fungible
}

func NewBank() *Bank {
	return &Bank{tokens: make(map[string]*fungible)}
}

// Register creates token with its whole supply distributed by genesis.
func (b *Bank) Register(token string, genesis []Allocation) error {
	if token == "" {
		return ErrUnknownToken.Wrap("empty token id")
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	if _, ok := b.tokens[token]; ok {
		return ErrTokenExists.Wrap(token)
	}
	f := &fungible{
		supply:     sdkmath.ZeroUint(),
		balances:   make(map[string]sdkmath.Uint),
		allowances: make(map[string]map[string]sdkmath.Uint),
	}
	for _, a := range genesis {
		if a.Account == "" {
			return ErrZeroAccount.Wrap("genesis allocation")
		}
		if a.Amount.IsNil() {
			return ErrInvalidAmount.Wrapf("genesis allocation of %s", a.Account)
		}
		f.balances[a.Account] = f.balanceOf(a.Account).Add(a.Amount)
		f.supply = f.supply.Add(a.Amount)
	}
	b.tokens[token] = f
	return nil
}

func (b *Bank) get(token string) (*fungible, error) {
	f, ok := b.tokens[token]
	if !ok {
		return nil, ErrUnknownToken.Wrap(token)
	}
	return f, nil
}

func (b *Bank) TotalSupply(token string) (sdkmath.Uint, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	f, err := b.get(token)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	return f.supply, nil
}

func (b *Bank) BalanceOf(token, account string) (sdkmath.Uint, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	f, err := b.get(token)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	return f.balanceOf(account), nil
}

func (b *Bank) Allowance(token, owner, spender string) (sdkmath.Uint, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	f, err := b.get(token)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	return f.allowance(owner, spender), nil
}

// Approve sets the amount spender may move out of owner's balance.
func (b *Bank) Approve(token, owner, spender string, amount sdkmath.Uint) error {
	if amount.IsNil() {
		return ErrInvalidAmount
	}
	if owner == "" || spender == "" {
		return ErrZeroAccount
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	f, err := b.get(token)
	if err != nil {
		return err
	}
	f.setAllowance(owner, spender, amount)
	return nil
}

// Transfer moves amount from `from` to `to`.
func (b *Bank) Transfer(token, from, to string, amount sdkmath.Uint) error {
	if amount.IsNil() {
		return ErrInvalidAmount
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	f, err := b.get(token)
	if err != nil {
		return err
	}
	return f.move(from, to, amount)
}

// TransferFrom moves amount from `from` to `to` on behalf of spender and
// consumes spender's allowance.
func (b *Bank) TransferFrom(token, spender, from, to string, amount sdkmath.Uint) error {
	if amount.IsNil() {
		return ErrInvalidAmount
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	f, err := b.get(token)
	if err != nil {
		return err
	}
	allowance := f.allowance(from, spender)
	if allowance.LT(amount) {
		return ErrInsufficientAllowance.Wrapf("%s allows %s %s, needs %s", from, spender, allowance, amount)
	}
	if err := f.move(from, to, amount); err != nil {
		return err
	}
	f.setAllowance(from, spender, allowance.Sub(amount))
	return nil
}

// Operator returns a handle acting as account, the shape the stake
// ledger expects from its token collaborator.
func (b *Bank) Operator(account string) *Operator {
	return &Operator{bank: b, account: account}
}

type Operator struct {
	bank    *Bank
	account string
}

func (o *Operator) Account() string {
	return o.account
}

func (o *Operator) TransferFrom(_ context.Context, token, from, to string, amount sdkmath.Uint) error {
	return o.bank.TransferFrom(token, o.account, from, to, amount)
}

func (o *Operator) Transfer(_ context.Context, token, to string, amount sdkmath.Uint) error {
	return o.bank.Transfer(token, o.account, to, amount)
}
