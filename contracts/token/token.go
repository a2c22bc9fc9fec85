package token

import (
	"fmt"
	"sync"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
)

// Decimals is the precision of HBT. All amounts in this package are int64
// values denominated in the smallest unit.
const Decimals = 8

// PermitVerifier checks an off-ledger approval signature. Signature schemes
// are a capability of the execution environment, not reimplemented here.
type PermitVerifier interface {
	VerifyPermit(owner, spender chain.Address, value int64, nonce int64, deadline int64, signature []byte) error
}

// Token is the HouseBusiness fungible token ledger.
type Token struct {
	mu sync.Mutex

	name     string
	symbol   string
	owner    chain.Address
	address  chain.Address
	verifier PermitVerifier

	totalSupply int64
	balances    map[chain.Address]int64
	allowances  map[chain.Address]map[chain.Address]int64
	nonces      map[chain.Address]int64
}

func New(name, symbol string, owner chain.Address, verifier PermitVerifier) *Token {
	return &Token{
		name:       name,
		symbol:     symbol,
		owner:      owner,
		address:    chain.NewAddress(),
		verifier:   verifier,
		balances:   make(map[chain.Address]int64),
		allowances: make(map[chain.Address]map[chain.Address]int64),
		nonces:     make(map[chain.Address]int64),
	}
}

func (t *Token) Name() string           { return t.name }
func (t *Token) Symbol() string         { return t.symbol }
func (t *Token) Address() chain.Address { return t.address }

func (t *Token) TotalSupply() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalSupply
}

func (t *Token) BalanceOf(account chain.Address) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[account]
}

func (t *Token) Allowance(owner, spender chain.Address) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allowances[owner][spender]
}

// Mint creates new tokens. Only the token owner can mint.
func (t *Token) Mint(ctx chain.Context, to chain.Address, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ctx.Caller != t.owner {
		return fmt.Errorf("%w: only token owner can mint", chain.ErrUnauthorized)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", chain.ErrInvalidInput)
	}
	t.balances[to] += amount
	t.totalSupply += amount
	return nil
}

// Transfer moves tokens from the caller to another account.
func (t *Token) Transfer(ctx chain.Context, to chain.Address, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transfer(ctx.Caller, to, amount)
}

// Approve sets the allowance of a spender over the caller's tokens.
func (t *Token) Approve(ctx chain.Context, spender chain.Address, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", chain.ErrInvalidInput)
	}
	t.approve(ctx.Caller, spender, amount)
	return nil
}

// TransferFrom spends an allowance on behalf of its owner.
func (t *Token) TransferFrom(ctx chain.Context, from, to chain.Address, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	allowed := t.allowances[from][ctx.Caller]
	if amount > allowed {
		return fmt.Errorf("%w: transfer amount exceeds allowance", chain.ErrInsufficientFunds)
	}
	if err := t.transfer(from, to, amount); err != nil {
		return err
	}
	t.allowances[from][ctx.Caller] = allowed - amount
	return nil
}

// Permit records an approval authorized by an off-ledger signature.
// The nonce advances once per accepted permit so a signature cannot be
// replayed; the deadline is checked against the ledger timestamp.
func (t *Token) Permit(ctx chain.Context, owner, spender chain.Address, value int64, deadline int64, signature []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.verifier == nil {
		return fmt.Errorf("%w: permit verifier not configured", chain.ErrUnauthorized)
	}
	if ctx.Timestamp > deadline {
		return fmt.Errorf("%w: permit deadline expired", chain.ErrInvalidInput)
	}
	nonce := t.nonces[owner]
	if err := t.verifier.VerifyPermit(owner, spender, value, nonce, deadline, signature); err != nil {
		return fmt.Errorf("%w: invalid permit signature", chain.ErrUnauthorized)
	}
	t.nonces[owner] = nonce + 1
	t.approve(owner, spender, value)
	return nil
}

func (t *Token) Nonce(owner chain.Address) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nonces[owner]
}

func (t *Token) transfer(from, to chain.Address, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", chain.ErrInvalidInput)
	}
	if t.balances[from] < amount {
		return fmt.Errorf("%w: insufficient balance", chain.ErrInsufficientFunds)
	}
	t.balances[from] -= amount
	t.balances[to] += amount
	return nil
}

func (t *Token) approve(owner, spender chain.Address, amount int64) {
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[chain.Address]int64)
	}
	t.allowances[owner][spender] = amount
}
