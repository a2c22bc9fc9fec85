package operator

import (
	"fmt"
	"sync"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/token"
)

// Callee is a contract the operator can forward calls to. Targets dispatch
// the payload envelope themselves; the operator never inspects it.
type Callee interface {
	Address() chain.Address
	HandleCall(ctx chain.Context, payload []byte) error
}

// Operator relays calls to authorized contracts on behalf of end users,
// charging a fee from the user's deposited balance. The fee debit and the
// forwarded call form one atomic unit: the debit is applied only after the
// forwarded call returns without error, and the whole unit runs under a
// single lock so no intermediate state is observable.
type Operator struct {
	mu sync.Mutex

	owner   chain.Address
	address chain.Address
	hbt     *token.Token

	balances   map[chain.Address]int64
	authorized map[chain.Address]bool
	targets    map[chain.Address]Callee
}

func New(owner chain.Address, hbt *token.Token) *Operator {
	return &Operator{
		owner:      owner,
		address:    chain.NewAddress(),
		hbt:        hbt,
		balances:   make(map[chain.Address]int64),
		authorized: make(map[chain.Address]bool),
		targets:    make(map[chain.Address]Callee),
	}
}

func (o *Operator) Owner() chain.Address   { return o.owner }
func (o *Operator) Address() chain.Address { return o.address }

func (o *Operator) BalanceOf(account chain.Address) int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.balances[account]
}

// Deposit pulls HBT from the caller into the operator and credits the
// caller's relay balance. The caller must have approved the operator first.
func (o *Operator) Deposit(ctx chain.Context, amount int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", chain.ErrInvalidInput)
	}
	spend := chain.Context{Caller: o.address, Timestamp: ctx.Timestamp}
	if err := o.hbt.TransferFrom(spend, ctx.Caller, o.address, amount); err != nil {
		return err
	}
	o.balances[ctx.Caller] += amount
	return nil
}

// Withdraw debits the caller's relay balance and transfers HBT back out.
func (o *Operator) Withdraw(ctx chain.Context, amount int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", chain.ErrInvalidInput)
	}
	if o.balances[ctx.Caller] < amount {
		return fmt.Errorf("%w: insufficient balance", chain.ErrInsufficientFunds)
	}
	send := chain.Context{Caller: o.address, Timestamp: ctx.Timestamp}
	if err := o.hbt.Transfer(send, ctx.Caller, amount); err != nil {
		return err
	}
	o.balances[ctx.Caller] -= amount
	return nil
}

// AuthorizeContracts adds the given contracts to the set of permitted relay
// targets. Re-adding an already authorized contract is a no-op.
func (o *Operator) AuthorizeContracts(ctx chain.Context, contracts []chain.Address) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if ctx.Caller != o.owner {
		return fmt.Errorf("%w: only owner can authorize contracts", chain.ErrUnauthorized)
	}
	for _, addr := range contracts {
		o.authorized[addr] = true
	}
	return nil
}

func (o *Operator) IsAuthorized(contract chain.Address) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.authorized[contract]
}

// RegisterTarget binds a callee so relay requests can reach it. Binding is
// part of deployment wiring and does not by itself authorize the contract.
func (o *Operator) RegisterTarget(ctx chain.Context, callee Callee) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if ctx.Caller != o.owner {
		return fmt.Errorf("%w: only owner can register targets", chain.ErrUnauthorized)
	}
	o.targets[callee.Address()] = callee
	return nil
}

// CallContract forwards an encoded call to an authorized contract and
// deducts the fee from the beneficiary's balance. Preconditions are checked
// in order: target authorization, then beneficiary balance. If the
// forwarded call fails its error is propagated verbatim and no fee is
// taken; if it succeeds the fee debit commits in the same unit.
func (o *Operator) CallContract(ctx chain.Context, target chain.Address, payload []byte, fee int64, beneficiary chain.Address) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if fee < 0 {
		return fmt.Errorf("%w: fee must not be negative", chain.ErrInvalidInput)
	}
	if !o.authorized[target] {
		return fmt.Errorf("%w: contract not authorized", chain.ErrTargetNotAuthorized)
	}
	if o.balances[beneficiary] < fee {
		return fmt.Errorf("%w: insufficient balance", chain.ErrInsufficientFunds)
	}
	callee, ok := o.targets[target]
	if !ok {
		return fmt.Errorf("%w: no contract bound at %s", chain.ErrInvalidInput, target)
	}

	forward := chain.Context{Caller: o.address, Timestamp: ctx.Timestamp}
	if err := callee.HandleCall(forward, payload); err != nil {
		return err
	}
	o.balances[beneficiary] -= fee
	return nil
}
