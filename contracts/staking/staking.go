package staking

import (
	"fmt"
	"sync"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/token"
)

const (
	secondsPerMonth = int64(30 * 24 * 3600)
	monthsPerYear   = int64(12)
)

// apyByMonths maps the lock-up term to its annual yield in percent.
var apyByMonths = map[int]int64{
	1:  6,
	6:  8,
	12: 10,
	24: 12,
}

// Stake is one locked deposit.
type Stake struct {
	Account  chain.Address `json:"account"`
	Amount   int64         `json:"amount"`
	Months   int           `json:"months"`
	APY      int64         `json:"apy"`
	StakedAt int64         `json:"staked_at"`
}

// Staking locks HBT for a fixed term and pays rewards from a pool funded
// by plain token transfers to the staking contract.
type Staking struct {
	mu sync.Mutex

	owner           chain.Address
	address         chain.Address
	nftAddress      chain.Address
	hbt             *token.Token
	operatorAddress chain.Address

	stakes      map[chain.Address][]Stake
	totalStaked int64
}

func New(owner chain.Address, nftAddress chain.Address, hbt *token.Token) *Staking {
	return &Staking{
		owner:      owner,
		address:    chain.NewAddress(),
		nftAddress: nftAddress,
		hbt:        hbt,
		stakes:     make(map[chain.Address][]Stake),
	}
}

func (s *Staking) Owner() chain.Address   { return s.owner }
func (s *Staking) Address() chain.Address { return s.address }

func (s *Staking) SetOperatorAddress(ctx chain.Context, addr chain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Caller != s.owner {
		return fmt.Errorf("%w: only owner can set operator address", chain.ErrUnauthorized)
	}
	s.operatorAddress = addr
	return nil
}

// Stake locks tokens for the given term. The caller must have approved the
// staking contract first.
func (s *Staking) Stake(ctx chain.Context, amount int64, months int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stake(ctx, amount, months)
}

func (s *Staking) stake(ctx chain.Context, amount int64, months int) error {
	apy, ok := apyByMonths[months]
	if !ok {
		return fmt.Errorf("%w: staking term must be 1, 6, 12 or 24 months", chain.ErrInvalidInput)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", chain.ErrInvalidInput)
	}
	pull := chain.Context{Caller: s.address, Timestamp: ctx.Timestamp}
	if err := s.hbt.TransferFrom(pull, ctx.Caller, s.address, amount); err != nil {
		return err
	}
	s.stakes[ctx.Caller] = append(s.stakes[ctx.Caller], Stake{
		Account:  ctx.Caller,
		Amount:   amount,
		Months:   months,
		APY:      apy,
		StakedAt: ctx.Timestamp,
	})
	s.totalStaked += amount
	return nil
}

// Unstake releases the stake at the given index. Principal is always
// returned; the fixed-term reward is paid only once the term has elapsed,
// and only if the reward pool can cover it.
func (s *Staking) Unstake(ctx chain.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unstake(ctx, index)
}

func (s *Staking) unstake(ctx chain.Context, index int) error {
	stakes := s.stakes[ctx.Caller]
	if index < 0 || index >= len(stakes) {
		return fmt.Errorf("%w: stake %d does not exist", chain.ErrInvalidInput, index)
	}
	st := stakes[index]

	payout := st.Amount
	if ctx.Timestamp >= maturity(st) {
		reward := rewardOf(st)
		pool := s.hbt.BalanceOf(s.address) - s.totalStaked
		if pool < reward {
			return fmt.Errorf("%w: reward pool exhausted", chain.ErrInsufficientFunds)
		}
		payout += reward
	}

	send := chain.Context{Caller: s.address, Timestamp: ctx.Timestamp}
	if err := s.hbt.Transfer(send, ctx.Caller, payout); err != nil {
		return err
	}
	s.stakes[ctx.Caller] = append(stakes[:index], stakes[index+1:]...)
	s.totalStaked -= st.Amount
	return nil
}

// Stakes returns a copy of the caller's open stakes.
func (s *Staking) Stakes(account chain.Address) []Stake {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Stake(nil), s.stakes[account]...)
}

// Rewards reports the total reward claimable at the given time.
func (s *Staking) Rewards(account chain.Address, now int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, st := range s.stakes[account] {
		if now >= maturity(st) {
			total += rewardOf(st)
		}
	}
	return total
}

func (s *Staking) TotalStaked() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalStaked
}

func maturity(st Stake) int64 {
	return st.StakedAt + int64(st.Months)*secondsPerMonth
}

func rewardOf(st Stake) int64 {
	return st.Amount * st.APY * int64(st.Months) / monthsPerYear / 100
}
