package staking

import (
	"encoding/json"
	"fmt"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/operator"
)

type stakeArgs struct {
	Amount int64         `json:"amount"`
	Months int           `json:"months"`
	User   chain.Address `json:"user"`
}

type unstakeArgs struct {
	Index int           `json:"index"`
	User  chain.Address `json:"user"`
}

// HandleCall dispatches a relayed payload from the operator.
func (s *Staking) HandleCall(ctx chain.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.operatorAddress == "" || ctx.Caller != s.operatorAddress {
		return fmt.Errorf("%w: only operator can forward calls", chain.ErrUnauthorized)
	}

	cd, err := operator.DecodeCall(payload)
	if err != nil {
		return err
	}

	switch cd.Method {
	case "stake":
		var a stakeArgs
		if err := json.Unmarshal(cd.Args, &a); err != nil {
			return fmt.Errorf("%w: malformed call args", chain.ErrInvalidInput)
		}
		return s.stake(relayCtx(ctx, a.User), a.Amount, a.Months)
	case "unstake":
		var a unstakeArgs
		if err := json.Unmarshal(cd.Args, &a); err != nil {
			return fmt.Errorf("%w: malformed call args", chain.ErrInvalidInput)
		}
		return s.unstake(relayCtx(ctx, a.User), a.Index)
	default:
		return fmt.Errorf("%w: unknown method %q", chain.ErrInvalidInput, cd.Method)
	}
}

func relayCtx(ctx chain.Context, user chain.Address) chain.Context {
	if user != "" {
		return chain.Context{Caller: user, Timestamp: ctx.Timestamp}
	}
	return ctx
}
