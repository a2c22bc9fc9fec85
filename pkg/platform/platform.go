package platform

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/housedoc"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/housenft"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/marketplace"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/operator"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/staking"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/token"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/common"
)

// RewardPool is the HBT amount transferred to the staking contract at
// deployment, in whole tokens.
const RewardPool = 100_000

// Platform is the fully wired contract set, instantiated and configured
// the way a deployment run would do it.
type Platform struct {
	Deployer chain.Address

	HBT         *token.Token
	NFT         *housenft.HouseNFT
	Marketplace *marketplace.Marketplace
	HouseDoc    *housedoc.HouseDoc
	Staking     *staking.Staking
	Operator    *operator.Operator
}

// New instantiates every contract and runs the one-time setup sequence:
// cross-contract addresses, relay authorization, the default history-type
// catalog and the label percent split.
func New(cfg *common.Config) (*Platform, error) {
	deployer := chain.NewAddress()
	ctx := chain.Context{Caller: deployer}

	hbt := token.New("HouseBusinessToken", "HBT", deployer, environmentVerifier{})
	if err := hbt.Mint(ctx, deployer, cfg.TokenSupply); err != nil {
		return nil, fmt.Errorf("failed to mint initial supply: %v", err)
	}

	nft := housenft.New(deployer, hbt)
	mkt := marketplace.New(deployer)
	docs := housedoc.New(deployer, hbt, housedoc.RefundCreator)
	stk := staking.New(deployer, nft.Address(), hbt)
	op := operator.New(deployer, hbt)

	setup := []struct {
		name string
		call func() error
	}{
		{"setHouseDocContractAddress", func() error { return nft.SetHouseDocContractAddress(ctx, docs.Address()) }},
		{"setStakingContractAddress", func() error { return nft.SetStakingContractAddress(ctx, stk.Address()) }},
		{"setOperatorAddress", func() error { return nft.SetOperatorAddress(ctx, op.Address()) }},
		{"setMarketplace", func() error { return nft.SetMarketplace(ctx, mkt) }},
		{"houseDoc.setOperatorAddress", func() error { return docs.SetOperatorAddress(ctx, op.Address()) }},
		{"staking.setOperatorAddress", func() error { return stk.SetOperatorAddress(ctx, op.Address()) }},
		{"fundRewardPool", func() error {
			return hbt.Transfer(ctx, stk.Address(), scale(decimal.NewFromInt(RewardPool)))
		}},
		{"registerTargets", func() error {
			for _, callee := range []operator.Callee{docs, nft, stk} {
				if err := op.RegisterTarget(ctx, callee); err != nil {
					return err
				}
			}
			return nil
		}},
		{"authorizeContracts", func() error {
			return op.AuthorizeContracts(ctx, []chain.Address{docs.Address(), nft.Address(), stk.Address()})
		}},
		{"seedHistoryTypes", func() error { return seedHistoryTypes(ctx, mkt) }},
		{"setLabelPercents", func() error { return mkt.SetLabelPercents(ctx, DefaultLabelPercents()) }},
	}
	for _, step := range setup {
		if err := step.call(); err != nil {
			return nil, fmt.Errorf("setup step %s failed: %v", step.name, err)
		}
	}

	return &Platform{
		Deployer:    deployer,
		HBT:         hbt,
		NFT:         nft,
		Marketplace: mkt,
		HouseDoc:    docs,
		Staking:     stk,
		Operator:    op,
	}, nil
}

// environmentVerifier stands in for the signature capability of the
// execution environment. Scheme details are outside this repository.
type environmentVerifier struct{}

func (environmentVerifier) VerifyPermit(owner, spender chain.Address, value, nonce, deadline int64, signature []byte) error {
	if len(signature) == 0 {
		return fmt.Errorf("empty permit signature")
	}
	return nil
}
