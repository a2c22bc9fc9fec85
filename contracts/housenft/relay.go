package housenft

import (
	"encoding/json"
	"fmt"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/operator"
)

type mintHouseArgs struct {
	TokenName   string        `json:"token_name"`
	TokenURI    string        `json:"token_uri"`
	TokenType   string        `json:"token_type"`
	Description string        `json:"description"`
	User        chain.Address `json:"user"`
}

type addHistoryArgs struct {
	HouseID       int64         `json:"house_id"`
	ContractID    int64         `json:"contract_id"`
	HistoryTypeID int           `json:"history_type_id"`
	HouseImg      string        `json:"house_img"`
	HouseBrand    string        `json:"house_brand"`
	History       string        `json:"history"`
	Desc          string        `json:"desc"`
	BrandType     string        `json:"brand_type"`
	YearField     int64         `json:"year_field"`
	User          chain.Address `json:"user"`
}

// HandleCall dispatches a relayed payload from the operator.
func (n *HouseNFT) HandleCall(ctx chain.Context, payload []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.operatorAddress == "" || ctx.Caller != n.operatorAddress {
		return fmt.Errorf("%w: only operator can forward calls", chain.ErrUnauthorized)
	}

	cd, err := operator.DecodeCall(payload)
	if err != nil {
		return err
	}

	switch cd.Method {
	case "mintHouse":
		var a mintHouseArgs
		if err := json.Unmarshal(cd.Args, &a); err != nil {
			return fmt.Errorf("%w: malformed call args", chain.ErrInvalidInput)
		}
		_, err := n.mintHouse(relayCtx(ctx, a.User), a.TokenName, a.TokenURI, a.TokenType, a.Description)
		return err
	case "addHistory":
		var a addHistoryArgs
		if err := json.Unmarshal(cd.Args, &a); err != nil {
			return fmt.Errorf("%w: malformed call args", chain.ErrInvalidInput)
		}
		return n.addHistory(relayCtx(ctx, a.User), a.HouseID, a.ContractID, a.HistoryTypeID, a.HouseImg, a.HouseBrand, a.History, a.Desc, a.BrandType, a.YearField)
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
