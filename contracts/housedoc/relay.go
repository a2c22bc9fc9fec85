package housedoc

import (
	"encoding/json"
	"fmt"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/operator"
)

// Relayed call argument shapes. User names the end user the operator acts
// for; when empty the call runs as the operator itself.
type ccCreationArgs struct {
	CompanyName    string        `json:"company_name"`
	ContractType   int           `json:"contract_type"`
	ContractSigner chain.Address `json:"contract_signer"`
	ContractURI    string        `json:"contract_uri"`
	DateFrom       int64         `json:"date_from"`
	DateTo         int64         `json:"date_to"`
	AgreedPrice    int64         `json:"agreed_price"`
	Currency       string        `json:"currency"`
	User           chain.Address `json:"user"`
}

type signerArgs struct {
	CcID           int64         `json:"cc_id"`
	ContractSigner chain.Address `json:"contract_signer"`
	User           chain.Address `json:"user"`
}

type notifyArgs struct {
	NReceiver     chain.Address `json:"n_receiver"`
	NotifyContent string        `json:"notify_content"`
	CcID          int64         `json:"cc_id"`
	User          chain.Address `json:"user"`
}

type ccIDArgs struct {
	CcID int64         `json:"cc_id"`
	User chain.Address `json:"user"`
}

// HandleCall dispatches a relayed payload. Only the configured operator may
// forward calls here.
func (h *HouseDoc) HandleCall(ctx chain.Context, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.operatorAddress == "" || ctx.Caller != h.operatorAddress {
		return fmt.Errorf("%w: only operator can forward calls", chain.ErrUnauthorized)
	}

	cd, err := operator.DecodeCall(payload)
	if err != nil {
		return err
	}

	switch cd.Method {
	case "ccCreation":
		var a ccCreationArgs
		if err := decodeArgs(cd.Args, &a); err != nil {
			return err
		}
		_, err := h.ccCreation(relayCtx(ctx, a.User), a.CompanyName, a.ContractType, a.ContractSigner, a.ContractURI, a.DateFrom, a.DateTo, a.AgreedPrice, a.Currency)
		return err
	case "addContractSigner":
		var a signerArgs
		if err := decodeArgs(cd.Args, &a); err != nil {
			return err
		}
		return h.addContractSigner(relayCtx(ctx, a.User), a.CcID, a.ContractSigner)
	case "sendNotify":
		var a notifyArgs
		if err := decodeArgs(cd.Args, &a); err != nil {
			return err
		}
		return h.sendNotify(relayCtx(ctx, a.User), a.NReceiver, a.NotifyContent, a.CcID)
	case "approveAsCreator":
		var a ccIDArgs
		if err := decodeArgs(cd.Args, &a); err != nil {
			return err
		}
		return h.approveAsCreator(relayCtx(ctx, a.User), a.CcID)
	case "approveAsSigner":
		var a ccIDArgs
		if err := decodeArgs(cd.Args, &a); err != nil {
			return err
		}
		return h.approveAsSigner(relayCtx(ctx, a.User), a.CcID)
	case "cancel":
		var a ccIDArgs
		if err := decodeArgs(cd.Args, &a); err != nil {
			return err
		}
		return h.cancel(relayCtx(ctx, a.User), a.CcID)
	default:
		return fmt.Errorf("%w: unknown method %q", chain.ErrInvalidInput, cd.Method)
	}
}

func decodeArgs(raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: malformed call args", chain.ErrInvalidInput)
	}
	return nil
}

func relayCtx(ctx chain.Context, user chain.Address) chain.Context {
	if user != "" {
		return chain.Context{Caller: user, Timestamp: ctx.Timestamp}
	}
	return ctx
}
