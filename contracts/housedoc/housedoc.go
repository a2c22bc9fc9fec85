package housedoc

import (
	"fmt"
	"sync"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/token"
)

// Document status values.
const (
	StatusPending   = "pending"
	StatusSigned    = "signed"
	StatusCancelled = "cancelled"
)

// RefundPolicy decides where escrowed value goes when a document is
// cancelled before both parties approve.
type RefundPolicy int

const (
	// RefundCreator returns the escrow to the document creator.
	RefundCreator RefundPolicy = iota
	// Forfeit pays the escrow to the workflow owner instead.
	Forfeit
)

// CleanContract is a bilateral agreement between a creator and a signer.
type CleanContract struct {
	ContractID      int64         `json:"contract_id"`
	CompanyName     string        `json:"company_name"`
	ContractType    int           `json:"contract_type"`
	ContractSigner  chain.Address `json:"contract_signer"`
	ContractURI     string        `json:"contract_uri"`
	DateFrom        int64         `json:"date_from"`
	DateTo          int64         `json:"date_to"`
	AgreedPrice     int64         `json:"agreed_price"`
	Currency        string        `json:"currency"`
	Creator         chain.Address `json:"creator"`
	Owner           chain.Address `json:"owner"`
	CreatorApproval bool          `json:"creator_approval"`
	CreatorSignDate int64         `json:"creator_sign_date"`
	SignerApproval  bool          `json:"signer_approval"`
	SignerSignDate  int64         `json:"signer_sign_date"`
	Status          string        `json:"status"`
}

// Notify is a message about a document, kept per receiver.
type Notify struct {
	NSender       chain.Address `json:"n_sender"`
	NReceiver     chain.Address `json:"n_receiver"`
	CcID          int64         `json:"cc_id"`
	NotifyContent string        `json:"notify_content"`
	Status        bool          `json:"status"` // delivered flag
}

// HouseDoc manages clean contracts and their escrowed value.
type HouseDoc struct {
	mu sync.Mutex

	owner           chain.Address
	address         chain.Address
	hbt             *token.Token
	operatorAddress chain.Address
	refundPolicy    RefundPolicy

	nextID    int64
	contracts map[int64]*CleanContract
	notifies  map[chain.Address][]Notify
}

func New(owner chain.Address, hbt *token.Token, policy RefundPolicy) *HouseDoc {
	return &HouseDoc{
		owner:        owner,
		address:      chain.NewAddress(),
		hbt:          hbt,
		refundPolicy: policy,
		nextID:       1,
		contracts:    make(map[int64]*CleanContract),
		notifies:     make(map[chain.Address][]Notify),
	}
}

func (h *HouseDoc) Owner() chain.Address   { return h.owner }
func (h *HouseDoc) Address() chain.Address { return h.address }

// SetOperatorAddress wires the relay allowed to forward calls here.
func (h *HouseDoc) SetOperatorAddress(ctx chain.Context, addr chain.Address) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ctx.Caller != h.owner {
		return fmt.Errorf("%w: only owner can set operator address", chain.ErrUnauthorized)
	}
	h.operatorAddress = addr
	return nil
}

func (h *HouseDoc) OperatorAddress() chain.Address {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.operatorAddress
}

// CCCreation creates a new clean contract and escrows the agreed price from
// the caller. IDs are sequential starting at 1.
func (h *HouseDoc) CCCreation(ctx chain.Context, companyName string, contractType int, signer chain.Address, contractURI string, dateFrom, dateTo, agreedPrice int64, currency string) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ccCreation(ctx, companyName, contractType, signer, contractURI, dateFrom, dateTo, agreedPrice, currency)
}

func (h *HouseDoc) ccCreation(ctx chain.Context, companyName string, contractType int, signer chain.Address, contractURI string, dateFrom, dateTo, agreedPrice int64, currency string) (int64, error) {
	if dateFrom >= dateTo {
		return 0, fmt.Errorf("%w: start date must be before end date", chain.ErrInvalidWindow)
	}
	if companyName == "" {
		return 0, fmt.Errorf("%w: company name must not be empty", chain.ErrInvalidInput)
	}
	if agreedPrice < 0 {
		return 0, fmt.Errorf("%w: agreed price must not be negative", chain.ErrInvalidInput)
	}
	if agreedPrice > 0 {
		pull := chain.Context{Caller: h.address, Timestamp: ctx.Timestamp}
		if err := h.hbt.TransferFrom(pull, ctx.Caller, h.address, agreedPrice); err != nil {
			return 0, err
		}
	}

	id := h.nextID
	h.nextID++
	h.contracts[id] = &CleanContract{
		ContractID:     id,
		CompanyName:    companyName,
		ContractType:   contractType,
		ContractSigner: signer,
		ContractURI:    contractURI,
		DateFrom:       dateFrom,
		DateTo:         dateTo,
		AgreedPrice:    agreedPrice,
		Currency:       currency,
		Creator:        ctx.Caller,
		Owner:          ctx.Caller,
		Status:         StatusPending,
	}
	return id, nil
}

// AddContractSigner assigns or replaces the signer of a document.
func (h *HouseDoc) AddContractSigner(ctx chain.Context, ccID int64, signer chain.Address) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.addContractSigner(ctx, ccID, signer)
}

func (h *HouseDoc) addContractSigner(ctx chain.Context, ccID int64, signer chain.Address) error {
	cc, err := h.get(ccID)
	if err != nil {
		return err
	}
	if ctx.Caller != cc.Owner {
		return fmt.Errorf("%w: only contract owner can add contract signer", chain.ErrUnauthorized)
	}
	cc.ContractSigner = signer
	return nil
}

// SendNotify appends a notification about a document to the receiver's
// list. The document must already have a signer assigned.
func (h *HouseDoc) SendNotify(ctx chain.Context, receiver chain.Address, content string, ccID int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sendNotify(ctx, receiver, content, ccID)
}

func (h *HouseDoc) sendNotify(ctx chain.Context, receiver chain.Address, content string, ccID int64) error {
	cc, err := h.get(ccID)
	if err != nil {
		return err
	}
	if cc.ContractSigner == "" || cc.ContractSigner == chain.ZeroAddress {
		return fmt.Errorf("%w: please add contract signer", chain.ErrSignerNotSet)
	}
	h.notifies[receiver] = append(h.notifies[receiver], Notify{
		NSender:       ctx.Caller,
		NReceiver:     receiver,
		CcID:          ccID,
		NotifyContent: content,
		Status:        false,
	})
	return nil
}

// ApproveAsCreator records the creator's approval. When both parties have
// approved, the document is signed and the escrow released to its owner.
func (h *HouseDoc) ApproveAsCreator(ctx chain.Context, ccID int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.approveAsCreator(ctx, ccID)
}

func (h *HouseDoc) approveAsCreator(ctx chain.Context, ccID int64) error {
	cc, err := h.get(ccID)
	if err != nil {
		return err
	}
	if ctx.Caller != cc.Creator {
		return fmt.Errorf("%w: only creator can approve as creator", chain.ErrUnauthorized)
	}
	if cc.Status != StatusPending {
		return fmt.Errorf("%w: contract is %s", chain.ErrInvalidInput, cc.Status)
	}
	if cc.CreatorApproval {
		return fmt.Errorf("%w: creator already approved", chain.ErrInvalidInput)
	}
	cc.CreatorApproval = true
	cc.CreatorSignDate = ctx.Timestamp
	return h.settleIfSigned(ctx, cc)
}

// ApproveAsSigner records the signer's approval.
func (h *HouseDoc) ApproveAsSigner(ctx chain.Context, ccID int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.approveAsSigner(ctx, ccID)
}

func (h *HouseDoc) approveAsSigner(ctx chain.Context, ccID int64) error {
	cc, err := h.get(ccID)
	if err != nil {
		return err
	}
	if cc.ContractSigner == "" || cc.ContractSigner == chain.ZeroAddress {
		return fmt.Errorf("%w: please add contract signer", chain.ErrSignerNotSet)
	}
	if ctx.Caller != cc.ContractSigner {
		return fmt.Errorf("%w: only contract signer can approve as signer", chain.ErrUnauthorized)
	}
	if cc.Status != StatusPending {
		return fmt.Errorf("%w: contract is %s", chain.ErrInvalidInput, cc.Status)
	}
	if cc.SignerApproval {
		return fmt.Errorf("%w: signer already approved", chain.ErrInvalidInput)
	}
	cc.SignerApproval = true
	cc.SignerSignDate = ctx.Timestamp
	return h.settleIfSigned(ctx, cc)
}

// settleIfSigned releases the escrow to the document owner once both
// approvals are recorded. Escrow is never released earlier.
func (h *HouseDoc) settleIfSigned(ctx chain.Context, cc *CleanContract) error {
	if !cc.CreatorApproval || !cc.SignerApproval {
		return nil
	}
	if cc.AgreedPrice > 0 {
		send := chain.Context{Caller: h.address, Timestamp: ctx.Timestamp}
		if err := h.hbt.Transfer(send, cc.Owner, cc.AgreedPrice); err != nil {
			return err
		}
	}
	cc.Status = StatusSigned
	return nil
}

// Cancel terminates a pending document. The escrow is refunded to the
// creator or forfeited to the workflow owner depending on the policy this
// HouseDoc was constructed with.
func (h *HouseDoc) Cancel(ctx chain.Context, ccID int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancel(ctx, ccID)
}

func (h *HouseDoc) cancel(ctx chain.Context, ccID int64) error {
	cc, err := h.get(ccID)
	if err != nil {
		return err
	}
	if ctx.Caller != cc.Creator && ctx.Caller != cc.Owner {
		return fmt.Errorf("%w: only creator or owner can cancel", chain.ErrUnauthorized)
	}
	if cc.Status != StatusPending {
		return fmt.Errorf("%w: contract is %s", chain.ErrInvalidInput, cc.Status)
	}
	if cc.AgreedPrice > 0 {
		recipient := cc.Creator
		if h.refundPolicy == Forfeit {
			recipient = h.owner
		}
		send := chain.Context{Caller: h.address, Timestamp: ctx.Timestamp}
		if err := h.hbt.Transfer(send, recipient, cc.AgreedPrice); err != nil {
			return err
		}
	}
	cc.Status = StatusCancelled
	return nil
}

// GetCleanContract returns a copy of the document.
func (h *HouseDoc) GetCleanContract(ccID int64) (CleanContract, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cc, err := h.get(ccID)
	if err != nil {
		return CleanContract{}, err
	}
	return *cc, nil
}

// AllNotifies returns the notifications delivered to a receiver.
func (h *HouseDoc) AllNotifies(receiver chain.Address) []Notify {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Notify, len(h.notifies[receiver]))
	copy(out, h.notifies[receiver])
	return out
}

func (h *HouseDoc) get(ccID int64) (*CleanContract, error) {
	cc, ok := h.contracts[ccID]
	if !ok {
		return nil, fmt.Errorf("%w: contract %d does not exist", chain.ErrInvalidInput, ccID)
	}
	return cc, nil
}
