package housenft

import (
	"fmt"
	"sync"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/marketplace"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/token"
)

// Contributor tracks the ownership lineage of a house token.
type Contributor struct {
	Creator       chain.Address `json:"creator"`
	CurrentOwner  chain.Address `json:"current_owner"`
	PreviousOwner chain.Address `json:"previous_owner"`
}

// House is one minted house token.
type House struct {
	TokenID     int64       `json:"token_id"`
	TokenName   string      `json:"token_name"`
	TokenURI    string      `json:"token_uri"`
	TokenType   string      `json:"token_type"`
	Description string      `json:"description"`
	Price       int64       `json:"price"`
	Contributor Contributor `json:"contributor"`
}

// History is an append-only provenance record attached to a house. Its
// shape is dictated by the valuation catalog row it references.
type History struct {
	HouseID       int64  `json:"house_id"`
	ContractID    int64  `json:"contract_id"`
	HistoryTypeID int    `json:"history_type_id"`
	HouseImg      string `json:"house_img"`
	HouseBrand    string `json:"house_brand"`
	History       string `json:"history"`
	Desc          string `json:"desc"`
	BrandType     string `json:"brand_type"`
	YearField     int64  `json:"year_field"`
}

// HouseNFT is the house registry. It reads the marketplace catalog when
// validating and valuing histories but never mutates it.
type HouseNFT struct {
	mu sync.Mutex

	owner   chain.Address
	address chain.Address
	hbt     *token.Token
	catalog *marketplace.Marketplace

	houseDocAddress chain.Address
	stakingAddress  chain.Address
	operatorAddress chain.Address
	members         map[chain.Address]bool

	nextID    int64
	houses    map[int64]*House
	histories map[int64][]History
}

func New(owner chain.Address, hbt *token.Token) *HouseNFT {
	return &HouseNFT{
		owner:     owner,
		address:   chain.NewAddress(),
		hbt:       hbt,
		members:   make(map[chain.Address]bool),
		nextID:    1,
		houses:    make(map[int64]*House),
		histories: make(map[int64][]History),
	}
}

func (n *HouseNFT) Owner() chain.Address   { return n.owner }
func (n *HouseNFT) Address() chain.Address { return n.address }

// One-time wiring, owner only.

func (n *HouseNFT) SetHouseDocContractAddress(ctx chain.Context, addr chain.Address) error {
	return n.setAddr(ctx, &n.houseDocAddress, addr)
}

func (n *HouseNFT) SetStakingContractAddress(ctx chain.Context, addr chain.Address) error {
	return n.setAddr(ctx, &n.stakingAddress, addr)
}

func (n *HouseNFT) SetOperatorAddress(ctx chain.Context, addr chain.Address) error {
	return n.setAddr(ctx, &n.operatorAddress, addr)
}

// SetMarketplace binds the valuation catalog this registry reads.
func (n *HouseNFT) SetMarketplace(ctx chain.Context, m *marketplace.Marketplace) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ctx.Caller != n.owner {
		return fmt.Errorf("%w: only owner can set marketplace", chain.ErrUnauthorized)
	}
	n.catalog = m
	return nil
}

func (n *HouseNFT) AddMember(ctx chain.Context, addr chain.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ctx.Caller != n.owner {
		return fmt.Errorf("%w: only owner can add members", chain.ErrUnauthorized)
	}
	n.members[addr] = true
	return nil
}

func (n *HouseNFT) setAddr(ctx chain.Context, slot *chain.Address, addr chain.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ctx.Caller != n.owner {
		return fmt.Errorf("%w: only owner can set contract addresses", chain.ErrUnauthorized)
	}
	*slot = addr
	return nil
}

// MintHouse registers a new house token owned by the caller. IDs are
// sequential starting at 1.
func (n *HouseNFT) MintHouse(ctx chain.Context, name, uri, houseType, description string) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mintHouse(ctx, name, uri, houseType, description)
}

func (n *HouseNFT) mintHouse(ctx chain.Context, name, uri, houseType, description string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: token name must not be empty", chain.ErrInvalidInput)
	}
	if uri == "" {
		return 0, fmt.Errorf("%w: token uri must not be empty", chain.ErrInvalidInput)
	}

	id := n.nextID
	n.nextID++
	n.houses[id] = &House{
		TokenID:     id,
		TokenName:   name,
		TokenURI:    uri,
		TokenType:   houseType,
		Description: description,
		Contributor: Contributor{
			Creator:      ctx.Caller,
			CurrentOwner: ctx.Caller,
		},
	}
	return id, nil
}

// AddHistory appends a provenance record to a house. The referenced
// history type must exist and be active, and every field the type flags as
// required must be present.
func (n *HouseNFT) AddHistory(ctx chain.Context, houseID, contractID int64, historyTypeID int, img, brand, history, desc, brandType string, year int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.addHistory(ctx, houseID, contractID, historyTypeID, img, brand, history, desc, brandType, year)
}

func (n *HouseNFT) addHistory(ctx chain.Context, houseID, contractID int64, historyTypeID int, img, brand, history, desc, brandType string, year int64) error {
	house, ok := n.houses[houseID]
	if !ok {
		return fmt.Errorf("%w: house %d does not exist", chain.ErrInvalidInput, houseID)
	}
	if ctx.Caller != house.Contributor.CurrentOwner && ctx.Caller != n.operatorAddress && !n.members[ctx.Caller] {
		return fmt.Errorf("%w: only house owner can add history", chain.ErrUnauthorized)
	}
	if n.catalog == nil {
		return fmt.Errorf("%w: marketplace not set", chain.ErrInvalidInput)
	}
	ht, err := n.catalog.GetHistoryType(historyTypeID)
	if err != nil {
		return err
	}
	if !ht.Active {
		return fmt.Errorf("%w: history type %d is not active", chain.ErrInvalidInput, historyTypeID)
	}
	if ht.Image && img == "" {
		return fmt.Errorf("%w: history type %s requires an image", chain.ErrInvalidInput, ht.HLabel)
	}
	if ht.Brand && brand == "" {
		return fmt.Errorf("%w: history type %s requires a brand", chain.ErrInvalidInput, ht.HLabel)
	}
	if ht.Description && desc == "" {
		return fmt.Errorf("%w: history type %s requires a description", chain.ErrInvalidInput, ht.HLabel)
	}
	if ht.BrandType && brandType == "" {
		return fmt.Errorf("%w: history type %s requires a brand type", chain.ErrInvalidInput, ht.HLabel)
	}
	if ht.Year && year == 0 {
		return fmt.Errorf("%w: history type %s requires a year", chain.ErrInvalidInput, ht.HLabel)
	}

	n.histories[houseID] = append(n.histories[houseID], History{
		HouseID:       houseID,
		ContractID:    contractID,
		HistoryTypeID: historyTypeID,
		HouseImg:      img,
		HouseBrand:    brand,
		History:       history,
		Desc:          desc,
		BrandType:     brandType,
		YearField:     year,
	})
	return nil
}

// GetHouse returns a copy of the house token.
func (n *HouseNFT) GetHouse(houseID int64) (House, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	house, ok := n.houses[houseID]
	if !ok {
		return House{}, fmt.Errorf("%w: house %d does not exist", chain.ErrInvalidInput, houseID)
	}
	return *house, nil
}

// GetHistory returns the history record at the given 1-based position.
func (n *HouseNFT) GetHistory(houseID int64, index int) (History, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	hs := n.histories[houseID]
	if index < 1 || index > len(hs) {
		return History{}, fmt.Errorf("%w: house %d has no history %d", chain.ErrInvalidInput, houseID, index)
	}
	return hs[index-1], nil
}

// Histories returns all history records of a house in append order.
func (n *HouseNFT) Histories(houseID int64) []History {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]History(nil), n.histories[houseID]...)
}

// HouseValue prices a house from its recorded histories. Each history
// contributes its type's mValue weighted by the type's label percent, plus
// the flat eValue. When no percent vector is installed the mValue counts
// unweighted.
func (n *HouseNFT) HouseValue(houseID int64) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.houses[houseID]; !ok {
		return 0, fmt.Errorf("%w: house %d does not exist", chain.ErrInvalidInput, houseID)
	}
	if n.catalog == nil {
		return 0, fmt.Errorf("%w: marketplace not set", chain.ErrInvalidInput)
	}

	types := n.catalog.HistoryTypes()
	percents := n.catalog.LabelPercents()

	// map catalog index -> percent of its active position
	percentByType := make(map[int]int64)
	activeIdx := 0
	for i, ht := range types {
		if !ht.Active {
			continue
		}
		if activeIdx < len(percents) {
			percentByType[i] = percents[activeIdx]
		}
		activeIdx++
	}

	var value int64
	for _, h := range n.histories[houseID] {
		if h.HistoryTypeID < 0 || h.HistoryTypeID >= len(types) {
			continue
		}
		ht := types[h.HistoryTypeID]
		if p, ok := percentByType[h.HistoryTypeID]; ok && len(percents) > 0 {
			value += ht.MValue * p / 100
		} else {
			value += ht.MValue
		}
		value += ht.EValue
	}
	return value, nil
}
