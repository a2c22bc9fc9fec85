package marketplace

import (
	"fmt"
	"sync"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
)

// HistoryType describes one row of the valuation catalog: which fields a
// history entry of this type must carry, and its two value coefficients in
// the token's smallest unit.
type HistoryType struct {
	HLabel          string `json:"h_label"`
	ConnectContract bool   `json:"connect_contract"`
	Image           bool   `json:"image"`
	Brand           bool   `json:"brand"`
	Description     bool   `json:"description"`
	BrandType       bool   `json:"brand_type"`
	Year            bool   `json:"year"`
	OtherInfo       bool   `json:"other_info"`
	MValue          int64  `json:"m_value"`
	EValue          int64  `json:"e_value"`
	Active          bool   `json:"active"`
}

// Marketplace owns the valuation catalog and the label percent vector.
type Marketplace struct {
	mu sync.Mutex

	owner   chain.Address
	address chain.Address

	members       map[chain.Address]bool
	historyTypes  []HistoryType
	labelPercents []int64
}

func New(owner chain.Address) *Marketplace {
	return &Marketplace{
		owner:   owner,
		address: chain.NewAddress(),
		members: make(map[chain.Address]bool),
	}
}

func (m *Marketplace) Owner() chain.Address   { return m.owner }
func (m *Marketplace) Address() chain.Address { return m.address }

// AddMember grants catalog management rights.
func (m *Marketplace) AddMember(ctx chain.Context, addr chain.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ctx.Caller != m.owner {
		return fmt.Errorf("%w: only owner can add members", chain.ErrUnauthorized)
	}
	m.members[addr] = true
	return nil
}

func (m *Marketplace) RemoveMember(ctx chain.Context, addr chain.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ctx.Caller != m.owner {
		return fmt.Errorf("%w: only owner can remove members", chain.ErrUnauthorized)
	}
	delete(m.members, addr)
	return nil
}

// AddOrEditHistoryType upserts a catalog row. The index is stable once
// assigned: rows are appended at index == len and edited in place below it.
func (m *Marketplace) AddOrEditHistoryType(ctx chain.Context, index int, ht HistoryType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.canManage(ctx.Caller) {
		return fmt.Errorf("%w: only owner or member can edit history types", chain.ErrUnauthorized)
	}
	if ht.HLabel == "" {
		return fmt.Errorf("%w: history type label must not be empty", chain.ErrInvalidInput)
	}
	switch {
	case index >= 0 && index < len(m.historyTypes):
		m.historyTypes[index] = ht
	case index == len(m.historyTypes):
		m.historyTypes = append(m.historyTypes, ht)
	default:
		return fmt.Errorf("%w: invalid history type index %d", chain.ErrInvalidInput, index)
	}
	return nil
}

// SetLabelPercents installs the percentage split across active catalog
// rows. The vector must have one entry per active row and sum to 100.
func (m *Marketplace) SetLabelPercents(ctx chain.Context, percents []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.canManage(ctx.Caller) {
		return fmt.Errorf("%w: only owner or member can set label percents", chain.ErrUnauthorized)
	}
	active := 0
	for _, ht := range m.historyTypes {
		if ht.Active {
			active++
		}
	}
	if len(percents) != active {
		return fmt.Errorf("%w: expected %d percents for active history types, got %d", chain.ErrInvalidDistribution, active, len(percents))
	}
	var sum int64
	for _, p := range percents {
		if p < 0 {
			return fmt.Errorf("%w: percents must not be negative", chain.ErrInvalidDistribution)
		}
		sum += p
	}
	if sum != 100 {
		return fmt.Errorf("%w: percents must sum to 100, got %d", chain.ErrInvalidDistribution, sum)
	}
	m.labelPercents = append([]int64(nil), percents...)
	return nil
}

// HistoryTypes returns a copy of the catalog.
func (m *Marketplace) HistoryTypes() []HistoryType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]HistoryType(nil), m.historyTypes...)
}

// GetHistoryType returns the catalog row at the given stable index.
func (m *Marketplace) GetHistoryType(index int) (HistoryType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.historyTypes) {
		return HistoryType{}, fmt.Errorf("%w: history type %d does not exist", chain.ErrInvalidInput, index)
	}
	return m.historyTypes[index], nil
}

// ActiveHistoryTypes returns the active catalog rows in index order.
func (m *Marketplace) ActiveHistoryTypes() []HistoryType {
	m.mu.Lock()
	defer m.mu.Unlock()

	var active []HistoryType
	for _, ht := range m.historyTypes {
		if ht.Active {
			active = append(active, ht)
		}
	}
	return active
}

func (m *Marketplace) LabelPercents() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.labelPercents...)
}

func (m *Marketplace) canManage(caller chain.Address) bool {
	return caller == m.owner || m.members[caller]
}
