package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
)

func seeded(t *testing.T, activeCount int) (*Marketplace, chain.Address) {
	t.Helper()
	owner := chain.NewAddress()
	m := New(owner)
	ctx := chain.Context{Caller: owner}
	labels := []string{"Construction", "Floorplan", "Pictures", "Blueprint", "Solarpanels", "Airconditioning", "Sonneboiler"}
	for i, label := range labels {
		require.NoError(t, m.AddOrEditHistoryType(ctx, i, HistoryType{
			HLabel: label,
			MValue: 50_000_000,
			EValue: 1_000_000,
			Active: i < activeCount,
		}))
	}
	return m, owner
}

func TestAddOrEditHistoryType(t *testing.T) {
	m, owner := seeded(t, 7)
	ctx := chain.Context{Caller: owner}

	// edit in place keeps the index stable
	require.NoError(t, m.AddOrEditHistoryType(ctx, 2, HistoryType{HLabel: "Photos", Active: true}))
	ht, err := m.GetHistoryType(2)
	require.NoError(t, err)
	assert.Equal(t, "Photos", ht.HLabel)
	assert.Len(t, m.HistoryTypes(), 7)

	// appending past the end is rejected
	err = m.AddOrEditHistoryType(ctx, 9, HistoryType{HLabel: "Garden", Active: true})
	assert.ErrorIs(t, err, chain.ErrInvalidInput)

	err = m.AddOrEditHistoryType(ctx, 7, HistoryType{Active: true})
	assert.ErrorIs(t, err, chain.ErrInvalidInput)
}

func TestHistoryTypePermissions(t *testing.T) {
	owner := chain.NewAddress()
	member := chain.NewAddress()
	stranger := chain.NewAddress()
	m := New(owner)

	err := m.AddOrEditHistoryType(chain.Context{Caller: stranger}, 0, HistoryType{HLabel: "Construction"})
	assert.ErrorIs(t, err, chain.ErrUnauthorized)

	require.NoError(t, m.AddMember(chain.Context{Caller: owner}, member))
	require.NoError(t, m.AddOrEditHistoryType(chain.Context{Caller: member}, 0, HistoryType{HLabel: "Construction", Active: true}))

	require.NoError(t, m.RemoveMember(chain.Context{Caller: owner}, member))
	err = m.AddOrEditHistoryType(chain.Context{Caller: member}, 0, HistoryType{HLabel: "Construction"})
	assert.ErrorIs(t, err, chain.ErrUnauthorized)

	err = m.AddMember(chain.Context{Caller: member}, stranger)
	assert.ErrorIs(t, err, chain.ErrUnauthorized)
}

func TestSetLabelPercents(t *testing.T) {
	m, owner := seeded(t, 7)
	ctx := chain.Context{Caller: owner}

	require.NoError(t, m.SetLabelPercents(ctx, []int64{20, 15, 15, 15, 15, 10, 10}))
	assert.Equal(t, []int64{20, 15, 15, 15, 15, 10, 10}, m.LabelPercents())

	// sum 99
	err := m.SetLabelPercents(ctx, []int64{20, 15, 15, 15, 15, 10, 9})
	assert.ErrorIs(t, err, chain.ErrInvalidDistribution)
	// previous vector untouched
	assert.Equal(t, []int64{20, 15, 15, 15, 15, 10, 10}, m.LabelPercents())

	// length mismatch against active rows
	err = m.SetLabelPercents(ctx, []int64{50, 50})
	assert.ErrorIs(t, err, chain.ErrInvalidDistribution)
}

func TestActiveHistoryTypes(t *testing.T) {
	m, _ := seeded(t, 5)

	active := m.ActiveHistoryTypes()
	require.Len(t, active, 5)
	for _, ht := range active {
		assert.True(t, ht.Active)
	}
}

func TestSetLabelPercentsCountsOnlyActiveRows(t *testing.T) {
	m, owner := seeded(t, 5)
	ctx := chain.Context{Caller: owner}

	err := m.SetLabelPercents(ctx, []int64{20, 15, 15, 15, 15, 10, 10})
	assert.ErrorIs(t, err, chain.ErrInvalidDistribution)

	require.NoError(t, m.SetLabelPercents(ctx, []int64{20, 20, 20, 20, 20}))
}
