package housenft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/marketplace"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/token"
)

const ipfsURI = "https://ipfs.io/ipfs/QmYy7VqENnEJNfbrNYxxeRvZLzHWZ4eC4sKsHZwyEdyTHc"

func newRegistry(t *testing.T) (*HouseNFT, *marketplace.Marketplace, chain.Address, chain.Address) {
	t.Helper()
	owner := chain.NewAddress()
	minter := chain.NewAddress()
	hbt := token.New("HouseBusinessToken", "HBT", owner, nil)
	cat := marketplace.New(owner)
	nft := New(owner, hbt)
	require.NoError(t, nft.SetMarketplace(chain.Context{Caller: owner}, cat))

	ctx := chain.Context{Caller: owner}
	require.NoError(t, cat.AddOrEditHistoryType(ctx, 0, marketplace.HistoryType{
		HLabel: "Construction", BrandType: true, Year: true,
		MValue: 50_000_000, EValue: 1_000_000, Active: true,
	}))
	require.NoError(t, cat.AddOrEditHistoryType(ctx, 1, marketplace.HistoryType{
		HLabel: "Floorplan", ConnectContract: true, Image: true, Description: true, Year: true,
		MValue: 50_000_000, EValue: 1_000_000, Active: true,
	}))
	require.NoError(t, cat.AddOrEditHistoryType(ctx, 2, marketplace.HistoryType{
		HLabel: "Pictures", ConnectContract: true, Image: true, Brand: true, Description: true, BrandType: true,
		MValue: 50_000_000, EValue: 1_000_000, Active: false,
	}))
	return nft, cat, owner, minter
}

func TestMintHouse(t *testing.T) {
	nft, _, _, minter := newRegistry(t)

	id, err := nft.MintHouse(chain.Context{Caller: minter}, "My House", ipfsURI, "Residential", "This is my first house!")
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	house, err := nft.GetHouse(1)
	require.NoError(t, err)
	assert.Equal(t, "My House", house.TokenName)
	assert.Equal(t, ipfsURI, house.TokenURI)
	assert.Equal(t, int64(0), house.Price)
	assert.Equal(t, minter, house.Contributor.CurrentOwner)

	id, err = nft.MintHouse(chain.Context{Caller: minter}, "Second House", ipfsURI, "Residential", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	_, err = nft.MintHouse(chain.Context{Caller: minter}, "", ipfsURI, "Residential", "")
	assert.ErrorIs(t, err, chain.ErrInvalidInput)
}

func TestAddHistory(t *testing.T) {
	nft, _, _, minter := newRegistry(t)
	ctx := chain.Context{Caller: minter}
	_, err := nft.MintHouse(ctx, "My House", ipfsURI, "Residential", "This is my first house!")
	require.NoError(t, err)

	require.NoError(t, nft.AddHistory(ctx, 1, 0, 1, ipfsURI, "My Brand",
		"This is the history of my house", "This is the description of my brand", "My Brand Type", 2022))

	history, err := nft.GetHistory(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), history.HouseID)
	assert.Equal(t, 1, history.HistoryTypeID)
	assert.Equal(t, ipfsURI, history.HouseImg)
	assert.Equal(t, "This is the description of my brand", history.Desc)
	assert.Equal(t, "This is the history of my house", history.History)

	// append-only: a second record gets the next sub-index
	require.NoError(t, nft.AddHistory(ctx, 1, 0, 0, "", "", "", "", "Concrete", 1998))
	assert.Len(t, nft.Histories(1), 2)
}

func TestAddHistoryValidation(t *testing.T) {
	nft, _, _, minter := newRegistry(t)
	ctx := chain.Context{Caller: minter}
	_, err := nft.MintHouse(ctx, "My House", ipfsURI, "Residential", "")
	require.NoError(t, err)

	// unknown house
	err = nft.AddHistory(ctx, 9, 0, 0, "", "", "", "", "Concrete", 1998)
	assert.ErrorIs(t, err, chain.ErrInvalidInput)

	// only the house owner may append
	err = nft.AddHistory(chain.Context{Caller: chain.NewAddress()}, 1, 0, 0, "", "", "", "", "Concrete", 1998)
	assert.ErrorIs(t, err, chain.ErrUnauthorized)

	// unknown history type
	err = nft.AddHistory(ctx, 1, 0, 9, "", "", "", "", "", 0)
	assert.ErrorIs(t, err, chain.ErrInvalidInput)

	// inactive history type
	err = nft.AddHistory(ctx, 1, 0, 2, ipfsURI, "Brand", "", "desc", "bt", 0)
	assert.ErrorIs(t, err, chain.ErrInvalidInput)

	// Floorplan requires an image
	err = nft.AddHistory(ctx, 1, 0, 1, "", "", "h", "desc", "", 2022)
	assert.ErrorIs(t, err, chain.ErrInvalidInput)

	// Construction requires a year
	err = nft.AddHistory(ctx, 1, 0, 0, "", "", "", "", "Concrete", 0)
	assert.ErrorIs(t, err, chain.ErrInvalidInput)

	assert.Empty(t, nft.Histories(1))
}

func TestHouseValue(t *testing.T) {
	nft, cat, owner, minter := newRegistry(t)
	ctx := chain.Context{Caller: minter}
	_, err := nft.MintHouse(ctx, "My House", ipfsURI, "Residential", "")
	require.NoError(t, err)

	require.NoError(t, nft.AddHistory(ctx, 1, 0, 1, ipfsURI, "", "h", "desc", "", 2022))

	// no percent vector installed: unweighted mValue + eValue
	v, err := nft.HouseValue(1)
	require.NoError(t, err)
	assert.Equal(t, int64(51_000_000), v)

	// two active rows: Construction 60%, Floorplan 40%
	require.NoError(t, cat.SetLabelPercents(chain.Context{Caller: owner}, []int64{60, 40}))
	v, err = nft.HouseValue(1)
	require.NoError(t, err)
	assert.Equal(t, int64(50_000_000*40/100+1_000_000), v)
}
