package platform

import (
	"github.com/shopspring/decimal"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/marketplace"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/token"
)

// HistoryTypeSeed is one default catalog row with its value coefficients
// in whole-token units.
type HistoryTypeSeed struct {
	HLabel          string
	ConnectContract bool
	Image           bool
	Brand           bool
	Description     bool
	BrandType       bool
	Year            bool
	OtherInfo       bool
	MValue          string
	EValue          string
	Active          bool
}

// DefaultHistoryTypes is the catalog installed at deployment. Housepainter
// ships inactive so the seven-entry label percent split lines up with the
// active rows.
func DefaultHistoryTypes() []HistoryTypeSeed {
	return []HistoryTypeSeed{
		{HLabel: "Construction", BrandType: true, Year: true, MValue: "0.5", EValue: "0.01", Active: true},
		{HLabel: "Floorplan", ConnectContract: true, Image: true, Description: true, Year: true, MValue: "0.5", EValue: "0.01", Active: true},
		{HLabel: "Pictures", ConnectContract: true, Image: true, Brand: true, Description: true, BrandType: true, MValue: "0.5", EValue: "0.01", Active: true},
		{HLabel: "Blueprint", ConnectContract: true, Image: true, Brand: true, BrandType: true, Year: true, MValue: "0.5", EValue: "0.01", Active: true},
		{HLabel: "Solarpanels", ConnectContract: true, Image: true, Brand: true, Description: true, BrandType: true, Year: true, MValue: "0.5", EValue: "0.01", Active: true},
		{HLabel: "Airconditioning", Image: true, Brand: true, Description: true, BrandType: true, Year: true, MValue: "0.5", EValue: "0.01", Active: true},
		{HLabel: "Sonneboiler", ConnectContract: true, Image: true, Brand: true, Description: true, Year: true, MValue: "0.5", EValue: "0.01", Active: true},
		{HLabel: "Housepainter", ConnectContract: true, Image: true, Description: true, BrandType: true, Year: true, MValue: "0.5", EValue: "0.01", Active: false},
	}
}

// DefaultLabelPercents is the percentage split across the active default
// history types.
func DefaultLabelPercents() []int64 {
	return []int64{20, 15, 15, 15, 15, 10, 10}
}

func seedHistoryTypes(ctx chain.Context, mkt *marketplace.Marketplace) error {
	for i, seed := range DefaultHistoryTypes() {
		err := mkt.AddOrEditHistoryType(ctx, i, marketplace.HistoryType{
			HLabel:          seed.HLabel,
			ConnectContract: seed.ConnectContract,
			Image:           seed.Image,
			Brand:           seed.Brand,
			Description:     seed.Description,
			BrandType:       seed.BrandType,
			Year:            seed.Year,
			OtherInfo:       seed.OtherInfo,
			MValue:          scale(decimal.RequireFromString(seed.MValue)),
			EValue:          scale(decimal.RequireFromString(seed.EValue)),
			Active:          seed.Active,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// scale converts a whole-token value to the token's smallest unit.
func scale(d decimal.Decimal) int64 {
	return d.Shift(token.Decimals).IntPart()
}
