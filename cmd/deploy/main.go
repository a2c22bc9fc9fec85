package main

import (
	"log"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/addressbook"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/common"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/explorer"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/platform"
)

func main() {
	cfg := common.LoadConfig()

	p, err := platform.New(cfg)
	if err != nil {
		log.Fatalf("Failed to deploy platform: %v", err)
	}

	deployed := []struct {
		name string
		addr chain.Address
	}{
		{"ERC-20", p.HBT.Address()},
		{"HouseNFT", p.NFT.Address()},
		{"HouseDoc", p.HouseDoc.Address()},
		{"StakingContract", p.Staking.Address()},
		{"OperatorContract", p.Operator.Address()},
		{"Marketplace", p.Marketplace.Address()},
	}

	book := addressbook.New(cfg.AddressFile)
	if err := book.Reset(cfg.Network); err != nil {
		log.Fatalf("Failed to reset address file: %v", err)
	}
	for _, d := range deployed {
		if err := book.WriteAddr(cfg.Network, d.name, d.addr); err != nil {
			log.Fatalf("Failed to record %s address: %v", d.name, err)
		}
		log.Printf("%s deployed at %s", d.name, d.addr)
	}

	if cfg.ExplorerURL != "" {
		client := explorer.NewClient(cfg.ExplorerURL)
		for _, d := range deployed {
			if err := client.Verify(d.addr, nil); err != nil {
				log.Printf("Warning: failed to verify %s: %v", d.name, err)
				continue
			}
			log.Printf("%s verified", d.name)
		}
	}

	log.Printf("Deployment complete on %s network", cfg.Network)
}
