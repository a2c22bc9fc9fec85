package addressbook

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
)

// Book writes the human-readable address ledger produced by a deployment
// run. The file is recreated once per run and then only appended to.
type Book struct {
	path string
}

func New(path string) *Book {
	return &Book{path: path}
}

// Reset starts a fresh ledger with a header line, replacing any previous
// deployment's file.
func (b *Book) Reset(network string) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("failed to create address file directory: %v", err)
	}
	if _, err := os.Stat(b.path); err == nil {
		if err := os.Remove(b.path); err != nil {
			return fmt.Errorf("failed to remove previous address file: %v", err)
		}
	}
	header := fmt.Sprintf("This file contains the latest deployment addresses in the %s network\n", network)
	return os.WriteFile(b.path, []byte(header), 0o644)
}

// WriteAddr appends one component's deployed address.
func (b *Book) WriteAddr(network, name string, addr chain.Address) error {
	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open address file: %v", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s: [https://%s.polygonscan.com/address/%s](https://%s.polygonscan.com/address/%s)\n",
		name, network, addr, network, addr)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write address entry: %v", err)
	}
	return nil
}
