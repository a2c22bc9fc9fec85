package chain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Address identifies an account or a deployed contract on the ledger.
type Address string

const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// NewAddress generates a fresh random address. Used by the deployment
// layer when instantiating contracts and by tests for throwaway accounts.
func NewAddress() Address {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to generate address: %v", err))
	}
	return Address("0x" + hex.EncodeToString(b))
}

// Context carries the caller of record and the ledger timestamp for a
// single operation, the way the execution environment would supply them.
type Context struct {
	Caller    Address
	Timestamp int64
}
