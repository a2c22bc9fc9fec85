package operator

import (
	"encoding/json"
	"fmt"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
)

// CallData is the payload envelope forwarded by the relay. Each target
// decodes Args into its own parameter struct for the named method.
type CallData struct {
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args"`
}

func EncodeCall(method string, args interface{}) ([]byte, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode call args: %v", err)
	}
	payload, err := json.Marshal(CallData{Method: method, Args: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %v", err)
	}
	return payload, nil
}

func DecodeCall(payload []byte) (*CallData, error) {
	var cd CallData
	if err := json.Unmarshal(payload, &cd); err != nil {
		return nil, fmt.Errorf("%w: malformed call payload", chain.ErrInvalidInput)
	}
	if cd.Method == "" {
		return nil, fmt.Errorf("%w: call method missing", chain.ErrInvalidInput)
	}
	return &cd, nil
}
