package explorer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
)

// Client registers contract source metadata with a block explorer.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type verifyRequest struct {
	Address              chain.Address `json:"address"`
	ConstructorArguments []string      `json:"constructor_arguments"`
}

// Verify submits a contract for verification. A contract that the explorer
// already knows is not an error: re-running a deployment must be
// idempotent. Any other failure is returned to the caller.
func (c *Client) Verify(addr chain.Address, constructorArgs []string) error {
	body, err := json.Marshal(verifyRequest{Address: addr, ConstructorArguments: constructorArgs})
	if err != nil {
		return fmt.Errorf("failed to encode verify request: %v", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+"/api/verify", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to call explorer: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	msg, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(msg), "Already Verified") {
		return nil
	}
	return fmt.Errorf("explorer verification failed for %s: %s", addr, strings.TrimSpace(string(msg)))
}
