package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/common"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/platform"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/services/gateway/models"
)

const testSecret = "gateway-test-secret"

type testEnv struct {
	platform *platform.Platform
	handler  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	p, err := platform.New(&common.Config{TokenSupply: 100_000_000_00000000})
	require.NoError(t, err)
	svc := &Service{platform: p, db: nil}
	return &testEnv{
		platform: p,
		handler:  common.AuthMiddleware(testSecret, newRouter(svc)),
	}
}

func (e *testEnv) fund(t *testing.T, user chain.Address, amount int64) {
	t.Helper()
	ctx := chain.Context{Caller: e.platform.Deployer}
	require.NoError(t, e.platform.HBT.Transfer(ctx, user, amount))
}

func authToken(t *testing.T, user chain.Address) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": string(user)}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, user chain.Address, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+authToken(t, user))
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token/balance", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenBalanceAndTransfer(t *testing.T) {
	env := newTestEnv(t)
	alice := chain.NewAddress()
	bob := chain.NewAddress()
	env.fund(t, alice, 10_000)

	rec := env.do(t, alice, http.MethodPost, "/token/transfer", models.TransferRequest{To: string(bob), Amount: 4_000})
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]int64
	decodeJSON(t, env.do(t, alice, http.MethodGet, "/token/balance", nil), &got)
	assert.Equal(t, int64(6_000), got["balance"])

	decodeJSON(t, env.do(t, bob, http.MethodGet, "/token/balance", nil), &got)
	assert.Equal(t, int64(4_000), got["balance"])

	rec = env.do(t, bob, http.MethodPost, "/token/transfer", models.TransferRequest{To: string(alice), Amount: 5_000})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWalletDepositWithdraw(t *testing.T) {
	env := newTestEnv(t)
	alice := chain.NewAddress()
	env.fund(t, alice, 10_000)

	// approve defaults to the operator when no spender is given
	rec := env.do(t, alice, http.MethodPost, "/token/approve", models.ApproveRequest{Amount: 10_000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, alice, http.MethodPost, "/wallet/deposit", models.AmountRequest{Amount: 5_000})
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]int64
	decodeJSON(t, env.do(t, alice, http.MethodGet, "/wallet/balance", nil), &got)
	assert.Equal(t, int64(5_000), got["balance"])

	rec = env.do(t, alice, http.MethodPost, "/wallet/withdraw", models.AmountRequest{Amount: 2_000})
	require.Equal(t, http.StatusOK, rec.Code)

	decodeJSON(t, env.do(t, alice, http.MethodGet, "/wallet/balance", nil), &got)
	assert.Equal(t, int64(3_000), got["balance"])

	decodeJSON(t, env.do(t, alice, http.MethodGet, "/token/balance", nil), &got)
	assert.Equal(t, int64(7_000), got["balance"])
}

func TestRelayMintHouse(t *testing.T) {
	env := newTestEnv(t)
	alice := chain.NewAddress()
	env.fund(t, alice, 10_000)
	env.do(t, alice, http.MethodPost, "/token/approve", models.ApproveRequest{Amount: 10_000})
	env.do(t, alice, http.MethodPost, "/wallet/deposit", models.AmountRequest{Amount: 5_000})

	args, _ := json.Marshal(map[string]string{
		"token_name": "Villa Aurora",
		"token_uri":  "ipfs://villa-aurora",
		"token_type": "residential",
	})
	rec := env.do(t, alice, http.MethodPost, "/operator/call", models.RelayRequest{
		Target: string(env.platform.NFT.Address()),
		Method: "mintHouse",
		Args:   args,
		Fee:    100,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Confirmed", resp["status"])
	assert.NotEmpty(t, resp["id"])

	house, err := env.platform.NFT.GetHouse(1)
	require.NoError(t, err)
	assert.Equal(t, "Villa Aurora", house.TokenName)
	assert.Equal(t, alice, house.Contributor.CurrentOwner)

	var got map[string]int64
	decodeJSON(t, env.do(t, alice, http.MethodGet, "/wallet/balance", nil), &got)
	assert.Equal(t, int64(4_900), got["balance"])
}

func TestRelayUnauthorizedTarget(t *testing.T) {
	env := newTestEnv(t)
	alice := chain.NewAddress()
	env.fund(t, alice, 10_000)
	env.do(t, alice, http.MethodPost, "/token/approve", models.ApproveRequest{Amount: 10_000})
	env.do(t, alice, http.MethodPost, "/wallet/deposit", models.AmountRequest{Amount: 5_000})

	rec := env.do(t, alice, http.MethodPost, "/operator/call", models.RelayRequest{
		Target: string(chain.NewAddress()),
		Method: "mintHouse",
		Fee:    100,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var got map[string]int64
	decodeJSON(t, env.do(t, alice, http.MethodGet, "/wallet/balance", nil), &got)
	assert.Equal(t, int64(5_000), got["balance"])
}

func TestRelayFailedCallChargesNoFee(t *testing.T) {
	env := newTestEnv(t)
	alice := chain.NewAddress()
	env.fund(t, alice, 10_000)
	env.do(t, alice, http.MethodPost, "/token/approve", models.ApproveRequest{Amount: 10_000})
	env.do(t, alice, http.MethodPost, "/wallet/deposit", models.AmountRequest{Amount: 5_000})

	// missing token name makes the mint fail inside the target
	rec := env.do(t, alice, http.MethodPost, "/operator/call", models.RelayRequest{
		Target: string(env.platform.NFT.Address()),
		Method: "mintHouse",
		Fee:    100,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var got map[string]int64
	decodeJSON(t, env.do(t, alice, http.MethodGet, "/wallet/balance", nil), &got)
	assert.Equal(t, int64(5_000), got["balance"])
}

func TestContractLifecycle(t *testing.T) {
	env := newTestEnv(t)
	creator := chain.NewAddress()
	signer := chain.NewAddress()
	env.fund(t, creator, 100_000)

	// escrow is pulled by the document contract at creation
	rec := env.do(t, creator, http.MethodPost, "/token/approve", models.ApproveRequest{
		Spender: string(env.platform.HouseDoc.Address()),
		Amount:  100_000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, creator, http.MethodPost, "/contracts", models.ContractRequest{
		CompanyName:    "Cleaning Corp",
		ContractType:   1,
		ContractSigner: string(signer),
		ContractURI:    "ipfs://cc-1",
		DateFrom:       100,
		DateTo:         200,
		AgreedPrice:    50_000,
		Currency:       "HBT",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]int64
	decodeJSON(t, rec, &created)
	ccID := created["contract_id"]
	assert.Equal(t, int64(1), ccID)

	var cc map[string]interface{}
	decodeJSON(t, env.do(t, creator, http.MethodGet, "/contracts/1", nil), &cc)
	assert.Equal(t, "pending", cc["status"])
	assert.Equal(t, "Cleaning Corp", cc["company_name"])

	rec = env.do(t, creator, http.MethodPost, "/contracts/1/notify", models.NotifyRequest{
		Receiver: string(signer),
		Content:  "please sign",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var notifies []map[string]interface{}
	decodeJSON(t, env.do(t, signer, http.MethodGet, "/notifications", nil), &notifies)
	require.Len(t, notifies, 1)
	assert.Equal(t, "please sign", notifies[0]["notify_content"])

	rec = env.do(t, creator, http.MethodPost, "/contracts/1/approve", models.ApprovalRequest{Role: "creator"})
	require.Equal(t, http.StatusOK, rec.Code)

	// the signer cannot approve with the wrong role
	rec = env.do(t, signer, http.MethodPost, "/contracts/1/approve", models.ApprovalRequest{Role: "creator"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, signer, http.MethodPost, "/contracts/1/approve", models.ApprovalRequest{Role: "signer"})
	require.Equal(t, http.StatusOK, rec.Code)

	decodeJSON(t, env.do(t, creator, http.MethodGet, "/contracts/1", nil), &cc)
	assert.Equal(t, "signed", cc["status"])

	// escrow released to the document owner on full signature
	var got map[string]int64
	decodeJSON(t, env.do(t, creator, http.MethodGet, "/token/balance", nil), &got)
	assert.Equal(t, int64(100_000), got["balance"])
}

func TestContractCancelRefund(t *testing.T) {
	env := newTestEnv(t)
	creator := chain.NewAddress()
	env.fund(t, creator, 100_000)
	env.do(t, creator, http.MethodPost, "/token/approve", models.ApproveRequest{
		Spender: string(env.platform.HouseDoc.Address()),
		Amount:  100_000,
	})
	rec := env.do(t, creator, http.MethodPost, "/contracts", models.ContractRequest{
		CompanyName:    "Cleaning Corp",
		ContractType:   1,
		ContractSigner: string(chain.NewAddress()),
		ContractURI:    "ipfs://cc-1",
		DateFrom:       100,
		DateTo:         200,
		AgreedPrice:    30_000,
		Currency:       "HBT",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]int64
	decodeJSON(t, env.do(t, creator, http.MethodGet, "/token/balance", nil), &got)
	assert.Equal(t, int64(70_000), got["balance"])

	rec = env.do(t, creator, http.MethodPost, "/contracts/1/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	decodeJSON(t, env.do(t, creator, http.MethodGet, "/token/balance", nil), &got)
	assert.Equal(t, int64(100_000), got["balance"])

	var cc map[string]interface{}
	decodeJSON(t, env.do(t, creator, http.MethodGet, "/contracts/1", nil), &cc)
	assert.Equal(t, "cancelled", cc["status"])
}

func TestContractInvalidWindow(t *testing.T) {
	env := newTestEnv(t)
	creator := chain.NewAddress()
	env.fund(t, creator, 100_000)

	rec := env.do(t, creator, http.MethodPost, "/contracts", models.ContractRequest{
		CompanyName:    "Cleaning Corp",
		ContractType:   1,
		ContractSigner: string(chain.NewAddress()),
		ContractURI:    "ipfs://cc-1",
		DateFrom:       200,
		DateTo:         100,
		AgreedPrice:    10_000,
		Currency:       "HBT",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "INVALID_WINDOW", resp["code"])
}

func TestHouseEndpoints(t *testing.T) {
	env := newTestEnv(t)
	alice := chain.NewAddress()

	rec := env.do(t, alice, http.MethodPost, "/houses", models.MintHouseRequest{
		TokenName:   "Villa Aurora",
		TokenURI:    "ipfs://villa-aurora",
		TokenType:   "residential",
		Description: "seaside villa",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]int64
	decodeJSON(t, rec, &created)
	require.Equal(t, int64(1), created["house_id"])

	rec = env.do(t, alice, http.MethodPost, "/houses/1/history", models.AddHistoryRequest{
		HistoryTypeID: 0,
		History:       "built in 1998",
		BrandType:     "concrete",
		YearField:     1998,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var histories []map[string]interface{}
	decodeJSON(t, env.do(t, alice, http.MethodGet, "/houses/1/history", nil), &histories)
	require.Len(t, histories, 1)
	assert.Equal(t, "built in 1998", histories[0]["history"])

	var value map[string]int64
	decodeJSON(t, env.do(t, alice, http.MethodGet, "/houses/1/value", nil), &value)
	assert.Positive(t, value["value"])

	rec = env.do(t, alice, http.MethodGet, "/houses/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarketplaceEndpoints(t *testing.T) {
	env := newTestEnv(t)
	alice := chain.NewAddress()

	var types []map[string]interface{}
	decodeJSON(t, env.do(t, alice, http.MethodGet, "/marketplace/history-types", nil), &types)
	assert.Len(t, types, 8)

	var percents []int64
	decodeJSON(t, env.do(t, alice, http.MethodGet, "/marketplace/label-percents", nil), &percents)
	assert.Equal(t, []int64{20, 15, 15, 15, 15, 10, 10}, percents)
}

func TestStakingEndpoints(t *testing.T) {
	env := newTestEnv(t)
	alice := chain.NewAddress()
	env.fund(t, alice, 50_000)
	env.do(t, alice, http.MethodPost, "/token/approve", models.ApproveRequest{
		Spender: string(env.platform.Staking.Address()),
		Amount:  50_000,
	})

	rec := env.do(t, alice, http.MethodPost, "/staking/stake", models.StakeRequest{Amount: 20_000, Months: 12})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stakes []map[string]interface{}
	decodeJSON(t, env.do(t, alice, http.MethodGet, "/staking/stakes", nil), &stakes)
	require.Len(t, stakes, 1)
	assert.Equal(t, float64(20_000), stakes[0]["amount"])
	assert.Equal(t, float64(10), stakes[0]["apy"])

	rec = env.do(t, alice, http.MethodPost, "/staking/stake", models.StakeRequest{Amount: 1_000, Months: 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var rewards map[string]int64
	decodeJSON(t, env.do(t, alice, http.MethodGet, "/staking/rewards", nil), &rewards)
	assert.Zero(t, rewards["rewards"])

	rec = env.do(t, alice, http.MethodPost, "/staking/unstake", models.UnstakeRequest{Index: 0})
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]int64
	decodeJSON(t, env.do(t, alice, http.MethodGet, "/token/balance", nil), &got)
	assert.Equal(t, int64(50_000), got["balance"])
}
