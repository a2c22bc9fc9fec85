package models

import (
	"encoding/json"
	"time"
)

type AmountRequest struct {
	Amount int64 `json:"amount"`
}

type TransferRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

type ApproveRequest struct {
	Spender string `json:"spender"`
	Amount  int64  `json:"amount"`
}

type RelayRequest struct {
	Target      string          `json:"target"`
	Method      string          `json:"method"`
	Args        json.RawMessage `json:"args"`
	Fee         int64           `json:"fee"`
	Beneficiary string          `json:"beneficiary,omitempty"`
}

type RelayCall struct {
	ID        string    `json:"id"`
	Caller    string    `json:"caller"`
	Target    string    `json:"target"`
	Method    string    `json:"method"`
	Fee       int64     `json:"fee"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ContractRequest struct {
	CompanyName    string `json:"company_name"`
	ContractType   int    `json:"contract_type"`
	ContractSigner string `json:"contract_signer"`
	ContractURI    string `json:"contract_uri"`
	DateFrom       int64  `json:"date_from"`
	DateTo         int64  `json:"date_to"`
	AgreedPrice    int64  `json:"agreed_price"`
	Currency       string `json:"currency"`
}

type SignerRequest struct {
	ContractSigner string `json:"contract_signer"`
}

type NotifyRequest struct {
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

type ApprovalRequest struct {
	Role string `json:"role"` // "creator" or "signer"
}

type MintHouseRequest struct {
	TokenName   string `json:"token_name"`
	TokenURI    string `json:"token_uri"`
	TokenType   string `json:"token_type"`
	Description string `json:"description"`
}

type AddHistoryRequest struct {
	ContractID    int64  `json:"contract_id"`
	HistoryTypeID int    `json:"history_type_id"`
	HouseImg      string `json:"house_img"`
	HouseBrand    string `json:"house_brand"`
	History       string `json:"history"`
	Desc          string `json:"desc"`
	BrandType     string `json:"brand_type"`
	YearField     int64  `json:"year_field"`
}

type StakeRequest struct {
	Amount int64 `json:"amount"`
	Months int   `json:"months"`
}

type UnstakeRequest struct {
	Index int `json:"index"`
}
