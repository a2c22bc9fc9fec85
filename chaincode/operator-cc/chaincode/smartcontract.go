package chaincode

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

const (
	balancePrefix = "BAL_"
	authPrefix    = "AUTH_"
)

// RelayRecord is the on-ledger journal entry for one forwarded call.
type RelayRecord struct {
	ID          string `json:"id"`
	Caller      string `json:"caller"`
	Target      string `json:"target"`
	Fee         int64  `json:"fee"`
	Beneficiary string `json:"beneficiary"`
	Status      string `json:"status"`
	Timestamp   int64  `json:"timestamp"`
}

// SmartContract keeps per-account fee balances and forwards calls to
// authorized target chaincodes, debiting the fee only when the forwarded
// call succeeds.
type SmartContract struct {
	contractapi.Contract
}

// InitLedger initializes the ledger
func (s *SmartContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	return nil
}

// Deposit credits the account's fee balance.
func (s *SmartContract) Deposit(ctx contractapi.TransactionContextInterface, account string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	balance, err := s.readBalance(ctx, account)
	if err != nil {
		return err
	}
	return s.writeBalance(ctx, account, balance+amount)
}

// Withdraw debits the account's fee balance.
func (s *SmartContract) Withdraw(ctx contractapi.TransactionContextInterface, account string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	balance, err := s.readBalance(ctx, account)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("insufficient balance")
	}
	return s.writeBalance(ctx, account, balance-amount)
}

// BalanceOf returns the account's fee balance.
func (s *SmartContract) BalanceOf(ctx contractapi.TransactionContextInterface, account string) (int64, error) {
	return s.readBalance(ctx, account)
}

// AuthorizeContracts marks target chaincodes as callable through the
// relay. Only the platform operator organization can call this.
func (s *SmartContract) AuthorizeContracts(ctx contractapi.TransactionContextInterface, contractsJSON string) error {
	mspID, err := ctx.GetClientIdentity().GetMSPID()
	if err != nil {
		return fmt.Errorf("failed to get MSP ID: %v", err)
	}
	if mspID != "PlatformMSP" {
		return fmt.Errorf("unauthorized: only the platform operator can authorize contracts")
	}

	var contracts []string
	if err := json.Unmarshal([]byte(contractsJSON), &contracts); err != nil {
		return fmt.Errorf("failed to parse contract list: %v", err)
	}

	for _, name := range contracts {
		if err := ctx.GetStub().PutState(authPrefix+name, []byte("1")); err != nil {
			return fmt.Errorf("failed to authorize %s: %v", name, err)
		}
	}
	return nil
}

// IsAuthorized reports whether a target chaincode may be called.
func (s *SmartContract) IsAuthorized(ctx contractapi.TransactionContextInterface, target string) (bool, error) {
	state, err := ctx.GetStub().GetState(authPrefix + target)
	if err != nil {
		return false, fmt.Errorf("failed to read authorization: %v", err)
	}
	return state != nil, nil
}

// CallContract forwards a call to an authorized target chaincode and debits
// the fee from the beneficiary. A failed forwarded call leaves the balance
// untouched and surfaces the target's error.
func (s *SmartContract) CallContract(ctx contractapi.TransactionContextInterface, target string, function string, argsJSON string, fee int64, beneficiary string) error {
	if fee < 0 {
		return fmt.Errorf("fee must not be negative")
	}

	authorized, err := s.IsAuthorized(ctx, target)
	if err != nil {
		return err
	}
	if !authorized {
		return fmt.Errorf("contract not authorized")
	}

	balance, err := s.readBalance(ctx, beneficiary)
	if err != nil {
		return err
	}
	if balance < fee {
		return fmt.Errorf("insufficient balance")
	}

	caller, err := ctx.GetClientIdentity().GetID()
	if err != nil {
		return fmt.Errorf("failed to get caller identity: %v", err)
	}

	resp := ctx.GetStub().InvokeChaincode(target, [][]byte{[]byte(function), []byte(argsJSON), []byte(caller)}, "")
	if resp.Status != 200 {
		return fmt.Errorf("forwarded call failed: %s", resp.Message)
	}

	if err := s.writeBalance(ctx, beneficiary, balance-fee); err != nil {
		return err
	}

	record := RelayRecord{
		ID:          ctx.GetStub().GetTxID(),
		Caller:      caller,
		Target:      target,
		Fee:         fee,
		Beneficiary: beneficiary,
		Status:      "Confirmed",
		Timestamp:   time.Now().Unix(),
	}
	recordBytes, _ := json.Marshal(record)
	return ctx.GetStub().PutState(record.ID, recordBytes)
}

func (s *SmartContract) readBalance(ctx contractapi.TransactionContextInterface, account string) (int64, error) {
	state, err := ctx.GetStub().GetState(balancePrefix + account)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %v", err)
	}
	if state == nil {
		return 0, nil
	}

	var balance int64
	if err := json.Unmarshal(state, &balance); err != nil {
		return 0, fmt.Errorf("failed to parse balance: %v", err)
	}
	return balance, nil
}

func (s *SmartContract) writeBalance(ctx contractapi.TransactionContextInterface, account string, balance int64) error {
	balanceBytes, _ := json.Marshal(balance)
	if err := ctx.GetStub().PutState(balancePrefix+account, balanceBytes); err != nil {
		return fmt.Errorf("failed to write balance: %v", err)
	}
	return nil
}
