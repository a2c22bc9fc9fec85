package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/chain"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/contracts/operator"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/common"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/common/api"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/platform"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/services/gateway/models"
)

type Service struct {
	platform *platform.Platform
	db       *sql.DB
}

// callCtx builds the ledger context for the authenticated request caller.
func callCtx(r *http.Request) chain.Context {
	caller, _ := common.CallerFromContext(r.Context())
	return chain.Context{Caller: caller, Timestamp: time.Now().Unix()}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid "+name)
		return 0, false
	}
	return id, true
}

// writeChainError maps ledger errors to HTTP status codes.
func writeChainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chain.ErrUnauthorized):
		api.WriteError(w, http.StatusForbidden, "UNAUTHORIZED", err.Error())
	case errors.Is(err, chain.ErrTargetNotAuthorized):
		api.WriteError(w, http.StatusForbidden, "TARGET_NOT_AUTHORIZED", err.Error())
	case errors.Is(err, chain.ErrInsufficientFunds):
		api.WriteError(w, http.StatusBadRequest, "INSUFFICIENT_FUNDS", err.Error())
	case errors.Is(err, chain.ErrSignerNotSet):
		api.WriteError(w, http.StatusBadRequest, "SIGNER_NOT_SET", err.Error())
	case errors.Is(err, chain.ErrInvalidWindow):
		api.WriteError(w, http.StatusBadRequest, "INVALID_WINDOW", err.Error())
	case errors.Is(err, chain.ErrInvalidDistribution):
		api.WriteError(w, http.StatusBadRequest, "INVALID_DISTRIBUTION", err.Error())
	case errors.Is(err, chain.ErrInvalidInput):
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	default:
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

// Token endpoints

func (s *Service) TokenBalanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx := callCtx(r)
	api.WriteSuccess(w, http.StatusOK, map[string]int64{
		"balance": s.platform.HBT.BalanceOf(ctx.Caller),
	})
}

func (s *Service) TokenTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.platform.HBT.Transfer(callCtx(r), chain.Address(req.To), req.Amount); err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) TokenApproveHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ApproveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	spender := chain.Address(req.Spender)
	if spender == "" {
		spender = s.platform.Operator.Address()
	}
	if err := s.platform.HBT.Approve(callCtx(r), spender, req.Amount); err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok", "spender": string(spender)})
}

// Operator wallet endpoints

func (s *Service) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.platform.Operator.Deposit(callCtx(r), req.Amount); err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.platform.Operator.Withdraw(callCtx(r), req.Amount); err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) WalletBalanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx := callCtx(r)
	api.WriteSuccess(w, http.StatusOK, map[string]int64{
		"balance": s.platform.Operator.BalanceOf(ctx.Caller),
	})
}

// RelayCallHandler forwards a call through the operator and journals the
// attempt. The acting user is always the authenticated caller: the "user"
// argument in the payload is overwritten before encoding.
func (s *Service) RelayCallHandler(w http.ResponseWriter, r *http.Request) {
	ctx := callCtx(r)
	var req models.RelayRequest
	if !decodeBody(w, r, &req) {
		return
	}

	args := map[string]interface{}{}
	if len(req.Args) > 0 {
		if err := json.Unmarshal(req.Args, &args); err != nil {
			api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid call args")
			return
		}
	}
	args["user"] = string(ctx.Caller)

	payload, err := operator.EncodeCall(req.Method, args)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	beneficiary := chain.Address(req.Beneficiary)
	if beneficiary == "" {
		beneficiary = ctx.Caller
	}

	callID := uuid.NewString()
	if s.db != nil {
		if _, err := s.db.Exec(`
			INSERT INTO gateway.relay_calls (id, caller, target, method, fee, status)
			VALUES ($1, $2, $3, $4, $5, 'Pending')`,
			callID, string(ctx.Caller), req.Target, req.Method, req.Fee); err != nil {
			log.Printf("Failed to record pending relay call: %v", err)
		}
	}

	if err := s.platform.Operator.CallContract(ctx, chain.Address(req.Target), payload, req.Fee, beneficiary); err != nil {
		if s.db != nil {
			s.db.Exec("UPDATE gateway.relay_calls SET status = 'Failed', error = $1 WHERE id = $2", err.Error(), callID)
		}
		writeChainError(w, err)
		return
	}

	if s.db != nil {
		s.db.Exec("UPDATE gateway.relay_calls SET status = 'Confirmed' WHERE id = $1", callID)
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"id": callID, "status": "Confirmed"})
}

func (s *Service) RelayHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		api.WriteSuccess(w, http.StatusOK, []models.RelayCall{})
		return
	}
	ctx := callCtx(r)
	rows, err := s.db.Query(`
		SELECT id, caller, target, method, fee, status, COALESCE(error, ''), created_at
		FROM gateway.relay_calls WHERE caller = $1 ORDER BY created_at DESC LIMIT 50`, string(ctx.Caller))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to fetch relay history")
		return
	}
	defer rows.Close()

	history := []models.RelayCall{}
	for rows.Next() {
		var call models.RelayCall
		if err := rows.Scan(&call.ID, &call.Caller, &call.Target, &call.Method, &call.Fee, &call.Status, &call.Error, &call.CreatedAt); err == nil {
			history = append(history, call)
		}
	}
	api.WriteSuccess(w, http.StatusOK, history)
}

// Document endpoints

func (s *Service) CreateContractHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ContractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := s.platform.HouseDoc.CCCreation(callCtx(r), req.CompanyName, req.ContractType,
		chain.Address(req.ContractSigner), req.ContractURI, req.DateFrom, req.DateTo, req.AgreedPrice, req.Currency)
	if err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusCreated, map[string]int64{"contract_id": id})
}

func (s *Service) GetContractHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cc, err := s.platform.HouseDoc.GetCleanContract(id)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	api.WriteSuccess(w, http.StatusOK, cc)
}

func (s *Service) AddSignerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.SignerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.platform.HouseDoc.AddContractSigner(callCtx(r), id, chain.Address(req.ContractSigner)); err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) SendNotifyHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.NotifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.platform.HouseDoc.SendNotify(callCtx(r), chain.Address(req.Receiver), req.Content, id); err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) ApproveContractHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.ApprovalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var err error
	switch req.Role {
	case "creator":
		err = s.platform.HouseDoc.ApproveAsCreator(callCtx(r), id)
	case "signer":
		err = s.platform.HouseDoc.ApproveAsSigner(callCtx(r), id)
	default:
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "role must be creator or signer")
		return
	}
	if err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) CancelContractHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.platform.HouseDoc.Cancel(callCtx(r), id); err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := callCtx(r)
	api.WriteSuccess(w, http.StatusOK, s.platform.HouseDoc.AllNotifies(ctx.Caller))
}

// House endpoints

func (s *Service) MintHouseHandler(w http.ResponseWriter, r *http.Request) {
	var req models.MintHouseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := s.platform.NFT.MintHouse(callCtx(r), req.TokenName, req.TokenURI, req.TokenType, req.Description)
	if err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusCreated, map[string]int64{"house_id": id})
}

func (s *Service) GetHouseHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	house, err := s.platform.NFT.GetHouse(id)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	api.WriteSuccess(w, http.StatusOK, house)
}

func (s *Service) AddHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.AddHistoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.platform.NFT.AddHistory(callCtx(r), id, req.ContractID, req.HistoryTypeID,
		req.HouseImg, req.HouseBrand, req.History, req.Desc, req.BrandType, req.YearField); err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (s *Service) GetHistoriesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := s.platform.NFT.GetHouse(id); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	api.WriteSuccess(w, http.StatusOK, s.platform.NFT.Histories(id))
}

func (s *Service) HouseValueHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	value, err := s.platform.NFT.HouseValue(id)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]int64{"house_id": id, "value": value})
}

// Marketplace endpoints

func (s *Service) HistoryTypesHandler(w http.ResponseWriter, r *http.Request) {
	api.WriteSuccess(w, http.StatusOK, s.platform.Marketplace.HistoryTypes())
}

func (s *Service) LabelPercentsHandler(w http.ResponseWriter, r *http.Request) {
	api.WriteSuccess(w, http.StatusOK, s.platform.Marketplace.LabelPercents())
}

// Staking endpoints

func (s *Service) StakeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.StakeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.platform.Staking.Stake(callCtx(r), req.Amount, req.Months); err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) UnstakeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.UnstakeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.platform.Staking.Unstake(callCtx(r), req.Index); err != nil {
		writeChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) StakesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := callCtx(r)
	api.WriteSuccess(w, http.StatusOK, s.platform.Staking.Stakes(ctx.Caller))
}

func (s *Service) RewardsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := callCtx(r)
	api.WriteSuccess(w, http.StatusOK, map[string]int64{
		"rewards": s.platform.Staking.Rewards(ctx.Caller, ctx.Timestamp),
	})
}
