package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/common"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/common/db"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/common/migrations"
	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/pkg/platform"
)

func main() {
	cfg := common.LoadConfig()

	database, err := db.Connect(cfg.DB)
	if err != nil {
		log.Printf("Warning: Failed to connect to DB, relay journal disabled: %v", err)
		database = nil
	} else {
		defer database.Close()
		if err := migrations.RunMigrations(database, "migrations/gateway"); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	p, err := platform.New(cfg)
	if err != nil {
		log.Fatalf("Failed to set up platform: %v", err)
	}
	log.Printf("Platform ready, operator at %s", p.Operator.Address())

	svc := &Service{platform: p, db: database}
	handler := common.AuthMiddleware(cfg.JWTSecret, newRouter(svc))

	log.Printf("Gateway Service running on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}

func newRouter(svc *Service) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/token/balance", svc.TokenBalanceHandler).Methods("GET")
	r.HandleFunc("/token/transfer", svc.TokenTransferHandler).Methods("POST")
	r.HandleFunc("/token/approve", svc.TokenApproveHandler).Methods("POST")

	r.HandleFunc("/wallet/deposit", svc.DepositHandler).Methods("POST")
	r.HandleFunc("/wallet/withdraw", svc.WithdrawHandler).Methods("POST")
	r.HandleFunc("/wallet/balance", svc.WalletBalanceHandler).Methods("GET")

	r.HandleFunc("/operator/call", svc.RelayCallHandler).Methods("POST")
	r.HandleFunc("/operator/calls", svc.RelayHistoryHandler).Methods("GET")

	r.HandleFunc("/contracts", svc.CreateContractHandler).Methods("POST")
	r.HandleFunc("/contracts/{id}", svc.GetContractHandler).Methods("GET")
	r.HandleFunc("/contracts/{id}/signer", svc.AddSignerHandler).Methods("POST")
	r.HandleFunc("/contracts/{id}/notify", svc.SendNotifyHandler).Methods("POST")
	r.HandleFunc("/contracts/{id}/approve", svc.ApproveContractHandler).Methods("POST")
	r.HandleFunc("/contracts/{id}/cancel", svc.CancelContractHandler).Methods("POST")
	r.HandleFunc("/notifications", svc.NotificationsHandler).Methods("GET")

	r.HandleFunc("/houses", svc.MintHouseHandler).Methods("POST")
	r.HandleFunc("/houses/{id}", svc.GetHouseHandler).Methods("GET")
	r.HandleFunc("/houses/{id}/history", svc.AddHistoryHandler).Methods("POST")
	r.HandleFunc("/houses/{id}/history", svc.GetHistoriesHandler).Methods("GET")
	r.HandleFunc("/houses/{id}/value", svc.HouseValueHandler).Methods("GET")

	r.HandleFunc("/marketplace/history-types", svc.HistoryTypesHandler).Methods("GET")
	r.HandleFunc("/marketplace/label-percents", svc.LabelPercentsHandler).Methods("GET")

	r.HandleFunc("/staking/stake", svc.StakeHandler).Methods("POST")
	r.HandleFunc("/staking/unstake", svc.UnstakeHandler).Methods("POST")
	r.HandleFunc("/staking/stakes", svc.StakesHandler).Methods("GET")
	r.HandleFunc("/staking/rewards", svc.RewardsHandler).Methods("GET")

	return r
}
