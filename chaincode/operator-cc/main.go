package main

import (
	"log"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/supermancanfly/NFT.MarketPlace.housebusiness/chaincode/operator-cc/chaincode"
)

func main() {
	operatorChaincode, err := contractapi.NewChaincode(&chaincode.SmartContract{})
	if err != nil {
		log.Panicf("Error creating operator chaincode: %v", err)
	}

	if err := operatorChaincode.Start(); err != nil {
		log.Panicf("Error starting operator chaincode: %v", err)
	}
}
