package main

import (
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/MedVaultTech/RecordNetwork/chaincode-go/chaincode"
)

func main() {
	registry := chaincode.NewRegistryContract()
	record := chaincode.NewRecordContract(registry)

	cc, err := contractapi.NewChaincode(registry, record)
	if err != nil {
		fmt.Printf("Error creating record network chaincode: %v", err)
		return
	}

	if err := cc.Start(); err != nil {
		fmt.Printf("Error starting record network chaincode: %v", err)
	}
}
