package chaincode

import (
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/pkg/errors"
)

const (
	participantObjectType     = "Participant"
	recordDirectoryObjectType = "RecordDirectory"
	recordInstanceObjectType  = "RecordInstance"
	materialObjectType        = "Material"
	mintApprovalObjectType    = "MintApproval"
	editorApprovalObjectType  = "EditorApproval"
	readerApprovalObjectType  = "ReaderApproval"
	fundingRequestObjectType  = "FundingRequest"

	fundingRequestCounterKey = "fundingRequestCounter"
	latestPriceQuoteKey      = "priceQuote~latest"
)

func createParticipantKey(ctx contractapi.TransactionContextInterface, identity string) (string, error) {
	key, err := ctx.GetStub().CreateCompositeKey(participantObjectType, []string{identity})
	if err != nil {
		return "", errors.Wrap(err, (&CreateCompositeKeyError{Type: participantObjectType}).Error())
	}
	return key, nil
}

func createRecordDirectoryKey(ctx contractapi.TransactionContextInterface, identity string) (string, error) {
	key, err := ctx.GetStub().CreateCompositeKey(recordDirectoryObjectType, []string{identity})
	if err != nil {
		return "", errors.Wrap(err, (&CreateCompositeKeyError{Type: recordDirectoryObjectType}).Error())
	}
	return key, nil
}

func createRecordInstanceKey(ctx contractapi.TransactionContextInterface, contractID string) (string, error) {
	key, err := ctx.GetStub().CreateCompositeKey(recordInstanceObjectType, []string{contractID})
	if err != nil {
		return "", errors.Wrap(err, (&CreateCompositeKeyError{Type: recordInstanceObjectType}).Error())
	}
	return key, nil
}

func createMaterialKey(ctx contractapi.TransactionContextInterface, contractID string, tokenID uint64) (string, error) {
	key, err := ctx.GetStub().CreateCompositeKey(materialObjectType, []string{contractID, fmt.Sprintf("%012d", tokenID)})
	if err != nil {
		return "", errors.Wrap(err, (&CreateCompositeKeyError{Type: materialObjectType}).Error())
	}
	return key, nil
}

func createMintApprovalKey(ctx contractapi.TransactionContextInterface, contractID, identity string) (string, error) {
	key, err := ctx.GetStub().CreateCompositeKey(mintApprovalObjectType, []string{contractID, identity})
	if err != nil {
		return "", errors.Wrap(err, (&CreateCompositeKeyError{Type: mintApprovalObjectType}).Error())
	}
	return key, nil
}

func createEditorApprovalKey(ctx contractapi.TransactionContextInterface, contractID, identity string) (string, error) {
	key, err := ctx.GetStub().CreateCompositeKey(editorApprovalObjectType, []string{contractID, identity})
	if err != nil {
		return "", errors.Wrap(err, (&CreateCompositeKeyError{Type: editorApprovalObjectType}).Error())
	}
	return key, nil
}

func createReaderApprovalKey(ctx contractapi.TransactionContextInterface, contractID string, tokenID uint64, reader string) (string, error) {
	key, err := ctx.GetStub().CreateCompositeKey(readerApprovalObjectType, []string{contractID, fmt.Sprintf("%012d", tokenID), reader})
	if err != nil {
		return "", errors.Wrap(err, (&CreateCompositeKeyError{Type: readerApprovalObjectType}).Error())
	}
	return key, nil
}

func createFundingRequestKey(ctx contractapi.TransactionContextInterface, index uint64) (string, error) {
	key, err := ctx.GetStub().CreateCompositeKey(fundingRequestObjectType, []string{fmt.Sprintf("%012d", index)})
	if err != nil {
		return "", errors.Wrap(err, (&CreateCompositeKeyError{Type: fundingRequestObjectType}).Error())
	}
	return key, nil
}
