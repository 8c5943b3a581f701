package chaincode

import (
	"encoding/json"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/pkg/errors"
)

// putJSON marshals an item and stores it under key.
func putJSON(ctx contractapi.TransactionContextInterface, key string, item interface{}, itemType string) error {
	itemJSON, err := json.Marshal(item)
	if err != nil {
		return errors.Wrap(err, (&MarshalError{Type: itemType}).Error())
	}
	if err := ctx.GetStub().PutState(key, itemJSON); err != nil {
		return errors.Wrap(err, (&PutLedgerError{LedgerKey: key}).Error())
	}
	return nil
}

// getJSON loads and unmarshals the item stored under key. The boolean
// reports whether the key exists.
func getJSON(ctx contractapi.TransactionContextInterface, key string, item interface{}, itemType string) (bool, error) {
	itemJSON, err := ctx.GetStub().GetState(key)
	if err != nil {
		return false, errors.Wrap(err, (&GetLedgerError{LedgerKey: key, LedgerItem: itemType}).Error())
	}
	if itemJSON == nil {
		return false, nil
	}
	if err := json.Unmarshal(itemJSON, item); err != nil {
		return true, errors.Wrap(err, (&UnmarshalError{Type: itemType}).Error())
	}
	return true, nil
}

// txTime returns the transaction timestamp in unix seconds. Using the tx
// timestamp instead of time.Now keeps every endorsement deterministic.
func txTime(ctx contractapi.TransactionContextInterface) (int64, error) {
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction timestamp")
	}
	return ts.GetSeconds(), nil
}

// invokerID returns the transaction-origin identity. The ledger identity is
// the sole authorization principal for every gate in this chaincode.
func invokerID(ctx contractapi.TransactionContextInterface) (string, error) {
	id, err := ctx.GetClientIdentity().GetID()
	if err != nil {
		return "", errors.Wrap(err, "failed to get client identity")
	}
	return id, nil
}

// emitEvent sets the transaction event. Fabric keeps a single event per
// transaction, so each transaction emits exactly one aggregated payload.
func emitEvent(ctx contractapi.TransactionContextInterface, name string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, (&MarshalError{Type: name}).Error())
	}
	if err := ctx.GetStub().SetEvent(name, payloadJSON); err != nil {
		return errors.Wrapf(err, "failed to emit %s event", name)
	}
	return nil
}
