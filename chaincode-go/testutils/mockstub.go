// Package testutils provides an in-memory chaincode stub and client
// identity for unit-testing contracts without a running peer.
package testutils

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	pb "github.com/hyperledger/fabric-protos-go/peer"
)

const (
	compositeKeyNamespace = "\x00"
	minUnicodeRuneValue   = 0
	maxUnicodeRuneValue   = utf8.MaxRune
)

var _ shim.ChaincodeStubInterface = (*MockStub)(nil)

// MockStub is an in-memory implementation of shim.ChaincodeStubInterface.
// Writes go straight to the state map; transaction buffering is not
// simulated.
type MockStub struct {
	Name         string
	State        map[string][]byte
	TxID         string
	ChannelID    string
	TxTimestamp  *timestamp.Timestamp
	TransientMap map[string][]byte

	// LastEventName and LastEventPayload capture the most recent SetEvent
	// call, mirroring the peer's one-event-per-transaction behavior.
	LastEventName    string
	LastEventPayload []byte

	args [][]byte
}

// NewMockStub creates a mock stub with an empty state.
func NewMockStub(name string) *MockStub {
	return &MockStub{
		Name:         name,
		State:        map[string][]byte{},
		TxID:         "tx0",
		ChannelID:    "mockchannel",
		TxTimestamp:  &timestamp.Timestamp{Seconds: 1700000000},
		TransientMap: map[string][]byte{},
	}
}

// SetTxDetails positions the stub on a new transaction.
func (stub *MockStub) SetTxDetails(txID string, seconds int64) {
	stub.TxID = txID
	stub.TxTimestamp = &timestamp.Timestamp{Seconds: seconds}
}

func copyBytes(a []byte) []byte {
	if a == nil {
		return nil
	}
	b := make([]byte, len(a))
	copy(b, a)
	return b
}

func (stub *MockStub) GetArgs() [][]byte {
	return stub.args
}

func (stub *MockStub) GetStringArgs() []string {
	args := stub.GetArgs()
	strargs := make([]string, 0, len(args))
	for _, barg := range args {
		strargs = append(strargs, string(barg))
	}
	return strargs
}

func (stub *MockStub) GetFunctionAndParameters() (string, []string) {
	allargs := stub.GetStringArgs()
	if len(allargs) == 0 {
		return "", nil
	}
	return allargs[0], allargs[1:]
}

func (stub *MockStub) GetArgsSlice() ([]byte, error) {
	return nil, errors.New("GetArgsSlice not implemented in mock")
}

func (stub *MockStub) GetTxID() string {
	return stub.TxID
}

func (stub *MockStub) GetChannelID() string {
	return stub.ChannelID
}

func (stub *MockStub) InvokeChaincode(chaincodeName string, args [][]byte, channel string) pb.Response {
	return pb.Response{Status: 500, Message: "InvokeChaincode not implemented in mock"}
}

func (stub *MockStub) GetState(key string) ([]byte, error) {
	return copyBytes(stub.State[key]), nil
}

func (stub *MockStub) PutState(key string, value []byte) error {
	if key == "" {
		return errors.New("cannot put state with empty key")
	}
	stub.State[key] = copyBytes(value)
	return nil
}

func (stub *MockStub) DelState(key string) error {
	delete(stub.State, key)
	return nil
}

func (stub *MockStub) SetStateValidationParameter(key string, ep []byte) error {
	return errors.New("SetStateValidationParameter not implemented in mock")
}

func (stub *MockStub) GetStateValidationParameter(key string) ([]byte, error) {
	return nil, errors.New("GetStateValidationParameter not implemented in mock")
}

// rangeIterator iterates the state map in lexical key order over
// [startKey, endKey).
type rangeIterator struct {
	stub    *MockStub
	keys    []string
	current int
}

func (it *rangeIterator) HasNext() bool {
	return it.current < len(it.keys)
}

func (it *rangeIterator) Next() (*queryresult.KV, error) {
	if !it.HasNext() {
		return nil, errors.New("no more items in iterator")
	}
	key := it.keys[it.current]
	it.current++
	return &queryresult.KV{
		Namespace: it.stub.Name,
		Key:       key,
		Value:     copyBytes(it.stub.State[key]),
	}, nil
}

func (it *rangeIterator) Close() error {
	return nil
}

func (stub *MockStub) newRangeIterator(startKey, endKey string) *rangeIterator {
	keys := make([]string, 0, len(stub.State))
	for key := range stub.State {
		if key >= startKey && (endKey == "" || key < endKey) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return &rangeIterator{stub: stub, keys: keys}
}

func (stub *MockStub) GetStateByRange(startKey, endKey string) (shim.StateQueryIteratorInterface, error) {
	return stub.newRangeIterator(startKey, endKey), nil
}

func (stub *MockStub) GetStateByRangeWithPagination(startKey, endKey string, pageSize int32, bookmark string) (shim.StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
	return nil, nil, errors.New("GetStateByRangeWithPagination not implemented in mock")
}

func (stub *MockStub) GetStateByPartialCompositeKey(objectType string, keys []string) (shim.StateQueryIteratorInterface, error) {
	partial, err := stub.CreateCompositeKey(objectType, keys)
	if err != nil {
		return nil, err
	}
	return stub.newRangeIterator(partial, partial+string(rune(maxUnicodeRuneValue))), nil
}

func (stub *MockStub) GetStateByPartialCompositeKeyWithPagination(objectType string, keys []string, pageSize int32, bookmark string) (shim.StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
	return nil, nil, errors.New("GetStateByPartialCompositeKeyWithPagination not implemented in mock")
}

func (stub *MockStub) GetQueryResult(query string) (shim.StateQueryIteratorInterface, error) {
	return nil, errors.New("rich queries are not supported by the mock")
}

func (stub *MockStub) GetQueryResultWithPagination(query string, pageSize int32, bookmark string) (shim.StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
	return nil, nil, errors.New("rich queries are not supported by the mock")
}

func (stub *MockStub) GetHistoryForKey(key string) (shim.HistoryQueryIteratorInterface, error) {
	return nil, errors.New("GetHistoryForKey not implemented in mock")
}

func (stub *MockStub) GetPrivateData(collection, key string) ([]byte, error) {
	return nil, errors.New("private data not implemented in mock")
}

func (stub *MockStub) GetPrivateDataHash(collection, key string) ([]byte, error) {
	return nil, errors.New("private data not implemented in mock")
}

func (stub *MockStub) PutPrivateData(collection string, key string, value []byte) error {
	return errors.New("private data not implemented in mock")
}

func (stub *MockStub) DelPrivateData(collection, key string) error {
	return errors.New("private data not implemented in mock")
}

func (stub *MockStub) PurgePrivateData(collection, key string) error {
	return errors.New("private data not implemented in mock")
}

func (stub *MockStub) SetPrivateDataValidationParameter(collection, key string, ep []byte) error {
	return errors.New("private data not implemented in mock")
}

func (stub *MockStub) GetPrivateDataValidationParameter(collection, key string) ([]byte, error) {
	return nil, errors.New("private data not implemented in mock")
}

func (stub *MockStub) GetPrivateDataByRange(collection, startKey, endKey string) (shim.StateQueryIteratorInterface, error) {
	return nil, errors.New("private data not implemented in mock")
}

func (stub *MockStub) GetPrivateDataByPartialCompositeKey(collection, objectType string, keys []string) (shim.StateQueryIteratorInterface, error) {
	return nil, errors.New("private data not implemented in mock")
}

func (stub *MockStub) GetPrivateDataQueryResult(collection, query string) (shim.StateQueryIteratorInterface, error) {
	return nil, errors.New("private data not implemented in mock")
}

func (stub *MockStub) CreateCompositeKey(objectType string, attributes []string) (string, error) {
	var sb strings.Builder
	sb.WriteString(compositeKeyNamespace)
	sb.WriteString(objectType)
	sb.WriteRune(minUnicodeRuneValue)
	for _, attr := range attributes {
		sb.WriteString(attr)
		sb.WriteRune(minUnicodeRuneValue)
	}
	return sb.String(), nil
}

func (stub *MockStub) SplitCompositeKey(compositeKey string) (string, []string, error) {
	if !strings.HasPrefix(compositeKey, compositeKeyNamespace) {
		return "", nil, errors.New("not a composite key")
	}
	components := strings.Split(compositeKey[1:], string(rune(minUnicodeRuneValue)))
	if len(components) < 2 {
		return "", nil, errors.New("invalid composite key")
	}
	return components[0], components[1 : len(components)-1], nil
}

func (stub *MockStub) GetCreator() ([]byte, error) {
	return nil, nil
}

func (stub *MockStub) GetTransient() (map[string][]byte, error) {
	return stub.TransientMap, nil
}

func (stub *MockStub) GetBinding() ([]byte, error) {
	return nil, nil
}

func (stub *MockStub) GetDecorations() map[string][]byte {
	return nil
}

func (stub *MockStub) GetSignedProposal() (*pb.SignedProposal, error) {
	return nil, nil
}

func (stub *MockStub) GetTxTimestamp() (*timestamp.Timestamp, error) {
	return stub.TxTimestamp, nil
}

func (stub *MockStub) SetEvent(name string, payload []byte) error {
	if name == "" {
		return errors.New("event name cannot be empty")
	}
	stub.LastEventName = name
	stub.LastEventPayload = copyBytes(payload)
	return nil
}
