package testutils

import (
	"crypto/x509"
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

var (
	_ cid.ClientIdentity                     = (*MockClientIdentity)(nil)
	_ contractapi.TransactionContextInterface = (*TransactionContext)(nil)
)

// MockClientIdentity implements cid.ClientIdentity for a fixed identity
// string, MSP id, and attribute set.
type MockClientIdentity struct {
	ID         string
	MSPID      string
	Attributes map[string]string
}

func (m *MockClientIdentity) GetID() (string, error) {
	return m.ID, nil
}

func (m *MockClientIdentity) GetMSPID() (string, error) {
	return m.MSPID, nil
}

func (m *MockClientIdentity) GetAttributeValue(attrName string) (string, bool, error) {
	value, found := m.Attributes[attrName]
	return value, found, nil
}

func (m *MockClientIdentity) AssertAttributeValue(attrName, attrValue string) error {
	value, found, _ := m.GetAttributeValue(attrName)
	if !found || value != attrValue {
		return fmt.Errorf("attribute %s equals %s, not %s", attrName, value, attrValue)
	}
	return nil
}

func (m *MockClientIdentity) GetX509Certificate() (*x509.Certificate, error) {
	return nil, nil
}

// TransactionContext pairs a mock stub with a mock client identity so
// contract methods can be called directly in tests.
type TransactionContext struct {
	Stub     *MockStub
	Identity *MockClientIdentity
}

// NewTransactionContext creates a context acting as the given identity over
// a fresh state.
func NewTransactionContext(identity string) *TransactionContext {
	return &TransactionContext{
		Stub:     NewMockStub("recordnetwork"),
		Identity: &MockClientIdentity{ID: identity, MSPID: "Org1MSP", Attributes: map[string]string{}},
	}
}

// As returns a context sharing this context's stub but acting as another
// identity, so sequential transactions by different callers see the same
// world state.
func (ctx *TransactionContext) As(identity string) *TransactionContext {
	return &TransactionContext{
		Stub:     ctx.Stub,
		Identity: &MockClientIdentity{ID: identity, MSPID: ctx.Identity.MSPID, Attributes: map[string]string{}},
	}
}

// WithAttribute sets a certificate attribute on the acting identity.
func (ctx *TransactionContext) WithAttribute(name, value string) *TransactionContext {
	ctx.Identity.Attributes[name] = value
	return ctx
}

func (ctx *TransactionContext) GetStub() shim.ChaincodeStubInterface {
	return ctx.Stub
}

func (ctx *TransactionContext) GetClientIdentity() cid.ClientIdentity {
	return ctx.Identity
}
