package chaincode

import "fmt"

// Custom error types for the registry and record contracts.
//
// Custom types are useful for:
// 1) allowing callers to do type-checking to see the cause of the error.
// 2) re-using messages for common errors.
// A custom error can be wrapped by another error when returned using
// errors.Wrap(err, customErr.Error()). If returning a custom error for
// type checking, it must be returned without a wrapper.

// RoleMismatchError is returned when an operation restricted to one role
// or authority is invoked by an identity that does not hold it.
type RoleMismatchError struct {
	Op       string
	Identity string
	Required string
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("%v: identity %v does not hold the required authority (%v)", e.Op, e.Identity, e.Required)
}

// MintNotApprovedError is returned when a mint or content-pointer update is
// attempted without administrator status or a live approval flag.
type MintNotApprovedError struct {
	ContractID string
	Identity   string
}

func (e *MintNotApprovedError) Error() string {
	return fmt.Sprintf("identity %v is not approved to mint on record contract %v", e.Identity, e.ContractID)
}

// ReadNotApprovedError is returned when a content-pointer read is attempted
// without standing reader approval and without the funding bypass set.
type ReadNotApprovedError struct {
	ContractID string
	TokenID    uint64
	Identity   string
}

func (e *ReadNotApprovedError) Error() string {
	return fmt.Sprintf("identity %v is not approved to read token %v of record contract %v", e.Identity, e.TokenID, e.ContractID)
}

// RequesterContractMismatchError signals a funding registration whose
// claimed record contract does not match the registry's directory entry for
// the requester - a spoofing attempt or a stale registration.
type RequesterContractMismatchError struct {
	Requester string
	Claimed   string
	Recorded  string
}

func (e *RequesterContractMismatchError) Error() string {
	return fmt.Sprintf("record contract %v claimed by requester %v does not match the registered contract %v", e.Claimed, e.Requester, e.Recorded)
}

// ReentrancyError is returned when a nested call reenters a
// funding-sensitive function before the outer call completes.
type ReentrancyError struct {
	Op string
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("reentrant invocation of %v detected", e.Op)
}

// OracleStaleError is returned when the latest oracle quote is older than
// the freshness bound.
type OracleStaleError struct {
	RoundID   uint64
	UpdatedAt int64
	Now       int64
}

func (e *OracleStaleError) Error() string {
	return fmt.Sprintf("oracle quote for round %v is stale (updated at %v, now %v)", e.RoundID, e.UpdatedAt, e.Now)
}

// OraclePriceInvalidError is returned when the oracle reports a
// non-positive or unparseable price, or a zero decimal count.
type OraclePriceInvalidError struct {
	Price    string
	Decimals uint8
}

func (e *OraclePriceInvalidError) Error() string {
	return fmt.Sprintf("oracle price %v with %v decimals is not usable", e.Price, e.Decimals)
}

// NotFoundError is returned when a ledger item expected to exist is absent.
type NotFoundError struct {
	Item string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v not found under ledger key %v", e.Item, e.Key)
}

// GetLedgerError provides an error message for failure to retrieve an item
// from the ledger.
type GetLedgerError struct {
	LedgerKey  string
	LedgerItem string
}

func (e *GetLedgerError) Error() string {
	return fmt.Sprintf("failed to get ledger item %v from ledger with key %v", e.LedgerItem, e.LedgerKey)
}

// PutLedgerError provides an error message for failure to save an item to
// the ledger.
type PutLedgerError struct {
	LedgerKey string
}

func (e *PutLedgerError) Error() string {
	return fmt.Sprintf("failed to put %v in ledger", e.LedgerKey)
}

// MarshalError provides an error message for json.Marshal failure.
type MarshalError struct {
	Type string
}

func (e *MarshalError) Error() string {
	return fmt.Sprintf("failed to marshal %v", e.Type)
}

// UnmarshalError provides an error message for json.Unmarshal failure.
type UnmarshalError struct {
	Type string
}

func (e *UnmarshalError) Error() string {
	return fmt.Sprintf("failed to unmarshal %v", e.Type)
}

// CreateCompositeKeyError provides an error message for
// stub.CreateCompositeKey failure.
type CreateCompositeKeyError struct {
	Type string
}

func (e *CreateCompositeKeyError) Error() string {
	return fmt.Sprintf("failed to create composite key for %v", e.Type)
}
