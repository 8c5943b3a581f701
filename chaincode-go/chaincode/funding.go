package chaincode

import (
	"math/big"
	"strconv"
	"sync"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/pkg/errors"
)

// weiPerEther converts between the external stable unit and the smallest
// ledger-native denomination.
var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// FundingRequest is one appended entry of the registry's funding sequence.
// RequiredAmountWei is computed exactly once from the oracle snapshot taken
// at creation and never recomputed. The actual/temp amounts and the
// completion time belong to a settlement path that is not wired yet; they
// stay at their zero placeholders and are only surfaced by queries.
type FundingRequest struct {
	Index             uint64 `json:"index"`
	Requester         string `json:"requester"`
	ContractID        string `json:"contractID"`
	RequestedUsd      uint64 `json:"requestedAmountUsd"`
	RequiredAmountWei string `json:"requiredAmountInWei"`
	ActualAmountWei   string `json:"actualAmountInWei"`
	TempAmountWei     string `json:"tempAmountInWei"`
	StartTime         int64  `json:"startTime"`
	CompletionTime    int64  `json:"completionTime"`
	OracleRoundID     uint64 `json:"oracleRoundID"`
}

// Settled reports whether a disbursement completed this request. Always
// false until a settlement path exists.
func (r *FundingRequest) Settled() bool {
	return r.CompletionTime != 0
}

// convertUsdToWei computes price * 1e18 * usd / decimals in the
// ledger-native unit, matching the feed's fixed-point convention.
func convertUsdToWei(price *big.Int, decimals uint8, usd uint64) *big.Int {
	wei := new(big.Int).Mul(price, weiPerEther)
	wei.Mul(wei, new(big.Int).SetUint64(usd))
	return wei.Div(wei, new(big.Int).SetUint64(uint64(decimals)))
}

// fundingRegistrar is the narrow capability the record contract depends on
// to register a funding request. The registry satisfies it; the record
// contract never sees the registry's concrete surface beyond this.
type fundingRegistrar interface {
	registerFunding(ctx contractapi.TransactionContextInterface, requester, contractID string, requestedUsd uint64) (*FundingRequest, error)
}

// reentrancyGuard is a non-reentrant lock held for the duration of the
// funding path, the only path that performs an external read (the oracle
// snapshot) and then mutates state keyed by its result.
type reentrancyGuard struct {
	mu sync.Mutex
}

func (g *reentrancyGuard) enter(op string) error {
	if !g.mu.TryLock() {
		return &ReentrancyError{Op: op}
	}
	return nil
}

func (g *reentrancyGuard) exit() {
	g.mu.Unlock()
}

// registerFunding verifies the requester-to-contract binding, snapshots the
// oracle, computes the required native amount, and appends exactly one
// funding request. Every call appends; entries are never merged.
func (s *RegistryContract) registerFunding(ctx contractapi.TransactionContextInterface, requester, contractID string, requestedUsd uint64) (*FundingRequest, error) {
	recorded, err := s.LookupRecordContract(ctx, requester)
	if err != nil {
		return nil, err
	}
	if recorded == "" || recorded != contractID {
		return nil, &RequesterContractMismatchError{Requester: requester, Claimed: contractID, Recorded: recorded}
	}

	quote, price, err := latestValidQuote(ctx)
	if err != nil {
		return nil, err
	}

	index, err := fundingRequestCount(ctx)
	if err != nil {
		return nil, err
	}

	now, err := txTime(ctx)
	if err != nil {
		return nil, err
	}

	request := FundingRequest{
		Index:             index,
		Requester:         requester,
		ContractID:        contractID,
		RequestedUsd:      requestedUsd,
		RequiredAmountWei: convertUsdToWei(price, quote.Decimals, requestedUsd).String(),
		ActualAmountWei:   "0",
		TempAmountWei:     "0",
		StartTime:         now,
		CompletionTime:    0,
		OracleRoundID:     quote.RoundID,
	}

	key, err := createFundingRequestKey(ctx, index)
	if err != nil {
		return nil, err
	}
	if err := putJSON(ctx, key, request, "funding request"); err != nil {
		return nil, err
	}

	counter := strconv.FormatUint(index+1, 10)
	if err := ctx.GetStub().PutState(fundingRequestCounterKey, []byte(counter)); err != nil {
		return nil, errors.Wrap(err, (&PutLedgerError{LedgerKey: fundingRequestCounterKey}).Error())
	}

	return &request, nil
}

// fundingRequestCount reads the monotonically increasing request counter,
// which always equals the sequence length.
func fundingRequestCount(ctx contractapi.TransactionContextInterface) (uint64, error) {
	counterBytes, err := ctx.GetStub().GetState(fundingRequestCounterKey)
	if err != nil {
		return 0, errors.Wrap(err, (&GetLedgerError{LedgerKey: fundingRequestCounterKey, LedgerItem: "funding request counter"}).Error())
	}
	if counterBytes == nil {
		return 0, nil
	}
	count, err := strconv.ParseUint(string(counterBytes), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, (&UnmarshalError{Type: "funding request counter"}).Error())
	}
	return count, nil
}
