package chaincode

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectedWei computes price * 1e18 * usd / decimals independently of the
// production conversion.
func expectedWei(t *testing.T, price string, decimals uint8, usd uint64) string {
	t.Helper()
	p, ok := new(big.Int).SetString(price, 10)
	require.True(t, ok)
	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	exp.Mul(exp, p)
	exp.Mul(exp, new(big.Int).SetUint64(usd))
	return exp.Div(exp, new(big.Int).SetUint64(uint64(decimals))).String()
}

func TestConvertUsdToWei(t *testing.T) {
	price, _ := new(big.Int).SetString("200000000000", 10)
	got := convertUsdToWei(price, 8, 500)
	assert.Equal(t, expectedWei(t, "200000000000", 8, 500), got.String())
}

func TestRegisterFundingRequestComputesRequiredAmount(t *testing.T) {
	registry, _, ctx := setupRegistry(t)
	contractID := registerPatient(t, registry, ctx)
	submitQuote(t, registry, ctx, 1, "200000000000", 8)

	request, err := registry.RegisterFundingRequest(ctx, patientA, contractID, 500)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), request.Index)
	assert.Equal(t, patientA, request.Requester)
	assert.Equal(t, contractID, request.ContractID)
	assert.Equal(t, uint64(500), request.RequestedUsd)
	assert.Equal(t, expectedWei(t, "200000000000", 8, 500), request.RequiredAmountWei)
	assert.Equal(t, uint64(1), request.OracleRoundID)

	count, err := registry.GetFundingRequestCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestRegisterFundingRequestAlwaysAppends(t *testing.T) {
	registry, _, ctx := setupRegistry(t)
	contractID := registerPatient(t, registry, ctx)
	submitQuote(t, registry, ctx, 1, "200000000000", 8)

	first, err := registry.RegisterFundingRequest(ctx, patientA, contractID, 500)
	require.NoError(t, err)
	second, err := registry.RegisterFundingRequest(ctx, patientA, contractID, 500)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), first.Index)
	assert.Equal(t, uint64(1), second.Index)

	requests, err := registry.GetFundingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, uint64(0), requests[0].Index)
	assert.Equal(t, uint64(1), requests[1].Index)

	count, err := registry.GetFundingRequestCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestRegisterFundingRequestRejectsSpoofedContract(t *testing.T) {
	registry, _, ctx := setupRegistry(t)
	registerPatient(t, registry, ctx)
	submitQuote(t, registry, ctx, 1, "200000000000", 8)

	_, err := registry.RegisterFundingRequest(ctx, patientA, "not-the-registered-contract", 500)
	var mismatch *RequesterContractMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, patientA, mismatch.Requester)

	count, err := registry.GetFundingRequestCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRegisterFundingRequestRejectsUnregisteredRequester(t *testing.T) {
	registry, _, ctx := setupRegistry(t)
	contractID := registerPatient(t, registry, ctx)
	submitQuote(t, registry, ctx, 1, "200000000000", 8)

	_, err := registry.RegisterFundingRequest(ctx, patientB, contractID, 500)
	var mismatch *RequesterContractMismatchError
	require.True(t, errors.As(err, &mismatch))
}

func TestRegisterFundingRequestRejectsStaleQuote(t *testing.T) {
	registry, _, ctx := setupRegistry(t)
	contractID := registerPatient(t, registry, ctx)
	submitQuote(t, registry, ctx, 1, "200000000000", 8)

	ctx.Stub.SetTxDetails("tx-late", 1700000000+maxQuoteAgeSeconds+1)
	_, err := registry.RegisterFundingRequest(ctx, patientA, contractID, 500)
	var stale *OracleStaleError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, uint64(1), stale.RoundID)
}

func TestRegisterFundingRequestRejectsCorruptStoredQuote(t *testing.T) {
	registry, _, ctx := setupRegistry(t)
	contractID := registerPatient(t, registry, ctx)

	// A negative reading written around the feed gate must still be
	// rejected before any arithmetic.
	quoteJSON, err := json.Marshal(PriceQuote{RoundID: 1, Price: "-5", Decimals: 8, UpdatedAt: 1700000000})
	require.NoError(t, err)
	ctx.Stub.State[latestPriceQuoteKey] = quoteJSON

	_, err = registry.RegisterFundingRequest(ctx, patientA, contractID, 500)
	var invalid *OraclePriceInvalidError
	require.True(t, errors.As(err, &invalid))
}

func TestRegisterFundingRequestWithoutQuote(t *testing.T) {
	registry, _, ctx := setupRegistry(t)
	contractID := registerPatient(t, registry, ctx)

	_, err := registry.RegisterFundingRequest(ctx, patientA, contractID, 500)
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestFundingRequestSettlementPlaceholders(t *testing.T) {
	registry, _, ctx := setupRegistry(t)
	contractID := registerPatient(t, registry, ctx)
	submitQuote(t, registry, ctx, 1, "200000000000", 8)

	request, err := registry.RegisterFundingRequest(ctx, patientA, contractID, 500)
	require.NoError(t, err)

	// No settlement path exists; these stay at their zero placeholders.
	assert.Equal(t, "0", request.ActualAmountWei)
	assert.Equal(t, "0", request.TempAmountWei)
	assert.Zero(t, request.CompletionTime)
	assert.False(t, request.Settled())

	stored, err := registry.GetFundingRequest(ctx, request.Index)
	require.NoError(t, err)
	assert.Equal(t, request.RequiredAmountWei, stored.RequiredAmountWei)
	assert.False(t, stored.Settled())
}
