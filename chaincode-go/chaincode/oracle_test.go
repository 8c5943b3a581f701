package chaincode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MedVaultTech/RecordNetwork/chaincode-go/testutils"
)

func oracleContext(ctx *testutils.TransactionContext) *testutils.TransactionContext {
	return ctx.As(oracleO).WithAttribute(oracleAttributeName, "true")
}

func submitQuote(t *testing.T, registry *RegistryContract, ctx *testutils.TransactionContext, roundID uint64, price string, decimals uint8) {
	t.Helper()
	require.NoError(t, registry.SubmitPriceQuote(oracleContext(ctx), roundID, price, decimals))
}

func TestSubmitPriceQuoteRequiresOracleAttribute(t *testing.T) {
	registry, _, ctx := setupRegistry(t)

	err := registry.SubmitPriceQuote(ctx, 1, "200000000000", 8)
	var mismatch *RoleMismatchError
	require.True(t, errors.As(err, &mismatch))
}

func TestSubmitPriceQuoteStoresLatest(t *testing.T) {
	registry, _, ctx := setupRegistry(t)

	submitQuote(t, registry, ctx, 7, "200000000000", 8)

	quote, err := registry.GetLatestPriceQuote(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), quote.RoundID)
	assert.Equal(t, "200000000000", quote.Price)
	assert.Equal(t, uint8(8), quote.Decimals)
	assert.Equal(t, int64(1700000000), quote.UpdatedAt)
	assert.Equal(t, PriceQuoteSubmittedEvent, ctx.Stub.LastEventName)
}

func TestSubmitPriceQuoteRoundMustAdvance(t *testing.T) {
	registry, _, ctx := setupRegistry(t)

	submitQuote(t, registry, ctx, 7, "200000000000", 8)

	err := registry.SubmitPriceQuote(oracleContext(ctx), 7, "210000000000", 8)
	require.Error(t, err)

	err = registry.SubmitPriceQuote(oracleContext(ctx), 5, "210000000000", 8)
	require.Error(t, err)

	require.NoError(t, registry.SubmitPriceQuote(oracleContext(ctx), 8, "210000000000", 8))
}

func TestSubmitPriceQuoteRejectsUnusablePrices(t *testing.T) {
	registry, _, ctx := setupRegistry(t)

	for _, tc := range []struct {
		name     string
		price    string
		decimals uint8
	}{
		{"negative price", "-200000000000", 8},
		{"zero price", "0", 8},
		{"non-numeric price", "twelve", 8},
		{"zero decimals", "200000000000", 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := registry.SubmitPriceQuote(oracleContext(ctx), 1, tc.price, tc.decimals)
			var invalid *OraclePriceInvalidError
			require.True(t, errors.As(err, &invalid))
		})
	}
}

func TestGetLatestPriceQuoteMissing(t *testing.T) {
	registry, _, ctx := setupRegistry(t)

	_, err := registry.GetLatestPriceQuote(ctx)
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
}
