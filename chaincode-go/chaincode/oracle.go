package chaincode

import (
	"math/big"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/pkg/errors"
)

// maxQuoteAgeSeconds bounds how old the latest oracle quote may be before
// funding conversions refuse to use it.
const maxQuoteAgeSeconds = 3600

// oracleAttributeName is the certificate attribute that marks an identity
// as an authorized price feed.
const oracleAttributeName = "recordnetwork.oracle"

// PriceQuote is the latest oracle observation. Price is a fixed-point
// integer kept as a decimal string so it survives JSON without precision
// loss; Decimals is the feed's decimal count.
type PriceQuote struct {
	RoundID   uint64 `json:"roundID"`
	Price     string `json:"price"`
	Decimals  uint8  `json:"decimals"`
	UpdatedAt int64  `json:"updatedAt"`
}

// SubmitPriceQuote records a new oracle observation. Only identities whose
// certificate carries the oracle attribute may feed quotes, and round ids
// must strictly increase.
func (s *RegistryContract) SubmitPriceQuote(ctx contractapi.TransactionContextInterface, roundID uint64, price string, decimals uint8) error {
	invoker, err := invokerID(ctx)
	if err != nil {
		return err
	}

	value, found, err := ctx.GetClientIdentity().GetAttributeValue(oracleAttributeName)
	if err != nil {
		return errors.Wrap(err, "failed to read oracle attribute")
	}
	if !found || value != "true" {
		return &RoleMismatchError{Op: "SubmitPriceQuote", Identity: invoker, Required: "oracle feed attribute"}
	}

	if _, ok := parsePositivePrice(price); !ok || decimals == 0 {
		return &OraclePriceInvalidError{Price: price, Decimals: decimals}
	}

	var previous PriceQuote
	exists, err := getJSON(ctx, latestPriceQuoteKey, &previous, "price quote")
	if err != nil {
		return err
	}
	if exists && roundID <= previous.RoundID {
		return errors.Errorf("round id %d does not advance the latest round %d", roundID, previous.RoundID)
	}

	now, err := txTime(ctx)
	if err != nil {
		return err
	}

	quote := PriceQuote{
		RoundID:   roundID,
		Price:     price,
		Decimals:  decimals,
		UpdatedAt: now,
	}
	if err := putJSON(ctx, latestPriceQuoteKey, quote, "price quote"); err != nil {
		return err
	}

	return emitEvent(ctx, PriceQuoteSubmittedEvent, priceQuoteSubmittedPayload{
		RoundID:  roundID,
		Price:    price,
		Decimals: decimals,
	})
}

// GetLatestPriceQuote returns the most recent oracle observation.
func (s *RegistryContract) GetLatestPriceQuote(ctx contractapi.TransactionContextInterface) (*PriceQuote, error) {
	var quote PriceQuote
	exists, err := getJSON(ctx, latestPriceQuoteKey, &quote, "price quote")
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &NotFoundError{Item: "price quote", Key: latestPriceQuoteKey}
	}
	return &quote, nil
}

// latestValidQuote loads the latest quote and rejects it when the price is
// non-positive, the decimal count is zero, or the observation is older than
// the freshness bound.
func latestValidQuote(ctx contractapi.TransactionContextInterface) (*PriceQuote, *big.Int, error) {
	var quote PriceQuote
	exists, err := getJSON(ctx, latestPriceQuoteKey, &quote, "price quote")
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, &NotFoundError{Item: "price quote", Key: latestPriceQuoteKey}
	}

	price, ok := parsePositivePrice(quote.Price)
	if !ok || quote.Decimals == 0 {
		return nil, nil, &OraclePriceInvalidError{Price: quote.Price, Decimals: quote.Decimals}
	}

	now, err := txTime(ctx)
	if err != nil {
		return nil, nil, err
	}
	if now-quote.UpdatedAt > maxQuoteAgeSeconds {
		return nil, nil, &OracleStaleError{RoundID: quote.RoundID, UpdatedAt: quote.UpdatedAt, Now: now}
	}

	return &quote, price, nil
}

func parsePositivePrice(price string) (*big.Int, bool) {
	value, ok := new(big.Int).SetString(price, 10)
	if !ok || value.Sign() <= 0 {
		return nil, false
	}
	return value, true
}
