package chaincode

// Event names. The event log is the only externally observable audit trail;
// payloads carry every fact a listener needs to reconstruct the transaction.
const (
	ParticipantRegisteredEvent = "ParticipantRegistered"
	MintApprovalGrantedEvent   = "MintApprovalGranted"
	EditorApprovalGrantedEvent = "EditorApprovalGranted"
	ReaderApprovalGrantedEvent = "ReaderApprovalGranted"
	MaterialMintedEvent        = "MaterialMinted"
	ContentPointerUpdatedEvent = "ContentPointerUpdated"
	FundingRequestedEvent      = "FundingRequested"
	PriceQuoteSubmittedEvent   = "PriceQuoteSubmitted"
)

type participantRegisteredPayload struct {
	Identity   string `json:"identity"`
	Role       Role   `json:"role"`
	ContractID string `json:"contractID,omitempty"`
	Deployed   bool   `json:"deployed"`
}

type approvalGrantedPayload struct {
	ContractID string `json:"contractID"`
	Identity   string `json:"identity"`
	TokenID    uint64 `json:"tokenID,omitempty"`
	GrantedBy  string `json:"grantedBy"`
}

type materialMintedPayload struct {
	ContractID string `json:"contractID"`
	TokenID    uint64 `json:"tokenID"`
	MintedBy   string `json:"mintedBy"`
}

type contentPointerUpdatedPayload struct {
	ContractID string `json:"contractID"`
	TokenID    uint64 `json:"tokenID"`
	UpdatedBy  string `json:"updatedBy"`
}

type fundingRequestedPayload struct {
	Index         uint64 `json:"index"`
	Requester     string `json:"requester"`
	ContractID    string `json:"contractID"`
	RequestedUsd  uint64 `json:"requestedAmountUsd"`
	OracleRoundID uint64 `json:"oracleRoundID"`
	Statement     string `json:"statement,omitempty"`
}

type priceQuoteSubmittedPayload struct {
	RoundID  uint64 `json:"roundID"`
	Price    string `json:"price"`
	Decimals uint8  `json:"decimals"`
}
