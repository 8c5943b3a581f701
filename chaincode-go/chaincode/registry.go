package chaincode

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/pkg/errors"
)

// RegistryContract is the process-wide directory: participant identity to
// role, participant identity to record contract, and the append-only
// funding-request sequence. It exclusively owns those mappings; the record
// contract reaches them only through the funding registrar boundary.
type RegistryContract struct {
	contractapi.Contract
	fundingGuard reentrancyGuard
}

// NewRegistryContract creates a registry contract.
func NewRegistryContract() *RegistryContract {
	return &RegistryContract{}
}

// RegisterParticipantResponse reports what a registration did.
type RegisterParticipantResponse struct {
	Identity   string `json:"identity"`
	Role       Role   `json:"role"`
	ContractID string `json:"contractID,omitempty"`
	Deployed   bool   `json:"deployed"`
}

// RegisterParticipant records (or overwrites) the invoker's role. When the
// role is PATIENT and the invoker does not already own a record contract,
// a new instance is deployed and bound irrevocably to the invoker as its
// administrator. Re-registration is idempotent with respect to deployment:
// an existing directory entry is kept and no new instance is created.
func (s *RegistryContract) RegisterParticipant(ctx contractapi.TransactionContextInterface, role string) (*RegisterParticipantResponse, error) {
	parsedRole, err := ParseRole(role)
	if err != nil {
		return nil, err
	}

	invoker, err := invokerID(ctx)
	if err != nil {
		return nil, err
	}

	now, err := txTime(ctx)
	if err != nil {
		return nil, err
	}

	participantKey, err := createParticipantKey(ctx, invoker)
	if err != nil {
		return nil, err
	}
	participant := Participant{
		Identity:     invoker,
		Role:         parsedRole,
		RegisteredAt: now,
	}
	if err := putJSON(ctx, participantKey, participant, "participant"); err != nil {
		return nil, err
	}

	resp := RegisterParticipantResponse{
		Identity: invoker,
		Role:     parsedRole,
	}

	if parsedRole == RolePatient {
		existing, err := s.LookupRecordContract(ctx, invoker)
		if err != nil {
			return nil, err
		}
		if existing != "" {
			resp.ContractID = existing
		} else {
			contractID, err := s.deployRecordInstance(ctx, invoker, now)
			if err != nil {
				return nil, err
			}
			resp.ContractID = contractID
			resp.Deployed = true
		}
	}

	if err := emitEvent(ctx, ParticipantRegisteredEvent, participantRegisteredPayload{
		Identity:   invoker,
		Role:       parsedRole,
		ContractID: resp.ContractID,
		Deployed:   resp.Deployed,
	}); err != nil {
		return nil, err
	}

	return &resp, nil
}

// deployRecordInstance creates a record contract instance bound to the
// administrator and records the directory mapping. The contract id is
// derived from the transaction id so it is unique per deployment yet
// deterministic across endorsers.
func (s *RegistryContract) deployRecordInstance(ctx contractapi.TransactionContextInterface, administrator string, now int64) (string, error) {
	digest := sha256.Sum256([]byte(ctx.GetStub().GetTxID() + administrator))
	contractID := hex.EncodeToString(digest[:])

	instance := RecordInstance{
		ContractID:    contractID,
		Administrator: administrator,
		RoleType:      RolePatient,
		NeedsFunding:  false,
		TokenCounter:  0,
		DeployedAt:    now,
	}
	instanceKey, err := createRecordInstanceKey(ctx, contractID)
	if err != nil {
		return "", err
	}
	if err := putJSON(ctx, instanceKey, instance, "record instance"); err != nil {
		return "", err
	}

	directoryKey, err := createRecordDirectoryKey(ctx, administrator)
	if err != nil {
		return "", err
	}
	if err := ctx.GetStub().PutState(directoryKey, []byte(contractID)); err != nil {
		return "", errors.Wrap(err, (&PutLedgerError{LedgerKey: directoryKey}).Error())
	}

	return contractID, nil
}

// LookupRecordContract returns the record contract id tracked for an
// identity, or the empty string when the identity never registered as the
// record-owning role.
func (s *RegistryContract) LookupRecordContract(ctx contractapi.TransactionContextInterface, identity string) (string, error) {
	directoryKey, err := createRecordDirectoryKey(ctx, identity)
	if err != nil {
		return "", err
	}
	contractID, err := ctx.GetStub().GetState(directoryKey)
	if err != nil {
		return "", errors.Wrap(err, (&GetLedgerError{LedgerKey: directoryKey, LedgerItem: "record directory entry"}).Error())
	}
	return string(contractID), nil
}

// GetParticipantRole returns the last role an identity registered with, or
// the empty string when the identity never registered.
func (s *RegistryContract) GetParticipantRole(ctx contractapi.TransactionContextInterface, identity string) (string, error) {
	participantKey, err := createParticipantKey(ctx, identity)
	if err != nil {
		return "", err
	}
	var participant Participant
	exists, err := getJSON(ctx, participantKey, &participant, "participant")
	if err != nil {
		return "", err
	}
	if !exists {
		return "", nil
	}
	return string(participant.Role), nil
}

// RegisterFundingRequest appends a funding request for a requester after
// verifying that the claimed record contract matches the registry's
// directory entry. The required amount is converted from the requested USD
// amount with the oracle snapshot taken in this transaction.
func (s *RegistryContract) RegisterFundingRequest(ctx contractapi.TransactionContextInterface, requester, contractID string, requestedUsd uint64) (*FundingRequest, error) {
	if err := s.fundingGuard.enter("RegisterFundingRequest"); err != nil {
		return nil, err
	}
	defer s.fundingGuard.exit()

	request, err := s.registerFunding(ctx, requester, contractID, requestedUsd)
	if err != nil {
		return nil, err
	}

	if err := emitEvent(ctx, FundingRequestedEvent, fundingRequestedPayload{
		Index:         request.Index,
		Requester:     request.Requester,
		ContractID:    request.ContractID,
		RequestedUsd:  request.RequestedUsd,
		OracleRoundID: request.OracleRoundID,
	}); err != nil {
		return nil, err
	}

	return request, nil
}

// GetFundingRequest returns one entry of the funding sequence by index.
func (s *RegistryContract) GetFundingRequest(ctx contractapi.TransactionContextInterface, index uint64) (*FundingRequest, error) {
	key, err := createFundingRequestKey(ctx, index)
	if err != nil {
		return nil, err
	}
	var request FundingRequest
	exists, err := getJSON(ctx, key, &request, "funding request")
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &NotFoundError{Item: "funding request", Key: key}
	}
	return &request, nil
}

// GetFundingRequests returns the whole funding sequence in insertion order.
func (s *RegistryContract) GetFundingRequests(ctx contractapi.TransactionContextInterface) ([]FundingRequest, error) {
	iterator, err := ctx.GetStub().GetStateByPartialCompositeKey(fundingRequestObjectType, []string{})
	if err != nil {
		return nil, errors.Wrap(err, (&GetLedgerError{LedgerKey: fundingRequestObjectType, LedgerItem: "funding requests"}).Error())
	}
	defer iterator.Close()

	requests := []FundingRequest{}
	for iterator.HasNext() {
		response, err := iterator.Next()
		if err != nil {
			return nil, errors.Wrap(err, "error retrieving next query result")
		}
		var request FundingRequest
		if err := json.Unmarshal(response.Value, &request); err != nil {
			return nil, errors.Wrap(err, (&UnmarshalError{Type: "funding request"}).Error())
		}
		requests = append(requests, request)
	}
	return requests, nil
}

// GetFundingRequestCount returns the length of the funding sequence.
func (s *RegistryContract) GetFundingRequestCount(ctx contractapi.TransactionContextInterface) (uint64, error) {
	return fundingRequestCount(ctx)
}
