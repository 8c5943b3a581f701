package chaincode

import (
	"encoding/json"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/pkg/errors"
)

// RecordContract operates the per-patient record instances: material
// minting, approval gates, content-pointer reads, and funding raises. It
// owns the token set and approval mappings exclusively; the registry is
// reached only through the funding registrar capability.
type RecordContract struct {
	contractapi.Contract
	registrar    fundingRegistrar
	fundingGuard reentrancyGuard
}

// NewRecordContract creates a record contract wired to the given registrar.
func NewRecordContract(registrar fundingRegistrar) *RecordContract {
	return &RecordContract{registrar: registrar}
}

// loadInstance fetches a record instance by contract id.
func loadInstance(ctx contractapi.TransactionContextInterface, contractID string) (*RecordInstance, string, error) {
	instanceKey, err := createRecordInstanceKey(ctx, contractID)
	if err != nil {
		return nil, "", err
	}
	var instance RecordInstance
	exists, err := getJSON(ctx, instanceKey, &instance, "record instance")
	if err != nil {
		return nil, "", err
	}
	if !exists {
		return nil, "", &NotFoundError{Item: "record instance", Key: instanceKey}
	}
	return &instance, instanceKey, nil
}

// requireAdministrator loads the instance and checks that the invoker is
// its administrator.
func requireAdministrator(ctx contractapi.TransactionContextInterface, contractID, op string) (*RecordInstance, string, string, error) {
	invoker, err := invokerID(ctx)
	if err != nil {
		return nil, "", "", err
	}
	instance, instanceKey, err := loadInstance(ctx, contractID)
	if err != nil {
		return nil, "", "", err
	}
	if instance.Administrator != invoker {
		return nil, "", "", &RoleMismatchError{Op: op, Identity: invoker, Required: "record contract administrator"}
	}
	return instance, instanceKey, invoker, nil
}

// GrantMintApproval marks an identity as allowed to mint exactly one next
// material. The flag is consumed by the mint, not a standing permission.
func (c *RecordContract) GrantMintApproval(ctx contractapi.TransactionContextInterface, contractID, identity string) error {
	_, _, invoker, err := requireAdministrator(ctx, contractID, "GrantMintApproval")
	if err != nil {
		return err
	}

	now, err := txTime(ctx)
	if err != nil {
		return err
	}

	approvalKey, err := createMintApprovalKey(ctx, contractID, identity)
	if err != nil {
		return err
	}
	approval := Approval{Approved: true, GrantedBy: invoker, GrantedAt: now}
	if err := putJSON(ctx, approvalKey, approval, "mint approval"); err != nil {
		return err
	}

	return emitEvent(ctx, MintApprovalGrantedEvent, approvalGrantedPayload{
		ContractID: contractID,
		Identity:   identity,
		GrantedBy:  invoker,
	})
}

// GrantEditorApproval grants an identity a standing permission to rewrite
// content pointers on this instance. Unlike the mint approval it is not
// consumed on use.
func (c *RecordContract) GrantEditorApproval(ctx contractapi.TransactionContextInterface, contractID, identity string) error {
	_, _, invoker, err := requireAdministrator(ctx, contractID, "GrantEditorApproval")
	if err != nil {
		return err
	}

	now, err := txTime(ctx)
	if err != nil {
		return err
	}

	approvalKey, err := createEditorApprovalKey(ctx, contractID, identity)
	if err != nil {
		return err
	}
	approval := Approval{Approved: true, GrantedBy: invoker, GrantedAt: now}
	if err := putJSON(ctx, approvalKey, approval, "editor approval"); err != nil {
		return err
	}

	return emitEvent(ctx, EditorApprovalGrantedEvent, approvalGrantedPayload{
		ContractID: contractID,
		Identity:   identity,
		GrantedBy:  invoker,
	})
}

// GrantReaderApproval grants a provider identity standing read access to
// one token's content pointer.
func (c *RecordContract) GrantReaderApproval(ctx contractapi.TransactionContextInterface, contractID string, tokenID uint64, reader string) error {
	instance, _, invoker, err := requireAdministrator(ctx, contractID, "GrantReaderApproval")
	if err != nil {
		return err
	}
	if tokenID >= instance.TokenCounter {
		return &NotFoundError{Item: "material", Key: contractID}
	}

	now, err := txTime(ctx)
	if err != nil {
		return err
	}

	approvalKey, err := createReaderApprovalKey(ctx, contractID, tokenID, reader)
	if err != nil {
		return err
	}
	approval := Approval{Approved: true, GrantedBy: invoker, GrantedAt: now}
	if err := putJSON(ctx, approvalKey, approval, "reader approval"); err != nil {
		return err
	}

	return emitEvent(ctx, ReaderApprovalGrantedEvent, approvalGrantedPayload{
		ContractID: contractID,
		Identity:   reader,
		TokenID:    tokenID,
		GrantedBy:  invoker,
	})
}

// hasApproval reads an approval flag under a composite key.
func hasApproval(ctx contractapi.TransactionContextInterface, key, itemType string) (bool, error) {
	var approval Approval
	exists, err := getJSON(ctx, key, &approval, itemType)
	if err != nil {
		return false, err
	}
	return exists && approval.Approved, nil
}

// MintMaterial allocates the next sequential token id on the instance and
// binds the content pointer to it. The invoker must be the administrator or
// hold a live mint approval; a non-administrator's approval is cleared by
// the mint, so a second mint needs a fresh grant.
func (c *RecordContract) MintMaterial(ctx contractapi.TransactionContextInterface, contractID, contentPointer string) (*Material, error) {
	invoker, err := invokerID(ctx)
	if err != nil {
		return nil, err
	}
	instance, instanceKey, err := loadInstance(ctx, contractID)
	if err != nil {
		return nil, err
	}

	approvalKey, err := createMintApprovalKey(ctx, contractID, invoker)
	if err != nil {
		return nil, err
	}
	if instance.Administrator != invoker {
		approved, err := hasApproval(ctx, approvalKey, "mint approval")
		if err != nil {
			return nil, err
		}
		if !approved {
			return nil, &MintNotApprovedError{ContractID: contractID, Identity: invoker}
		}
	}

	now, err := txTime(ctx)
	if err != nil {
		return nil, err
	}

	material := Material{
		TokenID:        instance.TokenCounter,
		ContentPointer: contentPointer,
		MintedBy:       invoker,
		MintedAt:       now,
		UpdatedAt:      now,
	}
	materialKey, err := createMaterialKey(ctx, contractID, material.TokenID)
	if err != nil {
		return nil, err
	}
	if err := putJSON(ctx, materialKey, material, "material"); err != nil {
		return nil, err
	}

	instance.TokenCounter++
	if err := putJSON(ctx, instanceKey, instance, "record instance"); err != nil {
		return nil, err
	}

	if instance.Administrator != invoker {
		// One-shot: the approval is spent by this mint.
		cleared := Approval{Approved: false}
		if err := putJSON(ctx, approvalKey, cleared, "mint approval"); err != nil {
			return nil, err
		}
	}

	if err := emitEvent(ctx, MaterialMintedEvent, materialMintedPayload{
		ContractID: contractID,
		TokenID:    material.TokenID,
		MintedBy:   invoker,
	}); err != nil {
		return nil, err
	}

	return &material, nil
}

// UpdateContentPointer rewrites the content pointer of a minted material.
// The invoker must be the administrator or hold a standing editor approval;
// the one-shot mint approval does not open this gate.
func (c *RecordContract) UpdateContentPointer(ctx contractapi.TransactionContextInterface, contractID string, tokenID uint64, contentPointer string) error {
	invoker, err := invokerID(ctx)
	if err != nil {
		return err
	}
	instance, _, err := loadInstance(ctx, contractID)
	if err != nil {
		return err
	}

	if instance.Administrator != invoker {
		approvalKey, err := createEditorApprovalKey(ctx, contractID, invoker)
		if err != nil {
			return err
		}
		approved, err := hasApproval(ctx, approvalKey, "editor approval")
		if err != nil {
			return err
		}
		if !approved {
			return &MintNotApprovedError{ContractID: contractID, Identity: invoker}
		}
	}

	materialKey, err := createMaterialKey(ctx, contractID, tokenID)
	if err != nil {
		return err
	}
	var material Material
	exists, err := getJSON(ctx, materialKey, &material, "material")
	if err != nil {
		return err
	}
	if !exists {
		return &NotFoundError{Item: "material", Key: materialKey}
	}

	now, err := txTime(ctx)
	if err != nil {
		return err
	}
	material.ContentPointer = contentPointer
	material.UpdatedAt = now
	if err := putJSON(ctx, materialKey, material, "material"); err != nil {
		return err
	}

	return emitEvent(ctx, ContentPointerUpdatedEvent, contentPointerUpdatedPayload{
		ContractID: contractID,
		TokenID:    tokenID,
		UpdatedBy:  invoker,
	})
}

// ReadContentPointer returns the stored content pointer of a token. The
// invoker must hold standing reader approval for this token, unless the
// instance's needsFunding flag suspends the per-token check for everyone.
func (c *RecordContract) ReadContentPointer(ctx contractapi.TransactionContextInterface, contractID string, tokenID uint64) (string, error) {
	invoker, err := invokerID(ctx)
	if err != nil {
		return "", err
	}
	instance, _, err := loadInstance(ctx, contractID)
	if err != nil {
		return "", err
	}

	if !instance.NeedsFunding {
		approvalKey, err := createReaderApprovalKey(ctx, contractID, tokenID, invoker)
		if err != nil {
			return "", err
		}
		approved, err := hasApproval(ctx, approvalKey, "reader approval")
		if err != nil {
			return "", err
		}
		if !approved {
			return "", &ReadNotApprovedError{ContractID: contractID, TokenID: tokenID, Identity: invoker}
		}
	}

	materialKey, err := createMaterialKey(ctx, contractID, tokenID)
	if err != nil {
		return "", err
	}
	var material Material
	exists, err := getJSON(ctx, materialKey, &material, "material")
	if err != nil {
		return "", err
	}
	if !exists {
		return "", &NotFoundError{Item: "material", Key: materialKey}
	}

	return material.ContentPointer, nil
}

// RaiseFundingRequest flags the instance as needing funding and registers
// the request with the registry. Only the administrator of a PATIENT
// instance may raise one; a failure from the registry aborts the whole
// transaction. The non-reentrant guard covers the nested registry call.
func (c *RecordContract) RaiseFundingRequest(ctx contractapi.TransactionContextInterface, contractID, statement string, requestedUsd uint64) (*FundingRequest, error) {
	if err := c.fundingGuard.enter("RaiseFundingRequest"); err != nil {
		return nil, err
	}
	defer c.fundingGuard.exit()

	instance, instanceKey, invoker, err := requireAdministrator(ctx, contractID, "RaiseFundingRequest")
	if err != nil {
		return nil, err
	}
	if instance.RoleType != RolePatient {
		return nil, &RoleMismatchError{Op: "RaiseFundingRequest", Identity: invoker, Required: string(RolePatient)}
	}
	if c.registrar == nil {
		return nil, errors.New("record contract has no funding registrar wired")
	}

	instance.NeedsFunding = true
	if err := putJSON(ctx, instanceKey, instance, "record instance"); err != nil {
		return nil, err
	}

	request, err := c.registrar.registerFunding(ctx, invoker, contractID, requestedUsd)
	if err != nil {
		return nil, err
	}

	if err := emitEvent(ctx, FundingRequestedEvent, fundingRequestedPayload{
		Index:         request.Index,
		Requester:     request.Requester,
		ContractID:    request.ContractID,
		RequestedUsd:  request.RequestedUsd,
		OracleRoundID: request.OracleRoundID,
		Statement:     statement,
	}); err != nil {
		return nil, err
	}

	return request, nil
}

// GetRecordInstance returns the instance metadata for a contract id.
func (c *RecordContract) GetRecordInstance(ctx contractapi.TransactionContextInterface, contractID string) (*RecordInstance, error) {
	instance, _, err := loadInstance(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// GetMaterials lists the instance's materials. Restricted to the
// administrator so the listing does not leak gated content pointers.
func (c *RecordContract) GetMaterials(ctx contractapi.TransactionContextInterface, contractID string) ([]Material, error) {
	_, _, _, err := requireAdministrator(ctx, contractID, "GetMaterials")
	if err != nil {
		return nil, err
	}

	iterator, err := ctx.GetStub().GetStateByPartialCompositeKey(materialObjectType, []string{contractID})
	if err != nil {
		return nil, errors.Wrap(err, (&GetLedgerError{LedgerKey: contractID, LedgerItem: "materials"}).Error())
	}
	defer iterator.Close()

	materials := []Material{}
	for iterator.HasNext() {
		response, err := iterator.Next()
		if err != nil {
			return nil, errors.Wrap(err, "error retrieving next query result")
		}
		var material Material
		if err := json.Unmarshal(response.Value, &material); err != nil {
			return nil, errors.Wrap(err, (&UnmarshalError{Type: "material"}).Error())
		}
		materials = append(materials, material)
	}
	return materials, nil
}
