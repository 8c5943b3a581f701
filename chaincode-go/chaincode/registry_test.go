package chaincode

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MedVaultTech/RecordNetwork/chaincode-go/testutils"
)

const (
	patientA = "x509::CN=patientA::CN=ca.org1"
	patientB = "x509::CN=patientB::CN=ca.org1"
	doctorD  = "x509::CN=doctorD::CN=ca.org1"
	readerR  = "x509::CN=readerR::CN=ca.org1"
	oracleO  = "x509::CN=oracleO::CN=ca.org1"
)

func setupRegistry(t *testing.T) (*RegistryContract, *RecordContract, *testutils.TransactionContext) {
	t.Helper()
	registry := NewRegistryContract()
	record := NewRecordContract(registry)
	ctx := testutils.NewTransactionContext(patientA)
	return registry, record, ctx
}

func registerPatient(t *testing.T, registry *RegistryContract, ctx *testutils.TransactionContext) string {
	t.Helper()
	resp, err := registry.RegisterParticipant(ctx, string(RolePatient))
	require.NoError(t, err)
	require.NotEmpty(t, resp.ContractID)
	return resp.ContractID
}

func TestLookupRecordContractUnregistered(t *testing.T) {
	registry, _, ctx := setupRegistry(t)

	contractID, err := registry.LookupRecordContract(ctx, patientB)
	require.NoError(t, err)
	assert.Empty(t, contractID)
}

func TestRegisterParticipantPatientDeploysRecordContract(t *testing.T) {
	registry, record, ctx := setupRegistry(t)

	resp, err := registry.RegisterParticipant(ctx, string(RolePatient))
	require.NoError(t, err)
	assert.True(t, resp.Deployed)
	assert.NotEmpty(t, resp.ContractID)
	assert.Equal(t, RolePatient, resp.Role)

	contractID, err := registry.LookupRecordContract(ctx, patientA)
	require.NoError(t, err)
	assert.Equal(t, resp.ContractID, contractID)

	instance, err := record.GetRecordInstance(ctx, contractID)
	require.NoError(t, err)
	assert.Equal(t, patientA, instance.Administrator)
	assert.Equal(t, RolePatient, instance.RoleType)
	assert.False(t, instance.NeedsFunding)
	assert.Zero(t, instance.TokenCounter)

	assert.Equal(t, ParticipantRegisteredEvent, ctx.Stub.LastEventName)
	var payload participantRegisteredPayload
	require.NoError(t, json.Unmarshal(ctx.Stub.LastEventPayload, &payload))
	assert.Equal(t, patientA, payload.Identity)
	assert.Equal(t, resp.ContractID, payload.ContractID)
	assert.True(t, payload.Deployed)
}

func TestRegisterParticipantNonPatientDoesNotDeploy(t *testing.T) {
	registry, _, ctx := setupRegistry(t)
	doctorCtx := ctx.As(doctorD)

	resp, err := registry.RegisterParticipant(doctorCtx, string(RoleDoctor))
	require.NoError(t, err)
	assert.False(t, resp.Deployed)
	assert.Empty(t, resp.ContractID)

	contractID, err := registry.LookupRecordContract(ctx, doctorD)
	require.NoError(t, err)
	assert.Empty(t, contractID)

	role, err := registry.GetParticipantRole(ctx, doctorD)
	require.NoError(t, err)
	assert.Equal(t, string(RoleDoctor), role)
}

func TestRegisterParticipantPatientIdempotentDeployment(t *testing.T) {
	registry, _, ctx := setupRegistry(t)

	first := registerPatient(t, registry, ctx)

	ctx.Stub.SetTxDetails("tx1", 1700000100)
	resp, err := registry.RegisterParticipant(ctx, string(RolePatient))
	require.NoError(t, err)
	assert.False(t, resp.Deployed)
	assert.Equal(t, first, resp.ContractID)

	contractID, err := registry.LookupRecordContract(ctx, patientA)
	require.NoError(t, err)
	assert.Equal(t, first, contractID)
}

func TestRegisterParticipantRoleOverwriteKeepsDirectory(t *testing.T) {
	registry, _, ctx := setupRegistry(t)

	contractID := registerPatient(t, registry, ctx)

	// Last write wins on the role; the tracked record contract survives.
	_, err := registry.RegisterParticipant(ctx, string(RoleData))
	require.NoError(t, err)

	role, err := registry.GetParticipantRole(ctx, patientA)
	require.NoError(t, err)
	assert.Equal(t, string(RoleData), role)

	tracked, err := registry.LookupRecordContract(ctx, patientA)
	require.NoError(t, err)
	assert.Equal(t, contractID, tracked)
}

func TestRegisterParticipantRejectsUnknownRole(t *testing.T) {
	registry, _, ctx := setupRegistry(t)

	_, err := registry.RegisterParticipant(ctx, "NURSE")
	require.Error(t, err)
}

func TestGetParticipantRoleUnregistered(t *testing.T) {
	registry, _, ctx := setupRegistry(t)

	role, err := registry.GetParticipantRole(ctx, readerR)
	require.NoError(t, err)
	assert.Empty(t, role)
}

func TestGetFundingRequestMissing(t *testing.T) {
	registry, _, ctx := setupRegistry(t)

	_, err := registry.GetFundingRequest(ctx, 3)
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
}
