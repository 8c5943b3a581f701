package chaincode

import "fmt"

// Role is the fixed participant taxonomy. PATIENT is the record-owning
// role: it is the only one for which the registry deploys a record
// contract instance.
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleService Role = "SERVICE"
	RoleData    Role = "DATA"
)

// ParseRole validates a role string coming in from a transaction argument.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleService, RoleData:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Participant is the registry's directory entry for one identity.
// Re-registration overwrites the entry; last write wins.
type Participant struct {
	Identity     string `json:"identity"`
	Role         Role   `json:"role"`
	RegisteredAt int64  `json:"registeredAt"`
}

// RecordInstance is the per-patient record contract state. It is created
// once when a PATIENT registers and is bound irrevocably to that identity
// as administrator.
type RecordInstance struct {
	ContractID    string `json:"contractID"`
	Administrator string `json:"administrator"`
	RoleType      Role   `json:"roleType"`
	NeedsFunding  bool   `json:"needsFunding"`
	TokenCounter  uint64 `json:"tokenCounter"`
	DeployedAt    int64  `json:"deployedAt"`
}

// Material is one ownership token with its off-chain content pointer.
// The pointer is opaque to the chaincode.
type Material struct {
	TokenID        uint64 `json:"tokenID"`
	ContentPointer string `json:"contentPointer"`
	MintedBy       string `json:"mintedBy"`
	MintedAt       int64  `json:"mintedAt"`
	UpdatedAt      int64  `json:"updatedAt"`
}

// Approval is a stored permission flag. Mint approvals are one-shot and
// reset to false when consumed; editor and reader approvals are standing.
type Approval struct {
	Approved  bool   `json:"approved"`
	GrantedBy string `json:"grantedBy"`
	GrantedAt int64  `json:"grantedAt"`
}
