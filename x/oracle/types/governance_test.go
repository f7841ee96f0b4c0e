package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAdminActionTaggedJSON(t *testing.T) {
	threshold := uint64(100)
	tests := []struct {
		action AdminAction
		want   string
	}{
		{AddNodeOperator{AccountID: "op"}, `{"type":"AddNodeOperator","detail":{"account_id":"op"}}`},
		{RemoveNodeOperator{AccountID: "op"}, `{"type":"RemoveNodeOperator","detail":{"account_id":"op"}}`},
		{ApproveCodeHash{CodeHash: "h"}, `{"type":"ApproveCodeHash","detail":{"code_hash":"h"}}`},
		{RemoveCodeHash{CodeHash: "h"}, `{"type":"RemoveCodeHash","detail":{"code_hash":"h"}}`},
		{ApproveAttestation{CodeHash: "h", MrEnclave: "m"}, `{"type":"ApproveAttestation","detail":{"code_hash":"h","mr_enclave":"m"}}`},
		{RemoveAttestation{CodeHash: "h"}, `{"type":"RemoveAttestation","detail":{"code_hash":"h"}}`},
		{Pause{}, `{"type":"Pause"}`},
		{Resume{}, `{"type":"Resume"}`},
		{UpdateConfig{RecencyThreshold: &threshold}, `{"type":"UpdateConfig","detail":{"recency_threshold":100}}`},
	}

	require.Len(t, tests, len(ActionTypes()))

	for _, tc := range tests {
		t.Run(tc.action.Type(), func(t *testing.T) {
			bz, err := MarshalAdminAction(tc.action)
			require.NoError(t, err)
			require.JSONEq(t, tc.want, string(bz))

			decoded, err := UnmarshalAdminAction(bz)
			require.NoError(t, err)
			require.Equal(t, tc.action, decoded)
		})
	}
}

func TestUnmarshalAdminActionErrors(t *testing.T) {
	for _, input := range []string{
		`not json`,
		`{"type":"Selfdestruct"}`,
		`{"type":"AddNodeOperator","detail":{"account_id":7}}`,
	} {
		_, err := UnmarshalAdminAction([]byte(input))
		require.ErrorIs(t, err, ErrInvalidAction, input)
	}

	_, err := MarshalAdminAction(nil)
	require.ErrorIs(t, err, ErrInvalidAction)
}

func TestNormalizeAdminAction(t *testing.T) {
	require.Equal(t, AdminAction(Pause{}), NormalizeAdminAction(&Pause{}))
	require.Equal(t, AdminAction(RemoveCodeHash{CodeHash: "h"}), NormalizeAdminAction(&RemoveCodeHash{CodeHash: "h"}))
	require.Equal(t, AdminAction(Resume{}), NormalizeAdminAction(Resume{}))
}

func TestAdminProposalJSON(t *testing.T) {
	proposal := AdminProposal{
		ID:           4,
		Proposer:     "alice",
		Action:       ApproveAttestation{CodeHash: "h", MrEnclave: "m"},
		ScheduledFor: 50,
	}

	bz, err := json.Marshal(proposal)
	require.NoError(t, err)
	require.Contains(t, string(bz), `"approvals":[]`)
	require.Contains(t, string(bz), `"type":"ApproveAttestation"`)

	var decoded AdminProposal
	require.NoError(t, json.Unmarshal(bz, &decoded))
	proposal.Approvals = []string{}
	require.Equal(t, proposal, decoded)
	require.False(t, decoded.HasApproval("bob"))
}

func TestAdminActionValidateBasic(t *testing.T) {
	require.ErrorIs(t, AddNodeOperator{}.ValidateBasic(), ErrInvalidAccount)
	require.ErrorIs(t, RemoveNodeOperator{AccountID: " "}.ValidateBasic(), ErrInvalidAccount)
	require.ErrorIs(t, ApproveCodeHash{}.ValidateBasic(), ErrInvalidAction)
	require.ErrorIs(t, ApproveAttestation{CodeHash: "h"}.ValidateBasic(), ErrInvalidAction)
	require.NoError(t, ApproveAttestation{CodeHash: "h", MrEnclave: "m"}.ValidateBasic())
	require.NoError(t, UpdateConfig{}.ValidateBasic())
}

func TestRequiredApprovals(t *testing.T) {
	tests := []struct {
		voters int
		quorum uint32
		want   int
	}{
		{0, 5_000, 0},
		{1, 1, 1},
		{2, 5_000, 1},
		{3, 5_000, 2},
		{3, 6_000, 2},
		{3, 6_667, 3},
		{4, 10_000, 4},
		{10, 1, 1},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, RequiredApprovals(tc.voters, tc.quorum), "%d voters at %d bps", tc.voters, tc.quorum)
	}
}

func TestRequiredApprovalsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		voters := rapid.IntRange(1, 500).Draw(t, "voters")
		quorum := rapid.Uint32Range(1, MaxQuorumBps).Draw(t, "quorum")

		required := RequiredApprovals(voters, quorum)
		if required < 1 || required > voters {
			t.Fatalf("required %d outside [1, %d]", required, voters)
		}
		// smallest count whose share of the voter set reaches quorum
		if uint64(required)*10_000 < uint64(voters)*uint64(quorum) {
			t.Fatalf("required %d does not reach quorum", required)
		}
		if required > 1 && uint64(required-1)*10_000 >= uint64(voters)*uint64(quorum) {
			t.Fatalf("required %d is not minimal", required)
		}
	})
}

func TestNormalizeQuorum(t *testing.T) {
	quorum, err := NormalizeQuorum(0)
	require.NoError(t, err)
	require.Equal(t, uint32(1), quorum)

	quorum, err = NormalizeQuorum(MaxQuorumBps)
	require.NoError(t, err)
	require.Equal(t, MaxQuorumBps, quorum)

	_, err = NormalizeQuorum(MaxQuorumBps + 1)
	require.ErrorIs(t, err, ErrInvalidQuorum)
}
