package keeper_test

import (
	sdkmath "cosmossdk.io/math"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

func (suite *KeeperTestSuite) TestSetNodeAccountRequiresWhitelist() {
	err := suite.keeper.SetNodeAccount(suite.ctx, "op-a", "node-a")
	suite.Require().ErrorIs(err, types.ErrOperatorNotWhitelisted)

	suite.Require().NoError(suite.keeper.AddNodeOperator(suite.ctx, owner, "op-a"))
	suite.Require().NoError(suite.keeper.SetNodeAccount(suite.ctx, "op-a", "node-a"))

	node, found := suite.keeper.GetOperatorNode(suite.ctx, "op-a")
	suite.Require().True(found)
	suite.Require().Equal("node-a", node)
	operator, found := suite.keeper.GetNodeOperator(suite.ctx, "node-a")
	suite.Require().True(found)
	suite.Require().Equal("op-a", operator)

	// binding is not authorization
	suite.Require().False(suite.keeper.IsAuthorized(suite.ctx, "node-a"))
}

func (suite *KeeperTestSuite) TestSetNodeAccountRejectsForeignNode() {
	suite.Require().NoError(suite.keeper.AddNodeOperator(suite.ctx, owner, "op-a"))
	suite.Require().NoError(suite.keeper.AddNodeOperator(suite.ctx, owner, "op-b"))
	suite.Require().NoError(suite.keeper.SetNodeAccount(suite.ctx, "op-a", "node-a"))

	err := suite.keeper.SetNodeAccount(suite.ctx, "op-b", "node-a")
	suite.Require().ErrorIs(err, types.ErrNodeAlreadyBound)

	operator, _ := suite.keeper.GetNodeOperator(suite.ctx, "node-a")
	suite.Require().Equal("op-a", operator)
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestRebindSameNodeKeepsAuthorization() {
	suite.at(1_000)
	suite.authorizeNode("op-a", "node-a")

	suite.Require().NoError(suite.keeper.SetNodeAccount(suite.ctx, "op-a", "node-a"))
	suite.Require().True(suite.keeper.IsAuthorized(suite.ctx, "node-a"))
}

func (suite *KeeperTestSuite) TestRebindDemotesPreviousNode() {
	suite.at(1_000)
	suite.addAsset("X", 4, 1)
	suite.addAsset("Y", 2, 1)
	suite.authorizeNode("op-a", "node-1")
	suite.report("node-1", "X", 35000, 4)
	suite.report("node-1", "Y", 100, 2)

	suite.Require().NoError(suite.keeper.SetNodeAccount(suite.ctx, "op-a", "node-2"))

	suite.Require().False(suite.keeper.IsAuthorized(suite.ctx, "node-1"))
	_, found := suite.keeper.GetNodeDetails(suite.ctx, "node-1")
	suite.Require().False(found)
	_, found = suite.keeper.GetNodeOperator(suite.ctx, "node-1")
	suite.Require().False(found)
	for _, asset := range []string{"X", "Y"} {
		_, found = suite.keeper.GetPriceReports(suite.ctx, asset)
		suite.Require().False(found, asset)
		_, found = suite.keeper.GetAggregatedPrice(suite.ctx, asset)
		suite.Require().False(found, asset)
	}

	suite.Require().NoError(suite.keeper.RegisterNode(suite.ctx, "node-2", codeHash, types.AttestationData{
		MrEnclave: mrEnclave,
		IssuedAt:  1_000,
	}))
	suite.Require().Equal([]string{"node-2"}, suite.keeper.GetAuthorizedNodes(suite.ctx))

	// the demoted node can be bound again by another operator
	suite.Require().NoError(suite.keeper.AddNodeOperator(suite.ctx, owner, "op-b"))
	suite.Require().NoError(suite.keeper.SetNodeAccount(suite.ctx, "op-b", "node-1"))
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestRegisterNodeChecks() {
	const now = uint64(1_000_000_000_000)

	tests := []struct {
		name        string
		setup       func()
		node        string
		codeHash    string
		attestation types.AttestationData
		err         error
		class       types.ErrorClass
	}{
		{
			name:        "unbound node",
			node:        "node-z",
			codeHash:    codeHash,
			attestation: types.AttestationData{MrEnclave: mrEnclave, IssuedAt: now},
			err:         types.ErrNodeNotBound,
			class:       types.ClassNotFound,
		},
		{
			name:        "unapproved code hash",
			node:        "node-a",
			codeHash:    "other-hash",
			attestation: types.AttestationData{MrEnclave: mrEnclave, IssuedAt: now},
			err:         types.ErrCodeHashNotApproved,
			class:       types.ClassAttestation,
		},
		{
			name: "no approved measurement",
			setup: func() {
				suite.Require().NoError(suite.keeper.ApproveCodeHash(suite.ctx, owner, "bare-hash"))
			},
			node:        "node-a",
			codeHash:    "bare-hash",
			attestation: types.AttestationData{MrEnclave: mrEnclave, IssuedAt: now},
			err:         types.ErrAttestationNotApproved,
			class:       types.ClassAttestation,
		},
		{
			name:        "measurement mismatch",
			node:        "node-a",
			codeHash:    codeHash,
			attestation: types.AttestationData{MrEnclave: "forged", IssuedAt: now},
			err:         types.ErrMeasurementMismatch,
			class:       types.ClassAttestation,
		},
		{
			name:        "attestation too old",
			node:        "node-a",
			codeHash:    codeHash,
			attestation: types.AttestationData{MrEnclave: mrEnclave, IssuedAt: now - types.DefaultAttestationMaxAge - 1},
			err:         types.ErrAttestationExpired,
			class:       types.ClassAttestation,
		},
		{
			name:        "attestation at max age",
			node:        "node-a",
			codeHash:    codeHash,
			attestation: types.AttestationData{MrEnclave: mrEnclave, IssuedAt: now - types.DefaultAttestationMaxAge},
		},
		{
			name:        "attestation from the future",
			node:        "node-a",
			codeHash:    codeHash,
			attestation: types.AttestationData{MrEnclave: mrEnclave, IssuedAt: now + 1_000_000},
		},
		{
			name: "operator removed after binding",
			setup: func() {
				suite.Require().NoError(suite.keeper.AddNodeOperator(suite.ctx, owner, "op-b"))
				suite.Require().NoError(suite.keeper.SetNodeAccount(suite.ctx, "op-b", "node-b"))
				// drop the operator from the whitelist without touching the binding
				suite.keeper.DeleteOperatorForTest(suite.ctx, "op-b")
			},
			node:        "node-b",
			codeHash:    codeHash,
			attestation: types.AttestationData{MrEnclave: mrEnclave, IssuedAt: now},
			err:         types.ErrOperatorNotWhitelisted,
			class:       types.ClassAuthorization,
		},
	}

	suite.at(now)
	suite.approveEnclave()
	suite.Require().NoError(suite.keeper.AddNodeOperator(suite.ctx, owner, "op-a"))
	suite.Require().NoError(suite.keeper.SetNodeAccount(suite.ctx, "op-a", "node-a"))

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			if tc.setup != nil {
				tc.setup()
			}
			err := suite.keeper.RegisterNode(suite.ctx, tc.node, tc.codeHash, tc.attestation)
			if tc.err != nil {
				suite.Require().ErrorIs(err, tc.err)
				suite.Require().Equal(tc.class, types.ClassOf(err))
				return
			}
			suite.Require().NoError(err)

			record, found := suite.keeper.GetNodeDetails(suite.ctx, tc.node)
			suite.Require().True(found)
			suite.Require().Equal(types.OracleNode{
				AccountID:    tc.node,
				OperatorID:   "op-a",
				RegisteredAt: now,
				CodeHash:     tc.codeHash,
				LastReport:   0,
				Active:       true,
			}, record)
		})
	}
}

func (suite *KeeperTestSuite) TestReRegistrationResetsLastReport() {
	suite.at(1_000)
	suite.addAsset("X", 4, 1)
	suite.authorizeNode("op-a", "node-a")
	suite.report("node-a", "X", 1, 4)

	suite.at(2_000)
	suite.Require().NoError(suite.keeper.RegisterNode(suite.ctx, "node-a", codeHash, types.AttestationData{
		MrEnclave: mrEnclave,
		IssuedAt:  2_000,
	}))
	record, _ := suite.keeper.GetNodeDetails(suite.ctx, "node-a")
	suite.Require().Equal(uint64(0), record.LastReport)
	suite.Require().Equal(uint64(2_000), record.RegisteredAt)
}

func (suite *KeeperTestSuite) TestCodeHashApprovalIsTwoTier() {
	err := suite.keeper.ApproveAttestation(suite.ctx, owner, codeHash, mrEnclave)
	suite.Require().ErrorIs(err, types.ErrCodeHashNotApproved)

	suite.approveEnclave()
	enclave, found := suite.keeper.GetApprovedEnclave(suite.ctx, codeHash)
	suite.Require().True(found)
	suite.Require().Equal(mrEnclave, enclave)
	suite.Require().Equal([]types.CodeHashApproval{{CodeHash: codeHash, MrEnclave: mrEnclave}}, suite.keeper.GetCodeHashes(suite.ctx))

	suite.Require().NoError(suite.keeper.RemoveAttestation(suite.ctx, owner, codeHash))
	_, found = suite.keeper.GetApprovedEnclave(suite.ctx, codeHash)
	suite.Require().False(found)
	suite.Require().True(suite.keeper.IsCodeHashApproved(suite.ctx, codeHash))

	suite.approveEnclave()
	suite.Require().NoError(suite.keeper.RemoveCodeHash(suite.ctx, owner, codeHash))
	suite.Require().False(suite.keeper.IsCodeHashApproved(suite.ctx, codeHash))
	_, found = suite.keeper.GetApprovedEnclave(suite.ctx, codeHash)
	suite.Require().False(found)
	suite.Require().Empty(suite.keeper.GetCodeHashes(suite.ctx))
}

func (suite *KeeperTestSuite) TestRemoveOperatorCascade() {
	suite.at(1_000)
	suite.addAsset("X", 4, 2)
	suite.addAsset("Y", 2, 1)
	suite.addAsset("Z", 2, 1)
	suite.authorizeNode("op-a", "node-a")
	suite.authorizeNode("op-b", "node-b")

	suite.report("node-a", "X", 35000, 4)
	suite.report("node-b", "X", 36000, 4)
	suite.report("node-a", "Y", 500, 2)
	suite.report("node-b", "Z", 700, 2)

	_, found := suite.keeper.GetPrice(suite.ctx, "X")
	suite.Require().True(found)

	affected, err := suite.keeper.RemoveNodeOperator(suite.ctx, owner, "op-a")
	suite.Require().NoError(err)
	suite.Require().Equal([]string{"X", "Y"}, affected)

	suite.Require().False(suite.keeper.IsWhitelistedOperator(suite.ctx, "op-a"))
	suite.Require().False(suite.keeper.IsAuthorized(suite.ctx, "node-a"))
	_, found = suite.keeper.GetOperatorNode(suite.ctx, "op-a")
	suite.Require().False(found)
	_, found = suite.keeper.GetNodeDetails(suite.ctx, "node-a")
	suite.Require().False(found)

	// X drops below its two-source threshold: report kept, price cleared
	reports, found := suite.keeper.GetPriceReports(suite.ctx, "X")
	suite.Require().True(found)
	suite.Require().Len(reports, 1)
	suite.Require().Equal("node-b", reports[0].OracleID)
	_, found = suite.keeper.GetAggregatedPrice(suite.ctx, "X")
	suite.Require().False(found)

	// Y loses its only report
	_, found = suite.keeper.GetPriceReports(suite.ctx, "Y")
	suite.Require().False(found)

	// Z is untouched
	data, found := suite.keeper.GetPrice(suite.ctx, "Z")
	suite.Require().True(found)
	suite.Require().Equal(sdkmath.NewUint(700), data.Price.Multiplier)

	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestRemoveUnboundOperator() {
	suite.Require().NoError(suite.keeper.AddNodeOperator(suite.ctx, owner, "op-a"))
	affected, err := suite.keeper.RemoveNodeOperator(suite.ctx, owner, "op-a")
	suite.Require().NoError(err)
	suite.Require().Empty(affected)
	suite.Require().Empty(suite.keeper.GetOperators(suite.ctx))
}
