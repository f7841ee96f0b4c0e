package keeper_test

import (
	sdkmath "cosmossdk.io/math"

	"github.com/paw-chain/tee-oracle/x/oracle/keeper"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

func (suite *KeeperTestSuite) TestMsgServerOnboardingFlow() {
	ms := keeper.NewMsgServerImpl(suite.keeper)
	ctx := suite.ctx
	require := suite.Require()

	_, err := ms.AddAsset(ctx, &types.MsgAddAsset{Caller: owner, Asset: types.Asset{ID: "BTC", Decimals: 2, Active: true, MinSources: 1}})
	require.NoError(err)
	_, err = ms.ApproveCodeHash(ctx, &types.MsgApproveCodeHash{Caller: owner, CodeHash: codeHash})
	require.NoError(err)
	_, err = ms.ApproveAttestation(ctx, &types.MsgApproveAttestation{Caller: owner, CodeHash: codeHash, MrEnclave: mrEnclave})
	require.NoError(err)
	_, err = ms.AddNodeOperator(ctx, &types.MsgAddNodeOperator{Caller: owner, Operator: "op-a"})
	require.NoError(err)
	_, err = ms.SetNodeAccount(ctx, &types.MsgSetNodeAccount{Caller: "op-a", Node: "node-a"})
	require.NoError(err)
	_, err = ms.RegisterNode(ctx, &types.MsgRegisterNode{
		Caller:      "node-a",
		CodeHash:    codeHash,
		Attestation: types.AttestationData{MrEnclave: mrEnclave},
	})
	require.NoError(err)
	_, err = ms.ReportPrice(ctx, &types.MsgReportPrice{Caller: "node-a", AssetID: "BTC", Multiplier: sdkmath.NewUint(6_500_000), Decimals: 2})
	require.NoError(err)

	data, found := suite.keeper.GetPrice(ctx, "BTC")
	require.True(found)
	require.Equal(sdkmath.NewUint(6_500_000), data.Price.Multiplier)

	resp, err := ms.RemoveNodeOperator(ctx, &types.MsgRemoveNodeOperator{Caller: owner, Operator: "op-a"})
	require.NoError(err)
	require.Equal([]string{"BTC"}, resp.AffectedAssets)

	resp, err = ms.RemoveNodeOperator(ctx, &types.MsgRemoveNodeOperator{Caller: owner, Operator: "op-a"})
	require.NoError(err)
	require.NotNil(resp.AffectedAssets)
	require.Empty(resp.AffectedAssets)
}

func (suite *KeeperTestSuite) TestMsgServerValidatesBeforeKeeper() {
	ms := keeper.NewMsgServerImpl(suite.keeper)
	require := suite.Require()
	suite.authorizeNode("op-a", "node-a")
	_, err := ms.ConfigureAdminRole(suite.ctx, &types.MsgConfigureAdminRole{Caller: owner, Proposers: []string{"alice"}, Voters: []string{"bob"}})
	require.NoError(err)

	_, err = ms.Pause(suite.ctx, &types.MsgPause{})
	require.ErrorIs(err, types.ErrMissingCaller)

	_, err = ms.ReportPrice(suite.ctx, &types.MsgReportPrice{Caller: "node-a", AssetID: "BTC"})
	require.ErrorIs(err, types.ErrInvalidPrice)

	_, err = ms.SetAttestationMaxAge(suite.ctx, &types.MsgSetAttestationMaxAge{Caller: owner})
	require.ErrorIs(err, types.ErrInvalidMaxAge)

	_, err = ms.ProposeAction(suite.ctx, &types.MsgProposeAction{Caller: "alice"})
	require.ErrorIs(err, types.ErrInvalidAction)
}

func (suite *KeeperTestSuite) TestMsgServerChecksAuthorityBeforePayload() {
	ms := keeper.NewMsgServerImpl(suite.keeper)

	tests := []struct {
		name  string
		send  func() error
		err   error
		class types.ErrorClass
	}{
		{"add asset", func() error {
			_, err := ms.AddAsset(suite.ctx, &types.MsgAddAsset{Caller: "mallory"})
			return err
		}, types.ErrUnauthorized, types.ClassAuthorization},
		{"configure admin role", func() error {
			_, err := ms.ConfigureAdminRole(suite.ctx, &types.MsgConfigureAdminRole{Caller: "mallory", QuorumBps: 20_000})
			return err
		}, types.ErrUnauthorized, types.ClassAuthorization},
		{"max age", func() error {
			_, err := ms.SetAttestationMaxAge(suite.ctx, &types.MsgSetAttestationMaxAge{Caller: "mallory"})
			return err
		}, types.ErrUnauthorized, types.ClassAuthorization},
		{"bind node", func() error {
			_, err := ms.SetNodeAccount(suite.ctx, &types.MsgSetNodeAccount{Caller: "mallory"})
			return err
		}, types.ErrOperatorNotWhitelisted, types.ClassAuthorization},
		{"register node", func() error {
			_, err := ms.RegisterNode(suite.ctx, &types.MsgRegisterNode{Caller: "mallory"})
			return err
		}, types.ErrNodeNotBound, types.ClassNotFound},
		{"report", func() error {
			_, err := ms.ReportPrice(suite.ctx, &types.MsgReportPrice{Caller: "mallory"})
			return err
		}, types.ErrNodeNotAuthorized, types.ClassAuthorization},
		{"propose", func() error {
			_, err := ms.ProposeAction(suite.ctx, &types.MsgProposeAction{Caller: "mallory"})
			return err
		}, types.ErrNotProposer, types.ClassAuthorization},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			err := tc.send()
			suite.Require().ErrorIs(err, tc.err)
			suite.Require().Equal(tc.class, types.ClassOf(err))
		})
	}
}

func (suite *KeeperTestSuite) TestMsgServerGovernanceFlow() {
	ms := keeper.NewMsgServerImpl(suite.keeper)
	require := suite.Require()

	_, err := ms.ConfigureAdminRole(suite.ctx, &types.MsgConfigureAdminRole{
		Caller:    owner,
		Proposers: []string{"alice"},
		Voters:    []string{"bob"},
		QuorumBps: 10_000,
	})
	require.NoError(err)

	proposed, err := ms.ProposeAction(suite.ctx, &types.MsgProposeAction{Caller: "alice", Action: &types.Pause{}})
	require.NoError(err)
	require.Equal(uint64(1), proposed.ProposalID)

	_, err = ms.ExecuteProposal(suite.ctx, &types.MsgExecuteProposal{Caller: "alice", ProposalID: 1})
	require.ErrorIs(err, types.ErrQuorumNotMet)

	_, err = ms.ApproveProposal(suite.ctx, &types.MsgApproveProposal{Caller: "bob", ProposalID: 1})
	require.NoError(err)
	_, err = ms.ExecuteProposal(suite.ctx, &types.MsgExecuteProposal{Caller: "alice", ProposalID: 1})
	require.NoError(err)
	require.True(suite.keeper.IsPaused(suite.ctx))

	_, err = ms.Resume(suite.ctx, &types.MsgResume{Caller: owner})
	require.NoError(err)

	_, err = ms.ProposeAction(suite.ctx, &types.MsgProposeAction{Caller: "alice", Action: types.Resume{}})
	require.NoError(err)
	_, err = ms.CancelProposal(suite.ctx, &types.MsgCancelProposal{Caller: owner, ProposalID: 2})
	require.NoError(err)
}
