package keeper_test

import (
	sdkmath "cosmossdk.io/math"

	"github.com/paw-chain/tee-oracle/x/oracle/keeper"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

func (suite *KeeperTestSuite) TestQuerierPrices() {
	q := keeper.NewQuerier(suite.keeper)
	require := suite.Require()

	suite.at(5 * types.NanosPerSecond)
	suite.addAsset("BTC", 2, 1)
	suite.addAsset("ETH", 2, 1)
	suite.authorizeNode("op-a", "node-a")
	suite.report("node-a", "BTC", 6_500_000, 2)

	_, err := q.Price(suite.ctx, "")
	require.ErrorIs(err, types.ErrInvalidAsset)
	_, err = q.Price(suite.ctx, "ETH")
	require.ErrorIs(err, types.ErrPriceNotFound)

	price, err := q.Price(suite.ctx, "BTC")
	require.NoError(err)
	require.Equal(uint32(1), price.Price.NumSources)

	prices, err := q.Prices(suite.ctx)
	require.NoError(err)
	require.Len(prices.Prices, 1)
	require.Equal("BTC", prices.Prices[0].AssetID)

	pyth, err := q.PriceUnsafe(suite.ctx, "BTC")
	require.NoError(err)
	require.Equal(types.PythPrice{Price: 6_500_000, Expo: -2, PublishTime: 5}, pyth.Price)

	bounded, err := q.PriceNoOlderThan(suite.ctx, "BTC", 0)
	require.NoError(err)
	require.Equal(pyth, bounded)

	assets, err := q.Assets(suite.ctx)
	require.NoError(err)
	require.Len(assets.Assets, 2)

	asset, err := q.Asset(suite.ctx, "ETH")
	require.NoError(err)
	require.Equal("ETH", asset.Asset.ID)
	_, err = q.Asset(suite.ctx, "DOGE")
	require.ErrorIs(err, types.ErrAssetNotFound)
}

func (suite *KeeperTestSuite) TestQuerierIdentity() {
	q := keeper.NewQuerier(suite.keeper)
	require := suite.Require()

	suite.authorizeNode("op-a", "node-a")
	suite.Require().NoError(suite.keeper.AddNodeOperator(suite.ctx, owner, "op-b"))

	authorized, err := q.IsNodeAuthorized(suite.ctx, "node-a")
	require.NoError(err)
	require.True(authorized.Authorized)

	authorized, err = q.IsNodeAuthorized(suite.ctx, "node-b")
	require.NoError(err)
	require.False(authorized.Authorized)

	node, err := q.Node(suite.ctx, "node-a")
	require.NoError(err)
	require.Equal("op-a", node.Node.OperatorID)
	require.Equal(codeHash, node.Node.CodeHash)
	_, err = q.Node(suite.ctx, "node-b")
	require.ErrorIs(err, types.ErrNodeNotFound)

	nodes, err := q.AuthorizedNodes(suite.ctx)
	require.NoError(err)
	require.Equal([]string{"node-a"}, nodes.Nodes)

	operators, err := q.Operators(suite.ctx)
	require.NoError(err)
	require.Equal([]types.OperatorBinding{
		{Operator: "op-a", Node: "node-a"},
		{Operator: "op-b"},
	}, operators.Operators)

	hashes, err := q.CodeHashes(suite.ctx)
	require.NoError(err)
	require.Equal([]types.CodeHashApproval{{CodeHash: codeHash, MrEnclave: mrEnclave}}, hashes.CodeHashes)
}

func (suite *KeeperTestSuite) TestQuerierGovernance() {
	q := keeper.NewQuerier(suite.keeper)
	require := suite.Require()

	role, err := q.AdminRole(suite.ctx)
	require.NoError(err)
	require.Empty(role.Role.Voters)
	require.Equal(0, role.RequiredApprovals)

	suite.configureRole([]string{"alice"}, []string{"v1", "v2", "v3"}, 0, 5_000)
	role, err = q.AdminRole(suite.ctx)
	require.NoError(err)
	require.Equal(2, role.RequiredApprovals)

	id, err := suite.keeper.ProposeAction(suite.ctx, "alice", types.UpdateConfig{})
	require.NoError(err)

	proposal, err := q.Proposal(suite.ctx, id)
	require.NoError(err)
	require.Equal("alice", proposal.Proposal.Proposer)
	_, err = q.Proposal(suite.ctx, id+1)
	require.ErrorIs(err, types.ErrProposalNotFound)

	proposals, err := q.Proposals(suite.ctx)
	require.NoError(err)
	require.Len(proposals.Proposals, 1)

	params, err := q.Params(suite.ctx)
	require.NoError(err)
	require.Equal(types.DefaultParams(), params.Params)
	require.Equal(owner, params.Owner)
	require.False(params.PauseState.Paused)
}

func (suite *KeeperTestSuite) TestQuerierStalePrice() {
	q := keeper.NewQuerier(suite.keeper)
	threshold := uint64(100)
	suite.Require().NoError(suite.keeper.UpdateConfig(suite.ctx, owner, &threshold, nil))

	suite.at(1_000)
	suite.addAsset("X", 4, 1)
	suite.authorizeNode("op-a", "node-a")
	suite.Require().NoError(suite.keeper.ReportPrice(suite.ctx, "node-a", "X", sdkmath.NewUint(35000), 4))

	suite.at(1_200)
	_, err := q.Price(suite.ctx, "X")
	suite.Require().ErrorIs(err, types.ErrPriceNotFound)
	_, err = q.PriceUnsafe(suite.ctx, "X")
	suite.Require().NoError(err)
}
