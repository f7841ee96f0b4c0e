package keeper_test

import (
	sdkmath "cosmossdk.io/math"

	"github.com/paw-chain/tee-oracle/x/oracle/keeper"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

func (suite *KeeperTestSuite) TestSingleSourcePrice() {
	suite.at(1_000)
	suite.addAsset("X", 4, 1)
	suite.authorizeNode("op-a", "node-a")

	suite.report("node-a", "X", 35000, 4)

	data, found := suite.keeper.GetPrice(suite.ctx, "X")
	suite.Require().True(found)
	suite.Require().Equal("X", data.AssetID)
	suite.Require().Equal(sdkmath.NewUint(35000), data.Price.Multiplier)
	suite.Require().Equal(uint32(4), data.Price.Decimals)
	suite.Require().Equal(uint64(1_000), data.Price.Timestamp)
	suite.Require().Equal(uint32(1), data.NumSources)

	node, found := suite.keeper.GetNodeDetails(suite.ctx, "node-a")
	suite.Require().True(found)
	suite.Require().Equal(uint64(1_000), node.LastReport)
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestTwoSourceMedian() {
	suite.at(1_000)
	suite.addAsset("X", 4, 2)
	suite.authorizeNode("op-a", "node-a")
	suite.authorizeNode("op-b", "node-b")

	suite.report("node-a", "X", 35000, 4)

	// one source is below the asset threshold: reports kept, nothing published
	_, found := suite.keeper.GetPrice(suite.ctx, "X")
	suite.Require().False(found)
	reports, found := suite.keeper.GetPriceReports(suite.ctx, "X")
	suite.Require().True(found)
	suite.Require().Len(reports, 1)

	suite.at(1_010)
	suite.report("node-b", "X", 36000, 4)

	data, found := suite.keeper.GetPrice(suite.ctx, "X")
	suite.Require().True(found)
	suite.Require().Equal(sdkmath.NewUint(35500), data.Price.Multiplier)
	suite.Require().Equal(uint32(2), data.NumSources)
	suite.Require().Equal(uint64(1_010), data.Price.Timestamp)
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestReportReplacesPreviousReport() {
	suite.at(1_000)
	suite.addAsset("X", 4, 1)
	suite.authorizeNode("op-a", "node-a")

	suite.report("node-a", "X", 100, 4)
	suite.at(2_000)
	suite.report("node-a", "X", 200, 4)

	reports, _ := suite.keeper.GetPriceReports(suite.ctx, "X")
	suite.Require().Len(reports, 1)
	suite.Require().Equal(sdkmath.NewUint(200), reports[0].Price.Multiplier)

	data, found := suite.keeper.GetPrice(suite.ctx, "X")
	suite.Require().True(found)
	suite.Require().Equal(sdkmath.NewUint(200), data.Price.Multiplier)
	suite.Require().Equal(uint64(2_000), data.Price.Timestamp)
}

func (suite *KeeperTestSuite) TestStalePriceAtReadTime() {
	threshold := uint64(100)
	suite.Require().NoError(suite.keeper.UpdateConfig(suite.ctx, owner, &threshold, nil))

	suite.at(1_000)
	suite.addAsset("X", 4, 1)
	suite.authorizeNode("op-a", "node-a")
	suite.report("node-a", "X", 35000, 4)

	_, found := suite.keeper.GetPrice(suite.ctx, "X")
	suite.Require().True(found)

	suite.at(1_200)
	_, found = suite.keeper.GetPrice(suite.ctx, "X")
	suite.Require().False(found)
	suite.Require().Empty(suite.keeper.GetPriceData(suite.ctx))

	unsafe, err := suite.keeper.GetPriceUnsafe(suite.ctx, "X")
	suite.Require().NoError(err)
	suite.Require().Equal(int64(35000), unsafe.Price)
	suite.Require().Equal(int32(-4), unsafe.Expo)
	suite.Require().Equal(uint64(0), unsafe.Conf)

	_, err = suite.keeper.GetPriceNoOlderThan(suite.ctx, "X", 100)
	suite.Require().ErrorIs(err, types.ErrPriceNotFound)
	bounded, err := suite.keeper.GetPriceNoOlderThan(suite.ctx, "X", 200)
	suite.Require().NoError(err)
	suite.Require().Equal(unsafe, bounded)
}

func (suite *KeeperTestSuite) TestStaleReportsDroppedOnWrite() {
	threshold := uint64(100)
	suite.Require().NoError(suite.keeper.UpdateConfig(suite.ctx, owner, &threshold, nil))

	suite.at(1_000)
	suite.addAsset("X", 4, 1)
	suite.authorizeNode("op-a", "node-a")
	suite.authorizeNode("op-b", "node-b")
	suite.report("node-a", "X", 100, 4)

	suite.at(1_500)
	suite.report("node-b", "X", 300, 4)

	reports, _ := suite.keeper.GetPriceReports(suite.ctx, "X")
	suite.Require().Len(reports, 1)
	suite.Require().Equal("node-b", reports[0].OracleID)

	data, found := suite.keeper.GetPrice(suite.ctx, "X")
	suite.Require().True(found)
	suite.Require().Equal(sdkmath.NewUint(300), data.Price.Multiplier)
	suite.Require().Equal(uint32(1), data.NumSources)
}

func (suite *KeeperTestSuite) TestReportPriceRejections() {
	suite.at(1_000)
	suite.addAsset("X", 4, 1)
	suite.authorizeNode("op-a", "node-a")

	tests := []struct {
		name     string
		node     string
		asset    string
		decimals uint32
		setup    func()
		err      error
		class    types.ErrorClass
	}{
		{
			name:     "unauthorized node",
			node:     "node-z",
			asset:    "X",
			decimals: 4,
			err:      types.ErrNodeNotAuthorized,
			class:    types.ClassAuthorization,
		},
		{
			name:     "unknown asset",
			node:     "node-a",
			asset:    "Y",
			decimals: 4,
			err:      types.ErrAssetNotFound,
			class:    types.ClassNotFound,
		},
		{
			name:     "decimals mismatch",
			node:     "node-a",
			asset:    "X",
			decimals: 2,
			err:      types.ErrDecimalsMismatch,
			class:    types.ClassValidation,
		},
		{
			name:     "paused",
			node:     "node-a",
			asset:    "X",
			decimals: 4,
			setup: func() {
				suite.Require().NoError(suite.keeper.Pause(suite.ctx, owner))
			},
			err:   types.ErrOraclePaused,
			class: types.ClassState,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			if tc.setup != nil {
				tc.setup()
			}
			err := suite.keeper.ReportPrice(suite.ctx, tc.node, tc.asset, sdkmath.NewUint(1), tc.decimals)
			suite.Require().ErrorIs(err, tc.err)
			suite.Require().Equal(tc.class, types.ClassOf(err))
		})
	}

	_, found := suite.keeper.GetPriceReports(suite.ctx, "X")
	suite.Require().False(found)
}

func (suite *KeeperTestSuite) TestUpdateConfigRefinalizes() {
	suite.at(1_000)
	suite.addAsset("X", 4, 1)
	suite.authorizeNode("op-a", "node-a")
	suite.report("node-a", "X", 35000, 4)

	_, found := suite.keeper.GetPrice(suite.ctx, "X")
	suite.Require().True(found)

	// raising the global floor unpublishes the price but keeps the report
	two := uint32(2)
	suite.Require().NoError(suite.keeper.UpdateConfig(suite.ctx, owner, nil, &two))
	_, found = suite.keeper.GetAggregatedPrice(suite.ctx, "X")
	suite.Require().False(found)
	_, found = suite.keeper.GetPriceReports(suite.ctx, "X")
	suite.Require().True(found)

	one := uint32(1)
	suite.Require().NoError(suite.keeper.UpdateConfig(suite.ctx, owner, nil, &one))
	data, found := suite.keeper.GetPrice(suite.ctx, "X")
	suite.Require().True(found)
	suite.Require().Equal(sdkmath.NewUint(35000), data.Price.Multiplier)

	// a tighter threshold clears reports that are now too old
	suite.at(5_000)
	threshold := uint64(100)
	suite.Require().NoError(suite.keeper.UpdateConfig(suite.ctx, owner, &threshold, nil))
	_, found = suite.keeper.GetPriceReports(suite.ctx, "X")
	suite.Require().False(found)
	_, found = suite.keeper.GetAggregatedPrice(suite.ctx, "X")
	suite.Require().False(found)
	suite.requireInvariants()
}

func (suite *KeeperTestSuite) TestPythPriceOverflow() {
	suite.at(3 * types.NanosPerSecond)
	suite.addAsset("X", 0, 1)
	suite.authorizeNode("op-a", "node-a")

	big := sdkmath.NewUintFromString("9223372036854775808") // 2^63
	suite.Require().NoError(suite.keeper.ReportPrice(suite.ctx, "node-a", "X", big, 0))

	_, err := suite.keeper.GetPriceUnsafe(suite.ctx, "X")
	suite.Require().ErrorIs(err, types.ErrPriceOverflow)

	// GetPrice is not limited to int64
	data, found := suite.keeper.GetPrice(suite.ctx, "X")
	suite.Require().True(found)
	suite.Require().Equal(big, data.Price.Multiplier)
}

func (suite *KeeperTestSuite) TestPythPublishTimeInSeconds() {
	suite.at(7*types.NanosPerSecond + 999)
	suite.addAsset("X", 2, 1)
	suite.authorizeNode("op-a", "node-a")
	suite.report("node-a", "X", 123, 2)

	price, err := suite.keeper.GetPriceUnsafe(suite.ctx, "X")
	suite.Require().NoError(err)
	suite.Require().Equal(types.PythPrice{Price: 123, Conf: 0, Expo: -2, PublishTime: 7}, price)

	_, err = suite.keeper.GetPriceUnsafe(suite.ctx, "missing")
	suite.Require().ErrorIs(err, types.ErrPriceNotFound)
}

// Decimals of the published price come from the first report in the
// surviving set. Every accepted report must match the asset's decimals, so
// the order dependence cannot surface today; this pins the behavior.
func (suite *KeeperTestSuite) TestPublishedDecimalsFollowFirstReport() {
	reports := []types.PriceReport{
		{OracleID: "b", Price: types.Price{Multiplier: sdkmath.NewUint(10), Decimals: 6, Timestamp: 5}, Timestamp: 5},
		{OracleID: "a", Price: types.Price{Multiplier: sdkmath.NewUint(20), Decimals: 2, Timestamp: 9}, Timestamp: 9},
	}

	price, err := keeper.AggregateReports(reports)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(6), price.Decimals)

	reports[0], reports[1] = reports[1], reports[0]
	price, err = keeper.AggregateReports(reports)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(2), price.Decimals)
	suite.Require().Equal(uint64(9), price.Timestamp)
	suite.Require().Equal(sdkmath.NewUint(15), price.Multiplier)
}
