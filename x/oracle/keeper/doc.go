// Package keeper implements the TEE oracle keeper.
//
// The oracle publishes one price per asset, aggregated from reports submitted
// by attested reporter nodes. Every node runs enclave code whose hash and
// measurement have been approved, and every node is bound to exactly one
// whitelisted operator.
//
// # Core Functionality
//
// Identity and Attestation: Operators are whitelisted by the owner or by
// governance. An operator binds one node account; the node then registers by
// presenting an approved code hash, a measurement matching the value approved
// for that hash, and an attestation no older than the configured maximum age.
// Removing an operator revokes its node and prunes the node's reports from
// every asset.
//
// Aggregation: Each authorized node holds at most one live report per asset.
// On every write the report set is filtered by recency, and the median of
// the survivors is published once the asset's source threshold is met. Reads
// re-check recency, so a published price can turn stale without any write.
//
// Governance: A committee of proposers and voters can apply the same
// administrative actions as the owner through proposals gated by a timelock
// and a quorum of voter approvals. The owner keeps a fast path for every
// action and can cancel any proposal.
//
// # Usage Patterns
//
// Reporting a price:
//
//	err := k.ReportPrice(ctx, node, "BTC", sdkmath.NewUint(6512345), 2)
//
// Reading a price:
//
//	data, found := k.GetPrice(ctx, "BTC")
//
// Proposing and executing a governance action:
//
//	id, err := k.ProposeAction(ctx, proposer, types.Pause{})
//	err = k.ApproveProposal(ctx, voter, id)
//	err = k.ExecuteProposal(ctx, proposer, id)
//
// All operations take the caller identity explicitly and read the clock from
// the block time of the context. Callers are expected to run each operation in
// its own cached context and discard it on error.
package keeper
