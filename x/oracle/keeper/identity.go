package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// AddNodeOperator whitelists an operator. Adding an existing operator is a no-op.
func (k Keeper) AddNodeOperator(ctx context.Context, caller, operator string) error {
	if err := k.assertOwner(caller); err != nil {
		return err
	}
	return k.addNodeOperator(ctx, caller, operator)
}

func (k Keeper) addNodeOperator(ctx context.Context, actor, operator string) error {
	if err := types.ValidateAccountID(operator); err != nil {
		return err
	}

	k.setMember(ctx, GetOperatorKey(operator))
	k.emit(ctx, types.EventTypeOperatorAdded,
		sdk.NewAttribute(types.AttributeKeyOperator, operator),
		sdk.NewAttribute(types.AttributeKeyActor, actor),
	)
	k.Logger(ctx).Info("node operator added", "operator", operator, "actor", actor)
	return nil
}

// ApproveCodeHash adds a code hash to the allow-list
func (k Keeper) ApproveCodeHash(ctx context.Context, caller, codeHash string) error {
	if err := k.assertOwner(caller); err != nil {
		return err
	}
	return k.approveCodeHash(ctx, caller, codeHash)
}

func (k Keeper) approveCodeHash(ctx context.Context, actor, codeHash string) error {
	if err := (types.ApproveCodeHash{CodeHash: codeHash}).ValidateBasic(); err != nil {
		return err
	}

	k.setMember(ctx, GetCodeHashKey(codeHash))
	k.emit(ctx, types.EventTypeCodeHashApproved,
		sdk.NewAttribute(types.AttributeKeyCodeHash, codeHash),
		sdk.NewAttribute(types.AttributeKeyActor, actor),
	)
	return nil
}

// RemoveCodeHash removes a code hash and its approved enclave measurement.
// Nodes already registered under the hash stay authorized.
func (k Keeper) RemoveCodeHash(ctx context.Context, caller, codeHash string) error {
	if err := k.assertOwner(caller); err != nil {
		return err
	}
	return k.removeCodeHash(ctx, caller, codeHash)
}

func (k Keeper) removeCodeHash(ctx context.Context, actor, codeHash string) error {
	if err := (types.RemoveCodeHash{CodeHash: codeHash}).ValidateBasic(); err != nil {
		return err
	}

	k.deleteKey(ctx, GetCodeHashKey(codeHash))
	k.deleteKey(ctx, GetEnclaveKey(codeHash))
	k.emit(ctx, types.EventTypeCodeHashRemoved,
		sdk.NewAttribute(types.AttributeKeyCodeHash, codeHash),
		sdk.NewAttribute(types.AttributeKeyActor, actor),
	)
	return nil
}

// ApproveAttestation attaches an enclave measurement to a code hash that is
// already on the allow-list.
func (k Keeper) ApproveAttestation(ctx context.Context, caller, codeHash, mrEnclave string) error {
	if err := k.assertOwner(caller); err != nil {
		return err
	}
	return k.approveAttestation(ctx, caller, codeHash, mrEnclave)
}

func (k Keeper) approveAttestation(ctx context.Context, actor, codeHash, mrEnclave string) error {
	if err := (types.ApproveAttestation{CodeHash: codeHash, MrEnclave: mrEnclave}).ValidateBasic(); err != nil {
		return err
	}
	if !k.IsCodeHashApproved(ctx, codeHash) {
		return types.ErrCodeHashNotApproved.Wrapf("code hash %s must be approved first", codeHash)
	}

	k.getStore(ctx).Set(GetEnclaveKey(codeHash), []byte(mrEnclave))
	k.emit(ctx, types.EventTypeEnclaveApproved,
		sdk.NewAttribute(types.AttributeKeyCodeHash, codeHash),
		sdk.NewAttribute(types.AttributeKeyMrEnclave, mrEnclave),
		sdk.NewAttribute(types.AttributeKeyActor, actor),
	)
	return nil
}

// RemoveAttestation detaches the enclave measurement from a code hash
func (k Keeper) RemoveAttestation(ctx context.Context, caller, codeHash string) error {
	if err := k.assertOwner(caller); err != nil {
		return err
	}
	return k.removeAttestation(ctx, caller, codeHash)
}

func (k Keeper) removeAttestation(ctx context.Context, actor, codeHash string) error {
	if err := (types.RemoveAttestation{CodeHash: codeHash}).ValidateBasic(); err != nil {
		return err
	}

	k.deleteKey(ctx, GetEnclaveKey(codeHash))
	k.emit(ctx, types.EventTypeEnclaveRemoved,
		sdk.NewAttribute(types.AttributeKeyCodeHash, codeHash),
		sdk.NewAttribute(types.AttributeKeyActor, actor),
	)
	return nil
}

// SetNodeAccount binds node to the calling operator. A different node that
// was previously bound to the operator is revoked first, so an operator never
// holds more than one node. Rebinding the current node is a no-op.
func (k Keeper) SetNodeAccount(ctx context.Context, caller, node string) error {
	if caller == "" {
		return types.ErrMissingCaller
	}
	if !k.IsWhitelistedOperator(ctx, caller) {
		return types.ErrOperatorNotWhitelisted.Wrapf("operator %s", caller)
	}
	if err := types.ValidateAccountID(node); err != nil {
		return err
	}
	if owner, bound := k.GetNodeOperator(ctx, node); bound && owner != caller {
		return types.ErrNodeAlreadyBound.Wrapf("node %s is bound to %s", node, owner)
	}

	previous, hadPrevious := k.GetOperatorNode(ctx, caller)
	if hadPrevious && previous == node {
		return nil
	}
	if hadPrevious {
		affected, err := k.revokeNode(ctx, previous)
		if err != nil {
			return fmt.Errorf("demote node %s: %w", previous, err)
		}
		k.Logger(ctx).Info("previous node demoted", "operator", caller, "node", previous, "affected_assets", affected)
	}

	store := k.getStore(ctx)
	store.Set(GetOperatorToNodeKey(caller), []byte(node))
	store.Set(GetNodeToOperatorKey(node), []byte(caller))

	k.emit(ctx, types.EventTypeNodeBound,
		sdk.NewAttribute(types.AttributeKeyOperator, caller),
		sdk.NewAttribute(types.AttributeKeyNode, node),
	)
	return nil
}

// RegisterNode authorizes the calling node after checking its binding, its
// operator, the approved code hash and measurement, and the attestation age.
// Re-registration overwrites the node record.
func (k Keeper) RegisterNode(ctx context.Context, caller, codeHash string, attestation types.AttestationData) error {
	if caller == "" {
		return types.ErrMissingCaller
	}

	operator, bound := k.GetNodeOperator(ctx, caller)
	if !bound {
		return types.ErrNodeNotBound.Wrapf("node %s", caller)
	}
	if !k.IsWhitelistedOperator(ctx, operator) {
		return types.ErrOperatorNotWhitelisted.Wrapf("operator %s of node %s", operator, caller)
	}
	if !k.IsCodeHashApproved(ctx, codeHash) {
		k.metrics.RegistrationRejections.WithLabelValues("code_hash").Inc()
		return types.ErrCodeHashNotApproved.Wrapf("code hash %s", codeHash)
	}

	expected, found := k.GetApprovedEnclave(ctx, codeHash)
	if !found {
		k.metrics.RegistrationRejections.WithLabelValues("attestation").Inc()
		return types.ErrAttestationNotApproved.Wrapf("code hash %s", codeHash)
	}
	if expected != attestation.MrEnclave {
		k.metrics.RegistrationRejections.WithLabelValues("measurement").Inc()
		return types.ErrMeasurementMismatch.Wrapf("expected %s, got %s", expected, attestation.MrEnclave)
	}

	now := k.now(ctx)
	params := k.GetParams(ctx)
	if age := saturatingSub(now, attestation.IssuedAt); age > params.AttestationMaxAge {
		k.metrics.RegistrationRejections.WithLabelValues("expired").Inc()
		return types.ErrAttestationExpired.Wrapf("age %d exceeds %d", age, params.AttestationMaxAge)
	}

	node := types.OracleNode{
		AccountID:    caller,
		OperatorID:   operator,
		RegisteredAt: now,
		CodeHash:     codeHash,
		LastReport:   0,
		Active:       true,
	}
	if err := k.setNodeDetails(ctx, node); err != nil {
		return err
	}
	k.setMember(ctx, GetAuthorizedNodeKey(caller))

	k.emit(ctx, types.EventTypeNodeRegistered,
		sdk.NewAttribute(types.AttributeKeyNode, caller),
		sdk.NewAttribute(types.AttributeKeyOperator, operator),
		sdk.NewAttribute(types.AttributeKeyCodeHash, codeHash),
	)
	k.metrics.Registrations.Inc()
	k.Logger(ctx).Info("node registered", "node", caller, "operator", operator, "code_hash", codeHash)
	return nil
}

func (k Keeper) setNodeDetails(ctx context.Context, node types.OracleNode) error {
	return k.setJSON(ctx, GetNodeDetailsKey(node.AccountID), node)
}

// IsWhitelistedOperator reports whether operator is on the whitelist
func (k Keeper) IsWhitelistedOperator(ctx context.Context, operator string) bool {
	return k.hasKey(ctx, GetOperatorKey(operator))
}

// GetOperators returns the operator whitelist in key order
func (k Keeper) GetOperators(ctx context.Context) []string {
	return k.members(ctx, types.OperatorKeyPrefix)
}

// GetOperatorNode returns the node bound to operator
func (k Keeper) GetOperatorNode(ctx context.Context, operator string) (string, bool) {
	bz := k.getStore(ctx).Get(GetOperatorToNodeKey(operator))
	if bz == nil {
		return "", false
	}
	return string(bz), true
}

// GetNodeOperator returns the operator that bound node
func (k Keeper) GetNodeOperator(ctx context.Context, node string) (string, bool) {
	bz := k.getStore(ctx).Get(GetNodeToOperatorKey(node))
	if bz == nil {
		return "", false
	}
	return string(bz), true
}

// GetBindings returns every operator with its bound node, if any, in operator order
func (k Keeper) GetBindings(ctx context.Context) []types.OperatorBinding {
	bindings := []types.OperatorBinding{}
	for _, operator := range k.GetOperators(ctx) {
		node, _ := k.GetOperatorNode(ctx, operator)
		bindings = append(bindings, types.OperatorBinding{Operator: operator, Node: node})
	}
	return bindings
}

// IsAuthorized reports whether node may submit prices
func (k Keeper) IsAuthorized(ctx context.Context, node string) bool {
	return k.hasKey(ctx, GetAuthorizedNodeKey(node))
}

// GetAuthorizedNodes returns the authorized node set in key order
func (k Keeper) GetAuthorizedNodes(ctx context.Context) []string {
	nodes := k.members(ctx, types.AuthorizedNodeKeyPrefix)
	if nodes == nil {
		return []string{}
	}
	return nodes
}

// GetNodeDetails returns the record of a registered node
func (k Keeper) GetNodeDetails(ctx context.Context, node string) (types.OracleNode, bool) {
	var record types.OracleNode
	found, err := k.getJSON(ctx, GetNodeDetailsKey(node), &record)
	if err != nil {
		k.Logger(ctx).Error("failed to decode node record", "node", node, "error", err)
		return types.OracleNode{}, false
	}
	return record, found
}

// IsCodeHashApproved reports whether codeHash is on the allow-list
func (k Keeper) IsCodeHashApproved(ctx context.Context, codeHash string) bool {
	return k.hasKey(ctx, GetCodeHashKey(codeHash))
}

// GetApprovedEnclave returns the measurement attached to codeHash
func (k Keeper) GetApprovedEnclave(ctx context.Context, codeHash string) (string, bool) {
	bz := k.getStore(ctx).Get(GetEnclaveKey(codeHash))
	if bz == nil {
		return "", false
	}
	return string(bz), true
}

// GetCodeHashes returns every approved code hash with its measurement
func (k Keeper) GetCodeHashes(ctx context.Context) []types.CodeHashApproval {
	hashes := k.members(ctx, types.CodeHashKeyPrefix)
	approvals := make([]types.CodeHashApproval, 0, len(hashes))
	for _, hash := range hashes {
		enclave, _ := k.GetApprovedEnclave(ctx, hash)
		approvals = append(approvals, types.CodeHashApproval{CodeHash: hash, MrEnclave: enclave})
	}
	return approvals
}
