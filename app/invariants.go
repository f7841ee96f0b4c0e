package app

import (
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

type invariantRoute struct {
	module string
	route  string
	invar  sdk.Invariant
}

// InvariantRegistry collects module invariants and runs them in
// registration order.
type InvariantRegistry struct {
	routes []invariantRoute
}

var _ sdk.InvariantRegistry = (*InvariantRegistry)(nil)

// NewInvariantRegistry returns an empty registry
func NewInvariantRegistry() *InvariantRegistry {
	return &InvariantRegistry{}
}

// RegisterRoute implements sdk.InvariantRegistry
func (r *InvariantRegistry) RegisterRoute(moduleName, route string, invar sdk.Invariant) {
	r.routes = append(r.routes, invariantRoute{module: moduleName, route: route, invar: invar})
}

// Routes returns the registered routes as module/route
func (r *InvariantRegistry) Routes() []string {
	out := make([]string, 0, len(r.routes))
	for _, ir := range r.routes {
		out = append(out, fmt.Sprintf("%s/%s", ir.module, ir.route))
	}
	return out
}

// Check runs every invariant and joins the reports of the broken ones
func (r *InvariantRegistry) Check(ctx sdk.Context) (string, bool) {
	var reports []string
	for _, ir := range r.routes {
		if msg, broken := ir.invar(ctx); broken {
			reports = append(reports, msg)
		}
	}
	return strings.Join(reports, "\n"), len(reports) > 0
}
