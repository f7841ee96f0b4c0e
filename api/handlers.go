package api

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paw-chain/tee-oracle/app/health"
	"github.com/paw-chain/tee-oracle/x/oracle/keeper"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

func (s *Server) writeError(c *gin.Context, err error) {
	status, body := NewErrorResponse(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, body)
}

// handleTx decodes the message named by the path, stamps the authenticated
// caller on it and executes it
func (s *Server) handleTx(c *gin.Context) {
	msgType := c.Param("type")
	msg, ok := types.NewMsg(msgType)
	if !ok {
		s.writeError(c, types.ErrUnknownMsg.Wrap(msgType))
		return
	}

	if err := c.ShouldBindJSON(msg); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    CodeBadRequest,
			Details: err.Error(),
		})
		return
	}

	caller := c.GetString(ContextKeyCaller)
	msg.SetCaller(caller)

	res, err := s.app.Execute(c.Request.Context(), msg)
	s.audit.LogCall(c, caller, msgType, res, err)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// query runs fn against committed state and writes its result
func (s *Server) query(c *gin.Context, op string, fn func(ctx context.Context, q keeper.Querier) (interface{}, error)) {
	var res interface{}
	err := s.app.View(c.Request.Context(), op, func(ctx context.Context, q keeper.Querier) error {
		var err error
		res, err = fn(ctx, q)
		return err
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetPrices(c *gin.Context) {
	s.query(c, "Prices", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.Prices(ctx)
	})
}

func (s *Server) handleGetPrice(c *gin.Context) {
	asset := assetParam(c)
	s.query(c, "Price", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.Price(ctx, asset)
	})
}

// handleGetPriceNoOlderThan requires max_age in seconds, as the external
// schema publishes seconds; the oracle compares nanoseconds
func (s *Server) handleGetPriceNoOlderThan(c *gin.Context) {
	raw, ok := c.GetQuery("max_age")
	if !ok {
		s.writeError(c, types.ErrInvalidMaxAge.Wrap("max_age query parameter is required"))
		return
	}
	maxAge, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		s.writeError(c, types.ErrInvalidMaxAge.Wrapf("max_age %q is not an unsigned integer", raw))
		return
	}

	maxAgeNanos := uint64(math.MaxUint64)
	if maxAge <= math.MaxUint64/types.NanosPerSecond {
		maxAgeNanos = maxAge * types.NanosPerSecond
	}

	asset := assetParam(c)
	s.query(c, "PriceNoOlderThan", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.PriceNoOlderThan(ctx, asset, maxAgeNanos)
	})
}

func (s *Server) handleGetPriceUnsafe(c *gin.Context) {
	asset := assetParam(c)
	s.query(c, "PriceUnsafe", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.PriceUnsafe(ctx, asset)
	})
}

func (s *Server) handleGetAssets(c *gin.Context) {
	s.query(c, "Assets", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.Assets(ctx)
	})
}

func (s *Server) handleGetAsset(c *gin.Context) {
	asset := assetParam(c)
	s.query(c, "Asset", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.Asset(ctx, asset)
	})
}

func (s *Server) handleGetAuthorizedNodes(c *gin.Context) {
	s.query(c, "AuthorizedNodes", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.AuthorizedNodes(ctx)
	})
}

func (s *Server) handleGetNode(c *gin.Context) {
	node := c.Param("node")
	s.query(c, "Node", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.Node(ctx, node)
	})
}

func (s *Server) handleIsAuthorized(c *gin.Context) {
	node := c.Param("node")
	s.query(c, "IsNodeAuthorized", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.IsNodeAuthorized(ctx, node)
	})
}

func (s *Server) handleGetOperators(c *gin.Context) {
	s.query(c, "Operators", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.Operators(ctx)
	})
}

func (s *Server) handleGetCodeHashes(c *gin.Context) {
	s.query(c, "CodeHashes", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.CodeHashes(ctx)
	})
}

func (s *Server) handleGetParams(c *gin.Context) {
	s.query(c, "Params", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.Params(ctx)
	})
}

func (s *Server) handleGetAdminRole(c *gin.Context) {
	s.query(c, "AdminRole", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.AdminRole(ctx)
	})
}

func (s *Server) handleGetProposals(c *gin.Context) {
	s.query(c, "Proposals", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.Proposals(ctx)
	})
}

func (s *Server) handleGetProposal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		s.writeError(c, types.ErrProposalNotFound.Wrapf("invalid proposal id %q", c.Param("id")))
		return
	}
	s.query(c, "Proposal", func(ctx context.Context, q keeper.Querier) (interface{}, error) {
		return q.Proposal(ctx, id)
	})
}

// handleLiveness reports that the process serves requests
func (s *Server) handleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    health.StatusHealthy,
		"timestamp": time.Now().Unix(),
		"version":   s.app.LastVersion(),
	})
}

func (s *Server) handleReadiness(c *gin.Context) {
	s.writeHealth(c, s.checker.Check(c.Request.Context(), false))
}

func (s *Server) handleDetailedHealth(c *gin.Context) {
	s.writeHealth(c, s.checker.Check(c.Request.Context(), true))
}

func (s *Server) writeHealth(c *gin.Context, check *health.HealthCheck) {
	status := http.StatusOK
	if check.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, check)
}

// assetParam returns the catch-all asset id of the request path
func assetParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("asset"), "/")
}
