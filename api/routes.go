package api

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleLiveness)
	s.router.GET("/health/ready", s.handleReadiness)
	s.router.GET("/health/detailed", s.handleDetailedHealth)

	v1 := s.router.Group("/v1")
	{
		tx := v1.Group("/tx")
		tx.Use(s.AuthMiddleware())
		{
			tx.POST("/:type", s.handleTx)
		}

		v1.GET("/prices", s.handleGetPrices)
		// asset ids may contain "/" (pairs such as ETH/USD), so they are
		// matched with catch-all parameters
		v1.GET("/prices/*asset", s.handleGetPrice)

		pyth := v1.Group("/pyth")
		{
			pyth.GET("/price/*asset", s.handleGetPriceNoOlderThan)
			pyth.GET("/unsafe/*asset", s.handleGetPriceUnsafe)
		}

		v1.GET("/assets", s.handleGetAssets)
		v1.GET("/assets/*asset", s.handleGetAsset)

		nodes := v1.Group("/nodes")
		{
			nodes.GET("", s.handleGetAuthorizedNodes)
			nodes.GET("/:node", s.handleGetNode)
			nodes.GET("/:node/authorized", s.handleIsAuthorized)
		}

		v1.GET("/operators", s.handleGetOperators)
		v1.GET("/code-hashes", s.handleGetCodeHashes)
		v1.GET("/params", s.handleGetParams)

		gov := v1.Group("/governance")
		{
			gov.GET("/role", s.handleGetAdminRole)
			gov.GET("/proposals", s.handleGetProposals)
			gov.GET("/proposals/:id", s.handleGetProposal)
		}
	}
}
