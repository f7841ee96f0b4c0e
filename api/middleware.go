package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

// MaxRequestSize bounds request bodies
const MaxRequestSize = 1 << 20

// AuthMiddleware validates bearer tokens and stores the subject as the caller
func (s *Server) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			s.audit.LogAuthFailure(c, "missing header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error: "Authorization header required",
				Code:  CodeUnauthenticated,
			})
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.audit.LogAuthFailure(c, "malformed header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error: "Invalid authorization header format",
				Code:  CodeUnauthenticated,
			})
			return
		}

		claims, err := s.auth.ValidateToken(parts[1])
		if err != nil {
			s.audit.LogAuthFailure(c, err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "Invalid or expired token",
				Code:    CodeUnauthenticated,
				Details: err.Error(),
			})
			return
		}

		c.Set(ContextKeyCaller, claims.Subject)
		c.Next()
	}
}

// CORSMiddleware answers preflight requests and sets CORS headers for the
// configured origins
func CORSMiddleware(origins []string) gin.HandlerFunc {
	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	})

	return func(c *gin.Context) {
		handler.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RateLimitMiddleware applies a token bucket per client IP
func (s *Server) RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiters := &sync.Map{}
	if burst < 1 {
		burst = 1
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()

		limiterInterface, _ := limiters.LoadOrStore(ip, rate.NewLimiter(rate.Limit(rps), burst))
		limiter := limiterInterface.(*rate.Limiter)

		if !limiter.Allow() {
			s.audit.LogRateLimitExceeded(c)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "Rate limit exceeded",
				Code:  CodeRateLimited,
			})
			return
		}

		c.Next()
	}
}

// LoggerMiddleware logs every request once it completes
func LoggerMiddleware(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if query := c.Request.URL.RawQuery; query != "" {
			path = path + "?" + query
		}

		c.Next()

		status := c.Writer.Status()
		keyvals := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start).String(),
			"ip", c.ClientIP(),
			"request_id", c.GetString(ContextKeyRequestID),
		}
		if caller := c.GetString(ContextKeyCaller); caller != "" {
			keyvals = append(keyvals, "caller", caller)
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", keyvals...)
		case status >= http.StatusBadRequest:
			logger.Info("request rejected", keyvals...)
		default:
			logger.Debug("request served", keyvals...)
		}
	}
}

// RecoveryMiddleware turns panics into 500 responses
func RecoveryMiddleware(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", "panic", fmt.Sprintf("%v", r), "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: "Internal server error",
					Code:  CodeInternal,
				})
			}
		}()
		c.Next()
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "no-referrer")
		c.Writer.Header().Set("Cache-Control", "no-store")
		c.Next()
	}
}

// RequestSizeLimitMiddleware bounds the request body
func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "Request body too large",
				Code:  CodeBadRequest,
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// HTTPMetrics holds the request instruments of the API server
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

var (
	httpMetricsOnce sync.Once
	httpMetrics     *HTTPMetrics
)

// NewHTTPMetrics returns the process-wide request instruments
func NewHTTPMetrics() *HTTPMetrics {
	httpMetricsOnce.Do(func() {
		httpMetrics = &HTTPMetrics{
			Requests: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "oracle",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "API requests by route and status",
			}, []string{"method", "route", "status"}),
			Duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "oracle",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request latency",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "route"}),
		}
	})
	return httpMetrics
}

// MetricsMiddleware records request counts and latency per route template
func MetricsMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.Duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
