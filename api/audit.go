package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paw-chain/tee-oracle/app"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// AuditLogger appends state-changing calls and rejected access attempts to
// JSON lines files, rotating by size.
type AuditLogger struct {
	logFile  *os.File
	mu       sync.Mutex
	enabled  bool
	logDir   string
	maxSize  int64
	maxFiles int
	now      func() time.Time
}

// AuditEvent is one line of the audit trail
type AuditEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	EventType string                 `json:"event_type"`
	Severity  string                 `json:"severity"`
	Caller    string                 `json:"caller,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty"`
	Action    string                 `json:"action"`
	Status    string                 `json:"status"`
	Version   int64                  `json:"version,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// NewAuditLogger creates an audit logger writing into logDir. An empty
// logDir returns a disabled logger.
func NewAuditLogger(logDir string) (*AuditLogger, error) {
	if logDir == "" {
		return &AuditLogger{enabled: false}, nil
	}

	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	al := &AuditLogger{
		enabled:  true,
		logDir:   logDir,
		maxSize:  100 * 1024 * 1024,
		maxFiles: 10,
		now:      time.Now,
	}
	if err := al.rotateLogFile(); err != nil {
		return nil, err
	}
	return al, nil
}

// Enabled reports whether events are written
func (al *AuditLogger) Enabled() bool {
	return al.enabled
}

// Log writes one event
func (al *AuditLogger) Log(event AuditEvent) error {
	if !al.enabled {
		return nil
	}

	al.mu.Lock()
	defer al.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = al.now().UTC()
	}

	if info, err := al.logFile.Stat(); err == nil && info.Size() >= al.maxSize {
		if err := al.rotateLogFile(); err != nil {
			return err
		}
	}

	bz, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}
	if _, err := al.logFile.Write(append(bz, '\n')); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	if event.Severity == SeverityCritical {
		return al.logFile.Sync()
	}
	return nil
}

func (al *AuditLogger) rotateLogFile() error {
	if al.logFile != nil {
		_ = al.logFile.Close()
	}

	name := fmt.Sprintf("audit_%s.log", al.now().UTC().Format("2006-01-02_15-04-05.000000000"))
	file, err := os.OpenFile(filepath.Join(al.logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("failed to open audit log file: %w", err)
	}
	al.logFile = file

	al.cleanupOldLogs()
	return nil
}

// cleanupOldLogs keeps the newest maxFiles files; names sort by time
func (al *AuditLogger) cleanupOldLogs() {
	files, err := filepath.Glob(filepath.Join(al.logDir, "audit_*.log"))
	if err != nil || len(files) <= al.maxFiles {
		return
	}
	sort.Strings(files)
	for _, file := range files[:len(files)-al.maxFiles] {
		_ = os.Remove(file)
	}
}

// Close closes the current file
func (al *AuditLogger) Close() error {
	if !al.enabled {
		return nil
	}

	al.mu.Lock()
	defer al.mu.Unlock()

	if al.logFile == nil {
		return nil
	}
	err := al.logFile.Close()
	al.logFile = nil
	al.enabled = false
	return err
}

// LogCall records an executed oracle call. Governance and pause calls are
// logged as critical.
func (al *AuditLogger) LogCall(c *gin.Context, caller, msgType string, res *app.Result, err error) {
	event := AuditEvent{
		EventType: "call",
		Severity:  callSeverity(msgType),
		Caller:    caller,
		IPAddress: c.ClientIP(),
		Action:    msgType,
		Status:    "success",
		RequestID: c.GetString(ContextKeyRequestID),
	}
	if res != nil {
		event.Version = res.Version
	}
	if err != nil {
		event.Status = "rejected"
		event.Details = map[string]interface{}{
			"class": string(types.ClassOf(err)),
			"error": err.Error(),
		}
	}
	_ = al.Log(event)
}

// LogAuthFailure records a rejected bearer token
func (al *AuditLogger) LogAuthFailure(c *gin.Context, reason string) {
	_ = al.Log(AuditEvent{
		EventType: "authentication",
		Severity:  SeverityWarning,
		IPAddress: c.ClientIP(),
		Action:    c.Request.Method + " " + c.Request.URL.Path,
		Status:    "failure",
		RequestID: c.GetString(ContextKeyRequestID),
		Details:   map[string]interface{}{"reason": reason},
	})
}

// LogRateLimitExceeded records a throttled request
func (al *AuditLogger) LogRateLimitExceeded(c *gin.Context) {
	_ = al.Log(AuditEvent{
		EventType: "rate_limit_exceeded",
		Severity:  SeverityWarning,
		IPAddress: c.ClientIP(),
		Action:    c.Request.Method + " " + c.Request.URL.Path,
		Status:    "blocked",
		RequestID: c.GetString(ContextKeyRequestID),
	})
}

func callSeverity(msgType string) string {
	switch msgType {
	case types.TypeMsgReportPrice, types.TypeMsgRegisterNode, types.TypeMsgSetNodeAccount:
		return SeverityInfo
	case types.TypeMsgPause, types.TypeMsgResume, types.TypeMsgExecuteProposal,
		types.TypeMsgConfigureAdminRole, types.TypeMsgUpdateConfig:
		return SeverityCritical
	default:
		return SeverityWarning
	}
}
