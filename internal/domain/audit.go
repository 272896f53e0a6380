package domain

import (
	"context"
	"time"
)

// RunRecord is one audited tool invocation.
type RunRecord struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	Tool        string    `json:"tool"`
	DeviceCount int       `json:"device_count"`
	OKCount     int       `json:"ok_count"`
	FailCount   int       `json:"fail_count"`
	Detail      string    `json:"detail,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SecurityRecord is one audited denylist rejection.
type SecurityRecord struct {
	ID        int64     `json:"id"`
	Command   string    `json:"command"`
	Rule      string    `json:"rule"`
	Match     string    `json:"match"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLogger records tool runs and denylist rejections. Implementations
// must tolerate being called concurrently.
type AuditLogger interface {
	LogRun(ctx context.Context, rec RunRecord) error
	LogSecurity(ctx context.Context, rec SecurityRecord) error
}
