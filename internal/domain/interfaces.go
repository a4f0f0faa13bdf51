package domain

import (
	"context"
	"time"
)

// ConfigManager provides access to application configuration.
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	Validate() error
}

// ReportStore persists assembled analysis reports for later retrieval by the
// reporting UI. The core engine itself has no persistence requirement.
type ReportStore interface {
	Save(ctx context.Context, report *AnalysisReport) error
	Get(ctx context.Context, id string) (*AnalysisReport, error)
	List(ctx context.Context, limit, offset int) ([]*ReportSummary, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// ReportSummary is the indexed subset of a stored report used for listings.
type ReportSummary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Age          float64   `json:"age"`
	Sex          Sex       `json:"sex"`
	Risk         RiskLevel `json:"risk"`
	EstimatedICV int64     `json:"estimated_icv"`
	BPF          *float64  `json:"bpf,omitempty"`
}

// SegmentationService produces a VolumeObservation from a conformed volume
// tensor via the external inference model.
type SegmentationService interface {
	Segment(ctx context.Context, tensor []byte) (VolumeObservation, error)
}
