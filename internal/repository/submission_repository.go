package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/outfit-stylist/internal/retry"
)

// SubmissionLog records the outcome of one prediction submission. It is an
// audit trail only; sessions are never rebuilt from it.
type SubmissionLog struct {
	ID           uint      `gorm:"primaryKey"`
	RequestID    string    `gorm:"column:request_id;uniqueIndex;size:64"`
	SessionID    string    `gorm:"column:session_id;index;size:64"`
	Filename     string    `gorm:"column:filename;size:255"`
	ImageBytes   int       `gorm:"column:image_bytes"`
	Category     string    `gorm:"column:category;size:128"`
	ItemCount    int       `gorm:"column:item_count"`
	Success      bool      `gorm:"column:success"`
	ErrorKind    string    `gorm:"column:error_kind;size:32"`
	ErrorMessage string    `gorm:"column:error_message;type:text"`
	LatencyMs    int64     `gorm:"column:latency_ms"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (SubmissionLog) TableName() string {
	return "submission_logs"
}

// MetricsAggregation holds the raw aggregates behind the metrics summary.
type MetricsAggregation struct {
	TotalCount       int64
	SuccessCount     int64
	AverageItems     float64
	AverageLatencyMs float64
}

// SubmissionRepository provides persistence APIs for submission logs.
type SubmissionRepository struct {
	db             *gorm.DB
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewSubmissionRepository creates a new repository instance.
func NewSubmissionRepository(db *gorm.DB, logger *zap.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:             db,
		logger:         logger.Named("submission_repository"),
		retryAttempts:  retry.DefaultPolicy.Attempts,
		initialBackoff: retry.DefaultPolicy.InitialBackoff,
		maxBackoff:     retry.DefaultPolicy.MaxBackoff,
	}
}

// AutoMigrate ensures the schema is available.
func (r *SubmissionRepository) AutoMigrate(ctx context.Context) error {
	return r.executeWithRetry(ctx, "repository.auto_migrate", "", func() error {
		return r.db.WithContext(ctx).AutoMigrate(&SubmissionLog{})
	})
}

// SaveLog persists a submission log entry.
func (r *SubmissionRepository) SaveLog(ctx context.Context, log *SubmissionLog) error {
	return r.executeWithRetry(ctx, "repository.save_log", log.RequestID, func() error {
		return r.db.WithContext(ctx).Create(log).Error
	})
}

// FindBySession lists the most recent submissions of a session, newest first.
func (r *SubmissionRepository) FindBySession(ctx context.Context, sessionID string, limit int) ([]*SubmissionLog, error) {
	var logs []*SubmissionLog
	err := r.executeWithRetry(ctx, "repository.find_by_session", sessionID, func() error {
		return r.db.WithContext(ctx).
			Where("session_id = ?", sessionID).
			Order("created_at DESC").
			Limit(limit).
			Find(&logs).Error
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// AggregateMetrics computes totals across every submission.
func (r *SubmissionRepository) AggregateMetrics(ctx context.Context) (*MetricsAggregation, error) {
	var row struct {
		TotalCount       int64
		SuccessCount     int64
		AverageItems     float64
		AverageLatencyMs float64
	}
	err := r.executeWithRetry(ctx, "repository.aggregate_metrics", "", func() error {
		return r.db.WithContext(ctx).
			Model(&SubmissionLog{}).
			Select(`COUNT(*) AS total_count,
				COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) AS success_count,
				COALESCE(AVG(CASE WHEN success THEN item_count END), 0) AS average_items,
				COALESCE(AVG(latency_ms), 0) AS average_latency_ms`).
			Scan(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &MetricsAggregation{
		TotalCount:       row.TotalCount,
		SuccessCount:     row.SuccessCount,
		AverageItems:     row.AverageItems,
		AverageLatencyMs: row.AverageLatencyMs,
	}, nil
}

func (r *SubmissionRepository) executeWithRetry(ctx context.Context, operation, requestID string, fn func() error) error {
	policy := retry.Policy{
		Attempts:       r.retryAttempts,
		InitialBackoff: r.initialBackoff,
		MaxBackoff:     r.maxBackoff,
	}
	return policy.Do(ctx, r.logger, operation, requestID, fn)
}
