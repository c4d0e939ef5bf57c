package usecase

import (
	"context"
	"errors"
)

// ErrSubmissionLogUnavailable is returned by metrics and history when no
// submission log is configured.
var ErrSubmissionLogUnavailable = errors.New("submission log is not configured")

// MetricsSummary represents aggregated submission insights.
type MetricsSummary struct {
	TotalRequests              int64   `json:"total_requests"`
	SuccessfulRequests         int64   `json:"successful_requests"`
	SuccessRate                float64 `json:"success_rate"`
	AverageOutfitItems         float64 `json:"average_outfit_items"`
	AverageProcessingLatencyMs float64 `json:"average_processing_latency_ms"`
}

// GetMetricsSummary aggregates submission metrics from persisted logs.
func (uc *StylingUseCase) GetMetricsSummary(ctx context.Context) (*MetricsSummary, error) {
	if uc.repo == nil {
		return nil, ErrSubmissionLogUnavailable
	}
	aggregation, err := uc.repo.AggregateMetrics(ctx)
	if err != nil {
		return nil, err
	}

	summary := &MetricsSummary{
		TotalRequests:              aggregation.TotalCount,
		SuccessfulRequests:         aggregation.SuccessCount,
		AverageOutfitItems:         aggregation.AverageItems,
		AverageProcessingLatencyMs: aggregation.AverageLatencyMs,
	}

	if aggregation.TotalCount > 0 {
		summary.SuccessRate = float64(aggregation.SuccessCount) / float64(aggregation.TotalCount)
	}

	return summary, nil
}
