package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/outfit-stylist/internal/logging"
)

// HistoryLimit bounds how many past submissions a session can list.
const HistoryLimit = 20

// HistoryEntry is one past submission of a session, newest first.
type HistoryEntry struct {
	RequestID    string    `json:"request_id"`
	Filename     string    `json:"filename"`
	Success      bool      `json:"success"`
	Category     string    `json:"category,omitempty"`
	ItemCount    int       `json:"item_count"`
	ErrorMessage string    `json:"error,omitempty"`
	LatencyMs    int64     `json:"latency_ms"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// GetHistory lists the session's recent submissions from the submission log.
func (uc *StylingUseCase) GetHistory(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	if uc.repo == nil {
		return nil, ErrSubmissionLogUnavailable
	}

	logs, err := uc.repo.FindBySession(ctx, sessionID, HistoryLimit)
	if err != nil {
		logging.WithSession(uc.logger, "usecase.history", sessionID).Error("failed to load history", zap.Error(err))
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(logs))
	for _, log := range logs {
		entries = append(entries, HistoryEntry{
			RequestID:    log.RequestID,
			Filename:     log.Filename,
			Success:      log.Success,
			Category:     log.Category,
			ItemCount:    log.ItemCount,
			ErrorMessage: log.ErrorMessage,
			LatencyMs:    log.LatencyMs,
			SubmittedAt:  log.CreatedAt,
		})
	}
	return entries, nil
}
