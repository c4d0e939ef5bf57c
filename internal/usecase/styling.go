package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/outfit-stylist/internal/logging"
	"github.com/example/outfit-stylist/internal/predictor"
	"github.com/example/outfit-stylist/internal/repository"
	"github.com/example/outfit-stylist/internal/session"
)

const recordTimeout = 5 * time.Second

// SubmissionRepository defines the persistence operations needed by the use case.
type SubmissionRepository interface {
	SaveLog(ctx context.Context, log *repository.SubmissionLog) error
	AggregateMetrics(ctx context.Context) (*repository.MetricsAggregation, error)
	FindBySession(ctx context.Context, sessionID string, limit int) ([]*repository.SubmissionLog, error)
}

// StylingUseCase encapsulates the upload, submit and render flow of a session.
type StylingUseCase struct {
	sessions  *session.Manager
	predictor predictor.Client
	repo      SubmissionRepository
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewStylingUseCase constructs a new use case instance. repo may be nil, in
// which case submissions are not logged and metrics are unavailable.
func NewStylingUseCase(sessions *session.Manager, client predictor.Client, repo SubmissionRepository, timeout time.Duration, logger *zap.Logger) *StylingUseCase {
	return &StylingUseCase{
		sessions:  sessions,
		predictor: client,
		repo:      repo,
		timeout:   timeout,
		logger:    logger.Named("styling_usecase"),
		now:       time.Now,
	}
}

// View returns the session snapshot.
func (uc *StylingUseCase) View(sessionID string) session.View {
	return uc.sessions.View(sessionID)
}

// SelectImage makes image the session's selection.
func (uc *StylingUseCase) SelectImage(ctx context.Context, sessionID string, image predictor.Image) (session.View, error) {
	view, err := uc.sessions.SelectImage(ctx, sessionID, image)
	if err != nil {
		logging.WithSession(uc.logger, "usecase.select_image", sessionID).Error("failed to store preview", zap.Error(err))
		return uc.sessions.View(sessionID), err
	}
	logging.WithSession(uc.logger, "usecase.select_image", sessionID).Debug("image selected",
		zap.String("filename", image.Filename),
		zap.Int("bytes", len(image.Data)),
	)
	return view, nil
}

// Submit sends the session's image to the prediction endpoint and stores the
// outcome. It returns session.ErrNoImage or session.ErrSubmissionInFlight
// without any network call, and a wrapped *predictor.Error on failure.
func (uc *StylingUseCase) Submit(ctx context.Context, sessionID string) (session.View, error) {
	ticket, view, err := uc.sessions.Begin(sessionID)
	if err != nil {
		return view, err
	}

	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.submit", requestID).With(zap.String("session_id", sessionID))

	// The browser may go away mid-request; the session still has to leave
	// the pending state, so only the timeout bounds the call.
	predictCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.timeout)
	defer cancel()

	started := uc.now()
	result, predictErr := uc.predictor.Predict(predictCtx, requestID, ticket.Image)
	latency := uc.now().Sub(started)

	entry := &repository.SubmissionLog{
		RequestID:  requestID,
		SessionID:  sessionID,
		Filename:   ticket.Image.Filename,
		ImageBytes: len(ticket.Image.Data),
		LatencyMs:  latency.Milliseconds(),
		CreatedAt:  started.UTC(),
	}

	if predictErr != nil {
		message, kind := describe(predictErr)
		entry.ErrorKind = string(kind)
		entry.ErrorMessage = message
		uc.record(ctx, opLogger, entry)

		view, applied := uc.sessions.Fail(sessionID, ticket, message)
		if !applied {
			opLogger.Info("discarded failure of a superseded selection")
			return view, nil
		}
		opLogger.Warn("submission failed", zap.String("kind", string(kind)), zap.String("message", message))
		return view, logging.NewOperationError("usecase.submit", requestID, predictErr)
	}

	entry.Success = true
	entry.Category = result.InputItemCategory
	entry.ItemCount = result.ItemCount()
	uc.record(ctx, opLogger, entry)

	view, applied := uc.sessions.Complete(sessionID, ticket, result)
	if !applied {
		opLogger.Info("discarded result of a superseded selection")
		return view, nil
	}
	opLogger.Info("submission succeeded",
		zap.String("category", result.InputItemCategory),
		zap.Int("items", result.ItemCount()),
		zap.Duration("latency", latency),
	)
	return view, nil
}

// Preview returns the preview bytes of the session's current selection.
func (uc *StylingUseCase) Preview(ctx context.Context, sessionID, previewID string) (*predictor.Image, error) {
	return uc.sessions.Preview(ctx, sessionID, previewID)
}

// ReportImageFailure applies the placeholder to a card at most once.
func (uc *StylingUseCase) ReportImageFailure(sessionID string, index int) (string, bool, error) {
	src, substitute, err := uc.sessions.ApplyImageFallback(sessionID, index)
	if err == nil && substitute {
		logging.WithSession(uc.logger, "usecase.image_fallback", sessionID).Debug("placeholder applied", zap.Int("index", index))
	}
	return src, substitute, err
}

func (uc *StylingUseCase) record(ctx context.Context, opLogger *zap.Logger, entry *repository.SubmissionLog) {
	if uc.repo == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := uc.repo.SaveLog(recordCtx, entry); err != nil {
		opLogger.Error("failed to persist submission log", zap.Error(err))
	}
}

// describe turns a prediction error into the message shown to the user.
func describe(err error) (string, predictor.Kind) {
	var predErr *predictor.Error
	if errors.As(err, &predErr) {
		return predErr.Message, predErr.Kind
	}
	if message := err.Error(); message != "" {
		return message, predictor.KindTransport
	}
	return predictor.FallbackTransportMessage, predictor.KindTransport
}
