package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/outfit-stylist/internal/logging"
	"github.com/example/outfit-stylist/internal/predictor"
	"github.com/example/outfit-stylist/internal/recommendation"
)

type entry struct {
	state    State
	lastSeen time.Time
}

// Manager owns every browser session and the previews they reference.
type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*entry
	previews    PreviewStore
	placeholder string
	now         func() time.Time
	logger      *zap.Logger
}

// NewManager creates a manager storing previews in store.
func NewManager(store PreviewStore, placeholder string, logger *zap.Logger) *Manager {
	return &Manager{
		sessions:    make(map[string]*entry),
		previews:    store,
		placeholder: placeholder,
		now:         time.Now,
		logger:      logger.Named("session_manager"),
	}
}

// touch returns the session entry, creating an idle one when absent.
// Callers hold m.mu.
func (m *Manager) touch(sessionID string) *entry {
	e, ok := m.sessions[sessionID]
	if !ok {
		e = &entry{}
		m.sessions[sessionID] = e
	}
	e.lastSeen = m.now()
	return e
}

// View returns the current snapshot of a session.
func (m *Manager) View(sessionID string) View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.touch(sessionID).state.View(sessionID, m.placeholder)
}

// SelectImage stores image as the session's selection and releases the
// preview it replaces.
func (m *Manager) SelectImage(ctx context.Context, sessionID string, image predictor.Image) (View, error) {
	previewID := uuid.NewString()
	if err := m.previews.Put(ctx, previewID, image); err != nil {
		return View{}, logging.NewOperationError("session.select_image", sessionID, err)
	}

	m.mu.Lock()
	e := m.touch(sessionID)
	released := e.state.SelectImage(image, previewID)
	view := e.state.View(sessionID, m.placeholder)
	m.mu.Unlock()

	m.release(ctx, sessionID, released)
	return view, nil
}

// Begin starts a submission for the session.
func (m *Manager) Begin(sessionID string) (Ticket, View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.touch(sessionID)
	ticket, err := e.state.Begin()
	return ticket, e.state.View(sessionID, m.placeholder), err
}

// Complete finishes a submission with a result.
func (m *Manager) Complete(sessionID string, ticket Ticket, result *recommendation.Result) (View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.touch(sessionID)
	applied := e.state.Complete(ticket, result)
	return e.state.View(sessionID, m.placeholder), applied
}

// Fail finishes a submission with a user-facing error message.
func (m *Manager) Fail(sessionID string, ticket Ticket, message string) (View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.touch(sessionID)
	applied := e.state.Fail(ticket, message)
	return e.state.View(sessionID, m.placeholder), applied
}

// ApplyImageFallback records an outfit image load failure. It returns the
// placeholder URL and true only the first time for a given card.
func (m *Manager) ApplyImageFallback(sessionID string, index int) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return "", false, ErrUnknownSession
	}
	e.lastSeen = m.now()
	substitute, err := e.state.ApplyImageFallback(index)
	if err != nil || !substitute {
		return "", false, err
	}
	return m.placeholder, true, nil
}

// Preview returns the bytes behind previewID when it is the session's
// current preview.
func (m *Manager) Preview(ctx context.Context, sessionID, previewID string) (*predictor.Image, error) {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	current := ok && previewID != "" && e.state.PreviewID() == previewID
	m.mu.Unlock()
	if !current {
		return nil, ErrPreviewNotFound
	}
	return m.previews.Get(ctx, previewID)
}

// Sweep ends sessions idle for longer than idleTTL and releases their
// previews. Sessions with a submission in flight are kept.
func (m *Manager) Sweep(ctx context.Context, idleTTL time.Duration) int {
	cutoff := m.now().Add(-idleTTL)

	m.mu.Lock()
	released := make(map[string]string)
	for id, e := range m.sessions {
		if e.state.pending || e.lastSeen.After(cutoff) {
			continue
		}
		released[id] = e.state.Release()
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for id, previewID := range released {
		m.release(ctx, id, previewID)
	}
	if len(released) > 0 {
		m.logger.Info("swept idle sessions", zap.Int("count", len(released)))
	}
	return len(released)
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) release(ctx context.Context, sessionID, previewID string) {
	if previewID == "" {
		return
	}
	if err := m.previews.Delete(ctx, previewID); err != nil {
		logging.WithSession(m.logger, "session.release_preview", sessionID).
			Warn("failed to release preview", zap.String("preview_id", previewID), zap.Error(err))
	}
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval, idleTTL time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep(ctx, idleTTL)
		case <-ctx.Done():
			return
		}
	}
}
