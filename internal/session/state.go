package session

import (
	"errors"

	"github.com/example/outfit-stylist/internal/predictor"
	"github.com/example/outfit-stylist/internal/recommendation"
)

// NoImageMessage is shown when a submission is attempted without an image.
const NoImageMessage = "Please select an image to upload."

var (
	// ErrNoImage means a submission was attempted without a selected image.
	ErrNoImage = errors.New(NoImageMessage)
	// ErrSubmissionInFlight means the session already waits for a prediction.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	// ErrUnknownSession is returned for ids the manager does not hold.
	ErrUnknownSession = errors.New("unknown session")
	// ErrCardNotFound is returned for an outfit index outside the result.
	ErrCardNotFound = errors.New("outfit item not found")
)

// Status is derived from the state record, never stored.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusReady     Status = "ready"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Card is one rendered outfit item. FallbackApplied records that the
// placeholder has already replaced a failed image.
type Card struct {
	Item            recommendation.OutfitItem
	FallbackApplied bool
}

// Ticket identifies one submission. A ticket whose generation no longer
// matches the state belongs to a superseded image selection.
type Ticket struct {
	Generation uint64
	Image      predictor.Image
}

// State is the per-session record. The zero value is an idle session.
// Fields change only through the transition methods.
type State struct {
	image      *predictor.Image
	previewID  string
	generation uint64
	pending    bool
	result     *recommendation.Result
	cards      []Card
	errMessage string
}

// Status derives the current status.
func (s *State) Status() Status {
	switch {
	case s.pending:
		return StatusPending
	case s.errMessage != "":
		return StatusFailed
	case s.result != nil:
		return StatusSucceeded
	case s.image != nil:
		return StatusReady
	default:
		return StatusIdle
	}
}

// SelectImage stores a new image and its preview id, clearing any result or
// error. The previous preview id is returned so the caller can release it.
func (s *State) SelectImage(image predictor.Image, previewID string) (released string) {
	released = s.previewID
	s.image = &image
	s.previewID = previewID
	s.generation++
	s.clearOutcome()
	return released
}

// Begin starts a submission. Without an image the no-image message becomes
// the session error and ErrNoImage is returned.
func (s *State) Begin() (Ticket, error) {
	if s.pending {
		return Ticket{}, ErrSubmissionInFlight
	}
	if s.image == nil {
		s.clearOutcome()
		s.errMessage = NoImageMessage
		return Ticket{}, ErrNoImage
	}
	s.clearOutcome()
	s.pending = true
	return Ticket{Generation: s.generation, Image: *s.image}, nil
}

// Complete stores a successful result. It reports false when the ticket was
// superseded by a newer image selection; the busy flag is cleared either way.
func (s *State) Complete(ticket Ticket, result *recommendation.Result) bool {
	s.pending = false
	if ticket.Generation != s.generation {
		return false
	}
	s.clearOutcome()
	if result == nil {
		result = &recommendation.Result{}
	}
	s.result = result
	s.cards = make([]Card, len(result.SuggestedOutfit))
	for i, item := range result.SuggestedOutfit {
		s.cards[i] = Card{Item: item}
	}
	return true
}

// Fail stores the user-facing message of a failed submission, with the same
// superseded-ticket rule as Complete.
func (s *State) Fail(ticket Ticket, message string) bool {
	s.pending = false
	if ticket.Generation != s.generation {
		return false
	}
	s.clearOutcome()
	if message == "" {
		message = predictor.FallbackTransportMessage
	}
	s.errMessage = message
	return true
}

// ApplyImageFallback marks the card at index as substituted. It reports true
// only the first time so a failing placeholder cannot trigger another swap.
func (s *State) ApplyImageFallback(index int) (bool, error) {
	if index < 0 || index >= len(s.cards) {
		return false, ErrCardNotFound
	}
	if s.cards[index].FallbackApplied {
		return false, nil
	}
	s.cards[index].FallbackApplied = true
	return true, nil
}

// PreviewID returns the current preview reference, empty when none.
func (s *State) PreviewID() string {
	return s.previewID
}

// Release drops the preview reference and returns it for release.
func (s *State) Release() string {
	released := s.previewID
	s.previewID = ""
	return released
}

func (s *State) clearOutcome() {
	s.result = nil
	s.cards = nil
	s.errMessage = ""
}
