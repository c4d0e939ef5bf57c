package predictor

import (
	"context"
	"fmt"
	"net/http"

	"github.com/example/outfit-stylist/internal/recommendation"
)

// Image is the file sent to the prediction endpoint.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Client exposes the prediction call used by the styling flow.
type Client interface {
	Predict(ctx context.Context, requestID string, image Image) (*recommendation.Result, error)
}

// Kind classifies prediction failures.
type Kind string

const (
	// KindServer is a non-2xx response.
	KindServer Kind = "server"
	// KindTransport means the request never completed.
	KindTransport Kind = "transport"
	// KindDecode is a 2xx response whose body is not a recommendation.
	KindDecode Kind = "decode"
)

// FallbackTransportMessage is shown when a transport failure carries no message.
const FallbackTransportMessage = "An unexpected error occurred while requesting a recommendation. Please try again."

// Error is a prediction failure. Message is what the user sees.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ServerErrorMessage is the generic message for a non-2xx response whose body
// carries no usable error field.
func ServerErrorMessage(statusCode int) string {
	return fmt.Sprintf("Server error: %d %s", statusCode, http.StatusText(statusCode))
}

// newServerError prefers the server's own message when there is one.
func newServerError(statusCode int, serverMessage string) *Error {
	message := serverMessage
	if message == "" {
		message = ServerErrorMessage(statusCode)
	}
	return &Error{Kind: KindServer, StatusCode: statusCode, Message: message}
}

func newTransportError(err error) *Error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	if message == "" {
		message = FallbackTransportMessage
	}
	return &Error{Kind: KindTransport, Message: message, Err: err}
}
