package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"go.uber.org/zap"

	"github.com/example/outfit-stylist/internal/logging"
	"github.com/example/outfit-stylist/internal/recommendation"
)

// ImageField is the multipart field carrying the uploaded image.
const ImageField = "image"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// HTTPClient posts images to a prediction endpoint as multipart/form-data.
type HTTPClient struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewHTTPClient returns a client for endpoint. A zero timeout means none.
func NewHTTPClient(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger.Named("predictor"),
	}
}

// Predict performs exactly one POST; failures come back as *Error.
func (c *HTTPClient) Predict(ctx context.Context, requestID string, image Image) (*recommendation.Result, error) {
	opLogger := logging.WithOperation(c.logger, "predictor.predict", requestID)

	body, contentType, err := encodeImage(image)
	if err != nil {
		return nil, newTransportError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, newTransportError(err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		opLogger.Error("prediction request failed", zap.Error(err))
		return nil, newTransportError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		opLogger.Error("failed to read prediction response", zap.Error(err), zap.Int("status", resp.StatusCode))
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, newServerError(resp.StatusCode, "")
		}
		return nil, newTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody recommendation.ErrorBody
		if err := json.Unmarshal(payload, &errBody); err != nil {
			errBody.Error = ""
		}
		opLogger.Warn("prediction endpoint returned an error",
			zap.Int("status", resp.StatusCode),
			zap.String("server_error", errBody.Error),
		)
		return nil, newServerError(resp.StatusCode, errBody.Error)
	}

	var result recommendation.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		opLogger.Error("failed to decode recommendation", zap.Error(err))
		return nil, &Error{
			Kind:       KindDecode,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Invalid recommendation response: %v", err),
			Err:        err,
		}
	}

	opLogger.Info("prediction completed",
		zap.String("category", result.InputItemCategory),
		zap.Int("items", result.ItemCount()),
		zap.Duration("latency", time.Since(started)),
	)
	return &result, nil
}

func encodeImage(image Image) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	filename := image.Filename
	if filename == "" {
		filename = "upload"
	}
	contentType := image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ImageField, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}
