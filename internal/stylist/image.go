package stylist

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageFormat is a decodable upload format.
type ImageFormat string

const (
	JPEG ImageFormat = "jpeg"
	PNG  ImageFormat = "png"
	GIF  ImageFormat = "gif"
	WEBP ImageFormat = "webp"
)

// ErrUnreadableImage means the upload is not a decodable image.
var ErrUnreadableImage = errors.New("unable to process the input image")

// DetectFormat checks that data is an image the classifier can read.
func DetectFormat(data []byte) (ImageFormat, error) {
	if len(data) == 0 {
		return "", ErrUnreadableImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return "", ErrUnreadableImage
	}

	switch format {
	case "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "gif":
		return GIF, nil
	case "webp":
		return WEBP, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %s", ErrUnreadableImage, format)
	}
}
