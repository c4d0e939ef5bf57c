package stylist

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/outfit-stylist/internal/recommendation"
)

// Classifier assigns one of Categories to an image.
type Classifier interface {
	Classify(ctx context.Context, image []byte, format ImageFormat) (string, error)
}

// RandomClassifier picks a category at random. It stands in when no trained
// model is available.
type RandomClassifier struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomClassifier seeds a classifier.
func NewRandomClassifier(seed int64) *RandomClassifier {
	return &RandomClassifier{rnd: rand.New(rand.NewSource(seed))}
}

func (c *RandomClassifier) Classify(context.Context, []byte, ImageFormat) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Categories[c.rnd.Intn(len(Categories))], nil
}

// Service produces recommendations for uploaded garments.
type Service struct {
	classifier Classifier
	catalog    Catalog
	logger     *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewService builds a service around classifier and catalog.
func NewService(classifier Classifier, catalog Catalog, logger *zap.Logger) *Service {
	return &Service{
		classifier: classifier,
		catalog:    catalog,
		logger:     logger.Named("stylist"),
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Recommend validates the image, classifies it and builds the outfit.
// A classifier failure falls back to a random category.
func (s *Service) Recommend(ctx context.Context, data []byte) (*recommendation.Result, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	category, err := s.classifier.Classify(ctx, data, format)
	if err != nil || category == "" {
		s.logger.Warn("classification failed, using a random category", zap.Error(err))
		s.mu.Lock()
		category = Categories[s.rnd.Intn(len(Categories))]
		s.mu.Unlock()
	}

	s.mu.Lock()
	text, items := s.catalog.Suggest(category, s.rnd)
	s.mu.Unlock()

	s.logger.Info("recommendation built",
		zap.String("format", string(format)),
		zap.String("category", category),
		zap.Int("items", len(items)),
	)
	return &recommendation.Result{
		InputItemCategory: category,
		SuggestionText:    text,
		SuggestedOutfit:   items,
	}, nil
}
