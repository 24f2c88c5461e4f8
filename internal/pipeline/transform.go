package pipeline

import (
	"context"

	"github.com/couchcryptid/surf-prediction-service/internal/domain"
)

// ReadingTransformer implements Transformer with domain.ParseRawReading.
type ReadingTransformer struct{}

// NewTransformer creates a ReadingTransformer.
func NewTransformer() *ReadingTransformer {
	return &ReadingTransformer{}
}

func (ReadingTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.ReadingRecord, error) {
	return domain.ParseRawReading(raw)
}
