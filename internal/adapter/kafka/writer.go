package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/surf-prediction-service/internal/config"
	"github.com/couchcryptid/surf-prediction-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes predictions to a Kafka topic.
// It implements prediction.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishPredictions writes all predictions in a single WriteMessages call.
// Messages are keyed by break so a break's predictions stay ordered.
func (w *Writer) PublishPredictions(ctx context.Context, predictions []domain.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(predictions))
	for i := range predictions {
		msg, err := serializeToMessage(predictions[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish predictions: %w", err)
	}
	w.logger.Debug("predictions published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(p domain.Prediction) (kafkago.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(p.BreakID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "predicted_rating", Value: []byte(p.PredictedRating)},
			{Key: "generated_at", Value: []byte(p.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
