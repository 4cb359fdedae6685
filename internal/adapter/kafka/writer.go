package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/city-weather-etl/internal/config"
	"github.com/couchcryptid/city-weather-etl/internal/domain"
	"github.com/couchcryptid/city-weather-etl/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// RankingPublisher produces one message per comfort ranking row.
// It implements pipeline.Exporter.
type RankingPublisher struct {
	writer  messageWriter
	topic   string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRankingPublisher creates a Kafka producer for the configured ranking topic.
func NewRankingPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *RankingPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &RankingPublisher{writer: w, topic: cfg.KafkaTopic, logger: logger, metrics: metrics}
}

// Name identifies the exporter in logs and metrics.
func (p *RankingPublisher) Name() string { return "kafka" }

// Export publishes every comfort ranking row in a single WriteMessages call.
// Rows of the same period and city share a key, so they land on one partition.
func (p *RankingPublisher) Export(ctx context.Context, r domain.Rollups) (int, error) {
	if len(r.Comfort) == 0 {
		return 0, nil
	}
	runID := domain.RunIDFromContext(ctx)
	now := domain.Now()

	msgs := make([]kafkago.Message, len(r.Comfort))
	for i := range r.Comfort {
		msg, err := serializeToMessage(r.Comfort[i], runID, now)
		if err != nil {
			return 0, err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish %d rankings to %s: %w", len(msgs), p.topic, err)
	}
	p.metrics.ExportedRows.WithLabelValues(p.Name(), "comfort").Add(float64(len(msgs)))
	p.logger.Debug("published comfort rankings", "topic", p.topic, "count", len(msgs))
	return len(msgs), nil
}

func (p *RankingPublisher) Close() error {
	return p.writer.Close()
}

// rankingMessage is the JSON payload of a ranking message.
type rankingMessage struct {
	Period        string   `json:"period"`
	Granularity   string   `json:"granularity"`
	Rank          int      `json:"rank"`
	CityID        string   `json:"city_id"`
	Province      string   `json:"province"`
	Score         float64  `json:"score"`
	TempAvg       *float64 `json:"temp_avg"`
	Humidity      *float64 `json:"humidity"`
	Precipitation float64  `json:"precipitation"`
}

// messageKey is "period|city_id".
func messageKey(c domain.ComfortRanking) []byte {
	return []byte(c.Period + "|" + c.CityID)
}

// serializeToMessage marshals a ComfortRanking into a Kafka message.
func serializeToMessage(c domain.ComfortRanking, runID string, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(rankingMessage{
		Period:        c.Period,
		Granularity:   string(c.Granularity),
		Rank:          c.Rank,
		CityID:        c.CityID,
		Province:      c.Province,
		Score:         c.Score,
		TempAvg:       c.TempAvg,
		Humidity:      c.Humidity,
		Precipitation: c.Precipitation,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize comfort ranking: %w", err)
	}
	return kafkago.Message{
		Key:   messageKey(c),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "granularity", Value: []byte(c.Granularity)},
			{Key: "run_id", Value: []byte(runID)},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
