package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/pv-climate-etl/internal/config"
	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

// Message header keys.
const (
	HeaderDataSource = "data_source"
	HeaderRunID      = "run_id"
	HeaderBuiltAt    = "built_at"
)

// messageWriter is the subset of *kafkago.Writer the Writer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes catalog rows to a Kafka topic, one message per site.
// It implements pipeline.SummaryPublisher.
type Writer struct {
	writer    messageWriter
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newWriter(w, cfg.BatchSize, logger)
}

func newWriter(w messageWriter, batchSize int, logger *slog.Logger) *Writer {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Writer{writer: w, batchSize: batchSize, logger: logger}
}

// LoadBatch serializes the catalog and publishes it in WriteMessages calls
// of at most batchSize messages. Messages are keyed by site id, so a site's
// rows from successive runs land on the same partition.
func (w *Writer) LoadBatch(ctx context.Context, meta domain.CatalogMeta, rows []domain.AnnualSiteSummary) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(&rows[i], meta)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	for start := 0; start < len(msgs); start += w.batchSize {
		end := min(start+w.batchSize, len(msgs))
		if err := w.writer.WriteMessages(ctx, msgs[start:end]...); err != nil {
			return fmt.Errorf("write messages %d-%d: %w", start, end-1, err)
		}
		w.logger.Debug("summaries published", "count", end-start, "run_id", meta.RunID)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a catalog row into a Kafka message. The value
// is the row keyed by catalog column name.
func serializeToMessage(s *domain.AnnualSiteSummary, meta domain.CatalogMeta) (kafkago.Message, error) {
	data, err := json.Marshal(s.Record())
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize site summary %s: %w", s.Site.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(s.Site.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderDataSource, Value: []byte(s.Site.DataSource)},
			{Key: HeaderRunID, Value: []byte(meta.RunID)},
			{Key: HeaderBuiltAt, Value: []byte(meta.BuiltAt.Format(time.RFC3339))},
		},
	}, nil
}
