package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmorel/presence-relay/internal/model"
)

// PostgresConfig configures the batched Postgres backend.
type PostgresConfig struct {
	BatchSize     int           // Rows to accumulate before flushing
	FlushInterval time.Duration // Max time between flushes
	BufferSize    int           // Input queue capacity
}

// DefaultPostgresConfig returns sensible defaults.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		BatchSize:     100,
		FlushInterval: time.Second,
		BufferSize:    10000,
	}
}

// messageRow is a row for the messages table.
type messageRow struct {
	ID     uuid.UUID
	Sender string
	Target string
	Body   string
	SentAt time.Time
}

// PostgresStore writes message records to Postgres in batches.
// Append is non-blocking; records are dropped with a warning if the
// input queue is full.
type PostgresStore struct {
	cfg    PostgresConfig
	db     *pgxpool.Pool
	logger *slog.Logger

	input chan model.Message

	batch       []messageRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPostgresStore creates a Postgres-backed history store.
func NewPostgresStore(cfg PostgresConfig, db *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{
		cfg:    cfg,
		db:     db,
		logger: logger,
		input:  make(chan model.Message, cfg.BufferSize),
		batch:  make([]messageRow, 0, cfg.BatchSize),
	}
}

// Start ensures the schema exists and begins consuming records.
func (s *PostgresStore) Start(ctx context.Context) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.flushTicker = time.NewTicker(s.cfg.FlushInterval)

	s.wg.Add(1)
	go s.consumeLoop()

	s.wg.Add(1)
	go s.flushLoop()

	s.logger.Info("history writer started",
		"batch_size", s.cfg.BatchSize,
		"flush_interval", s.cfg.FlushInterval,
	)
	return nil
}

func (s *PostgresStore) Append(msg model.Message) {
	select {
	case s.input <- msg:
	default:
		s.logger.Warn("history buffer full, dropping record")
	}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close stops the consumer goroutines and flushes remaining records.
func (s *PostgresStore) Close(ctx context.Context) error {
	s.logger.Info("stopping history writer")

	if s.cancel != nil {
		s.cancel()
	}
	if s.flushTicker != nil {
		s.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("history writer stop timed out")
	}

	// Drain whatever arrived before Close and flush once more.
	s.drainInput()
	s.flush(context.Background())

	s.logger.Info("history writer stopped")
	return nil
}

func (s *PostgresStore) consumeLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.input:
			s.handleMessage(msg)
		}
	}
}

func (s *PostgresStore) flushLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.flushTicker.C:
			s.flush(s.ctx)
		}
	}
}

func (s *PostgresStore) handleMessage(msg model.Message) {
	row := transform(msg)

	s.batchMu.Lock()
	s.batch = append(s.batch, row)
	shouldFlush := len(s.batch) >= s.cfg.BatchSize
	s.batchMu.Unlock()

	if shouldFlush {
		s.flush(s.ctx)
	}
}

func (s *PostgresStore) drainInput() {
	for {
		select {
		case msg := <-s.input:
			s.batchMu.Lock()
			s.batch = append(s.batch, transform(msg))
			s.batchMu.Unlock()
		default:
			return
		}
	}
}

// transform converts a message record to a messages row.
func transform(msg model.Message) messageRow {
	return messageRow{
		ID:     uuid.New(),
		Sender: msg.From,
		Target: msg.To,
		Body:   msg.Body,
		SentAt: msg.SentAt,
	}
}

// flush writes the current batch to the database.
func (s *PostgresStore) flush(ctx context.Context) {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	batch := s.batch
	s.batch = make([]messageRow, 0, s.cfg.BatchSize)
	s.batchMu.Unlock()

	start := time.Now()

	if err := s.batchInsert(ctx, batch); err != nil {
		s.logger.Error("batch insert failed", "error", err, "count", len(batch))
		return
	}

	s.logger.Debug("flushed messages",
		"count", len(batch),
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (s *PostgresStore) batchInsert(ctx context.Context, rows []messageRow) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO messages (id, sender, recipient, body, sent_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, r.ID, r.Sender, r.Target, r.Body, r.SentAt)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			id        UUID PRIMARY KEY,
			sender    TEXT NOT NULL,
			recipient TEXT NOT NULL,
			body      TEXT NOT NULL,
			sent_at   TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}
