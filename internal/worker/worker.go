package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"commission-tracker/internal/broker"
	kafka_impl "commission-tracker/internal/broker/kafka"
	"commission-tracker/internal/config"
	"commission-tracker/internal/domain"
	minio_repo "commission-tracker/internal/repository/commission/cloud/minio"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

var errStreamClosed = errors.New("message stream closed")

type fileRepository interface {
	DeleteMany(ctx context.Context, keys []string) error
}

// Worker consumes orphaned blob events and deletes the keys they carry.
// An event whose delete keeps failing is published again so it is retried
// later; if that fails too the worker stops without committing.
type Worker struct {
	logger      *zlog.Zerolog
	consumer    broker.Consumer
	producer    broker.Producer
	fileRepo    fileRepository
	retries     retry.Strategy
	concurrency int
	wg          sync.WaitGroup
}

func NewWorker(cfg *config.Config, logger *zlog.Zerolog) (*Worker, error) {
	fileRepo, err := minio_repo.NewMinIORepository(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file repository: %w", err)
	}

	consumer := kafka_impl.NewConsumerClient(cfg)
	producer := kafka_impl.NewProducerClient(cfg)

	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.OrphanTopic).
		Str("group", cfg.Kafka.GroupID).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("Worker configuration")

	return newWorker(consumer, producer, fileRepo, cfg.Worker.Concurrency, cfg.DefaultRetryStrategy(), logger), nil
}

func newWorker(consumer broker.Consumer, producer broker.Producer, fileRepo fileRepository, concurrency int, retries retry.Strategy, logger *zlog.Zerolog) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if retries.Attempts < 1 {
		retries.Attempts = 1
	}
	return &Worker{
		logger:      logger,
		consumer:    consumer,
		producer:    producer,
		fileRepo:    fileRepo,
		retries:     retries,
		concurrency: concurrency,
	}
}

// Run blocks until SIGINT or SIGTERM.
func (w *Worker) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		w.logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal, stopping worker...")
		cancel()
	}()

	return w.run(ctx)
}

func (w *Worker) run(ctx context.Context) error {
	ctx, halt := context.WithCancelCause(ctx)
	defer halt(nil)

	w.logger.Info().Int("concurrency", w.concurrency).Msg("Starting worker")

	messages := make(chan *broker.Message, w.concurrency*2)
	w.consumer.Start(ctx, messages, w.retries)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.processWorker(ctx, halt, id, messages)
		}(i)
	}

	w.logger.Info().Msg("Worker started successfully")
	<-ctx.Done()

	w.logger.Info().Msg("Shutting down worker gracefully...")
	w.wg.Wait()

	if err := w.consumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close consumer")
	}
	if err := w.producer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close producer")
	}

	if cause := context.Cause(ctx); !errors.Is(cause, context.Canceled) {
		return cause
	}

	w.logger.Info().Msg("Worker stopped gracefully")
	return nil
}

func (w *Worker) processWorker(ctx context.Context, halt context.CancelCauseFunc, id int, messages <-chan *broker.Message) {
	w.logger.Debug().Int("worker_id", id).Msg("Worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Int("worker_id", id).Msg("Worker stopping")
			return
		case msg, ok := <-messages:
			if !ok {
				halt(errStreamClosed)
				return
			}
			startTime := time.Now()

			if err := w.safeProcessMessage(ctx, id, msg); err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger.Error().
					Err(err).
					Int("worker_id", id).
					Int64("offset", msg.Offset).
					Msg("Failed to process message, stopping worker")
				halt(fmt.Errorf("offset %d left uncommitted: %w", msg.Offset, err))
				return
			}

			if err := w.consumer.Commit(ctx, msg); err != nil {
				w.logger.Error().
					Err(err).
					Int64("offset", msg.Offset).
					Int("worker_id", id).
					Msg("Failed to commit message after successful processing")
				continue
			}

			w.logger.Debug().
				Int("worker_id", id).
				Int64("offset", msg.Offset).
				Dur("duration", time.Since(startTime)).
				Msg("Message processed and committed successfully")
		}
	}
}

func (w *Worker) safeProcessMessage(ctx context.Context, workerID int, msg *broker.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Int("worker_id", workerID).
				Interface("panic", r).
				Int64("offset", msg.Offset).
				Msg("Panic recovered while processing message")
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.processMessage(ctx, msg)
}

// processMessage deletes the event's keys. Malformed events are dropped so
// they do not block the partition.
func (w *Worker) processMessage(ctx context.Context, msg *broker.Message) error {
	var event domain.OrphanedBlobs
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		w.logger.Warn().Err(err).Str("message", string(msg.Value)).Int64("offset", msg.Offset).Msg("Dropping malformed orphan event")
		return nil
	}

	if len(event.Keys) == 0 {
		return nil
	}

	err := retry.DoContext(ctx, w.retries, func() error {
		return w.fileRepo.DeleteMany(ctx, event.Keys)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return w.requeue(ctx, msg, event, err)
	}

	w.logger.Info().
		Str("event_id", event.ID).
		Int("keys", len(event.Keys)).
		Str("reason", event.Reason).
		Msg("Orphaned blobs reclaimed")

	return nil
}

// requeue publishes the event again at the tail of the topic so the
// current offset can be committed.
func (w *Worker) requeue(ctx context.Context, msg *broker.Message, event domain.OrphanedBlobs, cause error) error {
	if err := w.producer.Send(ctx, w.retries, msg.Key, msg.Value); err != nil {
		return fmt.Errorf("failed to delete orphaned blobs: %w", errors.Join(cause, err))
	}

	w.logger.Warn().
		Err(cause).
		Str("event_id", event.ID).
		Int("keys", len(event.Keys)).
		Int64("offset", msg.Offset).
		Msg("Orphaned blobs still present, event requeued")

	return nil
}
