package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/Savit10/streamsense/internal/bootstrap/logging"
	"github.com/Savit10/streamsense/internal/domain/feature"
	"github.com/Savit10/streamsense/internal/errs"
	"github.com/Savit10/streamsense/internal/ports"
)

type LoopConfig struct {
	PollTimeout   time.Duration
	CommitRetries int
	RetryBackoff  time.Duration
}

// Loop is the per-partition-stream ingest worker: poll, parse, idempotency
// check, aggregate, commit, acknowledge. One unit of work per event.
//
// A single Loop instance serializes all applies it performs; if another
// consumer can route the same user, the store transaction is the only race
// guard, which is why the read-modify-write happens inside WithTx.
type Loop struct {
	source ports.EventSource
	parser *Parser
	repo   ports.FeatureRepository
	uow    ports.UnitOfWork
	cache  ports.Cache
	values feature.ValuePolicy
	cfg    LoopConfig
	stats  *Stats
}

func NewLoop(
	source ports.EventSource,
	parser *Parser,
	repo ports.FeatureRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	values feature.ValuePolicy,
	cfg LoopConfig,
) *Loop {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if values == nil {
		values = feature.DefaultValuePolicy()
	}

	return &Loop{
		source: source,
		parser: parser,
		repo:   repo,
		uow:    uow,
		cache:  cache,
		values: values,
		cfg:    cfg,
		stats:  &Stats{},
	}
}

func (l *Loop) Stats() StatsSnapshot {
	return l.stats.Snapshot()
}

// Run consumes until ctx is canceled. No event-level condition terminates
// it: transport errors re-poll, bad payloads are dropped, duplicates are
// skipped, and a poison event is abandoned after bounded retries.
func (l *Loop) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	logCtx := logging.WithAttrs(ctx, slog.String("component", "ingest.loop"))
	logging.Info(logCtx, "ingest loop started", slog.Duration("poll_timeout", l.cfg.PollTimeout))

	for {
		if ctx.Err() != nil {
			logging.Info(logCtx, "ingest loop stopped", slog.Uint64("applied", l.stats.applied.Load()))
			return nil
		}

		msg, ok, err := l.source.Poll(ctx, l.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			l.stats.transportErrors.Add(1)
			logging.Warn(logCtx, "poll failed, re-polling", slog.Any("err", errs.Loggable(err)))
			continue
		}
		if !ok {
			continue
		}

		l.handle(logCtx, msg)
	}
}

// handle processes one fetched message end to end and always acknowledges
// it: applied, duplicate, dropped and poisoned messages all advance the
// source cursor, otherwise the transport would redeliver them forever.
func (l *Loop) handle(ctx context.Context, msg ports.SourceMessage) {
	event, err := l.parser.Parse(msg.Payload)
	if err != nil {
		l.stats.parseFailures.Add(1)
		logging.Warn(ctx, "dropping unparseable event",
			slog.Any("err", errs.Loggable(err)),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
		)
		l.ack(ctx, msg)
		return
	}
	event.Partition = msg.Partition
	event.Offset = msg.Offset

	applied, err := l.applyWithRetry(ctx, event)
	switch {
	case err != nil:
		l.stats.commitFailures.Add(1)
		logging.Error(ctx, "abandoning event after exhausted commit retries",
			slog.Any("err", errs.Loggable(err)),
			slog.Uint64("user_id", event.UserID),
			slog.Int("partition", event.Partition),
			slog.Int64("offset", event.Offset),
		)
	case !applied:
		l.stats.duplicates.Add(1)
		logging.Debug(ctx, "skipping duplicate event",
			slog.Int("partition", event.Partition),
			slog.Int64("offset", event.Offset),
		)
	default:
		l.stats.applied.Add(1)
	}

	l.ack(ctx, msg)
	l.stats.persist(ctx, l.cache)
}

func (l *Loop) ack(ctx context.Context, msg ports.SourceMessage) {
	if err := l.source.Ack(ctx, msg); err != nil {
		// The watermark absorbs the redelivery this may cause.
		logging.Warn(ctx, "ack failed",
			slog.Any("err", errs.Loggable(err)),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
		)
	}
}

// applyWithRetry retries transient store failures with exponential backoff,
// bounded by CommitRetries. Context cancellation stops retrying early.
func (l *Loop) applyWithRetry(ctx context.Context, event feature.Event) (bool, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = l.cfg.RetryBackoff

	return backoff.Retry(ctx, func() (bool, error) {
		return l.applyOnce(ctx, event)
	},
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(l.cfg.CommitRetries+1)),
	)
}

// applyOnce runs the event's whole effect in one store transaction: the
// watermark read, the aggregate read-modify-write, the log append and the
// watermark advance commit together or not at all. Returns false for a
// redelivered event whose offset is at or below the partition watermark.
func (l *Loop) applyOnce(ctx context.Context, event feature.Event) (bool, error) {
	applied := false

	err := l.uow.WithTx(ctx, func(txCtx context.Context) error {
		watermark, found, err := l.repo.GetWatermark(txCtx, event.Partition)
		if err != nil {
			return err
		}
		if found && event.Offset <= watermark {
			return nil
		}

		prior, err := l.loadPrior(txCtx, event.UserID)
		if err != nil {
			return err
		}

		next := feature.Apply(prior, event)
		if err := l.repo.UpsertFeature(txCtx, ports.UserFeature{
			UserID:         event.UserID,
			LastEventTS:    next.LastEventTS.UTC().Format(time.RFC3339Nano),
			EventCount:     next.EventCount,
			AddToCartCount: next.AddToCartCount,
			PurchaseCount:  next.PurchaseCount,
		}); err != nil {
			return err
		}

		if err := l.repo.AppendEvent(txCtx, ports.EventLogAppend{
			UserID:     event.UserID,
			ItemID:     event.ItemID,
			EventType:  string(event.Type),
			EventValue: l.values.Value(event.Type),
			EventTS:    event.Timestamp.UTC().Format(time.RFC3339Nano),
		}); err != nil {
			return err
		}

		if err := l.repo.SetWatermark(txCtx, event.Partition, event.Offset); err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, errs.Wrap(err, "commit event")
	}

	return applied, nil
}

func (l *Loop) loadPrior(ctx context.Context, userID uint64) (*feature.State, error) {
	row, err := l.repo.GetFeature(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrFeatureNotFound) {
			return nil, nil
		}
		return nil, err
	}

	lastTS, err := time.Parse(time.RFC3339Nano, row.LastEventTS)
	if err != nil {
		return nil, errs.Wrapf(err, "parse stored last_event_ts %q", row.LastEventTS)
	}

	return &feature.State{
		LastEventTS:    lastTS,
		EventCount:     row.EventCount,
		AddToCartCount: row.AddToCartCount,
		PurchaseCount:  row.PurchaseCount,
	}, nil
}
