package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Savit10/streamsense/internal/bootstrap/logging"
	"github.com/Savit10/streamsense/internal/errs"
)

// Publisher is the write side of the stream, satisfied by the Kafka writer.
type Publisher interface {
	Publish(ctx context.Context, key []byte, payload []byte, headers map[string]string) error
}

// actionWeights skews traffic toward low-intent actions: many views, few
// purchases.
var actionWeights = []struct {
	action string
	weight float64
}{
	{"view", 0.60},
	{"click", 0.25},
	{"add_to_cart", 0.10},
	{"purchase", 0.05},
}

var pages = []string{"/home", "/products/42", "/products/77", "/cart", "/checkout"}

type Config struct {
	Users        int
	EventsPerSec int
	Count        int
	// Dialect selects the payload shape: "canonical" (event_type/item_id)
	// or "action" (action/page).
	Dialect string
}

// Generator emits synthetic interaction events for load and demo runs.
type Generator struct {
	publisher Publisher
	cfg       Config
	rng       *rand.Rand
}

func NewGenerator(publisher Publisher, cfg Config) (*Generator, error) {
	if publisher == nil {
		return nil, errors.New("publisher is required")
	}
	if cfg.Users <= 0 {
		cfg.Users = 100
	}
	if cfg.EventsPerSec <= 0 {
		cfg.EventsPerSec = 10
	}
	if cfg.Count <= 0 {
		cfg.Count = 20
	}
	switch cfg.Dialect {
	case "", "canonical":
		cfg.Dialect = "canonical"
	case "action":
	default:
		return nil, fmt.Errorf("unknown generator dialect %q", cfg.Dialect)
	}

	return &Generator{
		publisher: publisher,
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run produces cfg.Count events at cfg.EventsPerSec, keyed by user id so a
// user's events stay on one partition. Stops early on ctx cancellation.
func (g *Generator) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	runID := uuid.NewString()
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "simulate.generator"),
		slog.String("run_id", runID),
	)
	logging.Info(logCtx, "event generator started",
		slog.Int("users", g.cfg.Users),
		slog.Int("events_per_sec", g.cfg.EventsPerSec),
		slog.Int("count", g.cfg.Count),
		slog.String("dialect", g.cfg.Dialect),
	)

	interval := time.Second / time.Duration(g.cfg.EventsPerSec)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for produced := 0; produced < g.cfg.Count; produced++ {
		userID := uint64(g.rng.Intn(g.cfg.Users) + 1)
		payload, err := g.buildPayload(userID, time.Now().UTC())
		if err != nil {
			return errs.Wrap(err, "build payload")
		}

		key := []byte(fmt.Sprintf("%d", userID))
		headers := map[string]string{"run_id": runID}
		if err := g.publisher.Publish(ctx, key, payload, headers); err != nil {
			return errs.Wrap(err, "publish event")
		}

		select {
		case <-ctx.Done():
			logging.Info(logCtx, "event generator interrupted", slog.Int("produced", produced+1))
			return nil
		case <-ticker.C:
		}
	}

	logging.Info(logCtx, "event generator finished", slog.Int("produced", g.cfg.Count))
	return nil
}

func (g *Generator) buildPayload(userID uint64, now time.Time) ([]byte, error) {
	action := g.sampleAction()
	timestamp := now.Format(time.RFC3339Nano)

	if g.cfg.Dialect == "action" {
		return json.Marshal(map[string]any{
			"user_id":   userID,
			"timestamp": timestamp,
			"page":      pages[g.rng.Intn(len(pages))],
			"action":    action,
		})
	}

	return json.Marshal(map[string]any{
		"user_id":    userID,
		"timestamp":  timestamp,
		"item_id":    g.rng.Intn(100) + 1,
		"event_type": action,
	})
}

func (g *Generator) sampleAction() string {
	roll := g.rng.Float64()
	for _, candidate := range actionWeights {
		if roll < candidate.weight {
			return candidate.action
		}
		roll -= candidate.weight
	}
	return actionWeights[len(actionWeights)-1].action
}
