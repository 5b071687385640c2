package enforcement

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskgraph/taskgraph/internal/core/events"
	"github.com/taskgraph/taskgraph/internal/fine"
	"github.com/taskgraph/taskgraph/internal/task"
)

// OverdueMarker flips every pending node past its due date to overdue and
// returns only the rows that this call transitioned.
type OverdueMarker interface {
	MarkOverdue(now time.Time) ([]*task.Node, error)
}

// FineIssuer records a fine against a user.
type FineIssuer interface {
	IssueFine(userID, nodeID int64, amount float64, reason string) (*fine.Fine, error)
}

// ScoreAdjuster applies a relative score change to a user.
type ScoreAdjuster interface {
	AdjustScore(userID int64, delta float64) error
}

// Engine runs the periodic deadline sweep. The at-most-once penalty
// guarantee comes from MarkOverdue's conditional update: a node the sweep
// already moved, or that its assignee completed in the meantime, matches
// zero rows and is never penalized again. Per-node fine or score failures
// are logged and skipped; the batch continues and the ticker keeps running.
type Engine struct {
	tasks    OverdueMarker
	fines    FineIssuer
	scores   ScoreAdjuster
	eventBus *events.EventBus
	logger   *slog.Logger

	interval     time.Duration
	fineAmount   float64
	scorePenalty float64
	now          func() time.Time
}

type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(
	tasks OverdueMarker,
	fines FineIssuer,
	scores ScoreAdjuster,
	eventBus *events.EventBus,
	interval time.Duration,
	fineAmount, scorePenalty float64,
	logger *slog.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		tasks:        tasks,
		fines:        fines,
		scores:       scores,
		eventBus:     eventBus,
		logger:       logger,
		interval:     interval,
		fineAmount:   fineAmount,
		scorePenalty: scorePenalty,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start blocks, running the sweep every interval until the context is
// cancelled. A failed tick is logged and the next tick runs normally.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("enforcement engine started",
		"interval", e.interval,
		"fine_amount", e.fineAmount,
		"score_penalty", e.scorePenalty)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("enforcement engine stopped")
			return
		case <-ticker.C:
			if _, err := e.RunOnce(ctx); err != nil {
				e.logger.Error("sweep tick failed", "error", err)
			}
		}
	}
}

// RunOnce executes a single sweep and returns the number of nodes it
// transitioned to overdue.
func (e *Engine) RunOnce(ctx context.Context) (int, error) {
	now := e.now()

	flipped, err := e.tasks.MarkOverdue(now)
	if err != nil {
		return 0, err
	}
	if len(flipped) == 0 {
		return 0, nil
	}

	for _, node := range flipped {
		e.penalize(ctx, node)
	}

	e.logger.Info("sweep completed", "overdue_count", len(flipped))
	return len(flipped), nil
}

// penalize issues the fine and score penalty for one freshly overdue node.
// Failures here are isolated: the node stays overdue either way and the
// rest of the batch is unaffected.
func (e *Engine) penalize(ctx context.Context, node *task.Node) {
	issued, err := e.fines.IssueFine(node.AssigneeID, node.ID, e.fineAmount, fine.DefaultReason)
	if err != nil {
		e.logger.Error("failed to issue overdue fine",
			"error", err, "node_id", node.ID, "assignee_id", node.AssigneeID)
	}

	if err := e.scores.AdjustScore(node.AssigneeID, -e.scorePenalty); err != nil {
		e.logger.Error("failed to apply score penalty",
			"error", err, "node_id", node.ID, "assignee_id", node.AssigneeID)
	}

	if e.eventBus != nil {
		// Synchronous so a single-pass sweep does not exit before the
		// audit subscribers have run.
		event := events.NewTaskOverdueEvent(node.ID, node.AssigneeID, node.DueDate)
		if err := e.eventBus.PublishSync(ctx, event); err != nil {
			e.logger.Warn("failed to publish overdue event", "error", err, "node_id", node.ID)
		}
		if issued != nil {
			event := events.NewFineIssuedEvent(issued.ID, issued.UserID, issued.NodeID, issued.Amount, issued.Reason)
			if err := e.eventBus.PublishSync(ctx, event); err != nil {
				e.logger.Warn("failed to publish fine issued event", "error", err, "fine_id", issued.ID)
			}
		}
	}

	e.logger.Info("overdue penalty applied",
		"node_id", node.ID,
		"assignee_id", node.AssigneeID,
		"due_date", node.DueDate)
}
