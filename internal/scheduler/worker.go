package scheduler

import (
	"context"
	"fmt"
	"time"

	"leadflow_backend/internal/events"
	leadsrepo "leadflow_backend/internal/leads/repository"
	pipelinedomain "leadflow_backend/internal/pipeline/domain"
	rotationdomain "leadflow_backend/internal/rotation/domain"
	rotationrepo "leadflow_backend/internal/rotation/repository"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Leads older than this without contact count as cold for the reshuffle.
const coldLeadAge = 30 * 24 * time.Hour

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	leads    *leadsrepo.Repository
	rotation *rotationrepo.Repository
	client   *Client
	bus      events.Bus
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, client *Client, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		leads:    leadsrepo.New(pool),
		rotation: rotationrepo.New(pool),
		client:   client,
		bus:      bus,
		log:      log,
	}

	mux.HandleFunc(TaskDelayedAssignment, w.handleDelayedAssignment)
	mux.HandleFunc(TaskColdLeadReshuffle, w.handleColdLeadReshuffle)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleDelayedAssignment runs a queued assignment batch. The rotation guard
// is re-checked against a fresh snapshot at execution time: policy may have
// changed since the batch was queued. A disabled rotation drops the batch; a
// still-closed window pushes it to the next opening.
func (w *Worker) handleDelayedAssignment(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDelayedAssignmentPayload(task)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(payload.LeadIDs))
	for _, raw := range payload.LeadIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	settings, err := w.rotation.Get(ctx)
	if err != nil {
		return err
	}

	decision := rotationdomain.CanAssignNow(settings, time.Now())
	if !decision.OK {
		if decision.Reason == rotationdomain.ReasonRotationDisabled {
			w.log.Warn("delayed assignment dropped",
				"assignee", payload.Assignee,
				"leads", len(ids),
				"reason", decision.Reason,
			)
			return nil
		}

		runAt := rotationdomain.NextWindowOpen(settings, time.Now())
		w.log.Info("delayed assignment re-queued", "assignee", payload.Assignee, "run_at", runAt)
		return w.client.EnqueueDelayedAssignment(ctx, ids, payload.Assignee, runAt)
	}

	count, err := w.leads.AssignLeads(ctx, ids, payload.Assignee, pipelinedomain.StagePending)
	if err != nil {
		return err
	}

	w.log.Info("delayed assignment applied", "assignee", payload.Assignee, "count", count)
	if w.bus != nil {
		w.bus.Publish(ctx, events.LeadsAssigned{
			BaseEvent: events.NewBaseEvent(),
			LeadIDs:   ids,
			Assignee:  payload.Assignee,
			Count:     count,
		})
	}
	return nil
}

// handleColdLeadReshuffle returns stale assigned leads to the unassigned
// pool, capped at the configured batch size.
func (w *Worker) handleColdLeadReshuffle(ctx context.Context, task *asynq.Task) error {
	settings, err := w.rotation.Get(ctx)
	if err != nil {
		return err
	}

	if !settings.ReshuffleColdLeads || settings.ReshuffleColdLeadsNumber < 1 {
		return nil
	}

	cutoff := time.Now().Add(-coldLeadAge)
	count, err := w.leads.ReleaseColdLeads(ctx, cutoff, settings.ReshuffleColdLeadsNumber)
	if err != nil {
		return err
	}

	w.log.Info("cold leads reshuffled", "count", count)
	if w.bus != nil && count > 0 {
		w.bus.Publish(ctx, events.ColdLeadsReshuffled{
			BaseEvent: events.NewBaseEvent(),
			Count:     count,
		})
	}
	return nil
}
