package scheduler

import (
	"context"
	"fmt"
	"time"

	"leadflow_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues scheduler tasks. A nil client is safe to call; every
// enqueue then becomes a no-op, so modules can take it optionally.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueDelayedAssignment schedules an assignment batch to run at runAt,
// typically the next working-window opening.
func (c *Client) EnqueueDelayedAssignment(ctx context.Context, ids []uuid.UUID, assignee string, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	payload := DelayedAssignmentPayload{
		LeadIDs:  make([]string, 0, len(ids)),
		Assignee: assignee,
	}
	for _, id := range ids {
		payload.LeadIDs = append(payload.LeadIDs, id.String())
	}

	task, err := NewDelayedAssignmentTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	return err
}

// EnqueueColdLeadReshuffle schedules an immediate cold-lead reshuffle run.
func (c *Client) EnqueueColdLeadReshuffle(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewColdLeadReshuffleTask()
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
