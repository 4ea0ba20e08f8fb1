// Package jobs holds the asynq background tasks: the reservation anomaly
// scan, the low-stock scan and idempotency key cleanup, plus the worker and
// scheduler bootstrap.
package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockAnomalyScan looks for instances whose reservations exceed
	// on-hand stock.
	TaskStockAnomalyScan = "stock:anomaly_scan"
	// TaskLowStockScan reports instances at or below their thresholds.
	TaskLowStockScan = "stock:low_scan"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// ScanPayload carries scheduling metadata for the stock scans.
type ScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewStockAnomalyScanTask constructs the anomaly scan task.
func NewStockAnomalyScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockAnomalyScan, body, asynq.Queue(QueueDefault)), nil
}

// NewLowStockScanTask constructs the low stock scan task.
func NewLowStockScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// IdempotencyCleanupPayload sets the retention window.
type IdempotencyCleanupPayload struct {
	OlderThan time.Duration `json:"older_than"`
}

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask(olderThan time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(IdempotencyCleanupPayload{OlderThan: olderThan})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, body, asynq.Queue(QueueDefault)), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueStockAnomalyScan enqueues an immediate anomaly scan.
func (c *Client) EnqueueStockAnomalyScan(ctx context.Context) (*asynq.TaskInfo, error) {
	task, err := NewStockAnomalyScanTask(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// ScheduleAnomalyScan enqueues an immediate anomaly scan, discarding the
// task metadata. HTTP handlers depend on this narrower shape.
func (c *Client) ScheduleAnomalyScan(ctx context.Context) error {
	_, err := c.EnqueueStockAnomalyScan(ctx)
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
