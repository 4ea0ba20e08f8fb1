package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestix-erp/gestix/internal/inventory"
)

// StockScanJob runs the reservation anomaly and low stock scans across every
// company. Findings are logged; the HTTP read models expose the same data on
// demand.
type StockScanJob struct {
	Pool      *pgxpool.Pool
	Inventory *inventory.Repository
	Logger    *slog.Logger
}

// NewStockScanJob initialises the scan handler.
func NewStockScanJob(pool *pgxpool.Pool, repo *inventory.Repository, logger *slog.Logger) *StockScanJob {
	return &StockScanJob{Pool: pool, Inventory: repo, Logger: logger}
}

// HandleAnomalyScan reports instances whose reservations exceed on-hand stock.
func (j *StockScanJob) HandleAnomalyScan(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("stock scan: handler not configured")
	}
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := time.Now()
	companies, err := j.companyIDs(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, companyID := range companies {
		anomalies, err := j.Inventory.ListAnomalies(ctx, companyID)
		if err != nil {
			j.Logger.Error("anomaly scan failed", slog.String("company_id", companyID.String()), slog.Any("error", err))
			return err
		}
		for _, a := range anomalies {
			j.Logger.Warn("reservation anomaly",
				slog.String("company_id", companyID.String()),
				slog.String("product", a.Instance.ProductName),
				slog.String("location", a.Instance.Location),
				slog.Float64("stock", a.Instance.Stock),
				slog.Float64("reserved", a.Instance.ReservedStock),
				slog.Float64("shortfall", a.ShortfallBy),
			)
		}
		total += len(anomalies)
	}

	j.Logger.Info("anomaly scan complete",
		slog.Int("companies", len(companies)),
		slog.Int("anomalies", total),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// HandleLowStockScan reports instances at or below their thresholds.
func (j *StockScanJob) HandleLowStockScan(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("stock scan: handler not configured")
	}
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	companies, err := j.companyIDs(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, companyID := range companies {
		low, err := j.Inventory.ListBelowThreshold(ctx, companyID)
		if err != nil {
			j.Logger.Error("low stock scan failed", slog.String("company_id", companyID.String()), slog.Any("error", err))
			return err
		}
		for _, inst := range low {
			j.Logger.Warn("low stock",
				slog.String("company_id", companyID.String()),
				slog.String("product", inst.ProductName),
				slog.String("location", inst.Location),
				slog.Float64("available", inst.Available()),
				slog.String("level", string(inst.Level())),
			)
		}
		total += len(low)
	}

	j.Logger.Info("low stock scan complete",
		slog.Int("companies", len(companies)),
		slog.Int("instances", total),
	)
	return nil
}

func (j *StockScanJob) companyIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := j.Pool.Query(ctx, `SELECT id FROM companies ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
