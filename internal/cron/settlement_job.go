package cron

import (
	"context"
	"fmt"

	"github.com/mercaly/mercaly-backend/internal/settlement"
	"github.com/mercaly/mercaly-backend/pkg/logger"
)

const defaultSettlementBatchSize = 100

// SettlementJobParams configure the automatic settlement job.
type SettlementJobParams struct {
	Logger     *logger.Logger
	Settlement settlement.Service
	BatchSize  int
}

// NewSettlementJob builds the job that generates merchant payout rows for
// paid orders that have none yet.
func NewSettlementJob(params SettlementJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Settlement == nil {
		return nil, fmt.Errorf("settlement service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSettlementBatchSize
	}
	return &settlementJob{
		logg:      params.Logger,
		svc:       params.Settlement,
		batchSize: batchSize,
	}, nil
}

type settlementJob struct {
	logg      *logger.Logger
	svc       settlement.Service
	batchSize int
}

func (j *settlementJob) Name() string { return "order-settlement" }

func (j *settlementJob) Run(ctx context.Context) error {
	result, err := j.svc.SettleUnprocessedOrders(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("settle unprocessed orders: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"created":  len(result.Created),
		"failures": len(result.Failures),
	})
	j.logg.Info(logCtx, "settlement sweep complete")
	if len(result.Failures) > 0 {
		for _, failure := range result.Failures {
			failCtx := j.logg.WithOrderID(ctx, failure.OrderID)
			j.logg.Warn(failCtx, "order skipped during settlement sweep: "+failure.Reason)
		}
	}
	return nil
}
