package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/internal/settlement"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
)

const (
	sweepBatchSize = 100
	sweepMinAge    = 10 * time.Minute
)

// SettlementSweepJobParams configure the settlement backlog sweep.
type SettlementSweepJobParams struct {
	Logger     *logger.Logger
	Backlog    settlementBacklogReader
	Settlement serviceFeeDeductor
	BatchSize  int
	MinAge     time.Duration
}

type settlementBacklogReader interface {
	ListSettlementBacklog(ctx context.Context, verifiedBefore time.Time, limit int) ([]uuid.UUID, error)
}

type serviceFeeDeductor interface {
	DeductServiceFee(ctx context.Context, loadID uuid.UUID, actor authz.Actor) (*settlement.DeductResult, error)
}

// NewSettlementSweepJob builds the job that retries service fee deduction for
// completed loads whose fees are still pending.
func NewSettlementSweepJob(params SettlementSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Backlog == nil {
		return nil, fmt.Errorf("settlement backlog reader required")
	}
	if params.Settlement == nil {
		return nil, fmt.Errorf("settlement service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = sweepBatchSize
	}
	minAge := params.MinAge
	if minAge <= 0 {
		minAge = sweepMinAge
	}
	return &settlementSweepJob{
		logg:       params.Logger,
		backlog:    params.Backlog,
		settlement: params.Settlement,
		batch:      batch,
		minAge:     minAge,
		now:        time.Now,
	}, nil
}

type settlementSweepJob struct {
	logg       *logger.Logger
	backlog    settlementBacklogReader
	settlement serviceFeeDeductor
	batch      int
	minAge     time.Duration
	now        func() time.Time
}

func (j *settlementSweepJob) Name() string { return "settlement-sweep" }

func (j *settlementSweepJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.minAge)
	ids, err := j.backlog.ListSettlementBacklog(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("query settlement backlog: %w", err)
	}

	var (
		errs     []error
		settled  int
		deferred int
	)
	for _, id := range ids {
		loadCtx := j.logg.WithLoadID(ctx, id.String())
		result, err := j.settlement.DeductServiceFee(loadCtx, id, authz.System)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", id, err))
			continue
		}
		if !result.Success {
			deferred++
			j.logg.Warn(j.logg.WithField(loadCtx, "reason", result.Error), "service fee still pending after sweep")
			continue
		}
		settled++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":   cutoff,
		"backlog":  len(ids),
		"settled":  settled,
		"deferred": deferred,
		"failed":   len(errs),
	})
	j.logg.Info(logCtx, "settlement sweep complete")
	return multierr.Combine(errs...)
}
