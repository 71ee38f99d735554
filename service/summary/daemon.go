package summary

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/EnnubaBPMN2/marten-bank-sample/event"
	"github.com/EnnubaBPMN2/marten-bank-sample/model"
	"github.com/EnnubaBPMN2/marten-bank-sample/pkg/otellib"
	"github.com/EnnubaBPMN2/marten-bank-sample/repository"
)

// CheckpointName identifies this projector in the checkpoint table.
const CheckpointName = "monthly_summary"

var (
	processedEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "summary_projector_events_total",
		Help: "Journal events applied to the monthly summaries.",
	})
	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "summary_projector_batches_total",
		Help: "Batches committed by the summary projector.",
	})
	rebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "summary_projector_rebuilds_total",
		Help: "Full rebuilds started by the summary projector.",
	})
)

// Daemon consumes the global event journal in commit order and maintains the
// monthly summary read model. It only reads the journal and only writes its
// own documents and checkpoint; it never touches streams or account
// snapshots. The handle is owned by the caller that starts it.
type Daemon struct {
	provider       repository.Provider
	eventStore     repository.EventStore
	summaryRepo    repository.Summary
	checkpointRepo repository.Checkpoint

	logger *zap.Logger
	opts   daemonOptions
}

// NewDaemon ...
func NewDaemon(provider repository.Provider, logger *zap.Logger, options ...DaemonOption) *Daemon {
	return &Daemon{
		provider:       provider,
		eventStore:     repository.NewEventStore(),
		summaryRepo:    repository.NewSummary(),
		checkpointRepo: repository.NewCheckpoint(),

		logger: logger,
		opts:   newDaemonOptions(options...),
	}
}

// Run processes new journal events until ctx is cancelled, idling between
// polls when caught up. Returns ctx.Err on cancellation, or the first
// storage error.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("summary projector starting",
		zap.Int("batchSize", d.opts.batchSize),
		zap.Duration("idleSleep", d.opts.idleSleep),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		applied, err := d.processBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			otellib.WrapError(ctx, err)
			return err
		}
		if applied > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.opts.idleSleep):
		}
	}
}

// Rebuild discards all summary documents and replays the whole journal from
// the start, then returns once caught up. Every batch commits atomically
// with its checkpoint, so cancelling mid-rebuild never leaves a partially
// applied event and a restarted rebuild-or-run resumes from the last durable
// batch.
func (d *Daemon) Rebuild(ctx context.Context) error {
	err := d.provider.Transact(ctx, func(ctx context.Context) error {
		if err := d.summaryRepo.DeleteAllSummaries(ctx); err != nil {
			return err
		}
		return d.checkpointRepo.SaveCheckpoint(ctx, model.ProjectorCheckpoint{
			Name:      CheckpointName,
			UpdatedAt: d.opts.now(),
		})
	})
	if err != nil {
		return err
	}

	rebuildsTotal.Inc()
	d.logger.Info("summary projector rebuild starting")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		applied, err := d.processBatch(ctx)
		if err != nil {
			return err
		}
		if applied == 0 {
			d.logger.Info("summary projector rebuild finished")
			return nil
		}
	}
}

// processBatch applies the next batch of journal events and saves the new
// checkpoint in one transaction. Per-key updates happen in global commit
// order because the batch itself is in global order.
func (d *Daemon) processBatch(ctx context.Context) (int, error) {
	var applied int
	err := d.provider.Transact(ctx, func(ctx context.Context) error {
		applied = 0

		checkpoint, err := d.checkpointRepo.GetCheckpoint(ctx, CheckpointName)
		if err != nil {
			return err
		}

		rows, err := d.eventStore.ListEventsAfter(ctx, checkpoint.LastEventID, d.opts.batchSize)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		docs := map[string]*model.MonthlySummary{}
		var keys []string

		for _, row := range rows {
			e, err := event.Decode(row)
			if err != nil {
				return err
			}

			key := KeyOf(e)
			doc, ok := docs[key]
			if !ok {
				nullSummary, err := d.summaryRepo.GetSummary(ctx, key)
				if err != nil {
					return err
				}
				if nullSummary.Valid {
					loaded := nullSummary.Summary
					doc = &loaded
				} else {
					created := NewSummaryFor(key, e.OccurredAt())
					doc = &created
				}
				docs[key] = doc
				keys = append(keys, key)
			}

			ApplyTo(doc, e, d.opts.now())
			checkpoint.LastEventID = row.ID
		}

		for _, key := range keys {
			if err := d.summaryRepo.UpsertSummary(ctx, *docs[key]); err != nil {
				return err
			}
		}

		checkpoint.UpdatedAt = d.opts.now()
		if err := d.checkpointRepo.SaveCheckpoint(ctx, checkpoint); err != nil {
			return err
		}

		applied = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if applied > 0 {
		processedEventsTotal.Add(float64(applied))
		batchesTotal.Inc()
		d.logger.Info("summary batch applied", zap.Int("events", applied))
	}
	return applied, nil
}
