package harvest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/athenaworks/orgharvest/internal/metrics"
)

// Options tune one harvest run.
type Options struct {
	// Limit caps the number of records gathered before dedup; 0 means
	// no cap. Extraction stops mid-source once the cap is reached.
	Limit int
	// EnrichCareers runs the classifier once per surviving record.
	EnrichCareers bool
	// Now supplies the collected_at stamp; defaults to time.Now.
	Now func() time.Time
}

// Harvester drives the full pass: extract, dedupe, enrich, stamp.
type Harvester struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// New builds a Harvester around one shared Fetcher.
func New(fetcher Fetcher, logger *zap.Logger) *Harvester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harvester{fetcher: fetcher, logger: logger}
}

// Run harvests every configured source in order. It never fails: bad
// sources are skipped with a diagnostic and unreachable hosts simply
// contribute fewer records. All returned records share one collected_at
// stamp captured at the end of the run.
func (h *Harvester) Run(ctx context.Context, sources []SourceConfig, opts Options) []Record {
	var records []Record

	for _, cfg := range sources {
		source, err := ResolveSource(cfg)
		if err != nil {
			h.logger.Warn("skipping source",
				zap.String("source", cfg.Name),
				zap.String("type", cfg.Type),
				zap.Error(err))
			continue
		}

		before := len(records)
		reachedLimit := false
		source.Extract(ctx, h.fetcher, func(rec Record) bool {
			records = append(records, rec)
			metrics.ObserveRecord(source.Name())
			if opts.Limit > 0 && len(records) >= opts.Limit {
				reachedLimit = true
				return false
			}
			return true
		})
		h.logger.Info("source extracted",
			zap.String("source", source.Name()),
			zap.Int("records", len(records)-before))
		if reachedLimit {
			break
		}
	}

	records = Dedupe(records)

	if opts.EnrichCareers {
		for i := range records {
			if records[i].Website == "" {
				continue
			}
			if careersURL, found := FindCareersURL(ctx, h.fetcher, records[i].Website); found {
				records[i].CareersURL = careersURL
			}
		}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	stamp := now().UTC().Truncate(time.Second).Format(time.RFC3339)
	for i := range records {
		records[i].CollectedAt = stamp
	}

	return records
}
