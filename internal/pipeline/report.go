package pipeline

import (
	"time"

	"ecometl/internal/extract"
	"ecometl/internal/normalize"
	"ecometl/internal/resolve"
	"ecometl/internal/storage"
)

// SourceReport is the per-source half of the run accounting: what extraction
// saw and what normalization kept.
type SourceReport struct {
	Source    string
	Extract   extract.Stats
	Normalize *normalize.Report
}

// Report is the explicit state of one run: the current stage, per-source
// accounting, resolution and load results, and timing. The driver threads
// one Report through a run; nothing lives in package globals. On failure the
// report keeps everything gathered up to the failing stage.
type Report struct {
	RunID string
	Job   string

	Stage Stage

	// FailedAt is the stage the run died in; only set when Stage is
	// StageFailed.
	FailedAt Stage

	// Sources is keyed by source name (customers, products, events).
	Sources map[string]*SourceReport

	// Resolved holds the resolved entity count per warehouse table. The
	// loader is expected to report exactly these row counts back.
	Resolved map[string]int

	// Rejections are the referential failures the resolver refused,
	// populated even when the run fails on the integrity threshold.
	Rejections []resolve.Rejection

	// Tables lists per-table load results in load order; on a load failure
	// it holds the tables that completed before the failing one.
	Tables []storage.TableResult

	StartedAt time.Time
	Elapsed   time.Duration
}

// RowsExtracted sums the data rows read across all sources.
func (r *Report) RowsExtracted() int64 {
	var n int64
	for _, s := range r.Sources {
		n += int64(s.Extract.Rows)
	}
	return n
}

// RowsSkipped sums the raw rows dropped during extraction.
func (r *Report) RowsSkipped() int64 {
	var n int64
	for _, s := range r.Sources {
		n += int64(s.Extract.Skipped)
	}
	return n
}

// RowsDropped sums the rows dropped during normalization.
func (r *Report) RowsDropped() int64 {
	var n int64
	for _, s := range r.Sources {
		if s.Normalize != nil {
			n += int64(s.Normalize.Dropped)
		}
	}
	return n
}

// RowsLoaded sums the rows written across all loaded tables.
func (r *Report) RowsLoaded() int64 {
	var n int64
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}
