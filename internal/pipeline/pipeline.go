// Package pipeline drives one warehouse run end to end: extract the three
// source files, normalize them, resolve the relational entity set, and load
// it table by table. Extraction and normalization run per source in
// parallel; resolution is the barrier that joins them, and loading is
// strictly sequential in dependency order.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ecometl/internal/extract"
	"ecometl/internal/logging"
	"ecometl/internal/metrics"
	"ecometl/internal/model"
	"ecometl/internal/normalize"
	"ecometl/internal/resolve"
	"ecometl/internal/storage"
)

// Sources holds the three input file paths.
type Sources struct {
	Customers string
	Products  string
	Events    string
}

// Config tunes one driver instance.
type Config struct {
	// Job is the job label on run metrics. Empty means "ecometl".
	Job string

	Sources Sources

	// ApplySchema runs the warehouse DDL before loading.
	ApplySchema bool

	Resolver resolve.Config
	Loader   storage.LoaderConfig
}

// Pipeline owns the stage sequencing for runs against one repository. It is
// not safe for concurrent runs: loading truncates shared tables.
type Pipeline struct {
	cfg      Config
	repo     storage.Repository
	reader   *extract.Reader
	resolver *resolve.Resolver
	loader   *storage.Loader
	log      *logging.Logger

	// Seams for tests.
	now      func() time.Time
	newRunID func() string
}

// New wires a Pipeline over an open repository. The caller keeps ownership
// of repo and closes it after the run.
func New(repo storage.Repository, cfg Config, log *logging.Logger) *Pipeline {
	if log == nil {
		log = logging.NewNop()
	}
	if cfg.Job == "" {
		cfg.Job = "ecometl"
	}
	return &Pipeline{
		cfg:      cfg,
		repo:     repo,
		reader:   extract.NewReader(log),
		resolver: resolve.New(cfg.Resolver, log),
		loader:   storage.NewLoader(repo, cfg.Loader, log),
		log:      log,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// frameSet carries the per-source extraction output across the stage
// barrier.
type frameSet struct {
	customers *extract.Frame
	products  *extract.Frame
	events    *extract.Frame
}

// rowSet carries the normalized per-source rows into resolution.
type rowSet struct {
	customers []normalize.Customer
	products  []model.Product
	events    []normalize.Event
}

// Run executes one complete run and returns its report. The report is
// always non-nil; on error it carries the failing stage and everything
// gathered before it.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	rep := &Report{
		RunID:     p.newRunID(),
		Job:       p.cfg.Job,
		Stage:     StageIdle,
		Sources:   make(map[string]*SourceReport, 3),
		Resolved:  make(map[string]int, 7),
		StartedAt: p.now(),
	}
	log := p.log.With("run_id", rep.RunID)
	defer func() { rep.Elapsed = p.now().Sub(rep.StartedAt) }()

	log.Info("run started",
		"job", rep.Job,
		"customers", p.cfg.Sources.Customers,
		"products", p.cfg.Sources.Products,
		"events", p.cfg.Sources.Events)

	var fs *frameSet
	err := p.runStage(rep, log, StageExtracting, func() error {
		var err error
		fs, err = p.extractAll(ctx, rep)
		return err
	})
	if err != nil {
		return rep, err
	}
	metrics.RecordRows(rep.Job, "extracted", rep.RowsExtracted())
	metrics.RecordRows(rep.Job, "extract_skipped", rep.RowsSkipped())

	var rs *rowSet
	err = p.runStage(rep, log, StageNormalizing, func() error {
		var err error
		rs, err = p.normalizeAll(ctx, rep, fs)
		return err
	})
	if err != nil {
		return rep, err
	}
	metrics.RecordRows(rep.Job, "normalize_dropped", rep.RowsDropped())

	var res *resolve.Result
	err = p.runStage(rep, log, StageResolving, func() error {
		var rerr error
		res, rerr = p.resolver.Resolve(ctx, rs.customers, rs.products, rs.events)
		if res != nil {
			rep.Rejections = res.Rejections
			rep.Resolved = tableCounts(res)
			metrics.RecordRows(rep.Job, "rejected", int64(len(res.Rejections)))
		}
		return rerr
	})
	if err != nil {
		return rep, err
	}

	err = p.runStage(rep, log, StageLoading, func() error {
		return p.load(ctx, rep, res, log)
	})
	if err != nil {
		return rep, err
	}
	metrics.RecordRows(rep.Job, "loaded", rep.RowsLoaded())

	rep.Stage = StageDone
	log.Info("run complete",
		"elapsed", p.now().Sub(rep.StartedAt),
		"extracted", rep.RowsExtracted(),
		"extract_skipped", rep.RowsSkipped(),
		"normalize_dropped", rep.RowsDropped(),
		"rejections", len(rep.Rejections),
		"loaded", rep.RowsLoaded(),
		"tables", len(rep.Tables))
	return rep, nil
}

// runStage moves the run into s, executes fn, records the stage metric, and
// on error parks the run in StageFailed with FailedAt set.
func (p *Pipeline) runStage(rep *Report, log *logging.Logger, s Stage, fn func() error) error {
	rep.Stage = s
	log.Info("stage started", "stage", s.String())

	start := p.now()
	err := fn()
	elapsed := p.now().Sub(start)
	metrics.RecordStage(rep.Job, metricNames[s], err, elapsed)

	if err != nil {
		rep.Stage = StageFailed
		rep.FailedAt = s
		log.Error("stage failed", "stage", s.String(), "elapsed", elapsed, "err", err)
		return err
	}
	log.Info("stage finished", "stage", s.String(), "elapsed", elapsed)
	return nil
}

// extractAll reads the three sources in parallel. Each goroutine owns its
// own frame slot and SourceReport entry, created up front so the map is
// never written concurrently.
func (p *Pipeline) extractAll(ctx context.Context, rep *Report) (*frameSet, error) {
	var fs frameSet
	inputs := []struct {
		contract extract.Contract
		path     string
		dst      **extract.Frame
	}{
		{normalize.CustomersContract, p.cfg.Sources.Customers, &fs.customers},
		{normalize.ProductsContract, p.cfg.Sources.Products, &fs.products},
		{normalize.EventsContract, p.cfg.Sources.Events, &fs.events},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, in := range inputs {
		in := in
		srep := &SourceReport{Source: in.contract.Source}
		rep.Sources[in.contract.Source] = srep
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			frame, stats, err := p.reader.Read(gctx, in.path, in.contract)
			if err != nil {
				return err
			}
			*in.dst = frame
			srep.Extract = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &fs, nil
}

// normalizeAll cleans the three frames in parallel. Normalizers report
// drops through the per-source Report rather than errors, so the only error
// out of this stage is cancellation.
func (p *Pipeline) normalizeAll(ctx context.Context, rep *Report, fs *frameSet) (*rowSet, error) {
	var rs rowSet
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		rs.customers, rep.Sources["customers"].Normalize = normalize.Customers(fs.customers, p.log)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		rs.products, rep.Sources["products"].Normalize = normalize.Products(fs.products, p.log)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		rs.events, rep.Sources["events"].Normalize = normalize.Events(fs.events, p.log)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// load applies the DDL when configured, then replaces each table in
// dependency order. Completed table results land in the report even when a
// later table fails. After a clean load the row accounting is checked:
// every table must hold exactly the resolved entity count.
func (p *Pipeline) load(ctx context.Context, rep *Report, res *resolve.Result, log *logging.Logger) error {
	if p.cfg.ApplySchema {
		if err := p.repo.ApplySchema(ctx); err != nil {
			return err
		}
		log.Info("schema applied")
	}

	results, err := p.loader.Load(ctx, plansFor(res))
	rep.Tables = results
	for _, tr := range results {
		metrics.RecordTableRows(rep.Job, tr.Table, tr.Rows)
	}
	if err != nil {
		return err
	}

	for _, tr := range results {
		if want := int64(rep.Resolved[tr.Table]); tr.Rows != want {
			log.Warn("row accounting mismatch",
				"table", tr.Table, "resolved", want, "loaded", tr.Rows)
		}
	}
	return nil
}

// plansFor lays out the resolved entity set as table plans in dependency
// order: parents before children, so referential checks hold row by row.
func plansFor(res *resolve.Result) []storage.TablePlan {
	return []storage.TablePlan{
		{Table: model.TableProductCategories, Columns: model.ProductCategoryColumns, Rows: valueRows(res.Categories)},
		{Table: model.TableCustomers, Columns: model.CustomerColumns, Rows: valueRows(res.Customers)},
		{Table: model.TableProducts, Columns: model.ProductColumns, Rows: valueRows(res.Products)},
		{Table: model.TableProductVariants, Columns: model.ProductVariantColumns, Rows: valueRows(res.Variants)},
		{Table: model.TableTransactions, Columns: model.TransactionColumns, Rows: valueRows(res.Transactions)},
		{Table: model.TableInteractions, Columns: model.InteractionColumns, Rows: valueRows(res.Interactions)},
		{Table: model.TableDiscounts, Columns: model.DiscountColumns, Rows: valueRows(res.Discounts)},
	}
}

// tableCounts maps the resolved entity set to expected row counts per table.
func tableCounts(res *resolve.Result) map[string]int {
	return map[string]int{
		model.TableProductCategories: len(res.Categories),
		model.TableCustomers:         len(res.Customers),
		model.TableProducts:          len(res.Products),
		model.TableProductVariants:   len(res.Variants),
		model.TableTransactions:      len(res.Transactions),
		model.TableInteractions:      len(res.Interactions),
		model.TableDiscounts:         len(res.Discounts),
	}
}

// valueRows flattens entity rows through their Values methods, keeping
// slice order.
func valueRows[T interface{ Values() []any }](in []T) [][]any {
	out := make([][]any, len(in))
	for i, v := range in {
		out[i] = v.Values()
	}
	return out
}
