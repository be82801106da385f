// Package extract reads delimited source files into column-major frames.
//
// Each source declares a Contract: the columns the pipeline needs and the
// headers the file is expected to carry. Header cells are matched against
// the contract after canonicalization, so cosmetic differences in case,
// accents, and punctuation never break a run. Extra columns in the file are
// skipped with a log line; a missing required identifier column is fatal.
package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"ecometl/internal/logging"
	"ecometl/pkg/records"
)

// Field declares one column the pipeline wants from a source.
type Field struct {
	// Column is the canonical name later stages read, e.g. "customer_id".
	Column string

	// Header is the header cell the file is documented to carry, e.g.
	// "Customer ID". Matching is by canonical form, not by exact text.
	Header string

	// Required marks identifier columns whose absence aborts the run.
	Required bool
}

// Contract is the expected shape of one source file.
type Contract struct {
	// Source names the contract in logs and errors, e.g. "customers".
	Source string

	Fields []Field
}

// Columns returns the contract's column names in declaration order.
func (c Contract) Columns() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Column
	}
	return out
}

// SourceReadError is the fatal extraction failure: the file is missing or
// unreadable, the header cannot be parsed, or a required column is absent.
type SourceReadError struct {
	Source string
	Path   string
	Err    error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read source %s (%s): %v", e.Source, e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// Stats counts what happened to the raw file on the way into a Frame.
type Stats struct {
	// Rows is the number of data rows that made it into the frame.
	Rows int

	// Skipped counts data rows dropped for parse errors or a field count
	// that differs from the header width.
	Skipped int

	// UnmappedHeaders lists file headers no contract field claimed.
	UnmappedHeaders []string

	// MissingColumns lists optional contract columns absent from the file;
	// their frame columns are all empty.
	MissingColumns []string
}

// Frame is the column-major result of extraction: one raw string slice per
// contract column, all of equal length, row order preserved. Empty cells
// stay "" here; normalization owns the empty-to-null convention.
type Frame struct {
	Source string

	cols  map[string][]string
	order []string
	n     int
}

// NewFrame assembles a frame directly from columns and row-major values.
// The extractor builds frames itself; this constructor serves synthetic
// inputs in tests and tooling. Short rows are padded with "".
func NewFrame(source string, columns []string, rows [][]string) *Frame {
	f := &Frame{
		Source: source,
		cols:   make(map[string][]string, len(columns)),
		order:  append([]string(nil), columns...),
		n:      len(rows),
	}
	for i, c := range columns {
		col := make([]string, len(rows))
		for j, row := range rows {
			if i < len(row) {
				col[j] = row[i]
			}
		}
		f.cols[c] = col
	}
	return f
}

// Len returns the number of data rows in the frame.
func (f *Frame) Len() int { return f.n }

// Columns returns the contract column names in declaration order.
func (f *Frame) Columns() []string { return f.order }

// Column returns the raw values for a contract column, or nil when the
// column is not part of the frame.
func (f *Frame) Column(name string) []string { return f.cols[name] }

// Row assembles row i as a records.Record for diagnostics and drop reports.
// Empty cells become nil.
func (f *Frame) Row(i int) records.Record {
	rec := make(records.Record, len(f.order))
	for _, c := range f.order {
		rec[c] = records.EmptyToNil(f.cols[c][i])
	}
	return rec
}

// Reader extracts source files. It is safe for concurrent use; each Read
// call is independent.
type Reader struct {
	log *logging.Logger
}

// NewReader returns a Reader that logs skipped columns and rows through log.
func NewReader(log *logging.Logger) *Reader {
	if log == nil {
		log = logging.NewNop()
	}
	return &Reader{log: log}
}

// Read parses the file at path according to the contract. The CSV reader
// runs in a lenient mode (lazy quotes, variable field count) and width is
// enforced per row afterwards, so one mangled line skips one row instead of
// aborting the file. Cancellation is observed between row chunks.
func (r *Reader) Read(ctx context.Context, path string, c Contract) (*Frame, Stats, error) {
	var stats Stats

	f, err := os.Open(path)
	if err != nil {
		return nil, stats, &SourceReadError{Source: c.Source, Path: path, Err: err}
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			err = errors.New("file is empty")
		}
		return nil, stats, &SourceReadError{Source: c.Source, Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	header = stripHeaderBOM(header)

	// Map contract columns to header positions by canonical form.
	byCanon := make(map[string]int, len(header))
	claimed := make([]bool, len(header))
	for i, h := range header {
		key := canonicalField(h)
		if _, dup := byCanon[key]; !dup {
			byCanon[key] = i
		}
	}

	colIdx := make([]int, len(c.Fields)) // -1 when the column is missing
	for i, fld := range c.Fields {
		idx, ok := byCanon[canonicalField(fld.Header)]
		if !ok {
			if fld.Required {
				return nil, stats, &SourceReadError{
					Source: c.Source,
					Path:   path,
					Err:    fmt.Errorf("required column %q not found in header", fld.Header),
				}
			}
			stats.MissingColumns = append(stats.MissingColumns, fld.Column)
			r.log.Warn("source column missing; values will be null",
				"source", c.Source, "column", fld.Column, "header", fld.Header)
			colIdx[i] = -1
			continue
		}
		colIdx[i] = idx
		claimed[idx] = true
	}

	for i, h := range header {
		if !claimed[i] {
			stats.UnmappedHeaders = append(stats.UnmappedHeaders, h)
		}
	}
	if len(stats.UnmappedHeaders) > 0 {
		r.log.Debug("skipping unmapped source columns",
			"source", c.Source, "columns", stats.UnmappedHeaders)
	}

	frame := &Frame{
		Source: c.Source,
		cols:   make(map[string][]string, len(c.Fields)),
		order:  make([]string, len(c.Fields)),
	}
	for i, fld := range c.Fields {
		frame.order[i] = fld.Column
		frame.cols[fld.Column] = []string{}
	}

	const logLimit = 20
	width := len(header)
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, &SourceReadError{Source: c.Source, Path: path, Err: err}
			}
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if stats.Skipped < logLimit {
				r.log.Warn("skipping unparseable row", "source", c.Source, "line", line, "err", err)
			}
			stats.Skipped++
			continue
		}
		if len(row) != width {
			if stats.Skipped < logLimit {
				r.log.Warn("skipping row with wrong field count",
					"source", c.Source, "line", line, "want", width, "got", len(row))
			}
			stats.Skipped++
			continue
		}

		for i, fld := range c.Fields {
			if colIdx[i] < 0 {
				frame.cols[fld.Column] = append(frame.cols[fld.Column], "")
				continue
			}
			frame.cols[fld.Column] = append(frame.cols[fld.Column], row[colIdx[i]])
		}
		frame.n++
	}
	stats.Rows = frame.n

	r.log.Info("source extracted",
		"source", c.Source, "path", path, "rows", stats.Rows, "skipped", stats.Skipped)

	return frame, stats, nil
}
