// Package parquet persists the summary and Van't Hoff catalogs as typed
// parquet files.
package parquet

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	goparquet "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
	"github.com/xitongsys/parquet-go-source/local"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

// parallelism is the number of goroutines the parquet library uses per file.
const parallelism = 4

// Store reads and writes catalog files on the local filesystem.
type Store struct {
	logger *slog.Logger
}

// NewStore creates a Store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

// SaveSummaries writes the summary catalog to path, replacing any existing file.
func (s *Store) SaveSummaries(path string, meta domain.CatalogMeta, rows []domain.AnnualSiteSummary) error {
	out := make([]summaryRow, len(rows))
	for i := range rows {
		out[i] = toSummaryRow(&rows[i], meta)
	}
	if err := writeFile(path, new(summaryRow), out); err != nil {
		return fmt.Errorf("save summaries: %w", err)
	}
	s.logger.Info("summary catalog saved", "path", path, "rows", len(rows), "run_id", meta.RunID)
	return nil
}

// LoadSummaries reads a summary catalog written by SaveSummaries. The meta is
// zero when the file has no rows.
func (s *Store) LoadSummaries(path string) (domain.CatalogMeta, []domain.AnnualSiteSummary, error) {
	in, err := readFile[summaryRow](path, new(summaryRow))
	if err != nil {
		return domain.CatalogMeta{}, nil, fmt.Errorf("load summaries: %w", err)
	}
	var meta domain.CatalogMeta
	rows := make([]domain.AnnualSiteSummary, len(in))
	for i := range in {
		rows[i] = in[i].summary()
	}
	if len(in) > 0 {
		meta = in[0].meta()
	}
	s.logger.Info("summary catalog loaded", "path", path, "rows", len(rows), "run_id", meta.RunID)
	return meta, rows, nil
}

// SaveDegradation writes the Van't Hoff catalog to path, replacing any existing file.
func (s *Store) SaveDegradation(path string, meta domain.CatalogMeta, rows []domain.DegradationSummary) error {
	out := make([]degradationRow, len(rows))
	for i := range rows {
		out[i] = toDegradationRow(&rows[i], meta)
	}
	if err := writeFile(path, new(degradationRow), out); err != nil {
		return fmt.Errorf("save degradation: %w", err)
	}
	s.logger.Info("degradation catalog saved", "path", path, "rows", len(rows), "run_id", meta.RunID)
	return nil
}

// LoadDegradation reads a Van't Hoff catalog written by SaveDegradation.
func (s *Store) LoadDegradation(path string) (domain.CatalogMeta, []domain.DegradationSummary, error) {
	in, err := readFile[degradationRow](path, new(degradationRow))
	if err != nil {
		return domain.CatalogMeta{}, nil, fmt.Errorf("load degradation: %w", err)
	}
	var meta domain.CatalogMeta
	rows := make([]domain.DegradationSummary, len(in))
	for i := range in {
		rows[i] = in[i].degradation()
	}
	if len(in) > 0 {
		meta = in[0].meta()
	}
	return meta, rows, nil
}

// writeFile writes rows to a sibling temp file and renames it over path, so
// readers never observe a partial catalog.
func writeFile[T any](path string, proto *T, rows []T) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp := path + ".tmp"

	fw, err := local.NewLocalFileWriter(tmp)
	if err != nil {
		return fmt.Errorf("open %s: %w", tmp, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	pw, err := writer.NewParquetWriter(fw, proto, parallelism)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = goparquet.CompressionCodec_SNAPPY

	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			_ = fw.Close()
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := stopWriter(pw); err != nil {
		_ = fw.Close()
		return err
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// stopWriter flushes the footer. WriteStop can panic on malformed rows; the
// panic is returned as an error.
func stopWriter(pw *writer.ParquetWriter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parquet writer panicked during WriteStop: %v", r)
		}
	}()
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return nil
}

func readFile[T any](path string, proto *T) ([]T, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, proto, parallelism)
	if err != nil {
		return nil, fmt.Errorf("create parquet reader: %w", err)
	}
	defer pr.ReadStop()

	rows := make([]T, pr.GetNumRows())
	if len(rows) == 0 {
		return rows, nil
	}
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}
