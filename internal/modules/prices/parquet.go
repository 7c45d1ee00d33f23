package prices

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aristath/indexboard/internal/domain"
	"github.com/parquet-go/parquet-go"
)

// Compile-time interface checks.
var (
	_ Source = (*Repository)(nil)
	_ Source = (*ParquetSource)(nil)
)

// Snapshot file names inside a parquet archive directory
const (
	IndexFile        = "index.parquet"
	ConstituentsFile = "constituents.parquet"
	MetadataFile     = "metadata.parquet"
)

// BarRecord is the Parquet schema for daily bars.
type BarRecord struct {
	Ticker string  `parquet:"ticker"`
	Date   int64   `parquet:"date,timestamp(millisecond)"` // Unix ms, UTC midnight
	Open   float64 `parquet:"open"`
	High   float64 `parquet:"high"`
	Low    float64 `parquet:"low"`
	Close  float64 `parquet:"close"`
	Volume float64 `parquet:"volume"`
}

// MetadataRecord is the Parquet schema for constituent metadata.
type MetadataRecord struct {
	Ticker           string  `parquet:"ticker"`
	Name             string  `parquet:"name"`
	IndexPriceFactor float64 `parquet:"index_price_factor"`
}

// ParquetSource serves the price store contract from an exported snapshot
// directory holding index, constituent and metadata files.
type ParquetSource struct {
	dir string
}

// NewParquetSource opens a snapshot directory. The three files must exist.
func NewParquetSource(dir string) (*ParquetSource, error) {
	for _, name := range []string{IndexFile, ConstituentsFile, MetadataFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return nil, domain.NewConfigError("open parquet snapshot", "missing %s in %s", name, dir)
		}
	}
	return &ParquetSource{dir: dir}, nil
}

// Name identifies the backend
func (s *ParquetSource) Name() string {
	return "parquet"
}

// IndexSeries returns the bars of one index ticker since the floor date
func (s *ParquetSource) IndexSeries(_ context.Context, ticker string, since time.Time) ([]domain.PriceBar, error) {
	return s.readBars(IndexFile, since, func(r BarRecord) bool { return r.Ticker == ticker })
}

// ConstituentSeries returns the bars of every constituent since the floor date
func (s *ParquetSource) ConstituentSeries(_ context.Context, since time.Time) ([]domain.PriceBar, error) {
	return s.readBars(ConstituentsFile, since, func(BarRecord) bool { return true })
}

// Metadata returns the constituent reference rows in file order
func (s *ParquetSource) Metadata(_ context.Context) ([]domain.ConstituentMetadata, error) {
	records, err := readParquetFile[MetadataRecord](filepath.Join(s.dir, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", MetadataFile, err)
	}

	metadata := make([]domain.ConstituentMetadata, 0, len(records))
	for i, r := range records {
		if r.Ticker == "" {
			return nil, domain.NewDataError("read "+MetadataFile, "row %d: empty ticker", i+1)
		}
		metadata = append(metadata, domain.ConstituentMetadata{
			Ticker:           r.Ticker,
			Name:             r.Name,
			IndexPriceFactor: r.IndexPriceFactor,
		})
	}
	return metadata, nil
}

func (s *ParquetSource) readBars(file string, since time.Time, keep func(BarRecord) bool) ([]domain.PriceBar, error) {
	records, err := readParquetFile[BarRecord](filepath.Join(s.dir, file))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	floor := domain.Day(since)
	bars := []domain.PriceBar{}
	for i, r := range records {
		if r.Ticker == "" {
			return nil, domain.NewDataError("read "+file, "row %d: empty ticker", i+1)
		}
		if !keep(r) {
			continue
		}
		day := domain.Day(time.UnixMilli(r.Date).UTC())
		if day.Before(floor) {
			continue
		}
		bars = append(bars, domain.PriceBar{
			Date:   day,
			Ticker: r.Ticker,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}

	sortBars(bars)
	return bars, nil
}

// WriteSnapshot exports the three relations into dir as Parquet files.
func WriteSnapshot(dir string, index, constituents []domain.PriceBar, metadata []domain.ConstituentMetadata) error {
	if err := writeParquetFile(filepath.Join(dir, IndexFile), toBarRecords(index)); err != nil {
		return fmt.Errorf("writing %s: %w", IndexFile, err)
	}
	if err := writeParquetFile(filepath.Join(dir, ConstituentsFile), toBarRecords(constituents)); err != nil {
		return fmt.Errorf("writing %s: %w", ConstituentsFile, err)
	}

	records := make([]MetadataRecord, 0, len(metadata))
	for _, m := range metadata {
		records = append(records, MetadataRecord{
			Ticker:           m.Ticker,
			Name:             m.Name,
			IndexPriceFactor: m.IndexPriceFactor,
		})
	}
	if err := writeParquetFile(filepath.Join(dir, MetadataFile), records); err != nil {
		return fmt.Errorf("writing %s: %w", MetadataFile, err)
	}
	return nil
}

func toBarRecords(bars []domain.PriceBar) []BarRecord {
	records := make([]BarRecord, 0, len(bars))
	for _, b := range bars {
		records = append(records, BarRecord{
			Ticker: b.Ticker,
			Date:   domain.Day(b.Date).UnixMilli(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return records
}

func sortBars(bars []domain.PriceBar) {
	sort.SliceStable(bars, func(i, j int) bool {
		if !bars[i].Date.Equal(bars[j].Date) {
			return bars[i].Date.Before(bars[j].Date)
		}
		return bars[i].Ticker < bars[j].Ticker
	})
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewConfigError("read parquet", "snapshot file %s is missing", path)
		}
		return nil, err
	}
	return rows, nil
}
