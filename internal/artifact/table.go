package artifact

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
)

// Artifact file names inside the data directory.
const (
	DailyFile      = "daily_data.csv"
	MonthlyFile    = "monthly_data.csv"
	YearlyFile     = "yearly_data.csv"
	ProvincialFile = "province_data.csv"
	StatisticsFile = "statistics_data.csv"
	ComfortFile    = "comfort_cities.csv"
)

// Codec maps one row type to and from CSV cells.
type Codec[T any] struct {
	Header []string
	// Optional names header columns a reader may find absent.
	Optional []string
	Encode   func(T) []string
	Decode   func(Row) (T, error)
}

// Row is one decoded CSV line with cells keyed by header name.
type Row struct {
	Line  int
	index map[string]int
	cells []string
}

// Get returns the cell under column name, or "" when the column is absent.
func (r Row) Get(name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// Write atomically replaces path with the header and rows.
func Write[T any](path string, codec Codec[T], rows []T) error {
	err := writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(codec.Header); err != nil {
			return err
		}
		for _, row := range rows {
			if err := cw.Write(codec.Encode(row)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return &domain.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Read loads every row of the table at path. A missing file, a missing
// required column, or an undecodable row is an *domain.IOError.
func Read[T any](path string, codec Codec[T]) ([]T, error) {
	var out []T
	err := scan(path, codec, func(row Row) error {
		v, err := codec.Decode(row)
		if err != nil {
			return fmt.Errorf("line %d: %w", row.Line, err)
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, &domain.IOError{Op: "read", Path: path, Err: err}
	}
	return out, nil
}

// scan streams rows of path to fn after checking the header.
func scan[T any](path string, codec Codec[T], fn func(Row) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.ReuseRecord = false

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return errors.New("missing header row")
	}
	if err != nil {
		return err
	}
	index, err := headerIndex(header, codec)
	if err != nil {
		return err
	}

	for line := 2; ; line++ {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(Row{Line: line, index: index, cells: cells}); err != nil {
			return err
		}
	}
}

func headerIndex[T any](header []string, codec Codec[T]) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	optional := make(map[string]bool, len(codec.Optional))
	for _, name := range codec.Optional {
		optional[name] = true
	}
	for _, name := range codec.Header {
		if _, ok := index[name]; !ok && !optional[name] {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return index, nil
}

// writeAtomic streams content into a temp file next to path, syncs it, and
// renames it over path. The temp file is removed on any failure.
func writeAtomic(path string, fill func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = fill(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
