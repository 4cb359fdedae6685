package artifact

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
)

// RawScan is everything read from a raw directory.
type RawScan struct {
	Records  []domain.RawRecord
	Rejected []*domain.ValidationError
	Files    int
}

// RawPath returns the collector file for one city, date, and source:
// <dir>/<city_id>/<date>_<source>.csv.
func RawPath(dir, cityID, date string, source domain.Source) string {
	return filepath.Join(dir, cityID, date+"_"+string(source)+".csv")
}

// WriteRaw atomically writes collector rows to path.
func WriteRaw(path string, rows []domain.RawRecord) error {
	return Write(path, RawCodec, rows)
}

// ReadRawDir reads every *.csv file below dir in lexical order. Files and
// rows that cannot be decoded are rejected, not fatal. A missing directory
// yields an empty scan.
func ReadRawDir(dir string) (RawScan, error) {
	var scan RawScan
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".csv") {
			return nil
		}
		scan.Files++
		return readRawFile(path, &scan)
	})
	if err != nil {
		return RawScan{}, &domain.IOError{Op: "read", Path: dir, Err: err}
	}
	return scan, nil
}

func readRawFile(path string, scan *RawScan) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	modTime := info.ModTime().UTC()

	reject := func(line int, field, reason string) {
		scan.Rejected = append(scan.Rejected, &domain.ValidationError{
			File: path, Line: line, Field: field, Reason: reason,
		})
	}

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return csvReject(err, reject)
	}
	index, err := headerIndex(header, RawCodec)
	if err != nil {
		reject(1, "header", err.Error())
		return nil
	}

	for line := 2; ; line++ {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return csvReject(err, reject)
		}
		if len(cells) != len(header) {
			reject(line, "", "wrong number of columns")
			continue
		}
		rec, _ := RawCodec.Decode(Row{Line: line, index: index, cells: cells})
		rec.File = path
		rec.FileModTime = modTime
		scan.Records = append(scan.Records, rec)
	}
}

// csvReject turns a CSV syntax error into a rejection of the rest of the
// file. Other errors propagate.
func csvReject(err error, reject func(int, string, string)) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		reject(perr.Line, "", perr.Err.Error())
		return nil
	}
	return err
}
