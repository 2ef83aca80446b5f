// Package series loads uploaded ds,y CSV files into a historical time series
package series

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	ColumnDate  = "ds"
	ColumnValue = "y"

	minRows = 2
)

var utf8BOM = []byte("\xef\xbb\xbf")

// DateLayouts are the accepted ds formats, tried in order
var DateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Row is a single historical observation. A NaN Y is a missing value.
type Row struct {
	DS time.Time `json:"ds"`
	Y  float64   `json:"y"`
}

// Historical holds the rows of an upload in file order
type Historical struct {
	rows []Row
}

// NewHistorical copies rows into a historical series
func NewHistorical(rows []Row) Historical {
	r := make([]Row, len(rows))
	copy(r, rows)
	return Historical{rows: r}
}

// Len returns the number of rows including the ones with missing values
func (h Historical) Len() int {
	return len(h.rows)
}

// Rows returns a copy of the rows
func (h Historical) Rows() []Row {
	r := make([]Row, len(h.rows))
	copy(r, h.rows)
	return r
}

// LoadReader reads the whole upload from r and loads it
func LoadReader(r io.Reader) (Historical, error) {
	if r == nil {
		return Historical{}, &InputError{Err: ErrMissingFile}
	}
	upload, err := io.ReadAll(r)
	if err != nil {
		return Historical{}, &InputError{Err: ErrMalformedCSV, cause: err}
	}
	return Load(upload)
}

// Load parses a UTF-8 CSV upload with a header row naming the ds and y columns. Other columns
// are ignored. Empty, NA and NaN values are kept as missing.
func Load(upload []byte) (Historical, error) {
	if len(upload) == 0 {
		return Historical{}, &InputError{Err: ErrMissingFile}
	}
	upload = bytes.TrimPrefix(upload, utf8BOM)
	if !utf8.Valid(upload) {
		return Historical{}, &InputError{Err: ErrInvalidEncoding}
	}

	r := csv.NewReader(bytes.NewReader(upload))
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Historical{}, &InputError{Err: ErrInsufficientRows}
		}
		return Historical{}, malformed(err)
	}
	dsIdx, yIdx, err := columnIndexes(header)
	if err != nil {
		return Historical{}, err
	}

	var rows []Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Historical{}, malformed(err)
		}

		line, _ := r.FieldPos(dsIdx)
		ds, err := ParseDate(record[dsIdx])
		if err != nil {
			return Historical{}, &InputError{Err: ErrInvalidDate, Line: line, Value: record[dsIdx]}
		}
		y, err := ParseValue(record[yIdx])
		if err != nil {
			line, _ = r.FieldPos(yIdx)
			return Historical{}, &InputError{Err: ErrInvalidValue, Line: line, Value: record[yIdx]}
		}
		rows = append(rows, Row{DS: ds, Y: y})
	}

	if len(rows) < minRows {
		return Historical{}, &InputError{Err: ErrInsufficientRows}
	}
	return Historical{rows: rows}, nil
}

func columnIndexes(header []string) (int, int, error) {
	dsIdx, yIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case ColumnDate:
			if dsIdx < 0 {
				dsIdx = i
			}
		case ColumnValue:
			if yIdx < 0 {
				yIdx = i
			}
		}
	}
	if dsIdx < 0 {
		return 0, 0, &InputError{Err: ErrMissingColumn, Column: ColumnDate}
	}
	if yIdx < 0 {
		return 0, 0, &InputError{Err: ErrMissingColumn, Column: ColumnValue}
	}
	return dsIdx, yIdx, nil
}

func malformed(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &InputError{Err: ErrMalformedCSV, Line: perr.Line, cause: perr.Err}
	}
	return &InputError{Err: ErrMalformedCSV, cause: err}
}

// ParseDate parses a ds cell using the accepted layouts and returns it in UTC
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range DateLayouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// ParseValue parses a y cell. Empty, NA and NaN cells are returned as NaN and infinities are
// rejected.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}
