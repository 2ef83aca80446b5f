package present

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/augur-forecast/augur/internal/engine"
	"github.com/augur-forecast/augur/internal/series"
)

var (
	ErrUnexpectedHeader = errors.New("unexpected forecast csv header")
	ErrInvalidRecord    = errors.New("invalid forecast csv record")
)

// WriteCSV writes the result ascending by ds with a leading unlabeled index column
func WriteCSV(w io.Writer, result *engine.ForecastResult) error {
	rows := result.Rows()
	format := DateFormatter(rows)

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, Columns...)); err != nil {
		return fmt.Errorf("unable to write csv header, %w", err)
	}
	for i, r := range rows {
		record := []string{
			strconv.Itoa(i),
			format(r.DS),
			formatFloat(r.YHat),
			formatFloat(r.YHatLower),
			formatFloat(r.YHatUpper),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("unable to write csv row %d, %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses rows written by WriteCSV
func ReadCSV(r io.Reader) ([]engine.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns) + 1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w, %w", ErrUnexpectedHeader, err)
	}
	for i, name := range Columns {
		if header[i+1] != name {
			return nil, fmt.Errorf("%w, column %d is %q", ErrUnexpectedHeader, i+1, header[i+1])
		}
	}

	var rows []engine.Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w, %w", ErrInvalidRecord, err)
		}
		row, err := parseRecord(record)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w on line %d, %w", ErrInvalidRecord, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(record []string) (engine.Row, error) {
	ds, err := series.ParseDate(record[1])
	if err != nil {
		return engine.Row{}, err
	}
	vals := make([]float64, 3)
	for i := range vals {
		vals[i], err = strconv.ParseFloat(record[i+2], 64)
		if err != nil {
			return engine.Row{}, err
		}
	}
	return engine.Row{DS: ds, YHat: vals[0], YHatLower: vals[1], YHatUpper: vals[2]}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
