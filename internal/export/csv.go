package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/heatwire/internal/heat"
)

// WriteCSV writes one row per snapshot: time,x0..x{n-1}.
func WriteCSV(w io.Writer, history heat.History, times []float64) error {
	if len(times) != len(history) {
		return fmt.Errorf("export: %d times for %d snapshots", len(times), len(history))
	}
	cw := csv.NewWriter(w)
	if len(history) == 0 {
		cw.Flush()
		return cw.Error()
	}

	header := []string{"time"}
	for i := range history[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for k, f := range history {
		row = append(row[:0], strconv.FormatFloat(times[k], 'g', -1, 64))
		for _, v := range f {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the layout produced by WriteCSV.
func ReadCSV(r io.Reader) (heat.History, []float64, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return heat.History{}, []float64{}, nil
	}

	history := make(heat.History, 0, len(records)-1)
	times := make([]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		f := make(heat.Field, len(record)-1)
		for j, cell := range record[1:] {
			if f[j], err = strconv.ParseFloat(cell, 64); err != nil {
				return nil, nil, fmt.Errorf("row %d col %d: %w", i+1, j+1, err)
			}
		}
		times = append(times, t)
		history = append(history, f)
	}
	return history, times, nil
}
