package coxdev

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Dataset is a survival sample in natural (input) order, ready to be
// handed to Preprocess.
type Dataset struct {
	Start  []float64 // empty iff the data is right-censored only, no counting-process start times
	Event  []float64
	Status []float64
	Weight []float64 // defaults to all-ones when the CSV has no weight column
}

// LoadDatasetCSV reads a CSV file with a header row naming its
// columns. event and status are required; start and weight are
// optional and, when absent, default to zero-length (no start times)
// and all-ones respectively.
func LoadDatasetCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	eventIdx, ok := col["event"]
	if !ok {
		return nil, fmt.Errorf("%s: missing required column %q", path, "event")
	}
	statusIdx, ok := col["status"]
	if !ok {
		return nil, fmt.Errorf("%s: missing required column %q", path, "status")
	}
	startIdx, haveStart := col["start"]
	weightIdx, haveWeight := col["weight"]

	var ds Dataset
	row := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read row %d: %w", path, row+2, err)
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}

		event, err := strconv.ParseFloat(record[eventIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: parse event: %w", path, row+2, err)
		}
		status, err := strconv.ParseFloat(record[statusIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: parse status: %w", path, row+2, err)
		}
		ds.Event = append(ds.Event, event)
		ds.Status = append(ds.Status, status)

		if haveStart {
			start, err := strconv.ParseFloat(record[startIdx], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: parse start: %w", path, row+2, err)
			}
			ds.Start = append(ds.Start, start)
		}
		if haveWeight {
			weight, err := strconv.ParseFloat(record[weightIdx], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: parse weight: %w", path, row+2, err)
			}
			ds.Weight = append(ds.Weight, weight)
		}
		row++
	}
	if row == 0 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}
	if !haveWeight {
		ds.Weight = make([]float64, row)
		for i := range ds.Weight {
			ds.Weight[i] = 1
		}
	}
	return &ds, nil
}

// Preprocess builds the index bundle for this dataset.
func (d *Dataset) Preprocess() (*IndexBundle, error) {
	return Preprocess(d.Start, d.Event, d.Status)
}
