package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

func main() {
	Execute()
}

// loadEtaCSV reads a single unlabeled column of n linear-predictor
// values, one per line.
func loadEtaCSV(path string, n int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	eta := make([]float64, 0, n)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}
		v, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: parse %q: %w", path, record[0], err)
		}
		eta = append(eta, v)
	}
	if len(eta) != n {
		return nil, fmt.Errorf("%s: %d values, expected %d", path, len(eta), n)
	}
	return eta, nil
}
