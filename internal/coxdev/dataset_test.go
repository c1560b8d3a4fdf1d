package coxdev

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDatasetCSV_RightCensoredNoWeightColumn(t *testing.T) {
	path := writeCSV(t, "event,status\n1,1\n2,0\n3,1\n")
	ds, err := LoadDatasetCSV(path)
	require.NoError(t, err)

	assert.Empty(t, ds.Start)
	assert.Equal(t, []float64{1, 2, 3}, ds.Event)
	assert.Equal(t, []float64{1, 0, 1}, ds.Status)
	assert.Equal(t, []float64{1, 1, 1}, ds.Weight)
}

func TestLoadDatasetCSV_CountingProcessWithWeight(t *testing.T) {
	path := writeCSV(t, "start,event,status,weight\n0,2,1,0.5\n2,3,1,2\n")
	ds, err := LoadDatasetCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 2}, ds.Start)
	assert.Equal(t, []float64{2, 3}, ds.Event)
	assert.Equal(t, []float64{1, 1}, ds.Status)
	assert.Equal(t, []float64{0.5, 2}, ds.Weight)
}

func TestLoadDatasetCSV_MissingRequiredColumnErrors(t *testing.T) {
	path := writeCSV(t, "time,status\n1,1\n")
	_, err := LoadDatasetCSV(path)
	require.Error(t, err)
}

func TestLoadDatasetCSV_NoDataRowsErrors(t *testing.T) {
	path := writeCSV(t, "event,status\n")
	_, err := LoadDatasetCSV(path)
	require.Error(t, err)
}

func TestDataset_PreprocessDelegatesToPreprocess(t *testing.T) {
	ds := &Dataset{
		Event:  []float64{1, 2, 3},
		Status: []float64{1, 0, 1},
	}
	bundle, err := ds.Preprocess()
	require.NoError(t, err)
	assert.Len(t, bundle.EventOrder, 3)
	assert.False(t, bundle.HaveStartTimes())
}
