package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore()
	require.NoError(t, s.Open(filepath.Join(t.TempDir(), "index.db")))
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecords() ([]SourceRecord, []DataFile) {
	z := 0.0151
	sources := []SourceRecord{
		{ID: "id-1", Name: "AT2019qiz", ATName: "AT 2019qiz", ZTFName: "ZTF19abzrhgq", Redshift: &z},
		{ID: "id-2", Name: "AT2018hyz", ATName: "AT 2018hyz"},
	}
	files := []DataFile{
		{SourceID: "id-1", Kind: KindOptical, Path: "OPTICAL_INFRARED/target_AT2019qiz_photometry.csv", Present: true},
		{SourceID: "id-1", Kind: KindXRay, Path: "X-RAYS/AT2019qiz_xray_lightcurve.csv", Present: false},
	}
	return sources, files
}

func TestReplaceAndListSources(t *testing.T) {
	s := openTestStore(t)
	sources, files := sampleRecords()
	require.NoError(t, s.ReplaceSources(sources, files))

	got, err := s.ListSources()
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by name.
	assert.Equal(t, "AT2018hyz", got[0].Name)
	assert.Equal(t, "AT2019qiz", got[1].Name)
	require.NotNil(t, got[1].Redshift)
	assert.InDelta(t, 0.0151, *got[1].Redshift, 1e-9)
	assert.Nil(t, got[0].Redshift)
}

func TestReplaceSourcesIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	sources, files := sampleRecords()

	require.NoError(t, s.ReplaceSources(sources, files))
	require.NoError(t, s.ReplaceSources(sources, files))

	got, err := s.ListSources()
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetSource(t *testing.T) {
	s := openTestStore(t)
	sources, files := sampleRecords()
	require.NoError(t, s.ReplaceSources(sources, files))

	rec, err := s.GetSource("AT2019qiz")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "ZTF19abzrhgq", rec.ZTFName)

	// Lookup is case-insensitive.
	rec, err = s.GetSource("at2019QIZ")
	require.NoError(t, err)
	require.NotNil(t, rec)

	rec, err = s.GetSource("AT2099xyz")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDataFiles(t *testing.T) {
	s := openTestStore(t)
	sources, files := sampleRecords()
	require.NoError(t, s.ReplaceSources(sources, files))

	got, err := s.DataFiles("id-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, KindOptical, got[0].Kind)
	assert.True(t, got[0].Present)
	assert.False(t, got[1].Present)

	got, err = s.DataFiles("id-2")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIndexRunLifecycle(t *testing.T) {
	s := openTestStore(t)

	latest, err := s.LatestIndexRun()
	require.NoError(t, err)
	assert.Nil(t, latest)

	run, err := s.StartIndexRun()
	require.NoError(t, err)
	assert.Equal(t, IndexRunRunning, run.Status)

	require.NoError(t, s.CompleteIndexRun(run.ID, IndexRunCompleted, 42, 80, ""))

	latest, err = s.LatestIndexRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, IndexRunCompleted, latest.Status)
	assert.Equal(t, 42, latest.SourceCount)
	assert.Equal(t, 80, latest.FileCount)
	require.NotNil(t, latest.CompletedAt)

	assert.Error(t, s.CompleteIndexRun("missing", IndexRunFailed, 0, 0, "boom"))
}
