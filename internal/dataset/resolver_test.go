package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverPaths(t *testing.T) {
	r := NewResolver("/data")

	assert.Equal(t, filepath.Join("/data", "OPTICAL_INFRARED", "target_AT2019qiz_photometry.csv"),
		r.OpticalPath("AT2019qiz"))
	assert.Equal(t, filepath.Join("/data", "UV", "AT2019qiz_uvot_lightcurve.csv"),
		r.UVOTPath("AT2019qiz"))
	assert.Equal(t, filepath.Join("/data", "X-RAYS", "AT2019qiz_xray_lightcurve.csv"),
		r.XRayPath("AT2019qiz"))
	assert.Equal(t, filepath.Join("/data", "OPTICAL_SPECTRA", "AT2019qiz_ascii_files"),
		r.SpectraPath("AT2019qiz"))
}

func TestAvailability(t *testing.T) {
	root := t.TempDir()
	r := NewResolver(root)

	require.NoError(t, os.MkdirAll(filepath.Join(root, DefaultOpticalDir), 0o755))
	require.NoError(t, os.WriteFile(r.OpticalPath("AT2019qiz"), []byte("MJD;Magnitude;Error;Filter\n"), 0o644))
	require.NoError(t, os.MkdirAll(r.SpectraPath("AT2019qiz"), 0o755))

	got := r.Availability("AT2019qiz")
	assert.True(t, got.Optical)
	assert.False(t, got.UVOT)
	assert.False(t, got.XRay)
	assert.True(t, got.Spectra)
	assert.True(t, got.Any())

	assert.False(t, r.Availability("AT2099xyz").Any())
}
