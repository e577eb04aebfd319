package spectra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "epoch2.dat"),
		[]byte("# MJD 58760\n4000 1.1e-16\n4002 1.2e-16\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "epoch1.dat"),
		[]byte("4000.0 1.0e-16  0.1e-16\n4002.0 1.4e-16 0.1e-16\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"),
		[]byte("junk"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.dat"),
		[]byte("notanumber 1.0\n"), 0o644))

	spectra, skipped, err := LoadDir(dir)
	require.NoError(t, err)

	// Sorted by file name; hidden file ignored; broken file skipped.
	require.Len(t, spectra, 2)
	assert.Equal(t, "epoch1.dat", spectra[0].File)
	assert.Equal(t, "epoch2.dat", spectra[1].File)
	assert.Equal(t, []string{"broken.dat"}, skipped)

	// Third column (flux error) tolerated, comments skipped.
	assert.Len(t, spectra[0].Points, 2)
	assert.Len(t, spectra[1].Points, 2)
	assert.InDelta(t, 4000.0, spectra[0].Points[0].Wavelength, 1e-9)
}

func TestLoadDirMissing(t *testing.T) {
	_, _, err := LoadDir(filepath.Join(t.TempDir(), "AT2099xyz_ascii_files"))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestRestFrame(t *testing.T) {
	s := Spectrum{File: "epoch1.dat", Points: []Point{{Wavelength: 5000, Flux: 1}}}

	rest := RestFrame(s, 0.25)
	assert.InDelta(t, 4000.0, rest.Points[0].Wavelength, 1e-9)
	assert.InDelta(t, 1.0, rest.Points[0].Flux, 1e-9)

	// Input untouched.
	assert.InDelta(t, 5000.0, s.Points[0].Wavelength, 1e-9)

	// Zero redshift is the identity.
	same := RestFrame(s, 0)
	assert.InDelta(t, 5000.0, same.Points[0].Wavelength, 1e-9)
}

func TestRestLines(t *testing.T) {
	assert.InDelta(t, 6562.8, RestLines["H alpha"], 1e-9)
	assert.InDelta(t, 4686.0, RestLines["He II"], 1e-9)
}
