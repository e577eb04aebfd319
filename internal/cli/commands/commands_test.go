package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdecat/tdecat/internal/dataset"
	"github.com/tdecat/tdecat/internal/spectra"
)

func TestAvailabilityFlags(t *testing.T) {
	assert.Equal(t, "....", availabilityFlags(dataset.Availability{}))
	assert.Equal(t, "OUXS", availabilityFlags(dataset.Availability{
		Optical: true, UVOT: true, XRay: true, Spectra: true,
	}))
	assert.Equal(t, ".U.S", availabilityFlags(dataset.Availability{UVOT: true, Spectra: true}))
}

func TestAvailabilityHas(t *testing.T) {
	a := dataset.Availability{Optical: true, Spectra: true}

	assert.True(t, availabilityHas(a, "optical"))
	assert.True(t, availabilityHas(a, "spectra"))
	assert.False(t, availabilityHas(a, "uvot"))
	assert.False(t, availabilityHas(a, "xray"))
}

func TestPickSpectrum(t *testing.T) {
	specs := []spectra.Spectrum{
		{File: "epoch1.dat"},
		{File: "epoch2.dat"},
	}

	spec, err := pickSpectrum(specs, "epoch2.dat", 0)
	require.NoError(t, err)
	assert.Equal(t, "epoch2.dat", spec.File)

	spec, err = pickSpectrum(specs, "", 1)
	require.NoError(t, err)
	assert.Equal(t, "epoch1.dat", spec.File)

	_, err = pickSpectrum(specs, "missing.dat", 0)
	assert.Error(t, err)

	_, err = pickSpectrum(specs, "", 3)
	assert.Error(t, err)
}

func TestRedshiftString(t *testing.T) {
	assert.Equal(t, "", redshiftString(nil))

	z := 0.0151
	assert.Equal(t, "0.0151", redshiftString(&z))
}
