// Package dataset maps catalogue source names to the on-disk layout of the
// photometry and spectroscopy archives.
package dataset

import (
	"os"
	"path/filepath"
)

// Default archive directory names, relative to the data root.
const (
	DefaultOpticalDir = "OPTICAL_INFRARED"
	DefaultUVOTDir    = "UV"
	DefaultXRayDir    = "X-RAYS"
	DefaultSpectraDir = "OPTICAL_SPECTRA"
)

// Resolver builds paths to per-object data files.
type Resolver struct {
	Root       string
	OpticalDir string
	UVOTDir    string
	XRayDir    string
	SpectraDir string
}

// NewResolver returns a resolver rooted at root with the default archive
// layout.
func NewResolver(root string) Resolver {
	return Resolver{
		Root:       root,
		OpticalDir: DefaultOpticalDir,
		UVOTDir:    DefaultUVOTDir,
		XRayDir:    DefaultXRayDir,
		SpectraDir: DefaultSpectraDir,
	}
}

// OpticalPath returns the optical/infrared photometry file for a source.
func (r Resolver) OpticalPath(name string) string {
	return filepath.Join(r.Root, r.OpticalDir, "target_"+name+"_photometry.csv")
}

// UVOTPath returns the Swift UVOT light-curve file for a source.
func (r Resolver) UVOTPath(name string) string {
	return filepath.Join(r.Root, r.UVOTDir, name+"_uvot_lightcurve.csv")
}

// XRayPath returns the X-ray light-curve file for a source.
func (r Resolver) XRayPath(name string) string {
	return filepath.Join(r.Root, r.XRayDir, name+"_xray_lightcurve.csv")
}

// SpectraPath returns the spectrum folder for a source.
func (r Resolver) SpectraPath(name string) string {
	return filepath.Join(r.Root, r.SpectraDir, name+"_ascii_files")
}

// Availability records which data kinds exist on disk for a source.
type Availability struct {
	Optical bool `json:"optical"`
	UVOT    bool `json:"uvot"`
	XRay    bool `json:"xray"`
	Spectra bool `json:"spectra"`
}

// Availability probes the archive for a source's data files.
func (r Resolver) Availability(name string) Availability {
	return Availability{
		Optical: fileExists(r.OpticalPath(name)),
		UVOT:    fileExists(r.UVOTPath(name)),
		XRay:    fileExists(r.XRayPath(name)),
		Spectra: dirExists(r.SpectraPath(name)),
	}
}

// Any reports whether at least one data kind is present.
func (a Availability) Any() bool {
	return a.Optical || a.UVOT || a.XRay || a.Spectra
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
