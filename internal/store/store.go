// Package store provides the SQLite index of the catalogue and its data
// files, used by the query REPL, the list command, and the web viewer.
package store

import "time"

// SourceRecord is an indexed catalogue row.
type SourceRecord struct {
	ID        string
	Name      string // plain name, unique
	ATName    string
	ZTFName   string
	GaiaName  string
	AltName   string
	Redshift  *float64
	Discovery string
	CreatedAt time.Time
}

// DataFileKind labels the archive a data file belongs to.
type DataFileKind string

const (
	KindOptical DataFileKind = "optical"
	KindUVOT    DataFileKind = "uvot"
	KindXRay    DataFileKind = "xray"
	KindSpectra DataFileKind = "spectra"
)

// DataFile records the resolved path of one data file for a source and
// whether it existed at index time.
type DataFile struct {
	SourceID string
	Kind     DataFileKind
	Path     string
	Present  bool
}

// IndexRunStatus is the outcome of an index run.
type IndexRunStatus string

const (
	IndexRunRunning   IndexRunStatus = "running"
	IndexRunCompleted IndexRunStatus = "completed"
	IndexRunFailed    IndexRunStatus = "failed"
)

// IndexRun is an audit record for one rebuild of the index.
type IndexRun struct {
	ID          string
	Status      IndexRunStatus
	SourceCount int
	FileCount   int
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// Store is the persistence interface for the catalogue index.
type Store interface {
	Migrate() error
	ReplaceSources(sources []SourceRecord, files []DataFile) error
	ListSources() ([]SourceRecord, error)
	GetSource(name string) (*SourceRecord, error)
	DataFiles(sourceID string) ([]DataFile, error)
	StartIndexRun() (*IndexRun, error)
	CompleteIndexRun(id string, status IndexRunStatus, sourceCount, fileCount int, errMsg string) error
	LatestIndexRun() (*IndexRun, error)
	Close() error
}
