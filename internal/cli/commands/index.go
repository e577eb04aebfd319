package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tdecat/tdecat/internal/catalogue"
	"github.com/tdecat/tdecat/internal/render"
	"github.com/tdecat/tdecat/internal/store"
)

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the catalogue index database",
		Long: `Rebuild the SQLite index from the catalogue and the data archives.

The index records every source with its resolved data file paths, and
backs the query REPL and the web viewer. Rebuilding replaces the previous
contents; every rebuild is recorded as an audit run.`,
		Example: `  # Rebuild the index at the configured state path
  tdecat index

  # Show when the index was last built
  tdecat index --status`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, _ := cmd.Flags().GetBool("status")
			if status {
				return runIndexStatus(cmd)
			}
			return runIndex(cmd)
		},
	}

	cmd.Flags().Bool("status", false, "Show the latest index run instead of rebuilding")

	return cmd
}

func runIndex(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cmdCtx.Cfg.StatePath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	run, err := st.StartIndexRun()
	if err != nil {
		return err
	}

	sources, files := buildIndexRecords(cmdCtx)
	if err := st.ReplaceSources(sources, files); err != nil {
		_ = st.CompleteIndexRun(run.ID, store.IndexRunFailed, 0, 0, err.Error())
		return err
	}

	present := 0
	for _, f := range files {
		if f.Present {
			present++
		}
	}
	if err := st.CompleteIndexRun(run.ID, store.IndexRunCompleted, len(sources), present, ""); err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == render.ModeJSON {
		return r.JSON(map[string]any{
			"run_id":  run.ID,
			"sources": len(sources),
			"files":   present,
			"state":   cmdCtx.Cfg.StatePath,
		})
	}
	r.Printf("Indexed %d sources (%d data files) into %s\n", len(sources), present, cmdCtx.Cfg.StatePath)
	return nil
}

func runIndexStatus(cmd *cobra.Command) error {
	cmdCtx := NewCommandContextWithoutCatalogue(cmd)

	st, err := openStore(cmdCtx.Cfg.StatePath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	run, err := st.LatestIndexRun()
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer
	if run == nil {
		r.Println("No index run recorded. Run: tdecat index")
		return nil
	}

	if r.EffectiveMode() == render.ModeJSON {
		return r.JSON(run)
	}
	r.Header(1, "Latest index run")
	r.KeyValue("Status", string(run.Status))
	r.KeyValue("Sources", fmt.Sprintf("%d", run.SourceCount))
	r.KeyValue("Data files", fmt.Sprintf("%d", run.FileCount))
	r.KeyValue("Started", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.CompletedAt != nil {
		r.KeyValue("Completed", run.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if run.Error != "" {
		r.KeyValue("Error", run.Error)
	}
	return nil
}

// openStore opens (creating if needed) the index database and applies
// pending migrations.
func openStore(statePath string) (*store.SQLiteStore, error) {
	if dir := filepath.Dir(statePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}

	st := store.NewSQLiteStore()
	if err := st.Open(statePath); err != nil {
		return nil, err
	}
	if err := st.Migrate(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func buildIndexRecords(cmdCtx *CommandContext) ([]store.SourceRecord, []store.DataFile) {
	var sources []store.SourceRecord
	var files []store.DataFile

	for i := range cmdCtx.Catalogue.Sources {
		src := &cmdCtx.Catalogue.Sources[i]
		name := src.PlainName()
		if name == "" {
			continue
		}

		rec := store.SourceRecord{
			ID:       uuid.New().String(),
			Name:     name,
			ATName:   src.ATName,
			ZTFName:  src.ZTFName,
			GaiaName: src.GaiaName,
			AltName:  src.AltName,
		}
		if z, ok := src.Redshift(); ok {
			rec.Redshift = &z
		}
		rec.Discovery = src.Fields[catalogue.ColDiscoveryUT]
		sources = append(sources, rec)

		res := cmdCtx.Resolver
		avail := res.Availability(name)
		files = append(files,
			store.DataFile{SourceID: rec.ID, Kind: store.KindOptical, Path: res.OpticalPath(name), Present: avail.Optical},
			store.DataFile{SourceID: rec.ID, Kind: store.KindUVOT, Path: res.UVOTPath(name), Present: avail.UVOT},
			store.DataFile{SourceID: rec.ID, Kind: store.KindXRay, Path: res.XRayPath(name), Present: avail.XRay},
			store.DataFile{SourceID: rec.ID, Kind: store.KindSpectra, Path: res.SpectraPath(name), Present: avail.Spectra},
		)
	}
	return sources, files
}
