package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tdecat/tdecat/internal/store"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Query the index database",
		Long: `Run SQL against the catalogue index database.

The index holds one row per source plus the resolved data-file paths and
the rebuild audit trail, so it answers questions the fixed commands don't:
joins, counts, ad-hoc filters.

When invoked without arguments on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  tdecat query "SELECT name, redshift FROM sources WHERE redshift < 0.05"

  # Sources with X-ray data on disk
  tdecat query "SELECT s.name FROM sources s JOIN data_files f ON f.source_id = s.id WHERE f.kind = 'xray' AND f.present = 1"

  # List available tables
  tdecat query tables

  # Show schema for a table
  tdecat query schema sources

  # Name search across all designations
  tdecat query search 2019qiz

  # Interactive mode
  tdecat query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	cmd.AddCommand(newQueryTablesCommand(opts))
	cmd.AddCommand(newQuerySchemaCommand(opts))
	cmd.AddCommand(newQuerySearchCommand(opts))

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx := NewCommandContextWithoutCatalogue(cmd)
	statePath := cmdCtx.Cfg.StatePath

	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		return fmt.Errorf("index database not found at %s (run 'tdecat index' first)", statePath)
	}

	var sqlQuery string
	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		// Piped input
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		return runQueryREPL(cmd, statePath, opts)
	}

	return executeAndRender(cmd.Context(), cmd, statePath, sqlQuery, opts.Format)
}

func executeAndRender(ctx context.Context, cmd *cobra.Command, statePath, sqlQuery, format string) error {
	db, err := openIndexDB(statePath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return renderResults(cmd.OutOrStdout(), rows, format)
}

// newQueryTablesCommand creates the tables subcommand.
func newQueryTablesCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables in the index database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutCatalogue(cmd)
			return listTables(cmd, cmdCtx.Cfg.StatePath, opts.Format)
		},
	}
}

// newQuerySchemaCommand creates the schema subcommand.
func newQuerySchemaCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show schema for a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutCatalogue(cmd)
			return showSchema(cmd, cmdCtx.Cfg.StatePath, args[0], opts.Format)
		},
	}
}

// newQuerySearchCommand creates the search subcommand.
func newQuerySearchCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search sources by any of their designations",
		Long: `Search indexed sources by substring across every designation: plain
name, AT name, ZTF name, Gaia name, and alternative name.`,
		Example: `  tdecat query search 2019qiz
  tdecat query search ZTF19 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutCatalogue(cmd)
			return searchSources(cmd, cmdCtx.Cfg.StatePath, args[0], opts.Format)
		},
	}
}

func searchSources(cmd *cobra.Command, statePath, term, format string) error {
	query := `
		SELECT name, at_name, ztf_name, gaia_name, alt_name, redshift, discovery
		FROM sources
		WHERE name LIKE ?1 OR at_name LIKE ?1 OR ztf_name LIKE ?1
		   OR gaia_name LIKE ?1 OR alt_name LIKE ?1
		ORDER BY name
		LIMIT 50
	`

	db, err := openIndexDB(statePath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(cmd.Context(), query, "%"+term+"%")
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return renderResults(cmd.OutOrStdout(), rows, format)
}

// openIndexDB opens the index database read-only.
func openIndexDB(statePath string) (*sql.DB, error) {
	db, err := store.OpenReadOnly(statePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
