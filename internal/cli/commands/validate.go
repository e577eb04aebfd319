package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tdecat/tdecat/internal/catalogue"
	"github.com/tdecat/tdecat/internal/photometry"
	"github.com/tdecat/tdecat/internal/render"
	"github.com/tdecat/tdecat/internal/spectra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the catalogue and data archives",
		Long: `Check the catalogue for structural problems: duplicate names, rows
without any usable name, and unparseable redshifts.

With --data, every data product referenced by the catalogue is also
parsed, so broken photometry or spectrum files are reported before they
bite in the viewer.

Exits non-zero if any error-level issue is found.`,
		Example: `  # Validate the catalogue only
  tdecat validate

  # Also parse every data file
  tdecat validate --data`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deep, _ := cmd.Flags().GetBool("data")
			return runValidate(cmd, deep)
		},
	}

	cmd.Flags().Bool("data", false, "Also parse every present data file")

	return cmd
}

func runValidate(cmd *cobra.Command, deep bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	issues := cmdCtx.Catalogue.Validate()
	if deep {
		issues = append(issues, validateData(cmdCtx)...)
	}

	if r.EffectiveMode() == render.ModeJSON {
		if err := r.JSON(map[string]any{"issues": issues, "errors": countErrors(issues)}); err != nil {
			return err
		}
	} else {
		for _, iss := range issues {
			switch iss.Severity {
			case catalogue.SeverityError:
				r.Error("%s", iss.String())
			default:
				r.Warn("%s", iss.String())
			}
		}
		if len(issues) == 0 {
			r.Println("Catalogue OK")
		} else {
			r.Printf("%d issue(s), %d error(s)\n", len(issues), countErrors(issues))
		}
	}

	if catalogue.HasErrors(issues) {
		return fmt.Errorf("validation failed with %d error(s)", countErrors(issues))
	}
	return nil
}

// validateData parses every data product present on disk and reports files
// that fail to load.
func validateData(cmdCtx *CommandContext) []catalogue.Issue {
	var issues []catalogue.Issue
	addErr := func(name, kind string, err error) {
		issues = append(issues, catalogue.Issue{
			Severity: catalogue.SeverityError,
			Message:  fmt.Sprintf("%s: bad %s data: %v", name, kind, err),
		})
	}

	for i := range cmdCtx.Catalogue.Sources {
		name := cmdCtx.Catalogue.Sources[i].PlainName()
		if name == "" {
			continue
		}
		avail := cmdCtx.Resolver.Availability(name)

		if avail.Optical {
			if _, err := photometry.LoadOptical(cmdCtx.Resolver.OpticalPath(name)); err != nil {
				addErr(name, "optical", err)
			}
		}
		if avail.UVOT {
			if _, err := photometry.LoadUVOT(cmdCtx.Resolver.UVOTPath(name)); err != nil {
				addErr(name, "UVOT", err)
			}
		}
		if avail.XRay {
			if _, err := photometry.LoadXRay(cmdCtx.Resolver.XRayPath(name), cmdCtx.Cfg.SNRThreshold); err != nil {
				addErr(name, "X-ray", err)
			}
		}
		if avail.Spectra {
			_, skipped, err := spectra.LoadDir(cmdCtx.Resolver.SpectraPath(name))
			if err != nil {
				addErr(name, "spectra", err)
			}
			for _, f := range skipped {
				issues = append(issues, catalogue.Issue{
					Severity: catalogue.SeverityWarning,
					Message:  fmt.Sprintf("%s: unreadable spectrum %s", name, f),
				})
			}
		}
	}
	return issues
}

func countErrors(issues []catalogue.Issue) int {
	n := 0
	for _, iss := range issues {
		if iss.Severity == catalogue.SeverityError {
			n++
		}
	}
	return n
}
