// Package main provides tests for the tdecat CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tdecat/tdecat/internal/cli"
	"github.com/tdecat/tdecat/internal/cli/config"
)

const testCatalogue = `AT name,ZTF name,Gaia alert name,Alternative name,Redshift,Discovery date (UT),Discovery mag/flux
AT 2019qiz,ZTF19abzrhgq,Gaia19eks,,0.0151,2019-09-19 13:15:00,17.5 (vega)
AT 2018hyz,ZTF18acpdvos,,,0.0457,2018-11-06 00:00:00,17.2
,,,iPTF16fnl,0.0163,2016-08-26 00:00:00,17.0
`

func writeCatalogue(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "TDE_catalogue_all.csv")
	if err := os.WriteFile(path, []byte(testCatalogue), 0o644); err != nil {
		t.Fatalf("failed to write catalogue: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := runCommand(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "tdecat") {
		t.Errorf("version output should contain 'tdecat', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := runCommand(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"list", "show", "lightcurve", "spectrum", "stats", "validate", "index", "query", "browse", "serve"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestListCommand(t *testing.T) {
	cat := writeCatalogue(t)

	output, err := runCommand(t, "list", "--catalogue", cat, "--data-root", filepath.Dir(cat), "--output", "markdown")
	if err != nil {
		t.Errorf("list command error = %v", err)
	}
	for _, name := range []string{"AT2019qiz", "AT2018hyz", "iPTF16fnl"} {
		if !strings.Contains(output, name) {
			t.Errorf("list output should contain %q, got: %s", name, output)
		}
	}
}

func TestListCommandJSON(t *testing.T) {
	cat := writeCatalogue(t)

	output, err := runCommand(t, "list", "--catalogue", cat, "--data-root", filepath.Dir(cat), "--output", "json")
	if err != nil {
		t.Errorf("list --output json command error = %v", err)
	}
	if !strings.Contains(output, `"name": "AT2019qiz"`) {
		t.Errorf("json output should contain the source name, got: %s", output)
	}
}

func TestShowCommand(t *testing.T) {
	cat := writeCatalogue(t)

	output, err := runCommand(t, "show", "AT2019qiz", "--catalogue", cat, "--data-root", filepath.Dir(cat), "--output", "markdown")
	if err != nil {
		t.Errorf("show command error = %v", err)
	}
	if !strings.Contains(output, "wis-tns.org/object/2019qiz") {
		t.Errorf("show output should contain the TNS link, got: %s", output)
	}
	if !strings.Contains(output, "alerce.online/object/ZTF19abzrhgq") {
		t.Errorf("show output should contain the ALeRCE link, got: %s", output)
	}
}

func TestShowCommandUnknownSource(t *testing.T) {
	cat := writeCatalogue(t)

	_, err := runCommand(t, "show", "AT2099xyz", "--catalogue", cat, "--data-root", filepath.Dir(cat))
	if err == nil {
		t.Error("show of unknown source should fail")
	}
}

func TestLightCurveUVOTCommand(t *testing.T) {
	cat := writeCatalogue(t)
	dir := filepath.Dir(cat)
	uvDir := filepath.Join(dir, "UV")
	if err := os.MkdirAll(uvDir, 0o755); err != nil {
		t.Fatalf("failed to create UV dir: %v", err)
	}
	lc := "mjd,mag_w2_src,magerr_w2_src\n58750.5,18.0,0.1\n"
	if err := os.WriteFile(filepath.Join(uvDir, "AT2019qiz_uvot_lightcurve.csv"), []byte(lc), 0o644); err != nil {
		t.Fatalf("failed to write UVOT light curve: %v", err)
	}

	// A w2 Vega magnitude of 18.0 is 19.73 in AB; applying the offset a
	// second time would yield 21.46.
	output, err := runCommand(t, "lightcurve", "AT2019qiz", "--uvot", "--output", "json",
		"--catalogue", cat, "--data-root", dir)
	if err != nil {
		t.Errorf("lightcurve --uvot command error = %v", err)
	}
	if !strings.Contains(output, "19.73") {
		t.Errorf("uvot output should contain the AB magnitude 19.73, got: %s", output)
	}
	if strings.Contains(output, "21.46") {
		t.Errorf("uvot output must not apply the Vega offset twice, got: %s", output)
	}

	output, err = runCommand(t, "lightcurve", "AT2019qiz", "--uvot", "--flux", "--output", "markdown",
		"--catalogue", cat, "--data-root", dir)
	if err != nil {
		t.Errorf("lightcurve --uvot --flux command error = %v", err)
	}
	if !strings.Contains(output, "flux [Jy]") {
		t.Errorf("flux output should be labelled in Jansky, got: %s", output)
	}
	if !strings.Contains(output, "4.656e-05") {
		t.Errorf("flux output should hold the flux of AB 19.73, got: %s", output)
	}
}

func TestValidateCommand(t *testing.T) {
	cat := writeCatalogue(t)

	output, err := runCommand(t, "validate", "--catalogue", cat, "--data-root", filepath.Dir(cat), "--output", "markdown")
	if err != nil {
		t.Errorf("validate command error = %v", err)
	}
	if !strings.Contains(output, "OK") {
		t.Errorf("validate output should report OK, got: %s", output)
	}
}

func TestValidateCommandDuplicate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "TDE_catalogue_all.csv")
	dup := testCatalogue + "AT 2019qiz,,,,0.0151,2019-09-19,17.5\n"
	if err := os.WriteFile(path, []byte(dup), 0o644); err != nil {
		t.Fatalf("failed to write catalogue: %v", err)
	}

	_, err := runCommand(t, "validate", "--catalogue", path, "--data-root", dir)
	if err == nil {
		t.Error("validate should fail on duplicate names")
	}
}

func TestStatsCommand(t *testing.T) {
	cat := writeCatalogue(t)

	output, err := runCommand(t, "stats", "redshift", "--bins", "5", "--catalogue", cat, "--data-root", filepath.Dir(cat), "--output", "markdown")
	if err != nil {
		t.Errorf("stats command error = %v", err)
	}
	if !strings.Contains(output, "3 values") {
		t.Errorf("stats output should count three redshifts, got: %s", output)
	}
}

func TestIndexCommand(t *testing.T) {
	cat := writeCatalogue(t)
	state := filepath.Join(t.TempDir(), "index.db")

	output, err := runCommand(t, "index",
		"--catalogue", cat, "--data-root", filepath.Dir(cat), "--state", state, "--output", "markdown")
	if err != nil {
		t.Errorf("index command error = %v", err)
	}
	if !strings.Contains(output, "Indexed 3 sources") {
		t.Errorf("index output should report three sources, got: %s", output)
	}

	// Status reflects the completed run.
	output, err = runCommand(t, "index", "--status",
		"--catalogue", cat, "--data-root", filepath.Dir(cat), "--state", state, "--output", "markdown")
	if err != nil {
		t.Errorf("index --status error = %v", err)
	}
	if !strings.Contains(output, "completed") {
		t.Errorf("status output should contain 'completed', got: %s", output)
	}
}

func TestQueryCommand(t *testing.T) {
	cat := writeCatalogue(t)
	state := filepath.Join(t.TempDir(), "index.db")

	if _, err := runCommand(t, "index", "--catalogue", cat, "--data-root", filepath.Dir(cat), "--state", state); err != nil {
		t.Fatalf("index command error = %v", err)
	}

	output, err := runCommand(t, "query", "SELECT name FROM sources ORDER BY name", "--format", "csv",
		"--catalogue", cat, "--data-root", filepath.Dir(cat), "--state", state)
	if err != nil {
		t.Errorf("query command error = %v", err)
	}
	if !strings.Contains(output, "AT2018hyz") || !strings.Contains(output, "iPTF16fnl") {
		t.Errorf("query output should list indexed sources, got: %s", output)
	}
}

func TestQueryWithoutIndex(t *testing.T) {
	cat := writeCatalogue(t)
	state := filepath.Join(t.TempDir(), "missing.db")

	_, err := runCommand(t, "query", "SELECT 1",
		"--catalogue", cat, "--data-root", filepath.Dir(cat), "--state", state)
	if err == nil {
		t.Error("query should fail when the index does not exist")
	}
}

func TestCompletionCommand(t *testing.T) {
	_, err := runCommand(t, "completion", "bash")
	if err != nil {
		t.Errorf("completion command error = %v", err)
	}
}
