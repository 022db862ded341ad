package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phobologic/uirepair/internal/model"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const siteJSON = `{
  "name": "Acme",
  "pages": [
    {
      "id": "home",
      "name": "Home",
      "components": [
        {
          "id": "main-nav",
          "type": "nav-horizontal",
          "children": [
            {"id": "logo", "type": "heading", "props": {"text": "Acme"}},
            {"id": "text-1", "type": "text", "props": {"text": "Home"}},
            {"id": "text-2", "type": "text", "props": {"text": "Pricing"}},
            {"id": "text-3", "type": "text", "props": {"text": "Docs"}},
            {"id": "menu", "type": "button", "props": {"icon": "menu"}}
          ]
        },
        {
          "id": "footer",
          "type": "section",
          "children": [
            {"id": "footer-content", "type": "div", "children": []}
          ]
        }
      ]
    }
  ]
}
`

const repairedJSON = `{
  "pages": [
    {
      "id": "home",
      "components": [
        {"id": "hero", "type": "section", "props": {"backgroundColor": "#ffffff"}}
      ]
    }
  ]
}
`

func createSampleSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "site.json", siteJSON)
	writeTestFile(t, dir, "clean.json", repairedJSON)
	writeTestFile(t, dir, "package.json", `{"name": "acme"}`)
	return dir
}

func readProject(t *testing.T, path string) *model.Project {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := model.DecodeProject(data)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRunBasic(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.HasPrefix(out, "root:") {
		t.Errorf("output should start with root:, got:\n%s", out)
	}
	if !strings.Contains(out, "changed: 1") {
		t.Errorf("expected one changed file, got:\n%s", out)
	}
	if !strings.Contains(out, "files[2]") {
		t.Errorf("expected 2 files, got:\n%s", out)
	}
	if !strings.Contains(out, "  site.json,1,true,1,") {
		t.Errorf("missing site.json row, got:\n%s", out)
	}
	if !strings.Contains(out, "navbar-group") || !strings.Contains(out, "footer-grid") {
		t.Errorf("missing fix rows, got:\n%s", out)
	}

	nav := readProject(t, filepath.Join(dir, "site.json")).Pages[0].Components[0]
	if len(nav.Children) != 3 {
		t.Errorf("nav children on disk = %d, want 3", len(nav.Children))
	}

	clean, _ := os.ReadFile(filepath.Join(dir, "clean.json"))
	if string(clean) != repairedJSON {
		t.Error("file needing no repair was rewritten")
	}
}

func TestRunPreservesUnknownFields(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "site.json"))
	if !strings.Contains(string(data), `"name": "Acme"`) {
		t.Errorf("project-level field lost:\n%s", data)
	}
}

func TestRunIdempotent(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := os.ReadFile(filepath.Join(dir, "site.json"))

	stdout.Reset()
	if err := run([]string{"--check", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("check after repair: %v\n%s", err, stdout.String())
	}
	if !strings.Contains(stdout.String(), "changed: 0") {
		t.Errorf("second run found changes:\n%s", stdout.String())
	}
	second, _ := os.ReadFile(filepath.Join(dir, "site.json"))
	if string(first) != string(second) {
		t.Error("second run rewrote the file")
	}
}

func TestRunCheck(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--check", dir}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for unrepaired files")
	}
	if !strings.Contains(err.Error(), "1 file(s) need repair") {
		t.Errorf("unexpected error: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "site.json"))
	if string(data) != siteJSON {
		t.Error("--check must not modify files")
	}
}

func TestRunDryRun(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--dry-run", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "changed: 1") {
		t.Errorf("dry run should still report, got:\n%s", stdout.String())
	}
	data, _ := os.ReadFile(filepath.Join(dir, "site.json"))
	if string(data) != siteJSON {
		t.Error("--dry-run must not modify files")
	}
}

func TestRunOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pass        string
		navChildren int
		wantRule    string
		absentRule  string
	}{
		{"footer", 5, "footer-grid", "navbar-group"},
		{"navbar", 3, "navbar-group", "footer-grid"},
	}
	for _, tt := range tests {
		t.Run(tt.pass, func(t *testing.T) {
			t.Parallel()
			dir := createSampleSite(t)

			var stdout, stderr bytes.Buffer
			if err := run([]string{"--only", tt.pass, dir}, &stdout, &stderr); err != nil {
				t.Fatalf("run: %v", err)
			}
			out := stdout.String()
			if !strings.Contains(out, tt.wantRule) || strings.Contains(out, tt.absentRule) {
				t.Errorf("unexpected fixes for --only %s:\n%s", tt.pass, out)
			}
			nav := readProject(t, filepath.Join(dir, "site.json")).Pages[0].Components[0]
			if len(nav.Children) != tt.navChildren {
				t.Errorf("nav children = %d, want %d", len(nav.Children), tt.navChildren)
			}
		})
	}
}

func TestRunUnknownPass(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run([]string{"--only", "header", t.TempDir()}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for unknown pass")
	}
	if !strings.Contains(err.Error(), "unknown pass") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunSingleFile(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{filepath.Join(dir, "site.json")}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "files[1]") || strings.Contains(out, "clean.json") {
		t.Errorf("expected only site.json, got:\n%s", out)
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run([]string{"-V"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "uirepair") {
		t.Errorf("version output: %q", stdout.String())
	}
}

func TestRunNoFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "readme.txt", "nothing here")

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for no project files")
	}
	if !strings.Contains(err.Error(), "no project files") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunSkipsNonProjects(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)
	writeTestFile(t, dir, "settings.json", `{"theme": "dark"}`)
	writeTestFile(t, dir, "broken.json", `{"pages": [`)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "files[2]") {
		t.Errorf("non-projects should be left out of the report:\n%s", stdout.String())
	}
	logs := stderr.String()
	if !strings.Contains(logs, "settings.json") || !strings.Contains(logs, "broken.json") {
		t.Errorf("expected warnings for skipped files, got:\n%s", logs)
	}
}

func TestRunMaxFileSize(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--max-file-size", "10", dir}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error when every file is over the limit")
	}
	if !strings.Contains(err.Error(), "size limit") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunConfigFile(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)
	cfgPath := filepath.Join(t.TempDir(), "uirepair.yaml")
	writeTestFile(t, filepath.Dir(cfgPath), filepath.Base(cfgPath), "footer:\n  background: \"#000000\"\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--config", cfgPath, dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	foot := readProject(t, filepath.Join(dir, "site.json")).Pages[0].Components[1]
	if got := foot.Props["backgroundColor"]; got != "#000000" {
		t.Errorf("footer backgroundColor = %v, want #000000", got)
	}
}

func TestRunMissingConfig(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir()}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestRunVerboseLogsFixes(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-v", "--dry-run", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	logs := stderr.String()
	if !strings.Contains(logs, `"applied fix"`) || !strings.Contains(logs, `"rule":"navbar-group"`) {
		t.Errorf("expected debug fix entries, got:\n%s", logs)
	}
}

func TestReorderArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"flags only", []string{"-v", "--check"}, []string{"-v", "--check"}},
		{"path first", []string{"site", "--only", "footer"}, []string{"--only", "footer", "site"}},
		{"value flags", []string{"--config", "c.yaml", "site", "-j", "2"}, []string{"--config", "c.yaml", "-j", "2", "site"}},
		{"double dash", []string{"-v", "--", "-odd-name.json"}, []string{"-v", "-odd-name.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := reorderArgs(tt.in)
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("reorderArgs(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
