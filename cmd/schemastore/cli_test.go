package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	domainagg "github.com/yungbote/schemastore/internal/domain/aggregates"
)

const cliDoc = `
schemas:
  - alias: home
    name: Home
    allow_at_root: true
    templates: [home]
    default_template: home
    allowed_children: [page]
  - alias: page
    name: Page
    parent: home
    properties:
      - alias: body
        name: Body
        data_type_id: 3
`

func writeCLIConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "schemastore.yaml")
	body := "log:\n  mode: silent\n" +
		"database:\n  driver: sqlite\n  dsn: " + filepath.Join(dir, "store.db") + "\n  auto_migrate: true\n" +
		"cache:\n  mode: memory\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.ExecuteContext(context.Background())
	closeApp()
	return out.String(), err
}

func TestCLIImportListGetDelete(t *testing.T) {
	cfgPath := writeCLIConfig(t)
	docPath := filepath.Join(filepath.Dir(cfgPath), "schemas.yaml")
	if err := os.WriteFile(docPath, []byte(cliDoc), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	out, err := runCLI(t, "--config", cfgPath, "import", docPath)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "created: home, page") {
		t.Fatalf("import output: got=%q", out)
	}

	out, err = runCLI(t, "--config", cfgPath, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "home*") || !strings.Contains(out, "page") {
		t.Fatalf("list output: got=%q", out)
	}

	out, err = runCLI(t, "--config", cfgPath, "get", "page")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, "parent: home") || !strings.Contains(out, "alias: body") {
		t.Fatalf("get output: got=%q", out)
	}

	_, err = runCLI(t, "--config", cfgPath, "delete", "home")
	if exitCode(err) != exitConflict {
		t.Fatalf("delete parent with children: want exit=%d got=%d (%v)", exitConflict, exitCode(err), err)
	}

	if out, err = runCLI(t, "--config", cfgPath, "delete", "page"); err != nil {
		t.Fatalf("delete page: %v\n%s", err, out)
	}
	out, err = runCLI(t, "--config", cfgPath, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(out, "page") {
		t.Fatalf("page still listed: %q", out)
	}
}

func TestCLIMissingConfigFile(t *testing.T) {
	_, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "list")
	if exitCode(err) != exitConfig {
		t.Fatalf("exit code: want=%d got=%d (%v)", exitConfig, exitCode(err), err)
	}
}

func TestRepositoryErrorExitCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domainagg.NewError(domainagg.CodeConflict, "op", "stale", nil), exitConflict},
		{domainagg.NewError(domainagg.CodePreconditionFailed, "op", "children", nil), exitConflict},
		{domainagg.NewError(domainagg.CodeRetryable, "op", "timeout", nil), exitDatabase},
		{errors.New("plain"), exitGeneral},
	}
	for _, tc := range cases {
		if got := exitCode(repositoryError("x", tc.err)); got != tc.want {
			t.Fatalf("%v: want=%d got=%d", tc.err, tc.want, got)
		}
	}
	if exitCode(nil) != exitSuccess {
		t.Fatalf("nil error should exit 0")
	}
}
