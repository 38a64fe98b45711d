package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// boundary forbids packages under dir from importing any of deny.
// Test files are exempt when testsExempt is set.
type boundary struct {
	dir         string
	deny        []string
	testsExempt bool
}

var boundaries = []boundary{
	{dir: "internal/pkg/", deny: []string{"internal/domain/", "internal/data/", "internal/app", "internal/schemafile", "internal/observability"}},
	{dir: "internal/domain/", deny: []string{"internal/data/", "internal/app", "internal/schemafile", "internal/observability"}},
	{dir: "internal/observability/", deny: []string{"internal/domain/", "internal/data/", "internal/app", "internal/schemafile"}},
	{dir: "internal/data/cache/", deny: []string{"internal/data/aggregates", "internal/data/repos", "internal/app"}},
	{dir: "internal/data/repos/", deny: []string{"internal/data/aggregates", "internal/data/cache", "internal/app", "internal/schemafile"}},
	{dir: "internal/data/aggregates/", deny: []string{"internal/app", "internal/schemafile"}},
	{dir: "internal/schemafile/", deny: []string{"internal/data/", "internal/app"}, testsExempt: true},
}

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleRoot(t)
	fset := token.NewFileSet()

	type violation struct {
		file string
		imp  string
		rule string
	}
	var violations []violation

	walkErr := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		b, ok := boundaryFor(rel)
		if !ok {
			return nil
		}
		if b.testsExempt && strings.HasSuffix(rel, "_test.go") {
			return nil
		}

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			for _, bad := range b.deny {
				if strings.HasPrefix(imp, modulePath+"/"+bad) {
					violations = append(violations, violation{file: rel, imp: imp, rule: bad})
					break
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}

	if len(violations) > 0 {
		var sb strings.Builder
		sb.WriteString("import boundary violations:\n")
		for _, v := range violations {
			fmt.Fprintf(&sb, "- %s imports %q (disallowed: %q)\n", v.file, v.imp, v.rule)
		}
		t.Fatal(sb.String())
	}
}

// Only cmd/ and tests may construct the application.
func TestAppImportedOnlyByCommands(t *testing.T) {
	root, modulePath := moduleRoot(t)
	fset := token.NewFileSet()
	var offenders []string

	walkErr := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			imp, err := strconv.Unquote(spec.Path.Value)
			if err == nil && imp == modulePath+"/internal/app" {
				rel, _ := filepath.Rel(root, path)
				offenders = append(offenders, filepath.ToSlash(rel))
			}
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	if len(offenders) > 0 {
		t.Fatalf("internal/app imported from: %v", offenders)
	}
}

func boundaryFor(rel string) (boundary, bool) {
	for _, b := range boundaries {
		if strings.HasPrefix(rel, b.dir) {
			return b, true
		}
	}
	return boundary{}, false
}

func moduleRoot(t *testing.T) (string, string) {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}
	return root, modulePath
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
