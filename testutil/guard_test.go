package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDomainImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"example.com/mod/pkg/domain", true},
		{"example.com/mod/pkg/domain@v1", true},
		{"example.com/mod/pkg/notdomain", false},
	}
	for _, c := range cases {
		if got := DomainImportForbidden(c.in); got != c.want {
			t.Fatalf("DomainImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestInternalImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"example.com/mod/internal/x", true},
		{"example.com/mod/pkg/x", false},
	}
	for _, c := range cases {
		if got := InternalImportForbidden(c.in); got != c.want {
			t.Fatalf("InternalImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestModuleImportForbiddenPredicate(t *testing.T) {
	if !ModuleImportForbidden("obracore/pkg/domain") {
		t.Fatalf("module path must be forbidden")
	}
	if ModuleImportForbidden("github.com/other/mod") {
		t.Fatalf("external path must be allowed")
	}
}

// TestAssertNoDirectImports exercises the success path against a tiny temp
// package with safe imports.
func TestAssertNoDirectImports(t *testing.T) {
	dir := t.TempDir()
	src := []byte("package tmp\nimport \"fmt\"\nfunc X(){fmt.Println(1)}")
	if err := os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	AssertNoDirectImports(t, dir, func(string) bool { return false }, "none")
}

func TestDirectImportViolationsDetects(t *testing.T) {
	dir := t.TempDir()
	src := []byte("package tmp\nimport _ \"example.com/mod/internal/hidden\"\n")
	if err := os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 {
		t.Fatalf("expected one violation, got %v", viols)
	}
}

func TestTransitiveDependencyViolationsParsesOutput(t *testing.T) {
	restore := goListDeps
	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\nexample.com/mod/internal/x\n"), nil
	}
	defer func() { goListDeps = restore }()

	viols, _, err := transitiveDependencyViolations("./...", InternalImportForbidden)
	if err != nil {
		t.Fatalf("violations: %v", err)
	}
	if len(viols) != 1 || viols[0] != "example.com/mod/internal/x" {
		t.Fatalf("unexpected violations: %v", viols)
	}
}

func TestTransitiveDependencyViolationsPropagatesError(t *testing.T) {
	restore := goListDeps
	goListDeps = func(string) ([]byte, error) {
		return []byte("boom"), errors.New("go list failed")
	}
	defer func() { goListDeps = restore }()

	if _, _, err := transitiveDependencyViolations("./...", InternalImportForbidden); err == nil {
		t.Fatalf("expected error")
	}
}

type recordingLogger struct{ failed bool }

func (r *recordingLogger) Fatalf(string, ...any) { r.failed = true }

func TestFailHelpersOnlyFireOnViolations(t *testing.T) {
	var rec recordingLogger
	failIfTransitiveViolations(&rec, "none", nil)
	failIfDirectViolations(&rec, "none", nil)
	if rec.failed {
		t.Fatalf("helpers must not fail without violations")
	}
	failIfDirectViolations(&rec, "some", []string{"bad"})
	if !rec.failed {
		t.Fatalf("helper must fail on violations")
	}
}
