package depot

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Dicklesworthstone/rootup/internal/archive"
	"github.com/Dicklesworthstone/rootup/internal/procrunner"
	"github.com/Dicklesworthstone/rootup/internal/store"
)

// newTarRunner returns a procrunner.Runner standing in for the real tar
// binary: "-cjf dest ." snapshots the invocation directory into an
// in-memory-keyed temp directory, "-xjf dest" restores it, round-tripping
// Compact/Expand without a real tar.bz2 on disk.
func newTarRunner(t *testing.T) procrunner.Runner {
	t.Helper()
	snapshots := map[string]string{}
	return &procrunner.Fake{
		Effect: func(inv procrunner.Invocation) error {
			switch inv.Args[0] {
			case "-cjf":
				tarball, dir := inv.Args[1], inv.Dir
				snap := filepath.Join(t.TempDir(), filepath.Base(tarball)+".snap")
				if err := copyTree(dir, snap); err != nil {
					return err
				}
				snapshots[tarball] = snap
				return os.WriteFile(tarball, []byte("fake-tarball"), 0o644)
			case "-xjf":
				tarball, dir := inv.Args[1], inv.Dir
				snap, ok := snapshots[tarball]
				if !ok {
					return nil
				}
				return copyTree(snap, dir)
			}
			return nil
		},
	}
}

func copyTree(src, dst string) error {
	if err := os.MkdirAll(dst, 0o777); err != nil {
		return err
	}
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o777)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, in)
		return err
	})
}

func openTestDepot(t *testing.T, runner procrunner.Runner) (*Depot, string) {
	t.Helper()
	prefix := t.TempDir()
	d, err := Open(prefix, Options{}, runner)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d, prefix
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) (string, bool) {
	t.Helper()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false
	}
	if err != nil {
		t.Fatal(err)
	}
	return string(b), true
}

// TestInstallFreshFileThenUninstallRemovesIt is testable property S1:
// installing onto an empty overlay then uninstalling leaves no trace.
func TestInstallFreshFileThenUninstallRemovesIt(t *testing.T) {
	runner := newTarRunner(t)
	d, prefix := openTestDepot(t, runner)

	stage := t.TempDir()
	writeFile(t, filepath.Join(stage, "usr/local/bin/widget"), "v1")

	extractor, err := archive.NewExtractor(archive.FormatDirectory, runner)
	if err != nil {
		t.Fatal(err)
	}
	a := archive.New(stage)
	a.Name = "widget"
	if err := d.Install(a, extractor); err != nil {
		t.Fatalf("Install: %v", err)
	}

	got, ok := readFile(t, filepath.Join(prefix, "usr/local/bin/widget"))
	if !ok || got != "v1" {
		t.Fatalf("widget not installed, got %q ok=%v", got, ok)
	}

	listings, err := d.List(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(listings) != 1 || listings[0].Name != "widget" {
		t.Fatalf("List = %+v, want one widget archive", listings)
	}
	installed, err := d.GetArchive(store.Selector{Serial: listings[0].Serial})
	if err != nil {
		t.Fatal(err)
	}

	verifyResult, err := d.Verify(installed)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range verifyResult {
		if f.Status != "" {
			t.Fatalf("unexpected verify status %q for %s", f.Status, f.Path)
		}
	}

	if err := d.Uninstall(installed); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if _, ok := readFile(t, filepath.Join(prefix, "usr/local/bin/widget")); ok {
		t.Fatalf("widget still present after uninstall")
	}
}

// TestInstallOverExistingFileRestoresOnUninstall covers the base-system
// backup path: installing over content that pre-dates any archive must
// restore that content on uninstall (testable property S2).
func TestInstallOverExistingFileRestoresOnUninstall(t *testing.T) {
	runner := newTarRunner(t)
	d, prefix := openTestDepot(t, runner)

	writeFile(t, filepath.Join(prefix, "etc/widget.conf"), "base")

	stage := t.TempDir()
	writeFile(t, filepath.Join(stage, "etc/widget.conf"), "v1")

	extractor, err := archive.NewExtractor(archive.FormatDirectory, runner)
	if err != nil {
		t.Fatal(err)
	}
	a := archive.New(stage)
	a.Name = "widget"
	if err := d.Install(a, extractor); err != nil {
		t.Fatalf("Install: %v", err)
	}

	got, ok := readFile(t, filepath.Join(prefix, "etc/widget.conf"))
	if !ok || got != "v1" {
		t.Fatalf("widget.conf = %q, ok=%v, want v1", got, ok)
	}

	listings, err := d.List(false)
	if err != nil {
		t.Fatal(err)
	}
	installed, err := d.GetArchive(store.Selector{Serial: listings[0].Serial})
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Uninstall(installed); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	got, ok = readFile(t, filepath.Join(prefix, "etc/widget.conf"))
	if !ok || got != "base" {
		t.Fatalf("widget.conf after uninstall = %q, ok=%v, want restored base", got, ok)
	}
}
