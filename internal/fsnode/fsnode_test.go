package fsnode

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProbeAbsent(t *testing.T) {
	n, err := Probe(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if n.Kind != KindAbsent {
		t.Fatalf("expected KindAbsent, got %v", n.Kind)
	}
}

func TestCompareIdenticalAbsent(t *testing.T) {
	a := NewAbsent("/x")
	b := NewAbsent("/x")
	if flags := Compare(a, b); flags != CompareIdentical {
		t.Fatalf("two absent nodes must compare identical, got %#x", flags)
	}
}

func TestCompareAbsentVsPresentMaximal(t *testing.T) {
	a := NewAbsent("/x")
	b := Node{Kind: KindRegular, Path: "/x", Mode: 0o100644, Size: 3}
	flags := Compare(a, b)
	if flags&CompareTypeDiffers == 0 || flags&CompareDataDiffers == 0 {
		t.Fatalf("absent-vs-present must set type and data differ bits, got %#x", flags)
	}
}

func TestCompareDetectsEachField(t *testing.T) {
	a := Node{Kind: KindRegular, Path: "/x", Mode: 0o100644, UID: 0, GID: 0, Size: 1}
	b := a
	b.UID = 1
	if Compare(a, b)&CompareUIDDiffers == 0 {
		t.Fatal("expected UID_DIFFERS")
	}
	c := a
	c.GID = 1
	if Compare(a, c)&CompareGIDDiffers == 0 {
		t.Fatal("expected GID_DIFFERS")
	}
	d := a
	d.Mode = 0o100600
	flags := Compare(a, d)
	if flags&ComparePermDiffers == 0 || flags&CompareTypeDiffers != 0 {
		t.Fatalf("perm-only change must set PERM_DIFFERS without TYPE_DIFFERS, got %#x", flags)
	}
}

func TestInstallRegularFileMovesAndChowns(t *testing.T) {
	staging := t.TempDir()
	dest := t.TempDir()

	src := filepath.Join(staging, "etc", "foo")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dest, "etc"), 0o755); err != nil {
		t.Fatal(err)
	}

	n := Node{Kind: KindRegular, Path: "/etc/foo", Mode: 0o100644, Size: 6}
	if err := n.Install(InstallOptions{StagingDir: staging, DestPrefix: dest}); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "etc", "foo"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello\n" {
		t.Fatalf("installed content = %q", got)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("staging copy should have been moved, not left behind")
	}
}

func TestInstallDirectoryOverFileRequiresForce(t *testing.T) {
	staging := t.TempDir()
	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "x"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	n := Node{Kind: KindDirectory, Path: "/x", Mode: 0o40755}
	if err := n.Install(InstallOptions{StagingDir: staging, DestPrefix: dest}); err == nil {
		t.Fatal("expected error installing directory over file without force")
	}

	if err := n.Install(InstallOptions{StagingDir: staging, DestPrefix: dest, Force: true}); err != nil {
		t.Fatalf("install with force should succeed: %v", err)
	}
	fi, err := os.Stat(filepath.Join(dest, "x"))
	if err != nil || !fi.IsDir() {
		t.Fatal("expected /x to be a directory after forced install")
	}
}

func TestRemoveIsIdempotentOnMissing(t *testing.T) {
	n := Node{Kind: KindRegular, Path: "/missing"}
	if err := n.Remove(t.TempDir()); err != nil {
		t.Fatalf("removing an absent path must succeed, got %v", err)
	}
}

func TestInstallExpandRetriesOnceOnENOENT(t *testing.T) {
	staging := t.TempDir()
	dest := t.TempDir()
	src := filepath.Join(staging, "bin", "tool")
	if err := os.MkdirAll(filepath.Join(dest, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}

	calls := 0
	expand := func() error {
		calls++
		if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
			return err
		}
		return os.WriteFile(src, []byte("payload"), 0o755)
	}

	n := Node{Kind: KindRegular, Path: "/bin/tool", Mode: 0o100755, Size: 7}
	if err := n.Install(InstallOptions{StagingDir: staging, DestPrefix: dest, Expand: expand}); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one expand call, got %d", calls)
	}
}
