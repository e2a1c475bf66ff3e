package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOfMatchesKnownVector(t *testing.T) {
	d := Of([]byte("hello\n"))
	got := d.String()
	want := "f572d396fae9206628714fb2ce00f72e94f2258"
	if got != want {
		t.Fatalf("Of(%q) = %s, want %s", "hello\n", got, want)
	}
}

func TestNullDigestDistinctFromConcrete(t *testing.T) {
	empty := Of(nil)
	if Equal(Null, empty) {
		t.Fatal("null digest must not equal sha1(\"\")")
	}
	if !Equal(Null, Digest{}) {
		t.Fatal("two null digests must compare equal")
	}
}

func TestEqualByValue(t *testing.T) {
	a := Of([]byte("same"))
	b := Of([]byte("same"))
	if !Equal(a, b) {
		t.Fatal("equal content must produce equal digests")
	}
	c := Of([]byte("different"))
	if Equal(a, c) {
		t.Fatal("different content must not produce equal digests")
	}
}

func TestOfFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f")
	if err := os.WriteFile(p, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := OfFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(d, Of([]byte("hello\n"))) {
		t.Fatal("OfFile must match Of on the same bytes")
	}
}

func TestOfSymlinkTargetNotContents(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	if err := os.WriteFile(target, []byte("irrelevant"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink("bash", link); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}
	d, err := OfSymlinkTarget(link)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(d, Of([]byte("bash"))) {
		t.Fatal("symlink digest must hash the target string, not its contents")
	}
}

func TestFromBytesRoundTrip(t *testing.T) {
	d := Of([]byte("round trip"))
	back, err := FromBytes(d.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(d, back) {
		t.Fatal("FromBytes(d.Bytes()) must equal d")
	}
	null, err := FromBytes(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(null, Null) {
		t.Fatal("FromBytes(nil) must be the null digest")
	}
}

func TestStringPadsNullTo40Spaces(t *testing.T) {
	if len(Null.String()) != 40 || strings.TrimSpace(Null.String()) != "" {
		t.Fatalf("null digest string must be 40 spaces, got %q", Null.String())
	}
}
