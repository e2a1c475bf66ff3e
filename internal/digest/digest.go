// Package digest computes and compares the content hashes rootup attaches
// to every file and symlink record.
package digest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/pjbgf/sha1cd"
)

// Size is the byte length of a Digest.
const Size = 20

// Digest is a fixed-size SHA-1 hash. The zero value is the null digest,
// which is distinct from (and compares unequal to) every concrete digest,
// including the SHA-1 of the empty byte string.
type Digest struct {
	sum   [Size]byte
	valid bool
}

// Null is the distinguished empty Digest used for directories and for
// FsNode variants that carry no content.
var Null = Digest{}

const blockSize = 8 * 1024

// Of hashes an in-memory byte slice.
func Of(b []byte) Digest {
	h := sha1cd.New()
	h.Write(b) //nolint:errcheck // hash.Hash.Write never fails
	var d Digest
	copy(d.sum[:], h.Sum(nil))
	d.valid = true
	return d
}

// OfStream hashes r in blockSize chunks, retrying transparently on EINTR
// and failing on any other read error.
func OfStream(r io.Reader) (Digest, error) {
	h := sha1cd.New()
	buf := make([]byte, blockSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n]) //nolint:errcheck
		}
		if err == nil {
			continue
		}
		if err == io.EOF {
			break
		}
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		return Digest{}, fmt.Errorf("digest: read stream: %w", err)
	}
	var d Digest
	copy(d.sum[:], h.Sum(nil))
	d.valid = true
	return d, nil
}

// OfFile hashes the contents of the regular file at path.
func OfFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("digest: open %s: %w", path, err)
	}
	defer f.Close()
	d, err := OfStream(f)
	if err != nil {
		return Digest{}, fmt.Errorf("digest: hash %s: %w", path, err)
	}
	return d, nil
}

// OfSymlinkTarget hashes the raw bytes of the symlink target at path,
// without canonicalizing or resolving it.
func OfSymlinkTarget(path string) (Digest, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return Digest{}, fmt.Errorf("digest: readlink %s: %w", path, err)
	}
	return Of([]byte(target)), nil
}

// Equal reports whether a and b are the same digest. The null digest is
// equal only to itself's literal zero state and unequal to any concrete
// digest, including one that happens to collide byte-for-byte with the
// zero array (SHA-1 never produces the all-zero sum in practice, but the
// valid flag makes the rule exact regardless).
func Equal(a, b Digest) bool {
	if a.valid != b.valid {
		return false
	}
	if !a.valid {
		return true
	}
	return a.sum == b.sum
}

// IsNull reports whether d is the null digest.
func (d Digest) IsNull() bool { return !d.valid }

// Bytes returns the raw 20-byte sum, or a 20-byte zero array for the null
// digest.
func (d Digest) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, d.sum[:])
	return out
}

// FromBytes reconstructs a Digest from a stored 20-byte blob. A nil or
// empty slice yields the null digest.
func FromBytes(b []byte) (Digest, error) {
	if len(b) == 0 {
		return Digest{}, nil
	}
	if len(b) != Size {
		return Digest{}, fmt.Errorf("digest: expected %d bytes, got %d", Size, len(b))
	}
	var d Digest
	copy(d.sum[:], b)
	d.valid = true
	return d, nil
}

// String renders the digest as 40 lowercase hex characters, or 40 spaces
// for the null digest, matching the manifest output format.
func (d Digest) String() string {
	if !d.valid {
		return "                                        "
	}
	return fmt.Sprintf("%x", d.sum)
}
