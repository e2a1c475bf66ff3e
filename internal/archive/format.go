package archive

import (
	"fmt"
	"os"
	"strings"
)

// Format identifies an archive's on-disk encoding, chosen by suffix match
// against the source path.
type Format int

const (
	FormatUnknown Format = iota
	FormatTar
	FormatTarGz
	FormatTarBz2
	FormatXar
	FormatZip
	FormatCpio
	FormatCpioGz
	FormatCpioBz2
	FormatPax
	FormatPaxGz
	FormatPaxBz2
	FormatDirectory
)

var suffixTable = []struct {
	suffixes []string
	format   Format
}{
	{[]string{".cpio.bz2", ".cpbz2"}, FormatCpioBz2},
	{[]string{".cpio.gz", ".cpgz"}, FormatCpioGz},
	{[]string{".cpio"}, FormatCpio},
	{[]string{".pax.bz2", ".pbz2"}, FormatPaxBz2},
	{[]string{".pax.gz", ".pgz"}, FormatPaxGz},
	{[]string{".pax"}, FormatPax},
	{[]string{".tar.bz2", ".tbz2"}, FormatTarBz2},
	{[]string{".tar.gz", ".tgz"}, FormatTarGz},
	{[]string{".tar"}, FormatTar},
	{[]string{".xar"}, FormatXar},
	{[]string{".zip"}, FormatZip},
}

// DetectFormat chooses a Format for sourcePath by case-sensitive suffix
// match, or by statting the path if it is a directory. An unrecognized
// suffix is a hard error, matching the original tool's factory failure.
func DetectFormat(sourcePath string) (Format, error) {
	if fi, err := os.Stat(sourcePath); err == nil && fi.IsDir() {
		return FormatDirectory, nil
	}
	for _, entry := range suffixTable {
		for _, suf := range entry.suffixes {
			if strings.HasSuffix(sourcePath, suf) {
				return entry.format, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("archive: unrecognized suffix on %q", sourcePath)
}

func (f Format) String() string {
	switch f {
	case FormatTar:
		return "tar"
	case FormatTarGz:
		return "tar.gz"
	case FormatTarBz2:
		return "tar.bz2"
	case FormatXar:
		return "xar"
	case FormatZip:
		return "zip"
	case FormatCpio:
		return "cpio"
	case FormatCpioGz:
		return "cpio.gz"
	case FormatCpioBz2:
		return "cpio.bz2"
	case FormatPax:
		return "pax"
	case FormatPaxGz:
		return "pax.gz"
	case FormatPaxBz2:
		return "pax.bz2"
	case FormatDirectory:
		return "directory"
	default:
		return "unknown"
	}
}
