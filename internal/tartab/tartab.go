// Package tartab implements a minimal POSIX tar member reader.
//
// Like internal/inflate, this exists because the tzdb compiler treats tar
// member lookup as core implementation surface: it is ported from the
// original C reference's utz_get_tar_item, not from archive/tar. Only
// member lookup by exact name is supported; no extraction of the whole
// archive, no long-name (GNU/PAX) extensions, and no checksum
// verification.
package tartab

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	blockSize  = 512
	nameOffset = 0
	nameSize   = 100
	sizeOffset = 124
	sizeSize   = 12
)

// ErrCorrupt indicates the tar structure was malformed in a way that
// prevents walking its headers.
type ErrCorrupt struct {
	Reason string
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("tartab: corrupt archive: %s", e.Reason)
}

// Find returns the content of the tar member named name, or nil if no
// such member exists. data must be the inflated (uncompressed) tar byte
// stream.
func Find(data []byte, name string) ([]byte, error) {
	pos := 0
	for pos+blockSize <= len(data) {
		header := data[pos : pos+blockSize]

		if isZeroBlock(header) {
			// Two consecutive zero blocks mark the end of the archive;
			// zero blocks are skipped and the walk continues until the
			// data runs out.
			pos += blockSize
			continue
		}

		memberName := cString(header[nameOffset : nameOffset+nameSize])
		if memberName == "" {
			break
		}

		size, err := parseOctalSize(header[sizeOffset : sizeOffset+sizeSize])
		if err != nil {
			return nil, err
		}

		pos += blockSize
		if memberName == name {
			if pos+size > len(data) {
				return nil, &ErrCorrupt{Reason: fmt.Sprintf("member %q overruns archive", name)}
			}
			return data[pos : pos+size], nil
		}

		blocks := (size + blockSize - 1) / blockSize
		pos += blocks * blockSize
	}
	return nil, nil
}

func isZeroBlock(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

func cString(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// parseOctalSize parses a tar header's NUL- or space-terminated octal
// size field.
func parseOctalSize(b []byte) (int, error) {
	s := strings.TrimRight(cString(b), " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 8, 64)
	if err != nil {
		return 0, &ErrCorrupt{Reason: fmt.Sprintf("invalid octal size field %q: %v", s, err)}
	}
	return int(n), nil
}
