package dialect

import (
	"fmt"
	"hash/crc32"
	"strings"
)

// Digest returns a short deterministic hex digest of the given parts. It is
// used to keep generated constraint and index names unique and stable.
func Digest(parts ...string) string {
	return fmt.Sprintf("%x", crc32.ChecksumIEEE([]byte(strings.Join(parts, "\x00"))))
}

// TruncateName shortens an identifier to length characters, replacing the
// tail with a digest of the full name so that truncated names stay unique.
func TruncateName(name string, length int) string {
	if length <= 0 || len(name) <= length {
		return name
	}
	h := Digest(name)[:4]
	return name[:length-len(h)] + h
}

// ExpandType fills a DataType template with field parameters.
func ExpandType(template string, params map[string]string) string {
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
