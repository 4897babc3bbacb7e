package httpds

import (
	"net/url"
	"path"
	"strconv"

	"github.com/zeebo/xxh3"
)

// ArchiveFilename derives a local filename for a downloaded archive from its
// URL: the last path element when one exists ("MovieSummaries.tar.gz"), or a
// stable hash of the whole URL when the path carries no usable name. The
// result never contains a path separator.
func ArchiveFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return hashName(rawURL)
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return hashName(rawURL)
	}
	return base
}

func hashName(s string) string {
	return strconv.FormatUint(xxh3.HashString(s), 16) + ".download"
}
