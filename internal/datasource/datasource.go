// Package datasource defines the byte-source abstraction shared by the
// corpus loaders: a Source yields a readable stream, whether it comes from
// the local filesystem or an HTTP endpoint.
package datasource

import (
	"context"
	"io"
)

// Source opens a stream of bytes. Implementations live in the file and
// httpds subpackages.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
