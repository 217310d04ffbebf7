package copier

import (
	"errors"
	"fmt"

	"github.com/arloliu/readpack/errs"
	"github.com/arloliu/readpack/internal/pool"
)

const (
	resolveInitialSize = pool.StringBufferDefaultSize
	resolveCeiling     = 64 * 1024
)

// LookupFunc copies a dictionary string into buf and returns its length.
// When buf is too small it returns an error wrapping errs.ErrStringNotLongEnough;
// the returned length is then ignored.
type LookupFunc func(buf []byte) (int, error)

// Resolve calls lookup with a pooled buffer, doubling the buffer while lookup
// reports it too small. Buffers never grow past 64KiB; a string that still
// does not fit yields errs.ErrResolveCeilingExceeded.
func Resolve(lookup LookupFunc) (string, error) {
	buf := pool.GetStringBuffer()
	defer pool.PutStringBuffer(buf)

	for size := resolveInitialSize; ; size *= 2 {
		buf.Resize(size)

		n, err := lookup(buf.B)
		if err == nil {
			if n < 0 || n > size {
				return "", fmt.Errorf("%w: lookup returned length %d for a %d byte buffer", errs.ErrCorruptPayload, n, size)
			}

			return string(buf.B[:n]), nil
		}

		if !errors.Is(err, errs.ErrStringNotLongEnough) {
			return "", fmt.Errorf("resolve string: %w", err)
		}

		if size >= resolveCeiling {
			return "", fmt.Errorf("%w: string does not fit in %d bytes", errs.ErrResolveCeilingExceeded, size)
		}
	}
}
