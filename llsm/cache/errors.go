package cache

import "errors"

var (
	// ErrMagic reports a file that does not start with the LLSM2 magic.
	ErrMagic = errors.New("cache: bad magic")
	// ErrVersion reports an LLSM2 file of an unsupported format version.
	ErrVersion = errors.New("cache: unsupported format version")
	// ErrCorrupt reports truncated or structurally invalid data.
	ErrCorrupt = errors.New("cache: corrupt data")
)
