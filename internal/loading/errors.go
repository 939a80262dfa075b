package loading

import "errors"

// ErrCanceled is returned by LoadLevel when the player canceled after a
// failure. It wraps the load error.
var ErrCanceled = errors.New("level load canceled")
