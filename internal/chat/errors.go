package chat

import "errors"

// ErrNoThread is returned when sending without a loaded thread.
var ErrNoThread = errors.New("chat: no thread selected")
