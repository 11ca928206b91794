package domain

import "errors"

// ErrSourceUnavailable indicates the media library cannot be read
// (missing permission, root directory gone)
var ErrSourceUnavailable = errors.New("media source is unavailable")
