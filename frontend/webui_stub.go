//go:build !embedwebui

package webui

import "io/fs"

// Without the embedwebui build tag the binary serves the API only and
// the SPA is expected to be hosted separately.

func Enabled() bool {
	return false
}

func FS() fs.FS {
	return nil
}
