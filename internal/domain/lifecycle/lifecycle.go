// Package lifecycle holds timing constants shared by fx start/stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds start and stop hooks such as DB pings and HTTP shutdown.
const DefaultTimeout = 10 * time.Second
