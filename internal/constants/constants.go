// Package constants centralizes tunable defaults for the aio layer.
package constants

// Default configuration constants
const (
	// DefaultQueueDepth is the queue depth used when a context is created
	// with Config.MaxEvents left zero
	DefaultQueueDepth = 128

	// MaxQueueDepth caps a single context's depth; a request above this is
	// a configuration mistake, not headroom (fs.aio-max-nr is shared by
	// the whole system)
	MaxQueueDepth = 65536

	// DefaultAlignment is the transfer alignment for direct I/O against
	// common block devices (logical sector size)
	DefaultAlignment = 512

	// DefaultHarvestBatch is a reasonable events-slice length for harvest
	// loops
	DefaultHarvestBatch = 256
)
