package config

import "time"

// Path config
const (
	LogPath    = "./logs/"
	ConfigPath = "./"
)

// Network config
const (
	DefaultRetryTimes    = 3
	DefaultRetryInterval = 50 * time.Millisecond
	DefaultTimeout       = 20 * time.Second
)

// Fetch config
const (
	// Number of transactions fetched on each side of the target when
	// building an analysis window from a full block.
	NEARBY_WINDOW_RADIUS = 4

	// Max transactions in a relayer bundle: the tip tx plus four neighbours.
	BUNDLE_MAX_TXS = 5
)

// Detection config
const (
	// Candidate front/back transactions considered around the target.
	SANDWICH_CANDIDATE_SPAN = 2

	// Canonical length of a base-58 encoded Solana address.
	CANONICAL_ADDRESS_LEN = 44
)
