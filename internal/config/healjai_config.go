package config

const (
	// Input limits
	MaxNameLength    = 64
	MaxMessageLength = 2000

	// Poll contract: clients poll match status and messages at this
	// interval; the server itself never blocks waiting for a match.
	SuggestedPollIntervalSeconds = 2
)
