// Package constants defines timeout values used throughout the application.
package constants

import "time"

const (
	// Timeout for a single upstream API call
	UpstreamTimeout = 15 * time.Second

	// Timeout for a full identity resolution (detail, links, fallbacks, seasons)
	ResolveTimeout = 30 * time.Second

	// Sessions older than this are purged by the cleanup service
	SessionMaxAge = 30 * 24 * time.Hour

	// Cron schedule for the periodic cleanup service
	CleanupSchedule = "@hourly"
)
