// Package youtube wraps the YouTube Data API v3 search endpoint for channel
// resolution and recent-video listing.
package youtube
