// Package scheduler runs the optional cron-driven daily submission for a
// configured channel and recipient.
package scheduler
