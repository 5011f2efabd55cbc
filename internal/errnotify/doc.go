// Package errnotify consumes stage failure events and emails the submitter.
package errnotify
