// Package report implements the final pipeline stage that emails the
// improved-titles report to the submitter.
package report
