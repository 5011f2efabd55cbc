// Package services holds the error taxonomy and context helpers shared by the
// capability adapters and pipeline stages.
//
// Every stage failure is expressed as a StageError tagged with one of the
// sentinel markers (configuration, not found, upstream, bad response,
// validation). The pipeline engine persists StageError messages to the job
// record and the error handler mails them verbatim, so messages should read
// as user-facing text.
package services
