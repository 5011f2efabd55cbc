// Package resend wraps the Resend transactional email API used for report
// and failure delivery.
package resend
