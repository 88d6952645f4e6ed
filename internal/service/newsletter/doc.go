// Package newsletter implements dispatch: one execution of sending the
// newsletter to every currently-confirmed subscriber.
//
// Dispatch reads a snapshot of confirmed subscribers and drives the email
// transport once per recipient through a bounded worker pool. Per-recipient
// failures are aggregated into the report, never escalated; only a failure
// to list subscribers aborts the run.
package newsletter
