// Package quality computes aggregate statistics over a catalog and enforces the quality gate.
//
// Snapshot is embedded in every catalog artifact. Validate is run separately against a written
// artifact: it recomputes its own metrics from the events and never trusts the stored snapshot.
package quality
