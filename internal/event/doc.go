// Package event provides the canonical race event record shared by every stage of the
// catalog pipeline.
//
// The event package handles event representation, date validation and base identifier
// generation. Base ids are slugs built from the race name, an optional location hint and the
// race year; they are made globally unique later by the pipeline's id assignment pass.
package event
