// Package source fetches race listings from the upstream providers and turns them into
// canonical events.
//
// The set of adapters is closed: RunSignup, ITRA, UltraSignup, Ahotu and Triathlon. Each one
// implements Source and goes through the normalize package for every field, so nothing past
// this package knows what a provider's payload looked like. Adapters that have a curated
// fallback list (RunSignup, ITRA, Triathlon) append it when live results are thin and mark
// those records as fallback.
//
// Runner executes sources sequentially and converts errors and panics into a Result. Requests
// go through a shared Fetcher with a fixed timeout and request pacing; nothing is retried.
package source
