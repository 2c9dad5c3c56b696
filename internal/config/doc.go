// Package config loads the immutable lookup tables and environment settings used by a run.
//
// Tables (country codes, noise keywords, generic registration URL rules) ship embedded in the
// binary as YAML and can be replaced with a user-provided file. They are loaded once at startup
// and injected into the normalizer.
package config
