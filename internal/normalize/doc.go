// Package normalize turns raw strings scraped from race listings into canonical event fields.
//
// Most functions are pure: dates, distance and discipline inference, price, registration status
// and URL sanitation. Table-driven checks (country codes, noise keywords, generic registration
// links) are methods on a Normalizer built once from config.Tables. Every source adapter goes
// through this package, so nothing downstream branches on source-specific shapes.
package normalize
