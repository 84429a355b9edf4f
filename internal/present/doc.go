// Package present renders run results for people and machines: a breakdown
// table, a text histogram of outcome counts, run listings and a JSON
// summary.
package present
