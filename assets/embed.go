// Package assets bundles the canonical three-board puzzle so the binary,
// the HTTP API and the tests can run without an input file.
package assets

import (
	_ "embed"
)

//go:embed sample.txt
var sample string

// Sample returns the embedded puzzle text.
func Sample() string {
	return sample
}
