// Package examples is an embedded jsonl collection of real signed events
// used to test the event codec against signatures made by other clients.
package examples

import (
	_ "embed"
)

//go:embed out.jsonl
var Cache []byte
