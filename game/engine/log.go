package engine

import "github.com/inconshreveable/log15/v3"

// Log is the engine's diagnostic logger. Invariant violations that degrade
// to a no-op are reported here at warn level.
var Log = log15.New("module", "engine")
