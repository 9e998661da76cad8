package ui

import "sync/atomic"

// Guard serialises an operation started from a button: Enter succeeds for
// exactly one caller until Leave.
type Guard struct {
	busy atomic.Bool
}

// Enter reports whether the caller now owns the operation.
func (g *Guard) Enter() bool { return g.busy.CompareAndSwap(false, true) }

func (g *Guard) Leave() { g.busy.Store(false) }

func (g *Guard) Busy() bool { return g.busy.Load() }
