package manager

import (
	"time"

	"mtbench/internal/translator"
)

// State represents lifecycle state of the manager/instances.
type State string

const (
	StateReady    State = "ready"
	StateLoading  State = "loading"
	StateError    State = "error"
	StateDraining State = "draining"
)

// Key identifies one translator instance.
type Key struct {
	ModelID string
	Task    string
	Quant   translator.QuantMode
}

func (k Key) String() string { return k.ModelID + "|" + k.Task + "|" + string(k.Quant) }

// Snapshot is a read-only projection of the manager state. State and Err
// describe the outcome of the most recent preparation.
type Snapshot struct {
	State State
	Last  *Key
	Err   string
}

// Instance is a prepared (or preparing) translator plus its admission queue.
type Instance struct {
	Key      Key
	State    State
	LastUsed time.Time
	Err      string

	tr      *translator.Translator
	prepErr error
	closed  bool          // handles released; set while holding genCh
	ready   chan struct{} // closed once preparation finished, successfully or not
	// Queueing primitives
	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots
}
