// Package store holds the client-side state: the session, the menu and the
// bookings. Each store is an immutable value with a pure Reduce method; the
// runners in this package perform the HTTP requests and turn their outcome
// into the settled action to reduce.
//
// Every asynchronous operation goes through the same lifecycle. The caller
// takes a Meta from Begin, reduces the pending action, performs the request
// and reduces the settled action built from the same Meta.
package store

import (
	"maps"
	"strings"
)

// Phase is the stage of an asynchronous operation.
type Phase uint8

const (
	Pending Phase = iota + 1
	Fulfilled
	Rejected
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Op names an operation kind, e.g. "session/login".
type Op string

// Meta identifies one run of an operation and carries its outcome.
type Meta struct {
	Op    Op
	Phase Phase
	// Fence groups runs that overwrite each other. Gen orders runs within a
	// fence; zero means the run is never superseded.
	Fence string
	Gen   uint64
	Epoch uint64

	Error   string
	Message string
}

// Fulfill returns the settled form of m for a successful request.
func (m Meta) Fulfill(message string) Meta {
	m.Phase = Fulfilled
	m.Message = message
	m.Error = ""
	return m
}

// Reject returns the settled form of m for a failed request.
func (m Meta) Reject(err string) Meta {
	m.Phase = Rejected
	m.Error = err
	m.Message = ""
	return m
}

// Lifecycle is embedded in every store. IsLoading is true while any
// operation of the store is in flight.
type Lifecycle struct {
	IsLoading bool
	Error     string
	Message   string

	epoch    uint64
	inflight map[Op]int
	gens     map[string]uint64
}

// Begin starts a run of op. Runs sharing op and keys are fenced: once a newer
// run has started, the responses of older ones are discarded. The pending
// action must be reduced before Begin is called again for the same fence.
func (l Lifecycle) Begin(op Op, keys ...string) Meta {
	fence := string(op)
	if len(keys) > 0 {
		fence += "/" + strings.Join(keys, "/")
	}
	return l.beginIn(op, fence)
}

// beginIn starts a run of op in fence. Different operations may share a fence.
func (l Lifecycle) beginIn(op Op, fence string) Meta {
	return Meta{Op: op, Phase: Pending, Fence: fence, Gen: l.gens[fence] + 1, Epoch: l.epoch}
}

// BeginUnfenced starts a run whose response always applies. Creates use it:
// every response is a distinct new entity.
func (l Lifecycle) BeginUnfenced(op Op) Meta {
	return Meta{Op: op, Phase: Pending, Epoch: l.epoch}
}

// InFlight reports whether a run of op has not settled yet.
func (l Lifecycle) InFlight(op Op) bool {
	return l.inflight[op] > 0
}

// apply advances the bookkeeping for m. It reports whether m is current,
// i.e. whether its payload should be applied to the store.
func (l Lifecycle) apply(m Meta) (Lifecycle, bool) {
	if m.Epoch != l.epoch {
		return l, false
	}
	inflight := maps.Clone(l.inflight)
	if inflight == nil {
		inflight = map[Op]int{}
	}
	gens := maps.Clone(l.gens)
	if gens == nil {
		gens = map[string]uint64{}
	}

	current := true
	switch m.Phase {
	case Pending:
		inflight[m.Op]++
		if m.Gen > gens[m.Fence] {
			gens[m.Fence] = m.Gen
		}
		l.Error, l.Message = "", ""
	case Fulfilled, Rejected:
		if inflight[m.Op] > 1 {
			inflight[m.Op]--
		} else {
			delete(inflight, m.Op)
		}
		current = m.Gen == 0 || m.Gen == gens[m.Fence]
		if current && m.Phase == Fulfilled {
			l.Message, l.Error = m.Message, ""
		}
		if current && m.Phase == Rejected {
			l.Error, l.Message = m.Error, ""
		}
	default:
		return l, false
	}

	l.inflight, l.gens = inflight, gens
	l.IsLoading = len(inflight) > 0
	return l, current
}

// reset returns an empty lifecycle in a new epoch, so responses to requests
// issued before the reset are ignored.
func (l Lifecycle) reset() Lifecycle {
	return Lifecycle{epoch: l.epoch + 1}
}
