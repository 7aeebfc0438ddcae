// Package ws fans backend events out to connected GUI clients over a
// single WebSocket stream.
//
// The hub holds one registry of connected clients, each with a buffered
// send channel drained by a write pump. Broadcasting marshals an event
// once and enqueues the bytes per client without ever blocking the
// emitter: a client whose buffer is full misses the event and is counted
// as a drop. The hub implements the terminal multiplexer's output sink
// and the task store's change notifier, so neither package needs to know
// transport details.
package ws
