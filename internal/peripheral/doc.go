// Package peripheral owns the CORC command channel runtime.
//
// Ownership boundary:
// - per-link connection registry
//
// - bounded inbound frame queue with wake signalling
//
// - radio event dispatch (stack callback side)
//
// - command pipeline (cooperative consumer side)
//
// Execution contexts:
// - the event dispatcher runs on the radio stack's delivery goroutine. Every
//   operation it performs is a single short critical section; it never
//   blocks, never calls back into the radio, never lets an error escape.
//
// - the command pipeline is the only consumer. It drains the queue fully on
//   each wake, so the single-slot wake signal cannot lose work.
package peripheral
