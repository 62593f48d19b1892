// Package ble owns the boundary to the radio host stack.
//
// Ownership boundary:
// - Radio and Advertiser capability interfaces
//
// - link event model delivered by the stack callback
//
// - 128-bit UUID value type
//
// - advertising payload construction
//
// The event callback registered through Radio.SetEventHandler runs in the
// stack's delivery context. Implementations on the consuming side must
// return in bounded time and must not call back into the Radio or the
// Advertiser from inside the handler.
package ble
