// Package protocol owns the CORC command channel wire contract.
//
// Ownership boundary:
// - request/response frame codec
//
// - opcode and result-code registries
//
// The frame layout is fixed by the deployed mobile client and must stay
// byte-exact: all multi-byte integers little-endian, request header 5 bytes,
// response header 6 bytes, single-byte payload length (no continuation).
package protocol
