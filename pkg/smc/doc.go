// Package smc defines the core vocabulary for talking to an Apple System
// Management Controller: four-character keys, wire type codes, key metadata,
// and the Transport interface implemented by concrete controller backends.
//
// # Keys
//
// Every value the controller exposes is addressed by a key: a four-character
// identifier such as "TC0P" or "F0Ac", carried on the wire as an opaque
// 32-bit tag with the first character in the high byte. Keys are unique
// within a controller but their meaning is platform-specific; the set of
// keys present on a given machine is only known at runtime.
//
// # Type codes
//
// Each key declares its encoding with a type code, a FourCC of the same
// format as the key itself. Codes of interest here are "flt " (a 32-bit
// IEEE-754-like layout, note the trailing space) and "ioft" (48.16 fixed
// point). Other codes exist and are carried opaquely; reading a key of an
// unhandled type is an error at read time, never a silent default.
//
// # Transports
//
// Transport is the seam between the registry core and a real controller.
// Implementations in this module are sim.Controller (an in-memory simulated
// controller) and remote.Client (a controller proxied over TCP). Transport
// calls are synchronous; cancellation and timeouts, where needed, are the
// implementation's concern.
package smc
