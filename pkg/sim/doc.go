// Package sim provides a simulated SMC controller for demos and tests.
//
// The simulator implements smc.Transport over an in-memory key table, so
// everything above the transport seam (registry construction, reads, the
// remote proxy, the export daemon) runs unchanged against it. Keys are
// seeded from a platform description tree, from the well-known key table,
// or from a YAML key file, and can be mutated at runtime.
//
// # Seeding
//
//	ctrl := sim.NewController(sim.Config{Drift: 0.02})
//	ctrl.SeedFromTree(root)
//
// Seeded values are plausible rather than faithful: a seeded temperature
// key reads around 45 degrees, a fan around 1200 rpm. With a non-zero
// Drift the values wander inside a band around their seed on every read,
// which keeps watch-style consumers visibly alive.
package sim
