// Package sensors builds and serves the SMC sensor registry.
//
// The registry is discovered at runtime from a hardware description tree:
// each platform describes its telemetry keys under group nodes named
// temperature-keys, voltage-keys, current-keys, power-keys and fan-keys.
// A Builder resolves every candidate key's wire type through an
// smc.Transport and assembles an immutable Registry. After Build the
// registry never changes, which is what makes the read path safe for
// arbitrarily many concurrent callers without locking.
//
// # Building
//
//	builder := sensors.NewBuilder(transport, logger)
//	registry, err := builder.Build(root)
//	if err != nil {
//	    // no usable telemetry keys on this platform
//	}
//	for _, issue := range builder.Issues() {
//	    // keys or groups that were skipped
//	}
//
// Resolution failures never abort a build: a bad key drops that channel, a
// present-but-unresolvable group records ErrGroupEmpty, and only a registry
// with no channels at all fails with ErrRegistryEmpty.
//
// # Reading
//
// Channels are numbered by their order in the description tree. Read
// returns values at each group's fixed scale: millidegrees Celsius,
// millivolts, milliamps, microwatts, RPM. Every read is one synchronous
// transport round trip; the package does no caching, retrying or polling.
//
//	value, err := registry.Read(sensors.GroupTemperature, 0)
//	rpm, err := registry.ReadFan(0, sensors.FanInput)
//
// Fan min/max/target are optional per platform. The FanDescriptor
// capability bitmask records which fields resolved at build time and must
// be consulted before reading them; ReadFan does this and returns
// ErrCapabilityUnset for fields the platform does not expose.
package sensors
