// Package discovery implements mDNS/DNS-SD discovery for SMC network
// services.
//
// Two service types are published:
//
// # Remote Proxy Discovery (_macsmc._tcp)
//
// Machines serving their SMC transport over TCP (pkg/remote) advertise
// this service. Instance name format: macsmc-<platform>-<short id>.
// TXT records include: id (instance UUID), pv (remote protocol version),
// and optionally platform.
//
// # Export Daemon Discovery (_macsmc-export._tcp)
//
// Export daemons advertise their HTTP API under this service.
// Instance name format: macsmc-export-<platform>-<short id>.
// TXT records include: id (instance UUID), api (API version), and
// optionally platform, sensors (sensor count), fans (fan count).
//
// Advertisers register one mDNS server per instance id; re-advertising
// an active id replaces the earlier registration. Browsing aggregates
// answers from multiple interfaces by instance name, so one service
// shows up once with all of its addresses.
package discovery
