package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Service type constants for mDNS.
const (
	// ServiceTypeProxy is the service type for remote SMC proxies.
	ServiceTypeProxy = "_macsmc._tcp"

	// ServiceTypeExport is the service type for HTTP export daemons.
	ServiceTypeExport = "_macsmc-export._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultProxyPort is the default remote proxy port.
	DefaultProxyPort = 21325

	// DefaultExportPort is the default export daemon port.
	DefaultExportPort = 21326
)

// TXT record key constants.
const (
	// Shared TXT keys
	TXTKeyInstanceID = "id"       // Instance UUID
	TXTKeyPlatform   = "platform" // Platform name from the description tree

	// Proxy TXT keys
	TXTKeyProtocol = "pv" // Remote protocol version

	// Export TXT keys
	TXTKeyAPIVersion = "api"     // Export API version (e.g. "v1")
	TXTKeySensors    = "sensors" // Sensor count
	TXTKeyFans       = "fans"    // Fan count
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second

	// DefaultTTL is the default DNS record TTL.
	DefaultTTL = 120 * time.Second
)

// MaxInstanceNameLen is the DNS label limit.
const MaxInstanceNameLen = 63

// Discovery errors.
var (
	ErrInvalidTXTRecord = errors.New("invalid TXT record format")
	ErrMissingRequired  = errors.New("missing required field")
	ErrNotFound         = errors.New("service not found")
)

// ProxyInfo contains information for advertising a remote proxy.
type ProxyInfo struct {
	// InstanceID is the UUID identifying this proxy instance.
	InstanceID string

	// Platform is the platform name from the description tree root
	// (e.g. "t6001"). May be empty for simulated transports.
	Platform string

	// Protocol is the remote protocol version the proxy speaks.
	Protocol uint32

	// Port is the service port. Zero means DefaultProxyPort.
	Port uint16
}

// Validate checks that the info is complete enough to advertise.
func (p *ProxyInfo) Validate() error {
	if p.InstanceID == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyInstanceID)
	}
	if _, err := uuid.Parse(p.InstanceID); err != nil {
		return fmt.Errorf("%w: instance id is not a UUID", ErrInvalidTXTRecord)
	}
	if p.Protocol == 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyProtocol)
	}
	return nil
}

// ProxyService represents a remote proxy found via mDNS.
type ProxyService struct {
	// InstanceName is the mDNS instance name (e.g. "macsmc-t6001-9f3a06b2").
	InstanceName string

	// Host is the hostname.
	Host string

	// Port is the service port.
	Port uint16

	// Addresses contains resolved IP addresses.
	Addresses []string

	// InstanceID is the instance UUID (from TXT "id").
	InstanceID string

	// Platform is the platform name (from TXT "platform").
	Platform string

	// Protocol is the remote protocol version (from TXT "pv").
	Protocol uint32
}

// Addr returns a dialable "host:port" for the proxy, preferring a
// resolved address over the hostname.
func (s *ProxyService) Addr() string {
	return serviceAddr(s.Host, s.Addresses, s.Port)
}

// ExportInfo contains information for advertising an export daemon.
type ExportInfo struct {
	// InstanceID is the UUID identifying this daemon instance.
	InstanceID string

	// Platform is the platform name from the description tree root.
	Platform string

	// APIVersion is the HTTP API version (e.g. "v1").
	APIVersion string

	// Sensors is the number of sensors in the served registry.
	Sensors uint16

	// Fans is the number of fans in the served registry.
	Fans uint8

	// Port is the service port. Zero means DefaultExportPort.
	Port uint16
}

// Validate checks that the info is complete enough to advertise.
func (e *ExportInfo) Validate() error {
	if e.InstanceID == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyInstanceID)
	}
	if _, err := uuid.Parse(e.InstanceID); err != nil {
		return fmt.Errorf("%w: instance id is not a UUID", ErrInvalidTXTRecord)
	}
	if e.APIVersion == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyAPIVersion)
	}
	return nil
}

// ExportService represents an export daemon found via mDNS.
type ExportService struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the hostname.
	Host string

	// Port is the service port.
	Port uint16

	// Addresses contains resolved IP addresses.
	Addresses []string

	// InstanceID is the instance UUID (from TXT "id").
	InstanceID string

	// Platform is the platform name (from TXT "platform").
	Platform string

	// APIVersion is the HTTP API version (from TXT "api").
	APIVersion string

	// Sensors is the sensor count (from TXT "sensors").
	Sensors uint16

	// Fans is the fan count (from TXT "fans").
	Fans uint8
}

// Addr returns a dialable "host:port" for the daemon, preferring a
// resolved address over the hostname.
func (s *ExportService) Addr() string {
	return serviceAddr(s.Host, s.Addresses, s.Port)
}

func serviceAddr(host string, addrs []string, port uint16) string {
	if len(addrs) > 0 {
		host = addrs[0]
	}
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}
