package discovery

import (
	"context"
	"time"
)

// Advertiser provides mDNS service advertising capabilities.
type Advertiser interface {
	// AdvertiseProxy starts advertising a remote proxy instance.
	// Advertising an instance id that is already active replaces the
	// previous registration.
	AdvertiseProxy(ctx context.Context, info *ProxyInfo) error

	// UpdateProxy updates TXT records for an advertised proxy.
	UpdateProxy(instanceID string, info *ProxyInfo) error

	// StopProxy stops advertising a proxy instance.
	StopProxy(instanceID string) error

	// AdvertiseExport starts advertising an export daemon instance.
	AdvertiseExport(ctx context.Context, info *ExportInfo) error

	// UpdateExport updates TXT records for an advertised export daemon.
	UpdateExport(instanceID string, info *ExportInfo) error

	// StopExport stops advertising an export daemon instance.
	StopExport(instanceID string) error

	// StopAll stops all advertisements.
	StopAll()
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Interface: "",
		TTL:       DefaultTTL,
	}
}
