package discovery

import (
	"context"
	"time"
)

// Browser provides mDNS service browsing capabilities.
type Browser interface {
	// BrowseProxies searches for remote proxy servers. Discovered
	// services are delivered on the returned channel, which is closed
	// when the context is cancelled or the browser is stopped.
	BrowseProxies(ctx context.Context) (<-chan *ProxyService, error)

	// BrowseExports searches for export daemons.
	BrowseExports(ctx context.Context) (<-chan *ExportService, error)

	// FindProxy searches for a proxy instance by instance id. Both the
	// full UUID and its leading hex chunk (the form shown in instance
	// names) match; an empty id matches the first proxy discovered.
	// Returns when found or when the context ends.
	FindProxy(ctx context.Context, instanceID string) (*ProxyService, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout bounds FindProxy when the caller's context has no
	// deadline of its own. Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}

// FilterFunc filters proxy browse results.
type FilterFunc func(*ProxyService) bool

// FilterByPlatform returns a filter that matches proxies for the given
// platform.
func FilterByPlatform(platform string) FilterFunc {
	return func(svc *ProxyService) bool {
		return svc.Platform == platform
	}
}

// FilterProxies filters a channel of proxy services.
func FilterProxies(in <-chan *ProxyService, filter FilterFunc) <-chan *ProxyService {
	out := make(chan *ProxyService)
	go func() {
		defer close(out)
		for svc := range in {
			if filter(svc) {
				out <- svc
			}
		}
	}()
	return out
}
