package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// MDNSAdvertiser implements the Advertiser interface using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu sync.Mutex

	// Active services keyed by instance id.
	proxyServers  map[string]*zeroconf.Server
	exportServers map[string]*zeroconf.Server
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) (*MDNSAdvertiser, error) {
	return &MDNSAdvertiser{
		config:        config,
		proxyServers:  make(map[string]*zeroconf.Server),
		exportServers: make(map[string]*zeroconf.Server),
	}, nil
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// serverOptions returns zeroconf server options based on config.
func (a *MDNSAdvertiser) serverOptions() []zeroconf.ServerOption {
	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}
	return opts
}

// register announces one service instance, replacing any active
// registration under the same id. The caller holds a.mu.
func (a *MDNSAdvertiser) register(servers map[string]*zeroconf.Server, id, instanceName, serviceType string, port int, txt TXTRecordMap) error {
	if server, exists := servers[id]; exists {
		server.Shutdown()
		delete(servers, id)
	}

	server, err := zeroconf.Register(
		instanceName,
		serviceType,
		Domain,
		port,
		TXTRecordsToStrings(txt),
		a.getInterfaces(),
		a.serverOptions()...,
	)
	if err != nil {
		return fmt.Errorf("failed to register %s service: %w", serviceType, err)
	}

	servers[id] = server
	return nil
}

// AdvertiseProxy starts advertising a remote proxy instance.
func (a *MDNSAdvertiser) AdvertiseProxy(ctx context.Context, info *ProxyInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	port := int(info.Port)
	if port == 0 {
		port = DefaultProxyPort
	}

	name := ProxyInstanceName(info.Platform, info.InstanceID)
	return a.register(a.proxyServers, info.InstanceID, name, ServiceTypeProxy, port, EncodeProxyTXT(info))
}

// UpdateProxy updates TXT records for an advertised proxy.
func (a *MDNSAdvertiser) UpdateProxy(instanceID string, info *ProxyInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.proxyServers[instanceID]
	if !exists {
		return ErrNotFound
	}

	server.SetText(TXTRecordsToStrings(EncodeProxyTXT(info)))
	return nil
}

// StopProxy stops advertising a proxy instance.
func (a *MDNSAdvertiser) StopProxy(instanceID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.proxyServers[instanceID]
	if !exists {
		return ErrNotFound
	}

	server.Shutdown()
	delete(a.proxyServers, instanceID)
	return nil
}

// AdvertiseExport starts advertising an export daemon instance.
func (a *MDNSAdvertiser) AdvertiseExport(ctx context.Context, info *ExportInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	port := int(info.Port)
	if port == 0 {
		port = DefaultExportPort
	}

	name := ExportInstanceName(info.Platform, info.InstanceID)
	return a.register(a.exportServers, info.InstanceID, name, ServiceTypeExport, port, EncodeExportTXT(info))
}

// UpdateExport updates TXT records for an advertised export daemon.
func (a *MDNSAdvertiser) UpdateExport(instanceID string, info *ExportInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.exportServers[instanceID]
	if !exists {
		return ErrNotFound
	}

	server.SetText(TXTRecordsToStrings(EncodeExportTXT(info)))
	return nil
}

// StopExport stops advertising an export daemon instance.
func (a *MDNSAdvertiser) StopExport(instanceID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.exportServers[instanceID]
	if !exists {
		return ErrNotFound
	}

	server.Shutdown()
	delete(a.exportServers, instanceID)
	return nil
}

// StopAll stops all advertisements.
func (a *MDNSAdvertiser) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, server := range a.proxyServers {
		server.Shutdown()
		delete(a.proxyServers, id)
	}
	for id, server := range a.exportServers {
		server.Shutdown()
		delete(a.exportServers, id)
	}
}

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig

	done     chan struct{}
	stopOnce sync.Once
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	return &MDNSBrowser{
		config: config,
		done:   make(chan struct{}),
	}, nil
}

// browseContext ties a browse operation to both the caller's context
// and the browser's own lifetime.
func (b *MDNSBrowser) browseContext(ctx context.Context) context.Context {
	bctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-b.done:
		case <-bctx.Done():
		}
		cancel()
	}()
	return bctx
}

// BrowseProxies searches for remote proxy servers.
// Services are aggregated by instance name: addresses from multiple
// interfaces are combined into a single entry, and a service is dropped
// once all of its addresses have been withdrawn.
func (b *MDNSBrowser) BrowseProxies(ctx context.Context) (<-chan *ProxyService, error) {
	ctx = b.browseContext(ctx)

	out := make(chan *ProxyService)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	go func() {
		defer close(out)

		// Track services by instance name, aggregating addresses.
		services := make(map[string]*ProxyService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToProxy(entry)
				if svc == nil {
					continue
				}

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				} else {
					services[svc.InstanceName] = svc
					select {
					case out <- svc:
					case <-ctx.Done():
						return
					}
				}

			case entry, ok := <-removed:
				if !ok {
					removed = nil
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entryAddresses(entry))
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// Start browsing in background.
	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeProxy, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// BrowseExports searches for export daemons. Aggregation follows
// BrowseProxies.
func (b *MDNSBrowser) BrowseExports(ctx context.Context) (<-chan *ExportService, error) {
	ctx = b.browseContext(ctx)

	out := make(chan *ExportService)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	go func() {
		defer close(out)

		services := make(map[string]*ExportService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToExport(entry)
				if svc == nil {
					continue
				}

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				} else {
					services[svc.InstanceName] = svc
					select {
					case out <- svc:
					case <-ctx.Done():
						return
					}
				}

			case entry, ok := <-removed:
				if !ok {
					removed = nil
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entryAddresses(entry))
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// Start browsing in background.
	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeExport, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindProxy searches for a specific proxy instance. When the caller's
// context has no deadline, the configured BrowseTimeout applies.
func (b *MDNSBrowser) FindProxy(ctx context.Context, instanceID string) (*ProxyService, error) {
	if _, ok := ctx.Deadline(); !ok && b.config.BrowseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.BrowseTimeout)
		defer cancel()
	}

	results, err := b.BrowseProxies(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case svc, ok := <-results:
			if !ok {
				return nil, ErrNotFound
			}
			if instanceID == "" || svc.InstanceID == instanceID || ShortInstanceID(svc.InstanceID) == instanceID {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Stop stops all active browsing operations.
func (b *MDNSBrowser) Stop() {
	b.stopOnce.Do(func() { close(b.done) })
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

// entryToProxy converts a zeroconf entry to a ProxyService. Entries
// whose TXT records do not decode are dropped.
func entryToProxy(entry *zeroconf.ServiceEntry) *ProxyService {
	info, err := DecodeProxyTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	return &ProxyService{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    entryAddresses(entry),
		InstanceID:   info.InstanceID,
		Platform:     info.Platform,
		Protocol:     info.Protocol,
	}
}

// entryToExport converts a zeroconf entry to an ExportService. Entries
// whose TXT records do not decode are dropped.
func entryToExport(entry *zeroconf.ServiceEntry) *ExportService {
	info, err := DecodeExportTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	return &ExportService{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    entryAddresses(entry),
		InstanceID:   info.InstanceID,
		Platform:     info.Platform,
		APIVersion:   info.APIVersion,
		Sensors:      info.Sensors,
		Fans:         info.Fans,
	}
}

// entryAddresses collects the resolved addresses of a zeroconf entry.
func entryAddresses(entry *zeroconf.ServiceEntry) []string {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return addrs
}

// mergeAddresses adds new addresses to the existing list, skipping
// duplicates.
func mergeAddresses(existing, more []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range more {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses filters the withdrawn addresses out of the list.
func removeAddresses(addresses, gone []string) []string {
	toRemove := make(map[string]bool, len(gone))
	for _, addr := range gone {
		toRemove[addr] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Ensure MDNSAdvertiser implements Advertiser.
var _ Advertiser = (*MDNSAdvertiser)(nil)

// Ensure MDNSBrowser implements Browser.
var _ Browser = (*MDNSBrowser)(nil)
