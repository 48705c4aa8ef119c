// Command smcmon is an interactive monitor for SMC sensor registries.
//
// It builds a registry from a platform description tree and reads
// channels through a configurable transport: a built-in simulator, a
// remote proxy at a known address, or a proxy discovered via mDNS.
// With -serve it also exposes its own transport to remote clients.
//
// Usage:
//
//	smcmon [flags]
//
// Flags:
//
//	-profile string    Platform description tree (YAML)
//	-keys string       Extra simulator key table (YAML)
//	-remote string     Connect to a proxy at host:port
//	-instance string   Connect to a discovered proxy by instance ID
//	-drift float       Simulator value drift, e.g. 0.02 for 2%
//	-capture string    Write capture events to this file
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-interactive       Run the interactive command interface (default true)
//	-serve             Serve the transport to remote clients
//	-addr string       Proxy listen address for -serve (default ":21325")
//	-mdns              Advertise the proxy via mDNS (with -serve)
//	-discover          List proxies and export daemons, then exit
//	-list              Print the registry structure, then exit
//	-read string       Read one target (group or group/channel), then exit
//
// Examples:
//
//	# Monitor a simulated t6001 registry interactively
//	smcmon -profile profiles/t6001.yaml
//
//	# One-shot read with capture
//	smcmon -read temperature/0 -capture session.smclog
//
//	# Serve the simulator to the network and stay interactive
//	smcmon -serve -mdns
//
//	# Monitor a remote machine's sensors
//	smcmon -remote mac.local:21325 -profile profiles/t6001.yaml
//
// Interactive Commands:
//
//	info        - Show monitor status
//	list        - Show registry structure
//	read <group> [ch] - Read channels
//	fan <ch>    - Show one fan with its limit fields
//	watch <target> [interval] - Poll a target until stopped
//	keys        - Show the well-known key table
//	session     - Show capture session
//	quit        - Exit the monitor
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/chadmed/macsmc-go/cmd/smcmon/interactive"
	"github.com/chadmed/macsmc-go/pkg/devtree"
	"github.com/chadmed/macsmc-go/pkg/discovery"
	"github.com/chadmed/macsmc-go/pkg/inspect"
	smclog "github.com/chadmed/macsmc-go/pkg/log"
	"github.com/chadmed/macsmc-go/pkg/remote"
	"github.com/chadmed/macsmc-go/pkg/sensors"
	"github.com/chadmed/macsmc-go/pkg/sim"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

// Config holds the monitor configuration.
// It implements interactive.MonitorConfig.
type Config struct {
	Profile     string
	Keys        string
	Remote      string
	Instance    string
	Drift       float64
	Capture     string
	LogLevel    string
	Interactive bool
	Serve       bool
	Addr        string
	MDNS        bool
	Discover    bool
	List        bool
	Read        string

	// Resolved at startup
	SourceValue    string
	PlatformValue  string
	SessionIDValue string
}

// Source implements interactive.MonitorConfig.
func (c *Config) Source() string {
	return c.SourceValue
}

// Platform implements interactive.MonitorConfig.
func (c *Config) Platform() string {
	return c.PlatformValue
}

// CaptureFile implements interactive.MonitorConfig.
func (c *Config) CaptureFile() string {
	return c.Capture
}

// SessionID implements interactive.MonitorConfig.
func (c *Config) SessionID() string {
	return c.SessionIDValue
}

var config Config

func init() {
	flag.StringVar(&config.Profile, "profile", "", "Platform description tree (YAML)")
	flag.StringVar(&config.Keys, "keys", "", "Extra simulator key table (YAML)")
	flag.StringVar(&config.Remote, "remote", "", "Connect to a proxy at host:port")
	flag.StringVar(&config.Instance, "instance", "", "Connect to a discovered proxy by instance ID")
	flag.Float64Var(&config.Drift, "drift", 0, "Simulator value drift, e.g. 0.02 for 2%")
	flag.StringVar(&config.Capture, "capture", "", "Write capture events to this file")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&config.Interactive, "interactive", true, "Run the interactive command interface")
	flag.BoolVar(&config.Serve, "serve", false, "Serve the transport to remote clients")
	flag.StringVar(&config.Addr, "addr", fmt.Sprintf(":%d", remote.DefaultPort), "Proxy listen address for -serve")
	flag.BoolVar(&config.MDNS, "mdns", false, "Advertise the proxy via mDNS (with -serve)")
	flag.BoolVar(&config.Discover, "discover", false, "List proxies and export daemons, then exit")
	flag.BoolVar(&config.List, "list", false, "Print the registry structure, then exit")
	flag.StringVar(&config.Read, "read", "", "Read one target (group or group/channel), then exit")
}

func main() {
	flag.Parse()

	// Setup logging
	setupLogging(config.LogLevel)

	if config.Discover {
		if err := runDiscover(); err != nil {
			log.Fatalf("Discovery failed: %v", err)
		}
		return
	}

	log.Println("SMC Sensor Monitor")
	log.Println("==================")

	// Protocol capture
	var capture smclog.Logger = smclog.NoopLogger{}
	if config.Capture != "" {
		fileLogger, err := smclog.NewFileLogger(config.Capture)
		if err != nil {
			log.Fatalf("Failed to open capture file: %v", err)
		}
		defer fileLogger.Close()
		session := smclog.NewSessionLogger(fileLogger)
		config.SessionIDValue = session.SessionID()
		capture = session
		log.Printf("Capturing to %s (session %s)", config.Capture, session.SessionID())
	}

	// Description tree
	root, err := loadTree()
	if err != nil {
		log.Fatalf("Failed to load description tree: %v", err)
	}
	config.PlatformValue, _ = root.Property("platform")
	if config.PlatformValue != "" {
		log.Printf("Platform: %s", config.PlatformValue)
	}

	// Transport
	transport, cleanup, err := selectTransport(root)
	if err != nil {
		log.Fatalf("Failed to set up transport: %v", err)
	}
	defer cleanup()
	log.Printf("Source: %s", config.SourceValue)

	// Registry
	builder := sensors.NewBuilder(transport, capture)
	registry, err := builder.Build(root)
	if err != nil {
		log.Fatalf("Failed to build registry: %v", err)
	}
	for _, issue := range builder.Issues() {
		log.Printf("Registry issue: %s", issue)
	}
	log.Printf("Registry ready: %d sensors, %d fans", sensorCount(registry), registry.Len(sensors.GroupFan))

	// One-shot modes
	if config.List {
		inspector := inspect.NewInspector(registry)
		fmt.Print(inspect.NewFormatter().FormatTree(inspector.InspectRegistry()))
		return
	}
	if config.Read != "" {
		if err := runRead(registry, config.Read); err != nil {
			log.Fatalf("Read failed: %v", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Proxy serving
	var proxy *remote.Server
	var advertiser *discovery.MDNSAdvertiser
	if config.Serve {
		proxy, advertiser, err = startProxy(ctx, transport, capture)
		if err != nil {
			log.Fatalf("Failed to start proxy: %v", err)
		}
	}

	// Run interactive mode or wait for signal
	if config.Interactive {
		ic, err := interactive.New(registry, &config)
		if err != nil {
			log.Fatalf("Failed to create interactive monitor: %v", err)
		}
		// Redirect log output through readline to avoid interfering with input
		log.SetOutput(ic.Stdout())
		go ic.Run(ctx, cancel)
	}

	// Wait for shutdown signal or context cancellation
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
		// Context was cancelled (e.g., by interactive quit command)
	}

	log.Println("Shutting down...")

	if advertiser != nil {
		advertiser.StopAll()
	}
	if proxy != nil {
		if err := proxy.Stop(); err != nil {
			log.Printf("Error stopping proxy: %v", err)
		}
	}
	cancel()

	log.Println("Goodbye!")
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}

// loadTree loads the description tree named by -profile, falling back
// to the built-in tree covering the well-known key table.
func loadTree() (devtree.Node, error) {
	if config.Profile == "" {
		return sim.WellKnownTree(), nil
	}
	root, err := devtree.LoadFile(config.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return root, nil
}

// selectTransport picks the reading backend from the flags: an explicit
// proxy address, a discovered proxy instance, or the simulator.
func selectTransport(root devtree.Node) (smc.Transport, func(), error) {
	if config.Remote != "" && config.Instance != "" {
		return nil, nil, fmt.Errorf("-remote and -instance are mutually exclusive")
	}

	address := config.Remote
	if config.Instance != "" {
		browser, err := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
		if err != nil {
			return nil, nil, err
		}
		defer browser.Stop()

		log.Printf("Looking for proxy instance %s...", config.Instance)
		svc, err := browser.FindProxy(context.Background(), config.Instance)
		if err != nil {
			return nil, nil, fmt.Errorf("proxy instance %s: %w", config.Instance, err)
		}
		address = svc.Addr()
		log.Printf("Found %s at %s", svc.InstanceName, address)
	}

	if address != "" {
		client, err := remote.Dial(context.Background(), address, remote.ClientConfig{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to proxy: %w", err)
		}
		log.Printf("Connected to proxy at %s", address)
		config.SourceValue = fmt.Sprintf("proxy %s", address)
		return client, func() { client.Close() }, nil
	}

	ctrl := sim.NewController(sim.Config{Drift: config.Drift})
	seeded := ctrl.SeedFromTree(root)
	if config.Keys != "" {
		n, err := ctrl.LoadKeyTableFile(config.Keys)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load key table: %w", err)
		}
		seeded += n
	}
	log.Printf("Simulator seeded with %d keys", seeded)
	config.SourceValue = "simulator"
	return ctrl, func() {}, nil
}

// startProxy serves the transport to remote clients, optionally
// advertising it via mDNS.
func startProxy(ctx context.Context, transport smc.Transport, capture smclog.Logger) (*remote.Server, *discovery.MDNSAdvertiser, error) {
	server, err := remote.NewServer(remote.ServerConfig{
		Address:   config.Addr,
		Transport: transport,
		Logger:    capture,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := server.Start(ctx); err != nil {
		return nil, nil, err
	}
	log.Printf("Proxy listening on %s", server.Addr())

	if !config.MDNS {
		return server, nil, nil
	}

	advertiser, err := discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
	if err != nil {
		_ = server.Stop()
		return nil, nil, err
	}

	info := &discovery.ProxyInfo{
		InstanceID: uuid.NewString(),
		Platform:   config.PlatformValue,
		Protocol:   remote.ProtocolVersion,
	}
	if addr, ok := server.Addr().(*net.TCPAddr); ok {
		info.Port = uint16(addr.Port)
	}
	if err := advertiser.AdvertiseProxy(ctx, info); err != nil {
		_ = server.Stop()
		return nil, nil, err
	}
	log.Printf("Advertising %s instance %s", discovery.ServiceTypeProxy, discovery.ShortInstanceID(info.InstanceID))

	return server, advertiser, nil
}

// sensorCount counts channels across the non-fan groups.
func sensorCount(registry *sensors.Registry) int {
	count := 0
	for _, g := range sensors.Groups() {
		if g == sensors.GroupFan {
			continue
		}
		count += registry.Len(g)
	}
	return count
}

// runRead reads one target ("group" or "group/channel") and prints it.
func runRead(registry *sensors.Registry, target string) error {
	name, channelPart, found := strings.Cut(target, "/")
	g, err := sensors.ParseGroup(name)
	if err != nil {
		return err
	}

	formatter := inspect.NewFormatter()

	if !found {
		inspector := inspect.NewInspector(registry)
		gs, err := inspector.SnapshotGroup(g)
		if err != nil {
			return err
		}
		for _, r := range gs.Readings {
			fmt.Println(formatter.FormatReading(r, g))
		}
		return nil
	}

	channel, err := strconv.Atoi(channelPart)
	if err != nil {
		return fmt.Errorf("bad channel %q", channelPart)
	}
	label, err := registry.Label(g, channel)
	if err != nil {
		return err
	}
	value, err := registry.Read(g, channel)
	if err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", label, formatter.FormatValue(value, g))
	return nil
}

// runDiscover browses for proxies and export daemons and lists them.
func runDiscover() error {
	browser, err := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
	if err != nil {
		return err
	}
	defer browser.Stop()

	window := 5 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), window)
	defer cancel()

	proxies, err := browser.BrowseProxies(ctx)
	if err != nil {
		return err
	}
	exports, err := browser.BrowseExports(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Browsing for %s...\n", window)
	count := 0
	for proxies != nil || exports != nil {
		select {
		case svc, ok := <-proxies:
			if !ok {
				proxies = nil
				continue
			}
			count++
			fmt.Printf("PROXY   %s\n", svc.InstanceName)
			fmt.Printf("        addr %s  platform %q  protocol v%d  id %s\n",
				svc.Addr(), svc.Platform, svc.Protocol, discovery.ShortInstanceID(svc.InstanceID))
		case svc, ok := <-exports:
			if !ok {
				exports = nil
				continue
			}
			count++
			fmt.Printf("EXPORT  %s\n", svc.InstanceName)
			fmt.Printf("        addr %s  platform %q  api %s  sensors %d  fans %d  id %s\n",
				svc.Addr(), svc.Platform, svc.APIVersion, svc.Sensors, svc.Fans, discovery.ShortInstanceID(svc.InstanceID))
		}
	}

	if count == 0 {
		fmt.Println("No services found")
	} else {
		fmt.Printf("%d service(s) found\n", count)
	}
	return nil
}
