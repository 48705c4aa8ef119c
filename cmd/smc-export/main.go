// Command smc-export serves sensor registry data as JSON over HTTP.
//
// At startup it builds a registry from a platform description tree, then
// answers API requests by reading channels through the configured
// transport. With no flags it runs against a built-in simulator covering
// the well-known key table.
//
// Endpoints:
//
//	GET /api/v1/health                      Daemon status
//	GET /api/v1/registry                    Discovered registry structure
//	GET /api/v1/read?group=<g>&channel=<n>  One channel value
//	GET /api/v1/snapshot                    Every channel, read once
//
// Usage:
//
//	smc-export [flags]
//
// Flags:
//
//	-port int          HTTP server port (default 21326)
//	-profile string    Platform description tree (YAML)
//	-keys string       Extra simulator key file (YAML)
//	-remote string     Read through a proxy at host:port instead of the simulator
//	-drift float       Simulator value drift, e.g. 0.02 for 2%
//	-mdns              Advertise the daemon via mDNS
//	-capture string    Write capture events to this file
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Serve a simulated t6001 registry
//	smc-export -profile profiles/t6001.yaml
//
//	# Serve a real machine's sensors through its proxy
//	smc-export -remote mac.local:21325 -profile profiles/t6001.yaml
//
//	# Advertise on the local network with drifting demo values
//	smc-export -mdns -drift 0.02
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/chadmed/macsmc-go/pkg/devtree"
	"github.com/chadmed/macsmc-go/pkg/discovery"
	smclog "github.com/chadmed/macsmc-go/pkg/log"
	"github.com/chadmed/macsmc-go/pkg/remote"
	"github.com/chadmed/macsmc-go/pkg/sensors"
	"github.com/chadmed/macsmc-go/pkg/sim"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

var (
	port        = flag.Int("port", discovery.DefaultExportPort, "HTTP server port")
	profilePath = flag.String("profile", "", "Platform description tree (YAML)")
	keysPath    = flag.String("keys", "", "Extra simulator key file (YAML)")
	remoteAddr  = flag.String("remote", "", "Read through a proxy at host:port instead of the simulator")
	drift       = flag.Float64("drift", 0, "Simulator value drift, e.g. 0.02 for 2%")
	mdns        = flag.Bool("mdns", false, "Advertise the daemon via mDNS")
	capturePath = flag.String("capture", "", "Write capture events to this file")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("smc-export %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		return 0
	}

	// Configure logging
	log.SetFlags(log.Ldate | log.Ltime)
	if *logLevel == "debug" {
		log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	}

	// Set up capture logging if requested
	var capture smclog.Logger = smclog.NoopLogger{}
	if *capturePath != "" {
		fileLogger, err := smclog.NewFileLogger(*capturePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create capture file: %v\n", err)
			return 1
		}
		defer fileLogger.Close()
		session := smclog.NewSessionLogger(fileLogger)
		capture = session
		log.Printf("Capturing to %s (session %s)", *capturePath, session.SessionID())
	}

	// Load the description tree
	root, err := loadTree()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	platform, _ := root.Property("platform")

	// Select the transport
	transport, cleanup, err := selectTransport(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	// Build the registry
	builder := sensors.NewBuilder(transport, capture)
	registry, err := builder.Build(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to build registry: %v\n", err)
		return 1
	}
	for _, issue := range builder.Issues() {
		log.Printf("Registry issue: %s", issue)
	}

	// Create and configure server
	cfg := ServerConfig{
		Port:       *port,
		Platform:   platform,
		InstanceID: uuid.NewString(),
		Version:    Version,
		Advertise:  *mdns,
		Registry:   registry,
	}

	srv, err := NewServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create server: %v\n", err)
		return 1
	}

	log.Printf("Starting smc-export on http://localhost:%d", *port)
	if platform != "" {
		log.Printf("Platform: %s", platform)
	}
	if *mdns {
		log.Printf("Advertising %s instance %s", discovery.ServiceTypeExport, cfg.InstanceID)
	}

	// Run until a signal arrives or the server fails
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: shutdown failed: %v\n", err)
			return 1
		}
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: server failed: %v\n", err)
			return 1
		}
	}

	return 0
}

// loadTree loads the description tree from the profile flag, falling back
// to the well-known table layout.
func loadTree() (devtree.Node, error) {
	if *profilePath == "" {
		return sim.WellKnownTree(), nil
	}
	root, err := devtree.LoadFile(*profilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return root, nil
}

// selectTransport picks the backing transport from the flags. The cleanup
// function releases the transport when the server stops.
func selectTransport(root devtree.Node) (smc.Transport, func(), error) {
	if *remoteAddr != "" {
		client, err := remote.Dial(context.Background(), *remoteAddr, remote.ClientConfig{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to %s: %w", *remoteAddr, err)
		}
		log.Printf("Connected to proxy at %s", *remoteAddr)
		return client, func() { client.Close() }, nil
	}

	ctrl := sim.NewController(sim.Config{Drift: *drift})
	seeded := ctrl.SeedFromTree(root)
	if *keysPath != "" {
		n, err := ctrl.LoadKeyTableFile(*keysPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load key file: %w", err)
		}
		seeded += n
	}
	log.Printf("Simulator seeded with %d keys", seeded)
	return ctrl, func() {}, nil
}
