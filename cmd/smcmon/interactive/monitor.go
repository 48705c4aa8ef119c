// Package interactive provides the interactive command-line interface
// for the SMC monitor.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/chadmed/macsmc-go/pkg/inspect"
	"github.com/chadmed/macsmc-go/pkg/sensors"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

// MonitorConfig provides configuration information to the interactive
// monitor. This interface allows the interactive layer to access monitor
// settings without depending on the main package's config structure.
type MonitorConfig interface {
	// Source describes where readings come from (simulator or proxy address).
	Source() string

	// Platform returns the platform name from the description tree.
	Platform() string

	// CaptureFile returns the capture path, or "" when capture is off.
	CaptureFile() string

	// SessionID returns the capture session UUID, or "" when capture is off.
	SessionID() string
}

// Monitor handles interactive mode for smcmon.
type Monitor struct {
	registry  *sensors.Registry
	config    MonitorConfig
	inspector *inspect.Inspector
	formatter *inspect.Formatter
	rl        *readline.Instance

	// Watch control
	watchCtx     context.Context
	watchCancel  context.CancelFunc
	watchRunning bool
	watchTarget  string
}

// New creates a new interactive monitor handler.
func New(registry *sensors.Registry, cfg MonitorConfig) (*Monitor, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "smc> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Monitor{
		registry:  registry,
		config:    cfg,
		inspector: inspect.NewInspector(registry),
		formatter: inspect.NewFormatter(),
		rl:        rl,
	}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (m *Monitor) Stdout() io.Writer {
	return m.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (m *Monitor) Stderr() io.Writer {
	return m.rl.Stderr()
}

// Run starts the interactive command loop.
func (m *Monitor) Run(ctx context.Context, cancel context.CancelFunc) {
	defer m.rl.Close()
	defer m.stopWatch()

	m.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := m.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(m.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			m.printHelp()

		case "info", "i":
			m.cmdInfo()

		case "list", "l":
			m.cmdList(args)

		case "read", "r":
			m.cmdRead(args)

		case "fan", "f":
			m.cmdFan(args)

		case "watch", "w":
			m.cmdWatch(args)

		case "keys", "k":
			m.cmdKeys()

		case "session":
			m.cmdSession()

		case "quit", "exit", "q":
			fmt.Fprintln(m.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(m.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (m *Monitor) printHelp() {
	fmt.Fprintln(m.rl.Stdout(), `
SMC Monitor Commands:
  Inspection:
    info                - Show monitor status
    list [group]        - Show registry structure (or one group)
    keys                - Show the well-known key table

  Reading:
    read <group> [ch]   - Read one channel (or every channel of a group)
    fan <ch>            - Show one fan with its limit fields
    watch <target> [iv] - Poll a target every interval (default 2s)
    watch stop          - Stop polling

  General:
    session             - Show capture session
    help                - Show this help
    quit                - Exit monitor

  Target Format:
    group or group/channel - e.g., temperature, temperature/0, fan/1
    Groups: temperature, voltage, current, power, fan`)
}

// cmdInfo shows the monitor status.
func (m *Monitor) cmdInfo() {
	fmt.Fprintln(m.rl.Stdout(), "\nMonitor Status")
	fmt.Fprintln(m.rl.Stdout(), "-------------------------------------------")
	if platform := m.config.Platform(); platform != "" {
		fmt.Fprintf(m.rl.Stdout(), "  Platform:  %s\n", platform)
	}
	fmt.Fprintf(m.rl.Stdout(), "  Source:    %s\n", m.config.Source())

	sensorCount := 0
	for _, g := range sensors.Groups() {
		if g == sensors.GroupFan {
			continue
		}
		sensorCount += m.registry.Len(g)
	}
	fmt.Fprintf(m.rl.Stdout(), "  Sensors:   %d\n", sensorCount)
	fmt.Fprintf(m.rl.Stdout(), "  Fans:      %d\n", m.registry.Len(sensors.GroupFan))

	if capture := m.config.CaptureFile(); capture != "" {
		fmt.Fprintf(m.rl.Stdout(), "  Capture:   %s (session %s)\n", capture, m.config.SessionID())
	} else {
		fmt.Fprintf(m.rl.Stdout(), "  Capture:   off\n")
	}

	if m.watchRunning {
		fmt.Fprintf(m.rl.Stdout(), "  Watch:     running (%s)\n", m.watchTarget)
	} else {
		fmt.Fprintf(m.rl.Stdout(), "  Watch:     stopped\n")
	}
	fmt.Fprintln(m.rl.Stdout())
}

// cmdList shows the registry structure.
func (m *Monitor) cmdList(args []string) {
	if len(args) == 0 {
		fmt.Fprint(m.rl.Stdout(), m.formatter.FormatTree(m.inspector.InspectRegistry()))
		return
	}

	g, err := sensors.ParseGroup(args[0])
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid group: %v\n", err)
		return
	}

	info, err := m.inspector.InspectGroup(g)
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Error: %v\n", err)
		return
	}

	fmt.Fprintf(m.rl.Stdout(), "%s (%s, %d channels)\n", info.Group, info.Unit, len(info.Channels))
	for _, ch := range info.Channels {
		fmt.Fprintln(m.rl.Stdout(), m.formatter.Indent(1, m.formatter.FormatChannel(ch)))
	}
}

// cmdRead reads one channel, or every channel of a group.
func (m *Monitor) cmdRead(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: read <group> [channel]")
		fmt.Fprintln(m.rl.Stdout(), "  Example: read temperature 0")
		return
	}

	g, err := sensors.ParseGroup(args[0])
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid group: %v\n", err)
		return
	}

	if len(args) >= 2 {
		channel, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(m.rl.Stdout(), "Invalid channel: %v\n", err)
			return
		}
		m.printReading(g, channel)
		return
	}

	gs, err := m.inspector.SnapshotGroup(g)
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Error: %v\n", err)
		return
	}
	for _, r := range gs.Readings {
		fmt.Fprintln(m.rl.Stdout(), m.formatter.FormatReading(r, g))
	}
}

// printReading reads and prints one channel.
func (m *Monitor) printReading(g sensors.Group, channel int) {
	label, err := m.registry.Label(g, channel)
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Error: %v\n", err)
		return
	}
	value, err := m.registry.Read(g, channel)
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "%s: error: %v\n", label, err)
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "%s = %s\n", label, m.formatter.FormatValue(value, g))
}

// cmdFan shows one fan with its limit fields.
func (m *Monitor) cmdFan(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: fan <channel>")
		return
	}

	channel, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid channel: %v\n", err)
		return
	}

	fan, err := m.registry.Fan(channel)
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Error: %v\n", err)
		return
	}

	fmt.Fprintf(m.rl.Stdout(), "\nFan %d: %s\n", channel, fan.Label)
	fmt.Fprintln(m.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(m.rl.Stdout(), "  Capabilities: %s\n", fan.Capabilities)
	for _, field := range []sensors.FanField{sensors.FanInput, sensors.FanMin, sensors.FanMax, sensors.FanTarget} {
		value, err := m.registry.ReadFan(channel, field)
		if err != nil {
			continue
		}
		fmt.Fprintf(m.rl.Stdout(), "  %-8s %d RPM (%s)\n", field.String()+":", value, fieldKey(fan, field))
	}
	fmt.Fprintln(m.rl.Stdout())
}

// fieldKey returns the FourCC backing a fan field for display.
func fieldKey(fan sensors.FanDescriptor, field sensors.FanField) smc.Key {
	switch field {
	case sensors.FanMin:
		if fan.Min != nil {
			return fan.Min.Key
		}
	case sensors.FanMax:
		if fan.Max != nil {
			return fan.Max.Key
		}
	case sensors.FanTarget:
		if fan.Target != nil {
			return fan.Target.Key
		}
	}
	return fan.Now.Key
}

// cmdWatch polls a target on an interval until stopped.
func (m *Monitor) cmdWatch(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: watch <group>[/channel] [interval]")
		fmt.Fprintln(m.rl.Stdout(), "       watch stop")
		fmt.Fprintln(m.rl.Stdout(), "  Example: watch temperature/0 1s")
		return
	}

	if args[0] == "stop" {
		if !m.watchRunning {
			fmt.Fprintln(m.rl.Stdout(), "Watch not running")
			return
		}
		m.stopWatch()
		fmt.Fprintln(m.rl.Stdout(), "Watch stopped")
		return
	}

	if m.watchRunning {
		fmt.Fprintln(m.rl.Stdout(), "Watch already running (stop it first)")
		return
	}

	g, channel, err := parseTarget(args[0])
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid target: %v\n", err)
		return
	}

	interval := 2 * time.Second
	if len(args) >= 2 {
		interval, err = time.ParseDuration(args[1])
		if err != nil {
			fmt.Fprintf(m.rl.Stdout(), "Invalid interval: %v\n", err)
			return
		}
		if interval < 100*time.Millisecond {
			fmt.Fprintln(m.rl.Stdout(), "Interval too short (minimum 100ms)")
			return
		}
	}

	m.watchCtx, m.watchCancel = context.WithCancel(context.Background())
	m.watchRunning = true
	m.watchTarget = args[0]
	go m.runWatch(m.watchCtx, g, channel, interval)
	fmt.Fprintf(m.rl.Stdout(), "Watching %s every %s ('watch stop' to stop)\n", args[0], interval)
}

// stopWatch stops the background watch loop.
func (m *Monitor) stopWatch() {
	if !m.watchRunning {
		return
	}
	if m.watchCancel != nil {
		m.watchCancel()
	}
	m.watchRunning = false
	m.watchTarget = ""
}

// runWatch runs the background watch loop.
func (m *Monitor) runWatch(ctx context.Context, g sensors.Group, channel int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stamp := time.Now().Format("15:04:05")
			if channel >= 0 {
				value, err := m.registry.Read(g, channel)
				if err != nil {
					fmt.Fprintf(m.rl.Stdout(), "\n[%s] %s/%d: error: %v\n", stamp, g, channel, err)
				} else {
					fmt.Fprintf(m.rl.Stdout(), "\n[%s] %s/%d: %s\n", stamp, g, channel, m.formatter.FormatValue(value, g))
				}
				m.rl.Refresh()
				continue
			}

			gs, err := m.inspector.SnapshotGroup(g)
			if err != nil {
				fmt.Fprintf(m.rl.Stdout(), "\n[%s] %s: error: %v\n", stamp, g, err)
				m.rl.Refresh()
				continue
			}
			fmt.Fprintf(m.rl.Stdout(), "\n[%s] %s\n", stamp, g)
			for _, r := range gs.Readings {
				fmt.Fprintln(m.rl.Stdout(), m.formatter.Indent(1, m.formatter.FormatReading(r, g)))
			}
			m.rl.Refresh()
		}
	}
}

// cmdKeys shows the well-known key table.
func (m *Monitor) cmdKeys() {
	fmt.Fprintln(m.rl.Stdout(), "\nWell-Known Keys:")
	fmt.Fprintln(m.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(m.rl.Stdout(), "%-6s %-12s %s\n", "Key", "Quantity", "Label")
	for _, known := range smc.KnownKeys() {
		fmt.Fprintf(m.rl.Stdout(), "%-6s %-12s %s\n", known.Key, known.Quantity, known.Label)
	}
	fmt.Fprintln(m.rl.Stdout())
}

// cmdSession shows the capture session.
func (m *Monitor) cmdSession() {
	capture := m.config.CaptureFile()
	if capture == "" {
		fmt.Fprintln(m.rl.Stdout(), "Capture is off (start with -capture <file>)")
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "Capturing to %s\n", capture)
	fmt.Fprintf(m.rl.Stdout(), "Session: %s\n", m.config.SessionID())
}

// IsWatching returns whether the watch loop is running (for external access).
func (m *Monitor) IsWatching() bool {
	return m.watchRunning
}

// parseTarget parses "group" or "group/channel". A missing channel is
// returned as -1.
func parseTarget(s string) (sensors.Group, int, error) {
	name, channelPart, found := strings.Cut(s, "/")
	g, err := sensors.ParseGroup(name)
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return g, -1, nil
	}
	channel, err := strconv.Atoi(channelPart)
	if err != nil {
		return 0, 0, fmt.Errorf("bad channel %q", channelPart)
	}
	if channel < 0 {
		return 0, 0, fmt.Errorf("bad channel %d", channel)
	}
	return g, channel, nil
}
