package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/chadmed/macsmc-go/pkg/log"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents      int
	EventsByLayer    map[log.Layer]int
	EventsByCategory map[log.Category]int
	Keys             map[smc.Key]*KeyStats
	Sessions         map[string]*SessionStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// KeyStats holds per-key read statistics.
type KeyStats struct {
	Reads        int
	Resolves     int
	TimedReads   int
	TotalElapsed time.Duration
	MaxElapsed   time.Duration
}

// SessionStats holds statistics for a single capture session.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:    make(map[log.Layer]int),
		EventsByCategory: make(map[log.Category]int),
		Keys:             make(map[smc.Key]*KeyStats),
		Sessions:         make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByLayer[event.Layer]++
		stats.EventsByCategory[event.Category]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		// Track per-key stats
		if event.Key != 0 {
			ks, ok := stats.Keys[event.Key]
			if !ok {
				ks = &KeyStats{}
				stats.Keys[event.Key] = ks
			}
			if event.Resolve != nil {
				ks.Resolves++
			}
			if event.Read != nil {
				ks.Reads++
				if event.Read.Elapsed > 0 {
					ks.TimedReads++
					ks.TotalElapsed += event.Read.Elapsed
					if event.Read.Elapsed > ks.MaxElapsed {
						ks.MaxElapsed = event.Read.Elapsed
					}
				}
			}
		}

		// Track session stats
		if event.SessionID != "" {
			sess, ok := stats.Sessions[event.SessionID]
			if !ok {
				sess = &SessionStats{
					FirstSeen: event.Timestamp,
					LastSeen:  event.Timestamp,
				}
				stats.Sessions[event.SessionID] = sess
			}
			sess.Events++
			if event.Timestamp.After(sess.LastSeen) {
				sess.LastSeen = event.Timestamp
			}
		}

		// Count errors
		if event.Error != nil {
			stats.Errors++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== SMC Capture Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	// Total events
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	// Events by layer
	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerRegistry, log.LayerTransport, log.LayerRemote} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Events by category
	fmt.Fprintln(w, "Events by Category:")
	categories := []log.Category{
		log.CategoryBuild,
		log.CategoryResolve,
		log.CategoryRead,
		log.CategoryState,
		log.CategoryError,
		log.CategoryFrame,
	}
	for _, cat := range categories {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Per-key read statistics, busiest keys first
	if len(stats.Keys) > 0 {
		type keyInfo struct {
			key   smc.Key
			stats *KeyStats
		}
		keys := make([]keyInfo, 0, len(stats.Keys))
		for k, ks := range stats.Keys {
			keys = append(keys, keyInfo{k, ks})
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].stats.Reads != keys[j].stats.Reads {
				return keys[i].stats.Reads > keys[j].stats.Reads
			}
			return keys[i].key.String() < keys[j].key.String()
		})

		fmt.Fprintf(w, "Keys: %d\n", len(keys))
		for _, k := range keys {
			fmt.Fprintf(w, "  %s  reads: %-6d resolves: %d", k.key, k.stats.Reads, k.stats.Resolves)
			if k.stats.TimedReads > 0 {
				avg := k.stats.TotalElapsed / time.Duration(k.stats.TimedReads)
				fmt.Fprintf(w, "  avg: %s  max: %s", formatDuration(avg), formatDuration(k.stats.MaxElapsed))
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	// Sessions
	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenID(s.id), s.stats.Events, duration)
		}
	}

	// Errors
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
