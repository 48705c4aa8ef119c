package discovery

import "strings"

// ProxyInstanceName derives the mDNS instance name for a proxy.
//
// Format: "macsmc-<platform>-<short id>", e.g. "macsmc-t6001-9f3a06b2".
// The platform segment is omitted when empty. Names longer than the
// DNS label limit are truncated.
func ProxyInstanceName(platform, instanceID string) string {
	return buildInstanceName("macsmc", platform, instanceID)
}

// ExportInstanceName derives the mDNS instance name for an export daemon.
func ExportInstanceName(platform, instanceID string) string {
	return buildInstanceName("macsmc-export", platform, instanceID)
}

func buildInstanceName(prefix, platform, instanceID string) string {
	name := prefix
	if platform != "" {
		name += "-" + platform
	}
	if short := ShortInstanceID(instanceID); short != "" {
		name += "-" + short
	}
	if len(name) > MaxInstanceNameLen {
		name = name[:MaxInstanceNameLen]
	}
	return name
}

// ShortInstanceID returns the leading hex chunk of an instance UUID,
// the form embedded in instance names and accepted by FindProxy.
func ShortInstanceID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
