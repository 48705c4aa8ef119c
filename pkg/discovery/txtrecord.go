package discovery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeProxyTXT creates TXT records for proxy discovery.
func EncodeProxyTXT(info *ProxyInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyInstanceID] = info.InstanceID
	txt[TXTKeyProtocol] = strconv.FormatUint(uint64(info.Protocol), 10)

	// Optional fields
	if info.Platform != "" {
		txt[TXTKeyPlatform] = info.Platform
	}

	return txt
}

// DecodeProxyTXT parses TXT records from proxy discovery.
func DecodeProxyTXT(txt TXTRecordMap) (*ProxyInfo, error) {
	info := &ProxyInfo{}

	// Parse instance id (required)
	var ok bool
	info.InstanceID, ok = txt[TXTKeyInstanceID]
	if !ok || info.InstanceID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyInstanceID)
	}
	if _, err := uuid.Parse(info.InstanceID); err != nil {
		return nil, fmt.Errorf("%w: instance id is not a UUID", ErrInvalidTXTRecord)
	}

	// Parse protocol version (required)
	pvStr, ok := txt[TXTKeyProtocol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyProtocol)
	}
	pv, err := strconv.ParseUint(pvStr, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: protocol version %q", ErrInvalidTXTRecord, pvStr)
	}
	info.Protocol = uint32(pv)

	// Optional fields
	info.Platform = txt[TXTKeyPlatform]

	return info, nil
}

// EncodeExportTXT creates TXT records for export daemon discovery.
func EncodeExportTXT(info *ExportInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyInstanceID] = info.InstanceID
	txt[TXTKeyAPIVersion] = info.APIVersion

	// Optional fields
	if info.Platform != "" {
		txt[TXTKeyPlatform] = info.Platform
	}
	if info.Sensors > 0 {
		txt[TXTKeySensors] = strconv.FormatUint(uint64(info.Sensors), 10)
	}
	if info.Fans > 0 {
		txt[TXTKeyFans] = strconv.FormatUint(uint64(info.Fans), 10)
	}

	return txt
}

// DecodeExportTXT parses TXT records from export daemon discovery.
func DecodeExportTXT(txt TXTRecordMap) (*ExportInfo, error) {
	info := &ExportInfo{}

	// Parse instance id (required)
	var ok bool
	info.InstanceID, ok = txt[TXTKeyInstanceID]
	if !ok || info.InstanceID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyInstanceID)
	}
	if _, err := uuid.Parse(info.InstanceID); err != nil {
		return nil, fmt.Errorf("%w: instance id is not a UUID", ErrInvalidTXTRecord)
	}

	// Parse API version (required)
	info.APIVersion, ok = txt[TXTKeyAPIVersion]
	if !ok || info.APIVersion == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyAPIVersion)
	}

	// Optional fields
	info.Platform = txt[TXTKeyPlatform]

	if sStr, ok := txt[TXTKeySensors]; ok {
		s, err := strconv.ParseUint(sStr, 10, 16)
		if err == nil {
			info.Sensors = uint16(s)
		}
	}
	if fStr, ok := txt[TXTKeyFans]; ok {
		f, err := strconv.ParseUint(fStr, 10, 8)
		if err == nil {
			info.Fans = uint8(f)
		}
	}

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings, the format mDNS libraries exchange.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a
// TXTRecordMap. A string without "=" becomes a key with an empty value.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		if k, v, found := strings.Cut(s, "="); found {
			txt[k] = v
		} else if s != "" {
			txt[s] = ""
		}
	}
	return txt
}
