package sim

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chadmed/macsmc-go/pkg/smc"
)

// Key file schema:
//
//	keys:
//	  - key: TC0P
//	    type: flt
//	    value: 45.5
//	  - key: CLKH
//	    type: ui8
//	    raw: "2a"
//
// Types shorter than four characters are padded with trailing spaces.
// Exactly one of value and raw must be present; raw is hex and may carry
// any type, value requires a decodable type.
type keyFileDoc struct {
	Keys []keyFileEntry `yaml:"keys"`
}

type keyFileEntry struct {
	Key   string   `yaml:"key"`
	Type  string   `yaml:"type"`
	Value *float64 `yaml:"value"`
	Raw   string   `yaml:"raw"`
}

type stagedKey struct {
	key   smc.Key
	typ   smc.TypeCode
	value float64
	raw   []byte
}

// LoadKeyTable installs keys from a YAML key file. The file is validated
// as a whole before anything is installed. Returns the number of keys
// installed.
func (c *Controller) LoadKeyTable(data []byte) (int, error) {
	var doc keyFileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parsing key file: %w", err)
	}

	staged := make([]stagedKey, 0, len(doc.Keys))
	for i, e := range doc.Keys {
		s, err := stageEntry(e)
		if err != nil {
			return 0, fmt.Errorf("keys[%d]: %w", i, err)
		}
		staged = append(staged, s)
	}

	for _, s := range staged {
		if s.raw != nil {
			c.SetRaw(s.key, s.typ, s.raw)
			continue
		}
		if err := c.Set(s.key, s.typ, s.value); err != nil {
			return 0, err
		}
	}
	return len(staged), nil
}

// LoadKeyTableFile is LoadKeyTable on a file path.
func (c *Controller) LoadKeyTableFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	n, err := c.LoadKeyTable(data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

func stageEntry(e keyFileEntry) (stagedKey, error) {
	if e.Key == "" {
		return stagedKey{}, errors.New("missing key")
	}
	key, err := smc.ParseKey(e.Key)
	if err != nil {
		return stagedKey{}, err
	}

	if e.Type == "" {
		return stagedKey{}, fmt.Errorf("key %s: missing type", key)
	}
	typ, err := smc.ParseTypeCode(padTypeCode(e.Type))
	if err != nil {
		return stagedKey{}, fmt.Errorf("key %s: %w", key, err)
	}

	switch {
	case e.Value != nil && e.Raw != "":
		return stagedKey{}, fmt.Errorf("key %s: value and raw are mutually exclusive", key)

	case e.Value != nil:
		if !typ.Known() {
			return stagedKey{}, fmt.Errorf("key %s: type %s needs a raw payload", key, typ)
		}
		return stagedKey{key: key, typ: typ, value: *e.Value}, nil

	case e.Raw != "":
		raw, err := hex.DecodeString(e.Raw)
		if err != nil {
			return stagedKey{}, fmt.Errorf("key %s: bad raw payload: %w", key, err)
		}
		return stagedKey{key: key, typ: typ, raw: raw}, nil

	default:
		return stagedKey{}, fmt.Errorf("key %s: one of value or raw is required", key)
	}
}

// padTypeCode widens a short type name to the four-character FourCC form.
func padTypeCode(s string) string {
	if len(s) >= 4 {
		return s
	}
	return s + strings.Repeat(" ", 4-len(s))
}
