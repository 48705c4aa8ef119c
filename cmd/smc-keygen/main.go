// Command smc-keygen generates the well-known key table in pkg/smc.
//
// The source of truth is a YAML table mapping four-character keys to
// conventional labels and quantity classes:
//
//	keys:
//	  - key: TC0P
//	    label: CPU Proximity Temp
//	    quantity: temperature
//
// Usage:
//
//	smc-keygen -keys data/smc-keys.yaml -o pkg/smc/keys_gen.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
	"gopkg.in/yaml.v3"
)

// quantities are the accepted physical quantity classes.
var quantities = map[string]bool{
	"temperature": true,
	"voltage":     true,
	"current":     true,
	"power":       true,
	"fan":         true,
}

// keyTable is the YAML document shape.
type keyTable struct {
	Keys []keyEntry `yaml:"keys"`
}

// keyEntry is one row of the table.
type keyEntry struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label"`
	Quantity string `yaml:"quantity"`
}

func main() {
	keysPath := flag.String("keys", "data/smc-keys.yaml", "Path to the key table YAML")
	output := flag.String("o", "pkg/smc/keys_gen.go", "Output path for the generated file")
	flag.Parse()

	if err := run(*keysPath, *output); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(keysPath, output string) error {
	table, err := loadKeyTable(keysPath)
	if err != nil {
		return fmt.Errorf("loading key table: %w", err)
	}

	code, err := generate(table, keysPath)
	if err != nil {
		return fmt.Errorf("generating: %w", err)
	}

	if err := writeFormatted(output, code); err != nil {
		return err
	}
	fmt.Printf("  generated %s (%d keys)\n", output, len(table.Keys))
	return nil
}

// loadKeyTable reads and validates the YAML table. Entries come back
// sorted by key so the generated file is deterministic.
func loadKeyTable(path string) (*keyTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var table keyTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, err
	}
	if len(table.Keys) == 0 {
		return nil, fmt.Errorf("no keys in %s", path)
	}

	seen := make(map[string]bool)
	for _, e := range table.Keys {
		if err := validateEntry(e); err != nil {
			return nil, err
		}
		if seen[e.Key] {
			return nil, fmt.Errorf("duplicate key %q", e.Key)
		}
		seen[e.Key] = true
	}

	sort.Slice(table.Keys, func(i, j int) bool {
		return table.Keys[i].Key < table.Keys[j].Key
	})
	return &table, nil
}

func validateEntry(e keyEntry) error {
	if len(e.Key) != 4 {
		return fmt.Errorf("key %q: must be exactly 4 characters", e.Key)
	}
	for _, r := range e.Key {
		if r < 0x20 || r > 0x7e {
			return fmt.Errorf("key %q: non-printable character", e.Key)
		}
	}
	if e.Label == "" {
		return fmt.Errorf("key %q: label required", e.Key)
	}
	if !quantities[e.Quantity] {
		return fmt.Errorf("key %q: unknown quantity %q", e.Key, e.Quantity)
	}
	return nil
}

var keyTableTmpl = template.Must(template.New("keys").Funcs(template.FuncMap{
	"quote": func(s string) string { return fmt.Sprintf("%q", s) },
}).Parse(`// Code generated by smc-keygen from {{.Source}}. DO NOT EDIT.

package smc

// knownKeys maps well-known keys to their conventional labels.
var knownKeys = map[Key]KnownKey{
{{- range .Keys}}
	MustParseKey({{quote .Key}}): {Key: MustParseKey({{quote .Key}}), Label: {{quote .Label}}, Quantity: {{quote .Quantity}}},
{{- end}}
}
`))

// generate renders the table into Go source.
func generate(table *keyTable, source string) (string, error) {
	var b strings.Builder
	err := keyTableTmpl.Execute(&b, struct {
		Source string
		Keys   []keyEntry
	}{Source: filepath.ToSlash(source), Keys: table.Keys})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// writeFormatted formats Go source code with goimports and writes it to a file.
func writeFormatted(path string, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		// Write unformatted so you can debug the generator output
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, formatted, 0o644)
}
