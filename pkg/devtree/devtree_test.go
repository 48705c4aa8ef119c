package devtree

import (
	"errors"
	"strings"
	"testing"
)

func TestMapNode(t *testing.T) {
	root := NewNode("/")
	group := root.AddChild(NewNode("temperature-keys"))
	group.AddChild(NewNode("a")).SetProperty("key-id", "TC0P")
	group.AddChild(NewNode("b")).SetProperty("key-id", "TG0P")

	t.Run("child lookup", func(t *testing.T) {
		g, ok := root.Child("temperature-keys")
		if !ok {
			t.Fatal("temperature-keys not found")
		}
		if g.Name() != "temperature-keys" {
			t.Errorf("unexpected name %q", g.Name())
		}
		if _, ok := root.Child("fan-keys"); ok {
			t.Error("fan-keys should not exist")
		}
	})

	t.Run("children preserve order", func(t *testing.T) {
		kids := group.Children()
		if len(kids) != 2 {
			t.Fatalf("expected 2 children, got %d", len(kids))
		}
		if kids[0].Name() != "a" || kids[1].Name() != "b" {
			t.Errorf("order not preserved: %s, %s", kids[0].Name(), kids[1].Name())
		}
	})

	t.Run("property lookup", func(t *testing.T) {
		kids := group.Children()
		v, ok := kids[0].Property("key-id")
		if !ok || v != "TC0P" {
			t.Errorf("key-id = %q, %v", v, ok)
		}
		if _, ok := kids[0].Property("key-desc"); ok {
			t.Error("key-desc should be absent")
		}
	})
}

const sampleProfile = `
platform: test-machine
hwmon:
  temperature-keys:
    cpu:
      key-id: TC0P
      key-desc: CPU Proximity Temp
    gpu:
      key-id: TG0P
  fan-keys:
    fan0:
      key-id: F0Ac
      key-desc: Fan 1
      fan-minimum: F0Mn
`

func TestParse(t *testing.T) {
	root, err := Parse([]byte(sampleProfile))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if root.Name() != "/" {
		t.Errorf("root name = %q, want /", root.Name())
	}

	if v, ok := root.Property("platform"); !ok || v != "test-machine" {
		t.Errorf("platform = %q, %v", v, ok)
	}

	hwmon, ok := root.Child("hwmon")
	if !ok {
		t.Fatal("hwmon node missing")
	}

	temps, ok := hwmon.Child("temperature-keys")
	if !ok {
		t.Fatal("temperature-keys missing")
	}

	kids := temps.Children()
	if len(kids) != 2 {
		t.Fatalf("expected 2 temperature children, got %d", len(kids))
	}
	if kids[0].Name() != "cpu" || kids[1].Name() != "gpu" {
		t.Errorf("document order not preserved: %s, %s", kids[0].Name(), kids[1].Name())
	}

	if v, _ := kids[0].Property("key-desc"); v != "CPU Proximity Temp" {
		t.Errorf("key-desc = %q", v)
	}
	if _, ok := kids[1].Property("key-desc"); ok {
		t.Error("gpu node should have no key-desc")
	}

	fans, ok := hwmon.Child("fan-keys")
	if !ok {
		t.Fatal("fan-keys missing")
	}
	fan0 := fans.Children()[0]
	if v, _ := fan0.Property("fan-minimum"); v != "F0Mn" {
		t.Errorf("fan-minimum = %q", v)
	}
	if _, ok := fan0.Property("fan-target"); ok {
		t.Error("fan-target should be absent")
	}
}

func TestParseNullNode(t *testing.T) {
	root, err := Parse([]byte("hwmon:\n  temperature-keys:\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	hwmon, _ := root.Child("hwmon")
	group, ok := hwmon.Child("temperature-keys")
	if !ok {
		t.Fatal("null value should become an empty node")
	}
	if len(group.Children()) != 0 {
		t.Error("empty node should have no children")
	}
}

func TestParseErrors(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		if _, err := Parse(nil); !errors.Is(err, ErrEmptyDocument) {
			t.Errorf("expected ErrEmptyDocument, got %v", err)
		}
	})

	t.Run("root not a mapping", func(t *testing.T) {
		_, err := Parse([]byte("- a\n- b\n"))
		if err == nil || !strings.Contains(err.Error(), "mapping") {
			t.Errorf("expected mapping error, got %v", err)
		}
	})

	t.Run("sequence rejected with line number", func(t *testing.T) {
		_, err := Parse([]byte("hwmon:\n  keys:\n    - TC0P\n"))
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "line 3") {
			t.Errorf("error should name line 3: %v", err)
		}
	})

	t.Run("duplicate entry", func(t *testing.T) {
		_, err := Parse([]byte("a: x\na: y\n"))
		if err == nil || !strings.Contains(err.Error(), "duplicate") {
			t.Errorf("expected duplicate error, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		if _, err := Parse([]byte("a: [unclosed")); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile("does-not-exist.yaml"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
