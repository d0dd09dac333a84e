package config

import (
	"strings"
	"testing"

	"stepcore/core"
)

const sampleProfile = `
name: bench
enable_pin: 8
motors:
  - step_pin: 2
    dir_pin: 3
    enable_pin: 4
    polarity: 0
    power_mode: always_on
  - step_pin: 5
    dir_pin: 6
    enable_pin: 7
    polarity: 1
    power_mode: idle_when_stopped
`

func TestLoadProfile(t *testing.T) {
	p, err := Load([]byte(sampleProfile))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "bench" {
		t.Errorf("name = %q, want bench", p.Name)
	}
	if p.Wired() != 2 {
		t.Errorf("wired = %d, want 2", p.Wired())
	}

	mc := p.MotorConfigs()
	if mc[0].Polarity != 0 || mc[0].PowerMode != core.PowerAlwaysOn {
		t.Errorf("motor 1 config = %+v", mc[0])
	}
	if mc[1].Polarity != 1 || mc[1].PowerMode != core.PowerIdleWhenStopped {
		t.Errorf("motor 2 config = %+v", mc[1])
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	p, err := Load([]byte("motors:\n  - step_pin: 2\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "unnamed" {
		t.Errorf("name = %q, want unnamed", p.Name)
	}
	if p.Motors[0].PowerMode != "always_on" {
		t.Errorf("power mode = %q, want always_on default", p.Motors[0].PowerMode)
	}
}

func TestValidateCollectsAllFaults(t *testing.T) {
	bad := `
motors:
  - step_pin: 2
    polarity: 3
    power_mode: sometimes
  - step_pin: 2
    power_mode: always_on
`
	_, err := Load([]byte(bad))
	if err == nil {
		t.Fatal("Load accepted invalid profile")
	}
	msg := err.Error()
	for _, want := range []string{"polarity 3", "power mode", "already used"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	if _, err := Load([]byte("motors: [")); err == nil {
		t.Error("Load accepted malformed YAML")
	}
}

func TestDefaultProfileIsValid(t *testing.T) {
	p := Default()
	if err := p.Validate(); err != nil {
		t.Fatalf("default profile invalid: %v", err)
	}
	if p.Wired() != core.Motors {
		t.Errorf("default wired = %d, want %d", p.Wired(), core.Motors)
	}
}
