package config

// Machine profiles. A profile names the board's pin assignments and the
// per-motor settings the core consumes at init. Profiles are YAML so they
// can live next to the machine they describe.

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"stepcore/core"
)

// MotorProfile is one motor channel's configuration.
type MotorProfile struct {
	// StepPin of 0 (or a channel simply absent from the profile) marks the
	// channel as not wired on this board.
	StepPin   int `yaml:"step_pin"`
	DirPin    int `yaml:"dir_pin"`
	EnablePin int `yaml:"enable_pin"`

	// Polarity 1 inverts the direction line.
	Polarity uint8 `yaml:"polarity"`

	// PowerMode is "always_on" or "idle_when_stopped".
	PowerMode string `yaml:"power_mode"`
}

// Profile is a full machine description.
type Profile struct {
	Name      string                    `yaml:"name"`
	EnablePin int                       `yaml:"enable_pin"`
	Motors    [core.Motors]MotorProfile `yaml:"motors"`
}

const (
	powerAlwaysOn        = "always_on"
	powerIdleWhenStopped = "idle_when_stopped"
)

// Load parses and validates a profile.
func Load(data []byte) (*Profile, error) {
	// Motors decodes through a slice so a profile may list fewer channels
	// than core.Motors; the channels it leaves out stay zero (not wired).
	var raw struct {
		Name      string         `yaml:"name"`
		EnablePin int            `yaml:"enable_pin"`
		Motors    []MotorProfile `yaml:"motors"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse machine profile")
	}
	if len(raw.Motors) > core.Motors {
		return nil, errors.Errorf("parse machine profile: %d motors listed, at most %d",
			len(raw.Motors), core.Motors)
	}
	p := Profile{Name: raw.Name, EnablePin: raw.EnablePin}
	copy(p.Motors[:], raw.Motors)
	applyDefaults(&p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadFile reads and parses a profile from disk.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read machine profile %s", path)
	}
	p, err := Load(data)
	if err != nil {
		return nil, errors.Wrapf(err, "profile %s", path)
	}
	return p, nil
}

// applyDefaults fills in missing values with what most boards want.
func applyDefaults(p *Profile) {
	if p.Name == "" {
		p.Name = "unnamed"
	}
	for i := range p.Motors {
		if p.Motors[i].PowerMode == "" {
			p.Motors[i].PowerMode = powerAlwaysOn
		}
	}
}

// Validate collects every fault in the profile rather than stopping at the
// first, so a hand-edited file gets one complete report.
func (p *Profile) Validate() error {
	var errs error
	seen := map[int]int{}
	for i, m := range p.Motors {
		if m.Polarity > 1 {
			errs = multierr.Append(errs,
				errors.Errorf("motor %d: polarity %d out of range", i+1, m.Polarity))
		}
		if m.PowerMode != powerAlwaysOn && m.PowerMode != powerIdleWhenStopped {
			errs = multierr.Append(errs,
				errors.Errorf("motor %d: unknown power mode %q", i+1, m.PowerMode))
		}
		if m.StepPin > 0 {
			if prev, dup := seen[m.StepPin]; dup {
				errs = multierr.Append(errs,
					errors.Errorf("motor %d: step pin %d already used by motor %d",
						i+1, m.StepPin, prev))
			}
			seen[m.StepPin] = i + 1
		}
	}
	return errs
}

// MotorConfigs converts the profile into the core's read-only per-motor
// configuration.
func (p *Profile) MotorConfigs() [core.Motors]core.MotorConfig {
	var mc [core.Motors]core.MotorConfig
	for i, m := range p.Motors {
		mc[i].Polarity = m.Polarity
		if m.PowerMode == powerIdleWhenStopped {
			mc[i].PowerMode = core.PowerIdleWhenStopped
		}
	}
	return mc
}

// Wired returns the number of leading motor channels with a step pin.
func (p *Profile) Wired() int {
	n := 0
	for _, m := range p.Motors {
		if m.StepPin <= 0 {
			break
		}
		n++
	}
	return n
}

// Default returns the six-motor reference profile.
func Default() *Profile {
	p := &Profile{Name: "reference", EnablePin: 8}
	for i := range p.Motors {
		p.Motors[i] = MotorProfile{
			StepPin:   2 + i*3,
			DirPin:    3 + i*3,
			EnablePin: 4 + i*3,
			PowerMode: powerAlwaysOn,
		}
	}
	return p
}
