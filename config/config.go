// Package config loads the description of a trajectory problem: where each
// endeffector starts, its contact schedule, and how densely to sample the
// result.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"github.com/xlrobotics/towr/gait"
	"github.com/xlrobotics/towr/math2d"
	"github.com/xlrobotics/towr/schedule"
	"github.com/xlrobotics/towr/spline"
)

const (
	// EnvPrefix is stripped from environment variables before they override
	// file values. TRAJOPT_DT -> dt, TRAJOPT_GAIT_SWING_DURATION -> gait.swing_duration
	EnvPrefix = "TRAJOPT_"

	// DefaultDt is the sampling interval used when none is configured.
	DefaultDt = 0.01

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// ErrInvalidConfig is returned for files which parse, but don't describe a
// usable problem.
var ErrInvalidConfig = errors.New("config: invalid configuration")

var log = logrus.WithFields(logrus.Fields{
	"pkg": "config",
})

type Point struct {
	X float64 `koanf:"x"`
	Y float64 `koanf:"y"`
}

func (p Point) Vector() math2d.Vector2 {
	return math2d.Vector2{X: p.X, Y: p.Y}
}

type Phase struct {
	Kind     string  `koanf:"kind"`
	Duration float64 `koanf:"duration"`
	Foot     int     `koanf:"foot"`
}

type Endeffector struct {
	Initial Point   `koanf:"initial"`
	Phases  []Phase `koanf:"phases"`
}

// Gait describes a generated schedule, as an alternative to listing every
// phase. See gait.Gait. Groups, cycles and support duration default to
// those of gait.TheGait.
type Gait struct {
	Legs            int     `koanf:"legs"`
	Groups          int     `koanf:"groups"`
	Cycles          int     `koanf:"cycles"`
	SwingDuration   float64 `koanf:"swing_duration"`
	SupportDuration float64 `koanf:"support_duration"`
	Initial         []Point `koanf:"initial"`
}

type Config struct {
	// Sampling interval (in seconds) of the output trajectory.
	Dt float64 `koanf:"dt"`

	Endeffectors []Endeffector `koanf:"endeffectors"`
	Gait         *Gait         `koanf:"gait"`
}

// Load reads the YAML file at path, then applies environment overrides.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if len(content) > maxConfigFileSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrInvalidConfig, path, maxConfigFileSize)
	}

	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Debugf("loaded %s", path)
	return cfg, nil
}

// Parse is Load for YAML which is already in memory.
func Parse(content []byte) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Dt == 0 {
		cfg.Dt = DefaultDt
	}

	if !(cfg.Dt > 0) {
		return nil, fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, cfg.Dt)
	}

	return cfg, nil
}

// envKey maps TRAJOPT_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// Problem returns the initial contact positions and the contact schedule
// described by the config. A gait takes precedence over explicit phases.
func (c *Config) Problem() ([]math2d.Vector2, schedule.ContactSchedule, error) {
	if c.Gait != nil && c.Gait.Legs > 0 {
		return c.gaitProblem()
	}

	if len(c.Endeffectors) == 0 {
		return nil, nil, fmt.Errorf("%w: neither endeffectors nor gait given", ErrInvalidConfig)
	}

	initial := make([]math2d.Vector2, len(c.Endeffectors))
	cs := make(schedule.ContactSchedule, len(c.Endeffectors))

	for ee, e := range c.Endeffectors {
		initial[ee] = e.Initial.Vector()
		cs[ee] = make(schedule.EffectorSchedule, len(e.Phases))

		for i, p := range e.Phases {
			kind, err := spline.ParseKind(p.Kind)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: endeffector %d phase %d: %v", ErrInvalidConfig, ee, i, err)
			}

			cs[ee][i] = schedule.PhaseSpec{Kind: kind, Duration: p.Duration, Foot: p.Foot}
		}
	}

	if err := cs.Validate(); err != nil {
		return nil, nil, err
	}

	return initial, cs, nil
}

// gaitProblem starts from gait.TheGait and overrides whatever the config
// sets explicitly.
func (c *Config) gaitProblem() ([]math2d.Vector2, schedule.ContactSchedule, error) {
	g := gait.TheGait(c.Gait.Legs, c.Gait.SwingDuration)

	if c.Gait.Groups != 0 {
		g.Groups = c.Gait.Groups
	}

	if c.Gait.Cycles != 0 {
		g.Cycles = c.Gait.Cycles
	}

	if c.Gait.SupportDuration != 0 {
		g.SupportDuration = c.Gait.SupportDuration
	}

	if len(c.Gait.Initial) != g.Legs {
		return nil, nil, fmt.Errorf("%w: gait has %d legs but %d initial positions", ErrInvalidConfig, g.Legs, len(c.Gait.Initial))
	}

	cs, err := g.Schedule()
	if err != nil {
		return nil, nil, err
	}

	initial := make([]math2d.Vector2, g.Legs)
	for i, p := range c.Gait.Initial {
		initial[i] = p.Vector()
	}

	return initial, cs, nil
}
