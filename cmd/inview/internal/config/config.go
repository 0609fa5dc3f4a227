// Package config loads simulation scenarios.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/inview/pkg/intersect"
	"github.com/go-drift/inview/pkg/viewport"
)

// DefaultSchema is assumed when a scenario does not declare one.
const DefaultSchema = "v1.0.0"

// Scenario describes a scene, the observation options and a script of
// scroll, resize and mount steps.
type Scenario struct {
	Schema   string         `yaml:"schema,omitempty"`
	Viewport Size           `yaml:"viewport"`
	Debounce *time.Duration `yaml:"debounce,omitempty"`
	Targets  []Target       `yaml:"targets"`
	Observe  Observe        `yaml:"observe"`
	Steps    []Step         `yaml:"steps"`
}

// Size is a width and height in pixels.
type Size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Offset is a scroll position or delta.
type Offset struct {
	X float64 `yaml:"x,omitempty"`
	Y float64 `yaml:"y,omitempty"`
}

// Target is an element placed in content coordinates.
type Target struct {
	Name    string  `yaml:"name"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Mounted *bool   `yaml:"mounted,omitempty"`
}

// IsMounted reports whether the target starts mounted. Targets are mounted
// unless stated otherwise.
func (t Target) IsMounted() bool {
	return t.Mounted == nil || *t.Mounted
}

// Observe configures the watcher and the tracker.
type Observe struct {
	Threshold  []float64 `yaml:"threshold,omitempty"`
	Root       string    `yaml:"root,omitempty"`
	RootMargin string    `yaml:"root_margin,omitempty"`
	Once       bool      `yaml:"once,omitempty"`
	// InvalidateOnMount rebuilds the session whenever a step mounts or
	// unmounts a target, so newly mounted targets get registered.
	InvalidateOnMount bool `yaml:"invalidate_on_mount,omitempty"`
}

// Options converts the section to watcher options, leaving Root unset.
func (o Observe) Options() intersect.Options {
	return intersect.Options{Threshold: o.Threshold, RootMargin: o.RootMargin}
}

// Step is one scripted change. Every set field is applied, in the order
// move, mount, unmount, resize, scroll_to, scroll_by, wait.
type Step struct {
	Label    string        `yaml:"label,omitempty"`
	Move     *Move         `yaml:"move,omitempty"`
	Mount    []string      `yaml:"mount,omitempty"`
	Unmount  []string      `yaml:"unmount,omitempty"`
	Resize   *Size         `yaml:"resize,omitempty"`
	ScrollTo *Offset       `yaml:"scroll_to,omitempty"`
	ScrollBy *Offset       `yaml:"scroll_by,omitempty"`
	Wait     time.Duration `yaml:"wait,omitempty"`
}

// Move relocates a target.
type Move struct {
	Target string  `yaml:"target"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenario is empty")
		}
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.resolve(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// DebounceDelay returns the configured resize debounce or the default.
func (sc *Scenario) DebounceDelay() time.Duration {
	if sc.Debounce == nil {
		return viewport.DefaultDebounce
	}
	return *sc.Debounce
}

func (sc *Scenario) resolve() error {
	sc.Schema = strings.TrimSpace(sc.Schema)
	if sc.Schema == "" {
		sc.Schema = DefaultSchema
	}
	if err := validateSchema(sc.Schema); err != nil {
		return err
	}

	if sc.Viewport.Width <= 0 || sc.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must have a positive width and height (got %vx%v)", sc.Viewport.Width, sc.Viewport.Height)
	}
	if sc.Debounce != nil && *sc.Debounce < 0 {
		return fmt.Errorf("debounce cannot be negative (got %v)", *sc.Debounce)
	}

	if len(sc.Targets) == 0 {
		return fmt.Errorf("scenario declares no targets")
	}
	names := make(map[string]bool, len(sc.Targets))
	for i, t := range sc.Targets {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return fmt.Errorf("targets[%d] has no name", i)
		}
		if names[name] {
			return fmt.Errorf("duplicate target name %q", name)
		}
		if t.Width < 0 || t.Height < 0 {
			return fmt.Errorf("target %q has a negative size", name)
		}
		sc.Targets[i].Name = name
		names[name] = true
	}

	if err := sc.Observe.Options().Validate(); err != nil {
		return fmt.Errorf("invalid observe options: %w", err)
	}
	if sc.Observe.Root != "" && !names[sc.Observe.Root] {
		return fmt.Errorf("observe.root %q is not a declared target", sc.Observe.Root)
	}

	for i, step := range sc.Steps {
		refs := append(append([]string(nil), step.Mount...), step.Unmount...)
		if step.Move != nil {
			refs = append(refs, step.Move.Target)
		}
		for _, name := range refs {
			if !names[name] {
				return fmt.Errorf("steps[%d] references unknown target %q", i, name)
			}
		}
		if step.Resize != nil && (step.Resize.Width <= 0 || step.Resize.Height <= 0) {
			return fmt.Errorf("steps[%d] resizes to a non-positive size", i)
		}
		if step.Wait < 0 {
			return fmt.Errorf("steps[%d] waits a negative duration", i)
		}
	}
	return nil
}

func validateSchema(schema string) error {
	if !semver.IsValid(schema) {
		return fmt.Errorf("schema %q is not a semantic version", schema)
	}
	if major := semver.Major(schema); major != semver.Major(DefaultSchema) {
		return fmt.Errorf("unsupported schema major version %s (want %s)", major, semver.Major(DefaultSchema))
	}
	return nil
}
