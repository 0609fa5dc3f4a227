// Package sim replays a scenario against the software watcher and records
// every visibility vector the tracker publishes.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-drift/inview/cmd/inview/internal/config"
	"github.com/go-drift/inview/pkg/clock"
	"github.com/go-drift/inview/pkg/debounce"
	"github.com/go-drift/inview/pkg/geometry"
	"github.com/go-drift/inview/pkg/intersect"
	"github.com/go-drift/inview/pkg/logging"
	"github.com/go-drift/inview/pkg/metrics"
	"github.com/go-drift/inview/pkg/observe"
	"github.com/go-drift/inview/pkg/viewport"
	"github.com/go-drift/inview/pkg/visibility"
)

// InitialLabel labels emissions produced by the first build.
const InitialLabel = "initial"

// Emission is one published visibility vector.
type Emission struct {
	Step   int    `yaml:"step"`
	Label  string `yaml:"label,omitempty"`
	Values []bool `yaml:"values,flow"`
}

// Report is the outcome of a run.
type Report struct {
	Targets   []string   `yaml:"targets,flow"`
	Emissions []Emission `yaml:"emissions"`
	Final     []bool     `yaml:"final,flow"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger passed to the session manager.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithCollector feeds session and emission counters to c.
func WithCollector(c *metrics.Collector) Option {
	return func(r *Runner) { r.collector = c }
}

// WithEmitHandler calls fn for every emission as it happens.
func WithEmitHandler(fn func(Emission)) Option {
	return func(r *Runner) { r.onEmit = fn }
}

// Runner replays a scenario.
type Runner struct {
	scenario  *config.Scenario
	logger    *slog.Logger
	collector *metrics.Collector
	onEmit    func(Emission)
}

// New creates a runner for sc.
func New(sc *config.Scenario, opts ...Option) *Runner {
	r := &Runner{scenario: sc, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// run is the mutable state of one replay.
type run struct {
	scene      *intersect.Scene
	provider   *viewport.Metrics
	clock      *clock.Manual
	elements   map[string]*intersect.Element
	refs       map[string]*observe.Ref
	generation int
}

// Run replays the scenario on a virtual clock. The clock is installed for
// the duration of the run, so Run must not overlap with other clock users.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	sc := r.scenario

	st := &run{
		scene:    intersect.NewScene(toSize(sc.Viewport)),
		provider: viewport.NewMetrics(toSize(sc.Viewport)),
		clock:    clock.NewManual(time.Time{}),
		elements: make(map[string]*intersect.Element, len(sc.Targets)),
		refs:     make(map[string]*observe.Ref, len(sc.Targets)),
	}
	defer st.clock.Use()()

	report := &Report{}
	ordered := make([]*observe.Ref, 0, len(sc.Targets))
	for _, t := range sc.Targets {
		el := st.scene.Add(t.Name, geometry.RectFromLTWH(t.X, t.Y, t.Width, t.Height))
		ref := observe.NewRef(nil)
		if t.IsMounted() {
			ref.Set(el)
		} else {
			st.scene.Detach(el)
		}
		st.elements[t.Name] = el
		st.refs[t.Name] = ref
		ordered = append(ordered, ref)
		report.Targets = append(report.Targets, t.Name)
	}
	refs := observe.Many(ordered...)

	signal := viewport.Debounce(st.provider, sc.DebounceDelay())
	defer signal.Dispose()

	managerOpts := []observe.Option{observe.WithViewport(signal), observe.WithLogger(r.logger)}
	var trackerOpts []visibility.Option
	if r.collector != nil {
		managerOpts = append(managerOpts, observe.WithHooks(r.collector.Hooks()))
		trackerOpts = append(trackerOpts, visibility.WithRecorder(r.collector.RecordEmission))
	}
	tracker := visibility.New(observe.New(st.scene, managerOpts...), trackerOpts...)
	defer tracker.Dispose()

	options := visibility.Options{Options: sc.Observe.Options(), Once: sc.Observe.Once}
	if sc.Observe.Root != "" {
		options.Root = st.elements[sc.Observe.Root]
	}

	step, label := 0, InitialLabel
	tracker.AddListener(func(values []bool) {
		e := Emission{Step: step, Label: label, Values: values}
		report.Emissions = append(report.Emissions, e)
		r.logger.Debug("visibility changed", "step", step, "label", label, "values", values)
		if r.onEmit != nil {
			r.onEmit(e)
		}
	})

	build := func() {
		debounce.StepAll()
		var invalidators []any
		if sc.Observe.InvalidateOnMount {
			invalidators = append(invalidators, st.generation)
		}
		tracker.Observe(refs, options, invalidators...)
		st.scene.Flush()
	}

	build()
	for i, s := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation interrupted at step %d: %w", i+1, err)
		}
		step, label = i+1, s.Label
		st.apply(s)
		build()
	}

	report.Final = tracker.Values()
	return report, nil
}

func (st *run) apply(s config.Step) {
	if m := s.Move; m != nil {
		st.scene.Move(st.elements[m.Target], geometry.RectFromLTWH(m.X, m.Y, m.Width, m.Height))
	}
	for _, name := range s.Mount {
		st.refs[name].Set(st.elements[name])
		st.scene.Attach(st.elements[name])
		st.generation++
	}
	for _, name := range s.Unmount {
		st.refs[name].Set(nil)
		st.scene.Detach(st.elements[name])
		st.generation++
	}
	if s.Resize != nil {
		size := toSize(*s.Resize)
		st.scene.Resize(size)
		st.provider.SetSize(size)
	}
	if s.ScrollTo != nil {
		st.scene.ScrollTo(geometry.Offset{X: s.ScrollTo.X, Y: s.ScrollTo.Y})
	}
	if s.ScrollBy != nil {
		st.scene.ScrollBy(s.ScrollBy.X, s.ScrollBy.Y)
	}
	if s.Wait > 0 {
		st.clock.Advance(s.Wait)
	}
}

func toSize(s config.Size) geometry.Size {
	return geometry.Size{Width: s.Width, Height: s.Height}
}
