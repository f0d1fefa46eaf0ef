package checkpoint

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Defaults used when a plan leaves fields unset. Timeouts can be tuned per
// checkpoint; the fixed-delay fallbacks are plan data, not code constants.
const (
	DefaultTargetURL = "http://localhost:4321/neo-tokyo-rival-academies/"
	DefaultOutputDir = "verification"
	DefaultEngine    = "playwright"

	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	DefaultWaitTimeout       = 30 * time.Second
	DefaultClickTimeout      = 5 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
)

// Viewport is the fixed page size for a run.
type Viewport struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Plan is a complete, declarative verification sequence for one target page.
type Plan struct {
	TargetURL string   `yaml:"target_url" json:"target_url"`
	Viewport  Viewport `yaml:"viewport,omitempty" json:"viewport"`
	OutputDir string   `yaml:"output_dir,omitempty" json:"output_dir"`
	// Headless defaults to true when unset.
	Headless *bool  `yaml:"headless,omitempty" json:"headless,omitempty"`
	Engine   string `yaml:"engine,omitempty" json:"engine,omitempty"`
	// NavigationTimeout bounds the initial page load.
	NavigationTimeout Duration     `yaml:"navigation_timeout,omitempty" json:"navigation_timeout,omitempty"`
	Checkpoints       []Checkpoint `yaml:"checkpoints" json:"checkpoints"`
}

// Load reads and validates a plan from a YAML file. Defaults are applied for
// unset fields.
func Load(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan: %w", err)
	}
	defer f.Close()

	plan, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", path, err)
	}
	return plan, nil
}

// Parse reads and validates a plan from YAML. Unknown fields are rejected so
// typos in plan files surface instead of silently changing timing behavior.
func Parse(r io.Reader) (*Plan, error) {
	var plan Plan
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}

	plan.ApplyDefaults()
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ApplyDefaults fills unset plan and checkpoint fields with defaults.
func (p *Plan) ApplyDefaults() {
	if p.TargetURL == "" {
		p.TargetURL = DefaultTargetURL
	}
	if p.OutputDir == "" {
		p.OutputDir = DefaultOutputDir
	}
	if p.Engine == "" {
		p.Engine = DefaultEngine
	}
	if p.Viewport.Width == 0 {
		p.Viewport.Width = DefaultViewportWidth
	}
	if p.Viewport.Height == 0 {
		p.Viewport.Height = DefaultViewportHeight
	}
	if p.NavigationTimeout == 0 {
		p.NavigationTimeout = Duration(DefaultNavigationTimeout)
	}

	for i := range p.Checkpoints {
		cp := &p.Checkpoints[i]
		if cp.Wait != nil && cp.Wait.Timeout == 0 {
			cp.Wait.Timeout = Duration(DefaultWaitTimeout)
		}
		if cp.Click != nil && cp.Click.Timeout == 0 {
			cp.Click.Timeout = Duration(DefaultClickTimeout)
		}
	}
}

// Validate checks the plan for structural errors.
func (p *Plan) Validate() error {
	if p.TargetURL == "" {
		return fmt.Errorf("target_url is required")
	}
	if p.Viewport.Width <= 0 || p.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must have positive dimensions, got %dx%d", p.Viewport.Width, p.Viewport.Height)
	}
	if len(p.Checkpoints) == 0 {
		return fmt.Errorf("plan has no checkpoints")
	}

	for _, cp := range p.Checkpoints {
		if err := cp.Validate(); err != nil {
			return err
		}
	}

	names := lo.Map(p.Checkpoints, func(cp Checkpoint, _ int) string { return cp.Name })
	if dupes := lo.FindDuplicates(names); len(dupes) > 0 {
		return fmt.Errorf("duplicate checkpoint names: %v", dupes)
	}

	return nil
}

// HeadlessEnabled reports whether the run uses a headless browser (the
// default).
func (p *Plan) HeadlessEnabled() bool {
	return p.Headless == nil || *p.Headless
}

// DefaultPlan returns the canonical menu, start, intro, gameplay sequence
// against the default local target.
func DefaultPlan() *Plan {
	plan := &Plan{
		TargetURL: DefaultTargetURL,
		OutputDir: DefaultOutputDir,
		Checkpoints: []Checkpoint{
			{
				Name: "menu",
				// The canvas confirms the 3D scene loaded; the settle delay
				// covers the splash animation, which has no DOM signal.
				Wait:   &Wait{Selector: "canvas"},
				Settle: Duration(5 * time.Second),
			},
			{
				Name:   "start",
				Click:  &Click{Text: "INITIATE STORY MODE"},
				Settle: Duration(2 * time.Second),
			},
			{
				Name: "intro",
				Repeat: &Repeat{
					At:    Point{X: 640, Y: 360},
					Count: 5,
					Delay: Duration(time.Second),
				},
				Settle: Duration(2 * time.Second),
			},
			{
				Name: "gameplay",
				Wait: &Wait{Delay: Duration(3 * time.Second)},
			},
		},
	}
	plan.ApplyDefaults()
	return plan
}
