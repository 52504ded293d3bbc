package strategy

import (
	"fmt"
	"sort"

	"github.com/yourusername/options-edge/internal/models"
)

// DefaultMinScore is the minimum candidate score kept by a scan
const DefaultMinScore = 50.0

// RegistryConfig selects detectors and score thresholds
type RegistryConfig struct {
	Generations       []Generation
	MinScore          float64
	DetectorMinScores map[string]float64
}

// DefaultRegistryConfig enables the enhanced detector set
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		Generations: []Generation{GenerationEnhanced},
		MinScore:    DefaultMinScore,
	}
}

// Registry holds the active detectors in evaluation order
type Registry struct {
	detectors []Detector
	minScore  float64
	overrides map[string]float64
}

// AllDetectors returns a fresh instance of every built-in detector
func AllDetectors() []Detector {
	return []Detector{
		NewPremiumSellDetector(),
		NewPremiumBuyDetector(),
		NewGammaScalpDetector(),
		NewMispricingDetector(),
		NewHighDeltaDetector(),
		NewIVExtremeDetector(),
		NewVolumeAnomalyDetector(),
		NewTimeValueDecayDetector(),
	}
}

// NewRegistry builds a registry from the built-in detectors of the enabled generations
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	gens := cfg.Generations
	if len(gens) == 0 {
		gens = []Generation{GenerationEnhanced}
	}
	enabled := make(map[Generation]bool, len(gens))
	for _, g := range gens {
		if _, err := ParseGeneration(string(g)); err != nil {
			return nil, err
		}
		enabled[g] = true
	}

	var detectors []Detector
	for _, d := range AllDetectors() {
		if enabled[d.Generation()] {
			detectors = append(detectors, d)
		}
	}
	return newRegistry(cfg, detectors)
}

// NewRegistryWith builds a registry around explicit detectors
func NewRegistryWith(cfg RegistryConfig, detectors ...Detector) (*Registry, error) {
	return newRegistry(cfg, detectors)
}

func newRegistry(cfg RegistryConfig, detectors []Detector) (*Registry, error) {
	minScore := cfg.MinScore
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if minScore > MaxScore {
		return nil, fmt.Errorf("min score %.1f exceeds %.0f", minScore, MaxScore)
	}

	seen := make(map[string]bool, len(detectors))
	for _, d := range detectors {
		if seen[d.Name()] {
			return nil, fmt.Errorf("duplicate detector: %s", d.Name())
		}
		seen[d.Name()] = true
	}

	overrides := make(map[string]float64, len(cfg.DetectorMinScores))
	for name, v := range cfg.DetectorMinScores {
		if v < 0 || v > MaxScore {
			return nil, fmt.Errorf("min score for %s out of range: %.1f", name, v)
		}
		overrides[name] = v
	}

	return &Registry{
		detectors: append([]Detector(nil), detectors...),
		minScore:  minScore,
		overrides: overrides,
	}, nil
}

// Detectors returns the registered detectors
func (r *Registry) Detectors() []Detector {
	return append([]Detector(nil), r.detectors...)
}

// Names returns the detector names sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.detectors))
	for _, d := range r.detectors {
		names = append(names, d.Name())
	}
	sort.Strings(names)
	return names
}

// MinScore returns the threshold for a detector
func (r *Registry) MinScore(detector string) float64 {
	if v, ok := r.overrides[detector]; ok {
		return v
	}
	return r.minScore
}

// Accept reports whether a candidate clears its detector's threshold
func (r *Registry) Accept(c *models.Candidate) bool {
	return c != nil && c.Score >= r.MinScore(c.Detector)
}
