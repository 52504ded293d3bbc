package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/options-edge/internal/models"
)

func TestNewRegistryDefaults(t *testing.T) {
	r, err := NewRegistry(DefaultRegistryConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"gamma_scalp", "high_delta", "mispricing", "premium_buy", "premium_sell"}, r.Names())
	assert.Equal(t, DefaultMinScore, r.MinScore("premium_sell"))
	for _, d := range r.Detectors() {
		assert.Equal(t, GenerationEnhanced, d.Generation())
	}
}

func TestNewRegistryBothGenerations(t *testing.T) {
	r, err := NewRegistry(RegistryConfig{
		Generations:       []Generation{GenerationEnhanced, GenerationSimple},
		MinScore:          55,
		DetectorMinScores: map[string]float64{"volume_anomaly": 40},
	})
	require.NoError(t, err)

	assert.Len(t, r.Detectors(), 8)
	assert.Equal(t, 55.0, r.MinScore("mispricing"))
	assert.Equal(t, 40.0, r.MinScore("volume_anomaly"))

	assert.True(t, r.Accept(&models.Candidate{Detector: "volume_anomaly", Score: 45}))
	assert.False(t, r.Accept(&models.Candidate{Detector: "mispricing", Score: 54.9}))
	assert.True(t, r.Accept(&models.Candidate{Detector: "mispricing", Score: 55}))
	assert.False(t, r.Accept(nil))
}

func TestNewRegistryErrors(t *testing.T) {
	_, err := NewRegistry(RegistryConfig{Generations: []Generation{"legacy"}})
	assert.Error(t, err)

	_, err = NewRegistry(RegistryConfig{MinScore: 120})
	assert.Error(t, err)

	_, err = NewRegistry(RegistryConfig{DetectorMinScores: map[string]float64{"mispricing": -1}})
	assert.Error(t, err)

	_, err = NewRegistryWith(DefaultRegistryConfig(), NewMispricingDetector(), NewMispricingDetector())
	assert.Error(t, err)
}

func TestParseGeneration(t *testing.T) {
	g, err := ParseGeneration("simple")
	require.NoError(t, err)
	assert.Equal(t, GenerationSimple, g)

	_, err = ParseGeneration("")
	assert.Error(t, err)
}
