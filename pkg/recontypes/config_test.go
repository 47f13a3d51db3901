package recontypes

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScanConfig_Valid(t *testing.T) {
	cfg := DefaultScanConfig()
	v := validator.New()
	require.NoError(t, v.Struct(cfg))

	assert.Equal(t, 3, cfg.SmartScanThreshold)
	assert.Contains(t, cfg.PresetExtraPorts, 3306)
	assert.Contains(t, cfg.PresetExtraPorts, 5900)
	assert.Contains(t, cfg.PresetExtraPorts, 5060)
}

func TestDefaultScanConfig_Durations(t *testing.T) {
	cfg := DefaultScanConfig()
	assert.Equal(t, 5*1e9, float64(cfg.BannerTimeout()))
	assert.Equal(t, 8*1e9, float64(cfg.HTTPTimeout()))
}

func TestScanConfig_RejectsInvalidConcurrency(t *testing.T) {
	cfg := DefaultScanConfig()
	cfg.MaxConcurrentTargets = 0

	v := validator.New()
	err := v.Struct(cfg)
	require.Error(t, err)
}
