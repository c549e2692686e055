package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsOutOfRangeThreshold(t *testing.T) {
	cfg := Defaults()
	cfg.FragmentMatchThreshold = 1.5
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fragment_match_threshold")
}

func TestValidate_RejectsZeroMinFragmentLength(t *testing.T) {
	cfg := Defaults()
	cfg.MinFragmentLength = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min_fragment_length")
}

func TestValidate_RejectsNonPositiveFlushInterval(t *testing.T) {
	cfg := Defaults()
	cfg.FlushInterval = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "flush_interval")
}

func TestValidate_RetentionWindowRequiredWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.RetentionEnabled = true
	cfg.RetentionWindow = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retention_window")
}
