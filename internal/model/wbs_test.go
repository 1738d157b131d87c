package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Backend Developer", "backenddeveloper"},
		{"  UI/UX Designer  ", "uiuxdesigner"},
		{"QA Engineer", "qaengineer"},
		{"C# Developer", "c#developer"},
		{"devops", "devops"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeRole(tt.in), "input %q", tt.in)
	}
}

func TestSettingsMultiplierFor(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 1.0, s.MultiplierFor(LevelLow))
	assert.Equal(t, 1.3, s.MultiplierFor(LevelMedium))
	assert.Equal(t, 1.6, s.MultiplierFor(LevelHigh))
	assert.Equal(t, 2.0, s.MultiplierFor(LevelExtreme))

	// Unrecognized levels silently fall back to 1.0
	assert.Equal(t, 1.0, s.MultiplierFor("legendary"))
	assert.Equal(t, 1.0, s.MultiplierFor(""))
}
