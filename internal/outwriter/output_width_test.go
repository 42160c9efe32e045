package outwriter

import (
	"testing"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/stretchr/testify/assert"
)

func TestGetTerminalWidthOverride(t *testing.T) {
	assert.Equal(t, 132, getTerminalWidth(&contract.Config{Width: 132}))
}

func TestGetMaxNameWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		reserved int
		expected int
	}{
		{"clamped to minimum", 60, 50, minNameWidth},
		{"in range", 100, 60, 30},
		{"clamped to maximum", 300, 40, maxNameWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			assert.Equal(t, tt.expected, getMaxNameWidth(cfg, tt.reserved))
		})
	}
}
