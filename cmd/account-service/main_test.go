package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		env       string
		wantDebug bool
	}{
		{envLocal, true},
		{envDev, true},
		{envProd, false},
		{"unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			logger := setupLogger(tt.env)
			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))
			assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
		})
	}
}
