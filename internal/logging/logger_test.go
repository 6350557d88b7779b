package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	tests := []struct {
		level, env string
		want       zapcore.Level
	}{
		{"debug", "development", zapcore.DebugLevel},
		{"WARN", "production", zapcore.WarnLevel},
		{"nonsense", "prod", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level+"_"+tt.env, func(t *testing.T) {
			lg, err := Init(tt.level, tt.env)
			require.NoError(t, err)
			defer lg.Closer()

			assert.Equal(t, tt.want, lg.Level.Level())
			assert.True(t, lg.Base.Core().Enabled(tt.want))
			assert.False(t, lg.Base.Core().Enabled(tt.want-1))
		})
	}
}
