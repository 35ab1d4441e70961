package memory

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"recent", Config{Type: RecentType, Capacity: 10}, false},
		{"replay", Config{Type: ReplayType, Capacity: 1}, false},
		{"unknown type", Config{Type: "prioritized", Capacity: 10}, true},
		{"zero capacity", Config{Type: RecentType, Capacity: 0}, true},
		{"negative capacity", Config{Type: ReplayType, Capacity: -3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.True(t, IsConfiguration(err), "have %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfigCreate(t *testing.T) {
	m, err := Config{Type: RecentType, Capacity: 5}.Create(3, 2, 0, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Recent{}, m)
	assert.Equal(t, 5, m.Capacity())
	assert.Equal(t, 3, m.FeatureSize())
	assert.Equal(t, 2, m.ActionSize())

	m, err = Config{Type: ReplayType, Capacity: 5}.Create(3, 2, 1, nil)
	require.NoError(t, err)
	assert.IsType(t, &Replay{}, m)

	_, err = Config{Type: ReplayType}.Create(3, 2, 1, nil)
	assert.True(t, IsConfiguration(err))

	_, err = Config{Type: RecentType, Capacity: 5}.Create(-1, 2, 1, nil)
	assert.True(t, IsConfiguration(err))
}

func TestCollector(t *testing.T) {
	m := newTestRecent(t, 8)
	fill(t, m, 11, 3, 9)

	c := NewCollector("test", m)
	registry := prometheus.NewPedanticRegistry()
	require.NoError(t, registry.Register(c))

	expected := `
# HELP test_memory_buffer_index Number of timesteps ever written to the memory
# TYPE test_memory_buffer_index gauge
test_memory_buffer_index 11
# HELP test_memory_capacity Maximum number of timesteps held
# TYPE test_memory_capacity gauge
test_memory_capacity 8
# HELP test_memory_episodes Number of episodes ever completed
# TYPE test_memory_episodes gauge
test_memory_episodes 2
# HELP test_memory_size Number of timesteps holding valid data
# TYPE test_memory_size gauge
test_memory_size 8
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected))
	assert.NoError(t, err)
}
