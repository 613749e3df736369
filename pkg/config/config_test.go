package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astnav/pkg/config"
)

func TestConfigClone(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("deep copies slices", func(t *testing.T) {
		original := config.NewConfig()
		clone := original.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, original, clone)

		clone.Resolver.ForwardKinds[0] = "Changed"
		clone.Server.Args = append(clone.Server.Args, "--extra")
		assert.Equal(t, "Function", original.Resolver.ForwardKinds[0])
		assert.Equal(t, []string{"--log=error"}, original.Server.Args)
	})
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	cfg, err := config.Unmarshal([]byte(`
backend: treesitter
query_timeout: 750ms
resolver:
  lookback: 8
  forward_kinds: [Call]
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, config.BackendTreeSitter, cfg.Backend)
	assert.Equal(t, 750*time.Millisecond, cfg.QueryTimeout)
	assert.Equal(t, 8, cfg.Resolver.Lookback)
	assert.Zero(t, cfg.Resolver.Lookahead)
	assert.Equal(t, []string{"Call"}, cfg.Resolver.ForwardKinds)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestUnmarshal_Invalid(t *testing.T) {
	t.Parallel()

	_, err := config.Unmarshal([]byte("backend: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse yaml")

	_, err = config.Unmarshal([]byte("resolver:\n  look_back: 3\n"))
	require.Error(t, err, "unknown keys are rejected")
	assert.Contains(t, err.Error(), "look_back")
}

func TestUnmarshal_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := config.Unmarshal(nil)
	require.NoError(t, err)
	assert.Equal(t, &config.Config{}, cfg)
}

func TestMarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	original := config.NewConfig()
	data, err := config.Marshal(original, config.DefaultTemplateHeader())
	require.NoError(t, err)
	assert.Contains(t, string(data), "# astnav configuration")
	assert.Contains(t, string(data), "query_timeout: 2s")

	parsed, err := config.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, original.Backend, parsed.Backend)
	assert.Equal(t, original.Resolver, parsed.Resolver)
	assert.Equal(t, original.QueryTimeout, parsed.QueryTimeout)
}

func TestGenerateTemplate(t *testing.T) {
	t.Parallel()

	data, err := config.GenerateTemplate(config.TemplateOptions{})
	require.NoError(t, err)

	parsed, err := config.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig().Resolver, parsed.Resolver)
	assert.Equal(t, config.DefaultQueryTimeout, parsed.QueryTimeout)

	jsonData, err := config.GenerateTemplate(config.TemplateOptions{Format: "json"})
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"backend": "clangd"`)
}

func TestBackend_IsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, config.BackendClangd.IsValid())
	assert.True(t, config.BackendTreeSitter.IsValid())
	assert.False(t, config.Backend("gcc").IsValid())
}
