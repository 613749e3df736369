package configloader

import (
	"slices"

	"github.com/yaklabco/astnav/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Slices: override replaces base entirely if override is non-nil, so an
//     explicit empty list clears the base list
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Backend != "" {
		result.Backend = override.Backend
	}
	if override.QueryTimeout != 0 {
		result.QueryTimeout = override.QueryTimeout
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}
	if override.Color != "" {
		result.Color = override.Color
	}

	// Debug can only be switched on; no layer turns it back off.
	if override.Debug {
		result.Debug = true
	}

	if override.Server.Command != "" {
		result.Server.Command = override.Server.Command
	}
	if override.Server.Args != nil {
		result.Server.Args = slices.Clone(override.Server.Args)
	}

	if override.Resolver.Lookback != 0 {
		result.Resolver.Lookback = override.Resolver.Lookback
	}
	if override.Resolver.Lookahead != 0 {
		result.Resolver.Lookahead = override.Resolver.Lookahead
	}
	if override.Resolver.ForwardKinds != nil {
		result.Resolver.ForwardKinds = slices.Clone(override.Resolver.ForwardKinds)
	}
	if override.Resolver.TransparentKinds != nil {
		result.Resolver.TransparentKinds = slices.Clone(override.Resolver.TransparentKinds)
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
