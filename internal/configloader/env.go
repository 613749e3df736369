package configloader

import (
	"fmt"
	"io"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/yaklabco/astnav/pkg/config"
)

// envOverrides lists the supported environment variables. Pointer and slice
// fields stay nil unless their variable is set, so only set variables
// override the configuration.
type envOverrides struct {
	Backend          *string        `envconfig:"ASTNAV_BACKEND" desc:"Syntax backend: clangd or treesitter"`
	ServerCommand    *string        `envconfig:"ASTNAV_SERVER_COMMAND" desc:"Language server executable"`
	ServerArgs       []string       `envconfig:"ASTNAV_SERVER_ARGS" desc:"Comma-separated language server arguments"`
	QueryTimeout     *time.Duration `envconfig:"ASTNAV_QUERY_TIMEOUT" desc:"Timeout for a single AST query (e.g. 2s)"`
	Lookback         *int           `envconfig:"ASTNAV_RESOLVER_LOOKBACK" desc:"Maximum backward probes per parent lookup"`
	Lookahead        *int           `envconfig:"ASTNAV_RESOLVER_LOOKAHEAD" desc:"Maximum forward probes per parent lookup"`
	ForwardKinds     []string       `envconfig:"ASTNAV_RESOLVER_FORWARD_KINDS" desc:"Comma-separated kinds eligible for forward scans"`
	TransparentKinds []string       `envconfig:"ASTNAV_RESOLVER_TRANSPARENT_KINDS" desc:"Comma-separated implicit wrapper kinds"`
	LogLevel         *string        `envconfig:"ASTNAV_LOG_LEVEL" desc:"Log level: debug, info, warn or error"`
	Color            *string        `envconfig:"ASTNAV_COLOR" desc:"Color output: auto, always or never"`
}

// envUsageFormat renders one variable per line; envconfig aligns the columns.
const envUsageFormat = `{{range .}}  {{usage_key .}}	{{usage_description .}}
{{end}}`

// LoadFromEnv applies ASTNAV_* environment variable overrides to cfg.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}

	env.apply(cfg)
	return nil
}

func (e *envOverrides) apply(cfg *config.Config) {
	if e.Backend != nil {
		cfg.Backend = config.Backend(*e.Backend)
	}
	if e.ServerCommand != nil {
		cfg.Server.Command = *e.ServerCommand
	}
	if e.ServerArgs != nil {
		cfg.Server.Args = e.ServerArgs
	}
	if e.QueryTimeout != nil {
		cfg.QueryTimeout = *e.QueryTimeout
	}
	if e.Lookback != nil {
		cfg.Resolver.Lookback = *e.Lookback
	}
	if e.Lookahead != nil {
		cfg.Resolver.Lookahead = *e.Lookahead
	}
	if e.ForwardKinds != nil {
		cfg.Resolver.ForwardKinds = e.ForwardKinds
	}
	if e.TransparentKinds != nil {
		cfg.Resolver.TransparentKinds = e.TransparentKinds
	}
	if e.LogLevel != nil {
		cfg.Log.Level = *e.LogLevel
	}
	if e.Color != nil {
		cfg.Color = *e.Color
	}
}

// WriteEnvUsage writes the supported environment variables and their
// descriptions to w.
func WriteEnvUsage(w io.Writer) error {
	if err := envconfig.Usagef("", &envOverrides{}, w, envUsageFormat); err != nil {
		return fmt.Errorf("render environment usage: %w", err)
	}
	return nil
}
