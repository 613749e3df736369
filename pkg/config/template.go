package config

import (
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a commented configuration file template holding
// the defaults.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		data, err := json.MarshalIndent(templateValues(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	}

	return []byte(DefaultTemplateHeader() + `

# Syntax backend: clangd or treesitter
backend: clangd

# Language server launched for the clangd backend
server:
  command: clangd
  args: ["--log=error"]

# Upper bound for a single AST round trip
query_timeout: 2s

resolver:
  # Maximum probes when scanning backward (and forward) for a parent
  lookback: 64
  lookahead: 64

  # Kinds whose parent may only appear when queried past the node's end
  forward_kinds: [Function, CXXMethod, Var, Call, DeclRef, CXXMemberCall, Member]

  # Implicit wrappers that share their child's range
  transparent_kinds: [ImplicitCast, ExprWithCleanups, MaterializeTemporary, CXXBindTemporary, Constant, FullExpr]

log:
  # debug, info, warn or error
  level: info
`), nil
}

func templateValues() map[string]any {
	cfg := NewConfig()
	return map[string]any{
		"backend":       cfg.Backend,
		"server":        cfg.Server,
		"query_timeout": cfg.QueryTimeout.String(),
		"resolver":      cfg.Resolver,
		"log":           cfg.Log,
	}
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# astnav configuration
# See: https://github.com/yaklabco/astnav`
}
