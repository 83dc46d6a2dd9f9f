package process

import (
	"fmt"
	"sort"
)

// Config is the declarative form of the sandbox options, as read from
// quiver.yaml under "sandbox".
type Config struct {
	Command      string            `yaml:"command" json:"command" mapstructure:"command"`
	Args         []string          `yaml:"args" json:"args" mapstructure:"args"`
	Environment  map[string]string `yaml:"env" json:"env" mapstructure:"env"`
	MemoryLimit  int64             `yaml:"memory_limit" json:"memory_limit" mapstructure:"memory_limit"`
	MaxReplySize int64             `yaml:"max_reply_size" json:"max_reply_size" mapstructure:"max_reply_size"`
}

// Options converts the config into sandbox options. Unset fields keep the
// defaults.
func (c Config) Options() []Option {
	var opts []Option
	if c.Command != "" {
		opts = append(opts, WithCommand(c.Command, c.Args...))
	}
	if len(c.Environment) > 0 {
		keys := make([]string, 0, len(c.Environment))
		for k := range c.Environment {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		env := make([]string, 0, len(keys))
		for _, k := range keys {
			env = append(env, fmt.Sprintf("%s=%s", k, c.Environment[k]))
		}
		opts = append(opts, WithEnv(env...))
	}
	if c.MemoryLimit != 0 {
		opts = append(opts, WithMemoryLimit(c.MemoryLimit))
	}
	if c.MaxReplySize > 0 {
		opts = append(opts, WithMaxReplySize(c.MaxReplySize))
	}
	return opts
}
