package config

import (
	"fmt"
	"os"

	supervisor "github.com/flowhive/supervisor"
	"github.com/flowhive/supervisor/agent"
	"github.com/flowhive/supervisor/agentname"
	"github.com/flowhive/supervisor/graph"
	"github.com/flowhive/supervisor/model"
	"github.com/flowhive/supervisor/tool"
	"gopkg.in/yaml.v3"
)

// SupervisorConfig declares the supervisor's own settings.
type SupervisorConfig struct {
	Name                   string `yaml:"name"`
	Prompt                 string `yaml:"prompt"`
	OutputMode             string `yaml:"output_mode"`
	AddHandoffBackMessages bool   `yaml:"add_handoff_back_messages"`
	ForwardMessage         bool   `yaml:"forward_message"`
	IncludeAgentName       string `yaml:"include_agent_name"`
}

// WorkerConfig declares one worker agent.
type WorkerConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Prompt      string `yaml:"prompt"`
}

// Config is a complete declarative workflow definition.
type Config struct {
	Workflow   string           `yaml:"workflow"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
	Workers    []WorkerConfig   `yaml:"workers"`
}

// Load reads and validates a workflow definition from a YAML file.
// ${VAR} references are expanded from the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes and validates a workflow definition from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the definition for structural problems.
func (c *Config) Validate() error {
	if len(c.Workers) == 0 {
		return fmt.Errorf("config declares no workers")
	}
	seen := map[string]struct{}{}
	for i, w := range c.Workers {
		if w.Name == "" {
			return fmt.Errorf("worker %d has no name", i)
		}
		if _, dup := seen[w.Name]; dup {
			return fmt.Errorf("duplicate worker name %q", w.Name)
		}
		seen[w.Name] = struct{}{}
	}
	if mode := c.Supervisor.OutputMode; mode != "" && !supervisor.OutputMode(mode).Valid() {
		return fmt.Errorf("invalid output_mode %q", mode)
	}
	if mode := c.Supervisor.IncludeAgentName; mode != "" && !agentname.Mode(mode).Valid() {
		return fmt.Errorf("invalid include_agent_name %q", mode)
	}
	return nil
}

// Build assembles a runnable workflow from the definition. All agents share
// the model m; workerTools maps worker names to their tool sets. Additional
// options may override anything the file declares.
func (c *Config) Build(m model.Model, workerTools map[string][]tool.Tool, optFns ...func(o *supervisor.Options)) (*graph.Workflow, error) {
	workers := make([]*agent.Agent, 0, len(c.Workers))
	for _, wc := range c.Workers {
		wc := wc
		w, err := agent.New(wc.Name, m, func(o *agent.Options) {
			o.Description = wc.Description
			o.Instruction = wc.Prompt
			o.Tools = workerTools[wc.Name]
		})
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}

	fns := []func(o *supervisor.Options){func(o *supervisor.Options) {
		if c.Supervisor.Name != "" {
			o.SupervisorName = c.Supervisor.Name
		}
		o.Prompt = c.Supervisor.Prompt
		if c.Supervisor.OutputMode != "" {
			o.OutputMode = supervisor.OutputMode(c.Supervisor.OutputMode)
		}
		o.AddHandoffBackMessages = c.Supervisor.AddHandoffBackMessages
		o.EnableForwardMessage = c.Supervisor.ForwardMessage
		o.IncludeAgentName = agentname.Mode(c.Supervisor.IncludeAgentName)
		if c.Workflow != "" {
			o.WorkflowName = c.Workflow
		}
	}}
	fns = append(fns, optFns...)

	return supervisor.New(workers, m, fns...)
}
