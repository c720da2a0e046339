// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the YAML document describing policy rules, MCP
// servers and agent settings, mirroring the teacher's config.Config
// loader built on gopkg.in/yaml.v3 and github.com/joho/godotenv.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"agentcore/pkg/mcp"
	"agentcore/pkg/observability"
	"agentcore/pkg/policy"
	"agentcore/pkg/registry"
)

// PolicyRuleConfig is the YAML shape of one policy.Rule.
type PolicyRuleConfig struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Decision string `yaml:"decision"`
}

// AgentConfig holds the agent's model settings and tool visibility.
type AgentConfig struct {
	Model         string   `yaml:"model"`
	SystemPrompt  string   `yaml:"system_prompt"`
	MaxIterations int      `yaml:"max_iterations"`
	AllowTools    []string `yaml:"allow_tools"`
	DenyTools     []string `yaml:"deny_tools"`
}

// TracingConfig is the YAML shape of observability.TracingConfig.
type TracingConfig struct {
	Enabled       bool    `yaml:"enabled"`
	ServiceName   string  `yaml:"service_name"`
	SamplingRatio float64 `yaml:"sampling_ratio"`
	Exporter      string  `yaml:"exporter"`
	OTLPEndpoint  string  `yaml:"otlp_endpoint"`
}

// McpServerConfig is the YAML shape of mcp.ServerConfig.
type McpServerConfig struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
}

// Config is the full document this package loads.
type Config struct {
	Policy struct {
		Rules   []PolicyRuleConfig `yaml:"rules"`
		Default string             `yaml:"default"`
	} `yaml:"policy"`
	McpServers map[string]McpServerConfig `yaml:"mcp_servers"`
	Agent      AgentConfig                `yaml:"agent"`
	Tracing    TracingConfig              `yaml:"tracing"`
}

// Load reads and parses the YAML config at path. It also loads a .env
// file from the current working directory, if present, the way the teacher's CLI bootstraps
// ANTHROPIC_API_KEY and friends before reading its own config.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %q: %w", path, err)
	}
	return &cfg, nil
}

// BuildPolicy compiles the loaded policy rules into a policy.Policy.
func (c *Config) BuildPolicy() (*policy.Policy, error) {
	rules := make([]policy.Rule, len(c.Policy.Rules))
	for i, r := range c.Policy.Rules {
		rules[i] = policy.Rule{Name: r.Name, Pattern: r.Pattern, Decision: policy.Decision(r.Decision)}
	}
	return policy.New(rules, policy.Decision(c.Policy.Default))
}

// BuildTracingConfig converts the loaded tracing section into
// observability.TracingConfig.
func (c *Config) BuildTracingConfig() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:       c.Tracing.Enabled,
		ServiceName:   c.Tracing.ServiceName,
		SamplingRatio: c.Tracing.SamplingRatio,
		Exporter:      observability.Exporter(c.Tracing.Exporter),
		OTLPEndpoint:  c.Tracing.OTLPEndpoint,
	}
}

// BuildToolSource wraps inner in a registry.FilteredRegistry using the
// agent's configured AllowTools/DenyTools, so the agent only ever sees
// the tool catalog the config permits. An empty AllowTools admits every
// tool not explicitly denied, matching registry.FilteredRegistry's own
// zero-value behavior.
func (c *Config) BuildToolSource(inner *registry.ToolRegistry) registry.ToolSource {
	if len(c.Agent.AllowTools) == 0 && len(c.Agent.DenyTools) == 0 {
		return inner
	}
	return registry.NewFilteredRegistry(inner, c.Agent.AllowTools, c.Agent.DenyTools)
}

// BuildMcpServers converts the loaded server map into mcp.ServerConfig
// values, keyed by name.
func (c *Config) BuildMcpServers() map[string]mcp.ServerConfig {
	out := make(map[string]mcp.ServerConfig, len(c.McpServers))
	for name, s := range c.McpServers {
		out[name] = mcp.ServerConfig{Name: name, Command: s.Command, Args: s.Args, Env: s.Env}
	}
	return out
}
