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

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the set of counters and histograms this module records.
// A Metrics value with a nil registerer behaves as a no-op, so callers can
// construct one unconditionally and only opt into real collection by
// passing a real prometheus.Registerer.
type Metrics struct {
	toolExecutions  *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	agentIterations prometheus.Counter
	policyDecisions *prometheus.CounterVec
}

// NewMetrics registers the module's metrics against reg. Pass
// prometheus.NewRegistry() in production, or nil to get a disabled
// Metrics value (every method becomes a no-op).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		toolExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_tool_executions_total",
			Help: "Tool executions by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "agentcore_tool_duration_seconds",
			Help: "Tool execution duration in seconds.",
		}, []string{"tool"}),
		agentIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agentcore_agent_iterations_total",
			Help: "Agent loop iterations executed.",
		}),
		policyDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_policy_decisions_total",
			Help: "Policy decisions by tool name and decision.",
		}, []string{"tool", "decision"}),
	}
	reg.MustRegister(m.toolExecutions, m.toolDuration, m.agentIterations, m.policyDecisions)
	return m
}

func (m *Metrics) RecordToolExecution(tool, outcome string, seconds float64) {
	if m == nil || m.toolExecutions == nil {
		return
	}
	m.toolExecutions.WithLabelValues(tool, outcome).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(seconds)
}

func (m *Metrics) RecordAgentIteration() {
	if m == nil || m.agentIterations == nil {
		return
	}
	m.agentIterations.Inc()
}

func (m *Metrics) RecordPolicyDecision(tool, decision string) {
	if m == nil || m.policyDecisions == nil {
		return
	}
	m.policyDecisions.WithLabelValues(tool, decision).Inc()
}
