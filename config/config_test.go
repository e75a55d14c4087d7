package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/flowhive/supervisor/core"
	"github.com/flowhive/supervisor/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
workflow: research-team
supervisor:
  name: team_lead
  prompt: You manage a researcher and a math expert.
  output_mode: full_history
  add_handoff_back_messages: true
  forward_message: true
  include_agent_name: inline
workers:
  - name: researcher
    description: Finds facts online.
    prompt: You are a world class researcher.
  - name: math_expert
    description: Does arithmetic.
    prompt: You are a math expert.
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "research-team", cfg.Workflow)
	assert.Equal(t, "team_lead", cfg.Supervisor.Name)
	assert.Equal(t, "full_history", cfg.Supervisor.OutputMode)
	assert.True(t, cfg.Supervisor.AddHandoffBackMessages)
	assert.True(t, cfg.Supervisor.ForwardMessage)
	require.Len(t, cfg.Workers, 2)
	assert.Equal(t, "researcher", cfg.Workers[0].Name)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("workers: ["))
	assert.Error(t, err, "malformed yaml")

	_, err = Parse([]byte("workflow: empty\n"))
	assert.Error(t, err, "no workers declared")

	_, err = Parse([]byte("workers:\n  - name: a\n  - name: a\n"))
	assert.Error(t, err, "duplicate worker names")

	_, err = Parse([]byte("supervisor:\n  output_mode: everything\nworkers:\n  - name: a\n"))
	assert.Error(t, err, "invalid output mode")

	_, err = Parse([]byte("supervisor:\n  include_agent_name: bogus\nworkers:\n  - name: a\n"))
	assert.Error(t, err, "invalid agent name mode")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "research-team", cfg.Workflow)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEAM_NAME", "ops-team")

	path := filepath.Join(t.TempDir(), "team.yaml")
	content := "workflow: ${TEAM_NAME}\nworkers:\n  - name: a\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ops-team", cfg.Workflow)
}

func TestBuildAssemblesWorkflow(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	m := model.NewMockModel("mock")
	m.EnqueueText("handled directly")

	wf, err := cfg.Build(m, nil)
	require.NoError(t, err)
	assert.Equal(t, "research-team", wf.Name())

	state, err := wf.Invoke(context.Background(), []core.Message{core.NewUserMessage("hello")})
	require.NoError(t, err)

	last, ok := state.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "handled directly", last.Content)
	assert.Equal(t, "team_lead", last.Name)
}
