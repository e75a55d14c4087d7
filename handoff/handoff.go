package handoff

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/flowhive/supervisor/core"
	"github.com/flowhive/supervisor/tool"
)

var toolNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// NormalizeToolName rewrites an agent name into a provider-safe tool name,
// replacing every run of disallowed characters with a single underscore.
func NormalizeToolName(name string) string {
	return toolNameSanitizer.ReplaceAllString(name, "_")
}

// Options configure a handoff tool.
type Options struct {
	// ToolName overrides the default "transfer_to_<agent>" name.
	ToolName string
	// Description overrides the default tool description.
	Description string
}

// NewHandoffTool builds the transfer tool for one worker agent. Calling it
// records a handoff request on the tool context; the supervisor node routes
// control accordingly after the call returns.
func NewHandoffTool(agentName string, optFns ...func(o *Options)) tool.Tool {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	name := opts.ToolName
	if name == "" {
		name = "transfer_to_" + NormalizeToolName(agentName)
	}
	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("Ask agent '%s' for help", agentName)
	}

	return tool.NewFunctionTool(
		name,
		description,
		map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		func(tc *core.ToolContext, _ map[string]any) (any, error) {
			tc.Handoff(agentName)
			return fmt.Sprintf("Successfully transferred to %s", agentName), nil
		},
	)
}

// NewForwardMessageTool builds the "forward_message" tool. It lets the
// supervisor return a worker's most recent reply to the caller verbatim,
// skipping an extra synthesis turn that would only paraphrase it.
func NewForwardMessageTool(supervisorName string) tool.Tool {
	return tool.NewFunctionTool(
		"forward_message",
		"Forwards the latest message from the named agent to the user verbatim. "+
			"Use this when the agent's reply already answers the user and rewriting it adds nothing.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"from_agent": map[string]any{
					"type":        "string",
					"description": "The name of the agent whose latest message should be forwarded",
				},
			},
			"required": []string{"from_agent"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			fromAgent, _ := args["from_agent"].(string)

			msg, ok := latestFrom(tc.Messages(), fromAgent, supervisorName)
			if !ok {
				return nil, fmt.Errorf(
					"no messages found from agent %q; available agents: %s",
					fromAgent, strings.Join(seenAgents(tc.Messages(), supervisorName), ", "),
				)
			}

			tc.Forward(msg)
			return msg.Content, nil
		},
	)
}

// latestFrom finds the newest assistant message attributed to fromAgent,
// matching case-insensitively and ignoring the supervisor's own turns.
func latestFrom(msgs []core.Message, fromAgent, supervisorName string) (core.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.Role != core.RoleAssistant || m.Name == "" || m.Name == supervisorName {
			continue
		}
		if strings.EqualFold(m.Name, fromAgent) {
			return m, true
		}
	}
	return core.Message{}, false
}

func seenAgents(msgs []core.Message, supervisorName string) []string {
	seen := map[string]struct{}{}
	for _, m := range msgs {
		if m.Role == core.RoleAssistant && m.Name != "" && m.Name != supervisorName {
			seen[m.Name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
