package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/flowhive/supervisor/core"
	"github.com/flowhive/supervisor/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Tool = (*FunctionTool)(nil)

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")

	// Required only includes non-pointer, non-omitempty exported fields
	req, _ := schema["required"].([]string)
	if req == nil { // reflection may produce []any
		ifaceReq, _ := schema["required"].([]any)
		for _, v := range ifaceReq {
			req = append(req, v.(string))
		}
	}
	assert.ElementsMatch(t, []string{"a"}, req)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror possible JSON decoded schema shape
		"required": []any{"x"},
	}

	err := util.ValidateParameters(map[string]any{"x": 5}, schema)
	assert.NoError(t, err)

	err = util.ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)

	err = util.ValidateParameters(map[string]any{"x": "not a number"}, schema)
	assert.Error(t, err)
}

func newToolCtx() *core.ToolContext {
	return core.NewToolContext(context.Background(), "fc-1", "tester", core.NewState(), nil)
}

func TestFunctionToolCall(t *testing.T) {
	sum := NewFunctionTool(
		"calculate_sum",
		"Calculate the sum of two numbers",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		},
	)

	assert.Equal(t, "calculate_sum", sum.Name())
	assert.NotEmpty(t, sum.Description())
	assert.NotNil(t, sum.Parameters())

	result, err := sum.Call(newToolCtx(), map[string]any{"a": 1.0, "b": 2.0})
	require.NoError(t, err)
	assert.Equal(t, 3.0, result)
}

func TestFunctionToolValidationError(t *testing.T) {
	sum := NewFunctionTool("sum", "d",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{"a": map[string]any{"type": "number"}},
			"required":   []string{"a"},
		},
		func(_ *core.ToolContext, args map[string]any) (any, error) { return nil, nil },
	)

	_, err := sum.Call(newToolCtx(), map[string]any{})
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
	assert.Equal(t, "sum", toolErr.Tool)
}

func TestFunctionToolExecutionError(t *testing.T) {
	failing := NewFunctionTool("boom", "d",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *core.ToolContext, _ map[string]any) (any, error) {
			return nil, errors.New("kaput")
		},
	)

	_, err := failing.Call(newToolCtx(), map[string]any{})
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Message, "kaput")
}

func TestFunctionToolPreservesToolError(t *testing.T) {
	custom := NewFunctionTool("custom", "d",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *core.ToolContext, _ map[string]any) (any, error) {
			return nil, &ToolError{Tool: "custom", Message: "rate limited", Code: "RATE_LIMITED"}
		},
	)

	_, err := custom.Call(newToolCtx(), map[string]any{})
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "RATE_LIMITED", toolErr.Code)
}

type fromStructArgs struct {
	Query string `json:"query" description:"Search query"`
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	search := NewFunctionToolFromStruct("search", "Search things", fromStructArgs{},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			return "found: " + args["query"].(string), nil
		},
	)

	result, err := search.Call(newToolCtx(), map[string]any{"query": "go"})
	require.NoError(t, err)
	assert.Equal(t, "found: go", result)

	_, err = search.Call(newToolCtx(), map[string]any{})
	assert.Error(t, err, "query is required by the derived schema")
}
