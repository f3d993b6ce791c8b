package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	response string
	err      error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.response}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return f.response, f.err
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced no language", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around object", `Here you go: {"a": 1} hope it helps`, `{"a": 1}`},
		{"array", `[1, 2, 3]`, `[1, 2, 3]`},
		{"no json", "sorry, I cannot help", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExtractJSON(tc.in))
		})
	}
}

func TestQueryJSON(t *testing.T) {
	p := NewProvider(&fakeModel{response: "```json\n{\"objective\": \"retention\"}\n```"})

	var out struct {
		Objective string `json:"objective"`
	}
	err := p.QueryJSON(context.Background(), "system", "prompt", &out)
	require.NoError(t, err)
	require.Equal(t, "retention", out.Objective)
}

func TestQueryJSON_ModelError(t *testing.T) {
	p := NewProvider(&fakeModel{err: errors.New("timeout")})

	var out map[string]any
	err := p.QueryJSON(context.Background(), "", "prompt", &out)
	require.ErrorContains(t, err, "timeout")
}

func TestQueryJSON_NoJSON(t *testing.T) {
	p := NewProvider(&fakeModel{response: "I could not produce a result"})

	var out map[string]any
	err := p.QueryJSON(context.Background(), "", "prompt", &out)
	require.ErrorContains(t, err, "no JSON object")
}
