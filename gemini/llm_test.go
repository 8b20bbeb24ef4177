package gemini_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/boothcrawl"
	"github.com/fwojciec/boothcrawl/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestLLM_ExtractCandidates_EmptyContentSkipsModel(t *testing.T) {
	t.Parallel()

	llm := gemini.NewLLM(nil, "") // nil client ok: the model is never called

	got, err := llm.ExtractCandidates(context.Background(), "  \n ", false)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, boothcrawl.ETRANSIENT},
		{"server error", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, boothcrawl.ETRANSIENT},
		{"request timeout", genai.APIError{Code: 408}, boothcrawl.ETRANSIENT},
		{"bad request", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, boothcrawl.EPERMANENT},
		{"bad key", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, boothcrawl.EPERMANENT},
		{"wrapped api error", fmt.Errorf("generate: %w", genai.APIError{Code: 404}), boothcrawl.EPERMANENT},
		{"transport failure", errors.New("dial tcp: connection refused"), boothcrawl.ETRANSIENT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := gemini.ClassifyError(tt.err)

			assert.Equal(t, tt.want, boothcrawl.ErrorCode(err))
			assert.Equal(t, tt.err, errors.Unwrap(err))
			assert.Equal(t, "llm unavailable", boothcrawl.ErrorMessage(err))
		})
	}
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("requests JSON with a response schema", func(t *testing.T) {
		t.Parallel()

		config := gemini.BuildConfig(false)

		assert.Equal(t, "application/json", config.ResponseMIMEType)
		require.NotNil(t, config.ResponseSchema)
		assert.Equal(t, genai.TypeObject, config.ResponseSchema.Type)
		venues := config.ResponseSchema.Properties["venues"]
		require.NotNil(t, venues)
		require.NotNil(t, venues.Items)
		assert.Contains(t, venues.Items.Required, "name")
	})

	t.Run("strict mode lowers temperature", func(t *testing.T) {
		t.Parallel()

		require.NotNil(t, gemini.BuildConfig(true).Temperature)
		assert.InDelta(t, 0, *gemini.BuildConfig(true).Temperature, 0.001)
		assert.Greater(t, *gemini.BuildConfig(false).Temperature, float32(0))
	})

	t.Run("system instruction forbids invention", func(t *testing.T) {
		t.Parallel()

		config := gemini.BuildConfig(false)
		require.NotNil(t, config.SystemInstruction)
		require.Len(t, config.SystemInstruction.Parts, 1)
		assert.Contains(t, config.SystemInstruction.Parts[0].Text, "Never invent")
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	t.Run("wraps content", func(t *testing.T) {
		t.Parallel()

		prompt := gemini.BuildPrompt("## Joe's Bar\n123 Elm St", false)
		assert.Contains(t, prompt, "<content>\n## Joe's Bar\n123 Elm St\n</content>")
		assert.NotContains(t, prompt, "previous answer")
	})

	t.Run("strict prompt restates the schema", func(t *testing.T) {
		t.Parallel()

		prompt := gemini.BuildPrompt("x", true)
		assert.Contains(t, prompt, "previous answer did not match")
		assert.Contains(t, prompt, `{"venues":[...]}`)
	})
}

func TestParseCandidates(t *testing.T) {
	t.Parallel()

	t.Run("decodes venues", func(t *testing.T) {
		t.Parallel()

		got, err := gemini.ParseCandidates(`{"venues":[
			{"name":"Joe's Bar","address":"123 Elm St","city":"Springfield","latitude":40.1,"longitude":-73.2,"hours":"9-5","confidence":0.9},
			{"name":"Moe's Tavern"}]}`)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Joe's Bar", got[0].Name)
		assert.Equal(t, "Springfield", got[0].City)
		require.NotNil(t, got[0].Latitude)
		assert.InDelta(t, 40.1, *got[0].Latitude, 1e-9)
		assert.Equal(t, "9-5", got[0].Metadata["openingHours"])
		assert.InDelta(t, 0.9, got[0].Confidence, 1e-9)
		assert.Nil(t, got[1].Latitude)
		assert.Nil(t, got[1].Metadata)
	})

	t.Run("strips markdown fences", func(t *testing.T) {
		t.Parallel()

		got, err := gemini.ParseCandidates("```json\n{\"venues\":[{\"name\":\"A\"}]}\n```")
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("empty venue list is valid", func(t *testing.T) {
		t.Parallel()

		got, err := gemini.ParseCandidates(`{"venues":[]}`)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("schema violations are ESCHEMA", func(t *testing.T) {
		t.Parallel()

		for name, text := range map[string]string{
			"empty":         "",
			"not json":      "Here are the venues: Joe's Bar",
			"unknown field": `{"venues":[{"name":"A","rating":5}]}`,
			"wrong type":    `{"venues":[{"name":"A","latitude":"north"}]}`,
			"trailing data": `{"venues":[]} {"venues":[]}`,
		} {
			_, err := gemini.ParseCandidates(text)
			assert.Equal(t, boothcrawl.ESCHEMA, boothcrawl.ErrorCode(err), name)
		}
	})
}
