package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/boothcrawl"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// tokenizerFallbackModel shares its vocabulary with the newer Gemini models
// that the local tokenizer does not list by name.
const tokenizerFallbackModel = "gemini-2.0-flash"

var _ boothcrawl.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens locally with the Gemini tokenizer, so page
// content can be fitted to the extraction budget without an API call.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model, falling
// back to a compatible tokenizer when the model is not known locally.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil && model != tokenizerFallbackModel {
		tok, err = tokenizer.NewLocalTokenizer(tokenizerFallbackModel)
	}
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer for %s: %w", model, err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in text.
func (tc *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, "user")}, nil)
	if err != nil {
		return 0, boothcrawl.WrapError(boothcrawl.EINTERNAL, err, "counting tokens")
	}
	return int(result.TotalTokens), nil
}
