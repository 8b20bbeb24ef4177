package boothcrawl_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/boothcrawl"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := boothcrawl.Errorf(boothcrawl.ENOTFOUND, "source %q not found", "test")

	assert.Equal(t, boothcrawl.ENOTFOUND, boothcrawl.ErrorCode(err))
	assert.Equal(t, "source \"test\" not found", boothcrawl.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, boothcrawl.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, boothcrawl.ErrorMessage(nil))
}

func TestErrorCode_PlainErrorIsInternal(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, boothcrawl.EINTERNAL, boothcrawl.ErrorCode(err))
	assert.Equal(t, "Internal error.", boothcrawl.ErrorMessage(err))
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	t.Run("keeps cause reachable", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection reset")
		err := boothcrawl.WrapError(boothcrawl.ETRANSIENT, cause, "fetching %s", "https://example.com")

		assert.Equal(t, boothcrawl.ETRANSIENT, boothcrawl.ErrorCode(err))
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("page 2: %w", boothcrawl.Errorf(boothcrawl.EPERMANENT, "HTTP 404"))

		assert.Equal(t, boothcrawl.EPERMANENT, boothcrawl.ErrorCode(err))
		assert.Equal(t, "HTTP 404", boothcrawl.ErrorMessage(err))
	})
}
