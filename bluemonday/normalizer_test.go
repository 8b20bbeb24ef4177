package bluemonday_test

import (
	"testing"

	"github.com/fwojciec/boothcrawl/bluemonday"
	"github.com/stretchr/testify/assert"
)

func TestNormalizer_Normalize(t *testing.T) {
	t.Parallel()

	n := bluemonday.NewNormalizer()

	t.Run("strips scripts and styles", func(t *testing.T) {
		t.Parallel()

		got := n.Normalize(`<html><head><style>.x{}</style><script>track(123)</script></head><body><p>Joe's Bar</p></body></html>`)
		assert.NotContains(t, got, "track")
		assert.NotContains(t, got, ".x{}")
		assert.Contains(t, got, "Bar")
	})

	t.Run("ignores volatile scripts when comparing", func(t *testing.T) {
		t.Parallel()

		a := n.Normalize(`<body><script>var nonce="a1"</script><ul><li>Venue</li></ul></body>`)
		b := n.Normalize(`<body><script>var nonce="b2"</script><ul><li>Venue</li></ul></body>`)
		assert.Equal(t, a, b)
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		t.Parallel()

		a := n.Normalize("<p>Joe's   Bar</p>\n\n<p>123 Elm St</p>")
		b := n.Normalize("<p>Joe's Bar</p> <p>123 Elm St</p>")
		assert.Equal(t, a, b)
	})

	t.Run("keeps content changes visible", func(t *testing.T) {
		t.Parallel()

		a := n.Normalize("<p>123 Elm St</p>")
		b := n.Normalize("<p>125 Elm St</p>")
		assert.NotEqual(t, a, b)
	})
}
