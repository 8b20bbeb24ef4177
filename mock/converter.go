package mock

import "github.com/fwojciec/boothcrawl"

var _ boothcrawl.Converter = (*Converter)(nil)

// Converter is a mock implementation of boothcrawl.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
