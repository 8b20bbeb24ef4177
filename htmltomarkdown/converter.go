// Package htmltomarkdown provides a boothcrawl.Converter that renders page
// content as Markdown, the compact form sent to the LLM.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/boothcrawl"
)

// Ensure Converter implements boothcrawl.Converter at compile time.
var _ boothcrawl.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown. Tables are kept as Markdown tables
// since venue directories often list name and address in columns.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	return &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", boothcrawl.Errorf(boothcrawl.EINVALID, "empty HTML input")
	}
	md, err := c.conv.ConvertString(html)
	if err != nil {
		return "", boothcrawl.WrapError(boothcrawl.EINVALID, err, "converting HTML")
	}
	return strings.TrimSpace(md), nil
}
