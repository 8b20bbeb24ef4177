// Package gemini provides the boothcrawl.LLM and boothcrawl.TokenCounter
// implementations backed by Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/boothcrawl"
	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure LLM implements boothcrawl.LLM at compile time.
var _ boothcrawl.LLM = (*LLM)(nil)

// LLM extracts venue candidates from page content using Gemini structured
// output.
type LLM struct {
	client *genai.Client
	model  string
}

// NewLLM creates a new LLM. An empty model selects DefaultModel.
func NewLLM(client *genai.Client, model string) *LLM {
	if model == "" {
		model = DefaultModel
	}
	return &LLM{client: client, model: model}
}

// ExtractCandidates asks the model for the venues listed in content.
// Empty content yields no candidates without calling the model.
func (l *LLM) ExtractCandidates(ctx context.Context, content string, strict bool) ([]*boothcrawl.Candidate, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	result, err := l.client.Models.GenerateContent(ctx, l.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: BuildPrompt(content, strict)}},
		}},
		BuildConfig(strict),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ClassifyError(err)
	}
	if result == nil {
		return nil, boothcrawl.Errorf(boothcrawl.EINTERNAL, "gemini returned nil result")
	}

	return ParseCandidates(result.Text())
}

// ClassifyError wraps a failed Gemini call. Rate limits, timeouts, server
// errors and transport failures are ETRANSIENT; other 4xx responses are
// EPERMANENT.
func ClassifyError(err error) error {
	code := boothcrawl.ETRANSIENT
	if status, ok := apiStatus(err); ok && status >= 400 && status < 500 &&
		status != 408 && status != 429 {
		code = boothcrawl.EPERMANENT
	}
	return boothcrawl.WrapError(code, err, "llm unavailable")
}

func apiStatus(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiPtr *genai.APIError
	if errors.As(err, &apiPtr) && apiPtr != nil {
		return apiPtr.Code, true
	}
	return 0, false
}

const systemInstruction = `You extract photo booth venues from web page content.
A venue is a real-world place (bar, shop, arcade, museum, station) where a photo booth can be found.
Return only venues that are explicitly listed in the content. Never invent venues, addresses or coordinates.
Copy names and addresses as written. Leave a field empty when the page does not state it.`

const strictInstruction = `Your previous answer did not match the required JSON schema.
Respond with a single JSON object of the form {"venues":[...]} and nothing else.
Use only the fields name, address, city, region, country, latitude, longitude, hours, phone, website, notes, confidence.
Do not wrap the JSON in markdown fences.`

// BuildConfig returns the GenerateContentConfig for extraction calls.
func BuildConfig(strict bool) *genai.GenerateContentConfig {
	temp := float32(0.2)
	if strict {
		temp = 0
	}
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}
}

// BuildPrompt builds the user prompt wrapping the page content.
func BuildPrompt(content string, strict bool) string {
	var sb strings.Builder
	if strict {
		sb.WriteString(strictInstruction)
		sb.WriteString("\n\n")
	}
	sb.WriteString("List every venue in the following page content.\n\n")
	fmt.Fprintf(&sb, "<content>\n%s\n</content>", content)
	return sb.String()
}

func responseSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	num := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"venues": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":       str("Venue name as written on the page"),
						"address":    str("Street address including house number"),
						"city":       str("City or town"),
						"region":     str("State, province or region"),
						"country":    str("Country"),
						"latitude":   num("Latitude in decimal degrees, only if stated"),
						"longitude":  num("Longitude in decimal degrees, only if stated"),
						"hours":      str("Opening hours"),
						"phone":      str("Phone number"),
						"website":    str("Venue website"),
						"notes":      str("Booth details such as type or price"),
						"confidence": num("How certain it is that this is a real venue with a booth, 0 to 1"),
					},
					Required: []string{"name"},
				},
			},
		},
		Required: []string{"venues"},
	}
}

type response struct {
	Venues []venue `json:"venues"`
}

type venue struct {
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	Region     string   `json:"region"`
	Country    string   `json:"country"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Hours      string   `json:"hours"`
	Phone      string   `json:"phone"`
	Website    string   `json:"website"`
	Notes      string   `json:"notes"`
	Confidence *float64 `json:"confidence"`
}

// ParseCandidates decodes a model response. Any deviation from the
// response schema, including unknown fields, is reported as ESCHEMA.
func ParseCandidates(text string) ([]*boothcrawl.Candidate, error) {
	text = stripFence(strings.TrimSpace(text))
	if text == "" {
		return nil, boothcrawl.Errorf(boothcrawl.ESCHEMA, "empty model response")
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var resp response
	if err := dec.Decode(&resp); err != nil {
		return nil, boothcrawl.WrapError(boothcrawl.ESCHEMA, err, "malformed model response")
	}
	if dec.More() {
		return nil, boothcrawl.Errorf(boothcrawl.ESCHEMA, "trailing data after model response")
	}

	candidates := make([]*boothcrawl.Candidate, 0, len(resp.Venues))
	for _, v := range resp.Venues {
		c := &boothcrawl.Candidate{
			Name:       v.Name,
			Address:    v.Address,
			City:       v.City,
			Region:     v.Region,
			Country:    v.Country,
			Latitude:   v.Latitude,
			Longitude:  v.Longitude,
			Confidence: 0.5,
		}
		if v.Confidence != nil {
			c.Confidence = *v.Confidence
		}
		for k, val := range map[string]string{
			"openingHours": v.Hours,
			"telephone":    v.Phone,
			"url":          v.Website,
			"notes":        v.Notes,
		} {
			if strings.TrimSpace(val) == "" {
				continue
			}
			if c.Metadata == nil {
				c.Metadata = make(map[string]string)
			}
			c.Metadata[k] = val
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// stripFence removes a surrounding markdown code fence.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
