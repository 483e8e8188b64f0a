package suggest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrDisabled is returned by a generator built without credentials.
var ErrDisabled = errors.New("suggestions are disabled")

// Generator produces a JSON document that matches schema for prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema Schema) (string, error)
}

// Schema is the subset of the OpenAPI schema object the model understands.
type Schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]Schema `json:"properties,omitempty"`
	Items       *Schema           `json:"items,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

// Disabled never generates anything.
type Disabled struct{}

func (Disabled) Generate(context.Context, string, Schema) (string, error) {
	return "", ErrDisabled
}

// GeminiOptions configures the Gemini client.
type GeminiOptions struct {
	APIKey  string
	Model   string // ex: gemini-2.5-flash
	BaseURL string // ex: https://generativelanguage.googleapis.com
	Timeout time.Duration
	Client  *http.Client // optional, overrides Timeout
}

// Gemini asks the model for structured JSON output.
type Gemini struct {
	models *genai.Models
	model  string
}

// NewGenerator returns a Gemini generator, or Disabled when no key is set.
func NewGenerator(ctx context.Context, opts GeminiOptions) (Generator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return Disabled{}, nil
	}
	g, err := NewGemini(ctx, opts)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// NewGemini builds the client. No request is made until Generate.
func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	httpClient := opts.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: strings.TrimRight(opts.BaseURL, "/") + "/",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{models: client.Models, model: opts.Model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string, schema Schema) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema.toGenai(),
	})
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("model returned no candidates")
	}
	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			text.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", errors.New("model returned an empty candidate")
	}
	return text.String(), nil
}

func (s Schema) toGenai() *genai.Schema {
	out := &genai.Schema{
		Type:        genai.Type(strings.ToUpper(s.Type)),
		Description: s.Description,
		Required:    s.Required,
	}
	if s.Items != nil {
		out.Items = s.Items.toGenai()
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = p.toGenai()
		}
	}
	return out
}
