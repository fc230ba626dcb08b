package structure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiService calls the Gemini API through the genai SDK and asks for a
// JSON response body.
type GeminiService struct {
	client *genai.Client
	model  string
}

func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if model == "" {
		model = "gemini-2.5-pro"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiService{client: c, model: model}, nil
}

func (g *GeminiService) Model() string { return g.model }

func (g *GeminiService) Complete(ctx context.Context, prompt string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		if code := apiErrorCode(err); code == http.StatusTooManyRequests || code >= 500 {
			return "", &RetryableError{StatusCode: code, Message: err.Error(), Err: err}
		}
		return "", fmt.Errorf("gemini api: %w", err)
	}
	return res.Text(), nil
}

// apiErrorCode returns the HTTP status carried by a genai.APIError anywhere
// in err's chain, or 0.
func apiErrorCode(err error) int {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := e.(type) {
		case genai.APIError:
			return v.Code
		case *genai.APIError:
			return v.Code
		}
	}
	return 0
}
