package image

import (
	"context"

	"timemirror/internal/providers/genai"
)

// GeminiGenerator adapts the Gemini client to the Generator contract.
type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) EditPortrait(ctx context.Context, req Request) (*Render, error) {
	asset, err := g.client.EditPortrait(ctx, req.Prompt, req.Image, req.MIME)
	if err != nil {
		return nil, err
	}
	if asset == nil || len(asset.Data) == 0 {
		return nil, nil
	}
	return &Render{Data: asset.Data, MIME: asset.MIME}, nil
}

var _ Generator = (*GeminiGenerator)(nil)
