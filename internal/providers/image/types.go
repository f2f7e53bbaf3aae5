package image

import "context"

// Request describes one portrait-aging call passed to a provider.
type Request struct {
	Prompt    string
	Image     []byte
	MIME      string
	RequestID string
	Year      int
}

// Render is a generated image.
type Render struct {
	Data []byte
	MIME string
}

// Generator is the contract implemented by image providers. Implementations
// return (nil, nil) when the model answered without an image.
type Generator interface {
	EditPortrait(ctx context.Context, req Request) (*Render, error)
}
