package speech

import (
	"context"
	"errors"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
)

var ErrDisabled = errors.New("speech synthesis is not configured")

// Synthesizer renders reply text in a persona's voice and returns a URL to
// the audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, persona string) (string, error)
}

type Disabled struct{}

func (Disabled) Synthesize(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}

// New picks a backend by name. No backend ships with the service yet, so
// every name resolves to Disabled.
func New(provider string) Synthesizer {
	return Disabled{}
}

// Render runs synth for an audio request and reports the resulting status.
// A reply that did not ask for audio gets AudioNone.
func Render(ctx context.Context, synth Synthesizer, wanted bool, text, persona string) (*string, chatModel.AudioStatus) {
	if !wanted {
		return nil, chatModel.AudioNone
	}
	if synth == nil {
		return nil, chatModel.AudioFailed
	}
	url, err := synth.Synthesize(ctx, text, persona)
	if err != nil || url == "" {
		return nil, chatModel.AudioFailed
	}
	return &url, chatModel.AudioSuccess
}
