package agent

import (
	"context"
	"os"

	"github.com/ashureev/restwell/internal/gemini"
)

// Generator defines the upstream model call.
// This interface is implemented by the Gemini client.
type Generator interface {
	GenerateContent(ctx context.Context, apiKey string, req *gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error)
}

// Ensure the Gemini client implements Generator.
var _ Generator = (*gemini.Client)(nil)

// KeyFunc returns the upstream credential at call time. An empty string
// means the credential is not configured.
type KeyFunc func() string

// EnvKey reads the credential from the named environment variable on every
// call, so rotating the variable needs no restart.
func EnvKey(name string) KeyFunc {
	return func() string {
		return os.Getenv(name)
	}
}

// StaticKey always returns key.
func StaticKey(key string) KeyFunc {
	return func() string {
		return key
	}
}
