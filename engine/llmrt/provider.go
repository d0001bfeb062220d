package llmrt

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ProviderName is a closed enumeration of the LLM backends antforge can
// drive an agent through, grounded on the teacher's engine/core.ProviderName.
type ProviderName string

const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderOllama    ProviderName = "ollama"
)

// ProviderConfig names one concrete model to construct a langchaingo
// llms.Model from, per the CLI's --provider/--model/--api-key flags.
type ProviderConfig struct {
	Provider ProviderName
	Model    string
	APIKey   string
	APIURL   string
}

// CreateModel builds the langchaingo client for p.Provider, following the
// teacher's ProviderConfig.CreateLLM dispatch.
func (p ProviderConfig) CreateModel() (llms.Model, error) {
	switch p.Provider {
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithModel(p.Model)}
		if p.APIKey != "" {
			opts = append(opts, openai.WithToken(p.APIKey))
		}
		if p.APIURL != "" {
			opts = append(opts, openai.WithBaseURL(p.APIURL))
		}
		return openai.New(opts...)
	case ProviderAnthropic:
		opts := []anthropic.Option{anthropic.WithModel(p.Model)}
		if p.APIKey != "" {
			opts = append(opts, anthropic.WithToken(p.APIKey))
		}
		return anthropic.New(opts...)
	case ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(p.Model)}
		if p.APIURL != "" {
			opts = append(opts, ollama.WithServerURL(p.APIURL))
		}
		return ollama.New(opts...)
	default:
		return nil, fmt.Errorf("llmrt: unsupported provider %q", p.Provider)
	}
}
