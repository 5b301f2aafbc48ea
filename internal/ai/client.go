package ai

import (
	"net/http"
	"strings"
	"time"
)

const (
	defaultChatModel     = "gpt-4o-mini"
	transcriptionModel   = "whisper-1"
	maxTranscribeUpload  = 25 * 1024 * 1024 // provider-side limit per request
	transcriptPromptSize = 5000             // transcript chars sent to the chat model
)

// Client calls an OpenAI-compatible API for transcription and production-kit
// generation. The base URL is configurable for compatible providers.
type Client struct {
	apiKey     string
	baseURL    string
	chatModel  string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &Client{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		chatModel: defaultChatModel,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute, // transcription uploads can be slow
		},
	}
}

// SetChatModel overrides the completion model (settings-driven).
func (c *Client) SetChatModel(model string) {
	if model != "" {
		c.chatModel = model
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}
