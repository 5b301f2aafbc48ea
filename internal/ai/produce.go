package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

const productionSystemPrompt = "You are an expert podcast production assistant."

// ProductionKit is the generated marketing package for one episode.
type ProductionKit struct {
	ShowNotes string `json:"show_notes"`
	SocialKit string `json:"social_kit"`
}

// GenerateProductionKit asks the chat API for show notes and a social media
// kit based on the episode transcript.
func (c *Client) GenerateProductionKit(ctx context.Context, title, transcript string) (*ProductionKit, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("episode has no transcript")
	}

	// Long transcripts are truncated; the opening minutes carry the episode.
	excerpt := transcript
	if len(excerpt) > transcriptPromptSize {
		excerpt = excerpt[:transcriptPromptSize] + "..."
	}

	var userPrompt strings.Builder
	fmt.Fprintf(&userPrompt, "Act as a world-class podcast producer. Based on the following transcript for the episode %q, generate:\n", title)
	userPrompt.WriteString("1. Professional Show Notes (Summary, Key Takeaways, Timestamps)\n")
	userPrompt.WriteString("2. Social Media Kit (3 Twitter posts, 2 LinkedIn posts, 1 Instagram caption)\n")
	userPrompt.WriteString("3. SEO Keywords (Top 10)\n")
	userPrompt.WriteString("4. Catchy Title Variations (5 options)\n\n")
	userPrompt.WriteString("Return a JSON object with two string fields: \"show_notes\" (items 1, 3 and 4 as markdown) and \"social_kit\" (item 2 as markdown).\n\n")
	userPrompt.WriteString("Transcript: " + excerpt)

	reqBody := map[string]interface{}{
		"model": c.chatModel,
		"messages": []map[string]string{
			{"role": "system", "content": productionSystemPrompt},
			{"role": "user", "content": userPrompt.String()},
		},
		"temperature": 0.7,
		"response_format": map[string]string{
			"type": "json_object",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Printf("[ai] generating production kit for %q (model %s)", title, c.chatModel)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("empty chat response")
	}

	content := chatResp.Choices[0].Message.Content
	var kit ProductionKit
	if err := json.Unmarshal([]byte(content), &kit); err != nil {
		// Model occasionally ignores JSON mode; fall back to the raw text
		// in both slots rather than failing the job.
		log.Printf("[ai] production kit response was not JSON, storing raw text")
		kit = ProductionKit{ShowNotes: content, SocialKit: content}
	}
	if kit.ShowNotes == "" && kit.SocialKit == "" {
		return nil, fmt.Errorf("production kit response was empty: %s", content)
	}
	return &kit, nil
}
