package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
)

// Transcribe sends recorded audio to the transcription endpoint and returns
// plain text. Audio is capped at the provider's 25MB per-request limit;
// studio captures are short enough that chunking is not needed.
func (c *Client) Transcribe(ctx context.Context, filename string, audio []byte, language string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key not configured")
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio data")
	}
	if len(audio) > maxTranscribeUpload {
		return "", fmt.Errorf("audio too large for transcription: %d bytes (limit %d)", len(audio), maxTranscribeUpload)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}

	writer.WriteField("model", transcriptionModel)
	writer.WriteField("response_format", "text")
	if language != "" && language != "auto" {
		writer.WriteField("language", language)
	}
	writer.Close()

	url := c.baseURL + "/v1/audio/transcriptions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Printf("[ai] transcribing %s (%d bytes)", filename, len(audio))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription API error (status %d): %s", resp.StatusCode, string(body))
	}

	return strings.TrimSpace(string(body)), nil
}
