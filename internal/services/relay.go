package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/heartview/spark-backend/internal/models"
)

const relayTimeout = 60 * time.Second

// ErrEmptyCompletion means the model API answered 200 but returned no choices.
var ErrEmptyCompletion = errors.New("model returned no completion")

// systemPrompt steers the coach persona and pins the challenge block format the
// extractor depends on.
const systemPrompt = "당신은 따뜻한 라이프 코치 '스파크'입니다. 사용자가 한 주 동안 실천할 만한 과제를 제안할 때는 " +
	"반드시 '이번 주 챌린지' 배너와 함께 '미션:', '방법:', '목표:' 형식을 지켜주세요."

// ChatRelay forwards conversation turns to an OpenAI-compatible
// chat-completions endpoint. One request per user turn, no retries; failures
// surface to the caller as-is.
type ChatRelay struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewChatRelay creates a relay client. baseURL is the API root, e.g.
// https://api.openai.com/v1.
func NewChatRelay(apiKey, baseURL, model string) *ChatRelay {
	return &ChatRelay{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: relayTimeout,
		},
	}
}

type completionRequest struct {
	Model    string            `json:"model"`
	Messages []models.ChatTurn `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends the accumulated history and returns the assistant reply.
func (r *ChatRelay) Complete(ctx context.Context, turns []models.ChatTurn) (string, error) {
	messages := make([]models.ChatTurn, 0, len(turns)+1)
	messages = append(messages, models.ChatTurn{Role: "system", Content: systemPrompt})
	messages = append(messages, turns...)

	body, err := json.Marshal(completionRequest{
		Model:    r.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("model API returned status %d", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("model API error: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("model API returned status %d", resp.StatusCode)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}

	return parsed.Choices[0].Message.Content, nil
}
