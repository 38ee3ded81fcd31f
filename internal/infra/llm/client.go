package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"educraft-session-service/internal/content"
	"educraft-session-service/internal/domain"
)

const (
	defaultURL   = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel = "llama-3.3-70b-versatile"
)

// ErrNotConfigured is returned by every call when no API key is set, so the
// service runs on fallback content alone.
var ErrNotConfigured = errors.New("content generator not configured")

// Config configures the chat completions endpoint.
type Config struct {
	URL    string
	APIKey string
	Model  string
	// Temperature overrides the per-call defaults when positive.
	Temperature float64
	HTTPClient  *http.Client
}

// Client talks to an OpenAI-compatible chat completions API.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = defaultURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	return &Client{cfg: cfg}
}

// GenerateQuestion asks for one multiple choice question.
func (c *Client) GenerateQuestion(ctx context.Context, req domain.GenerationRequest) (domain.Question, error) {
	out, err := c.complete(ctx, questionPrompt(req), 0.9, 500)
	if err != nil {
		return domain.Question{}, err
	}
	return content.ParseQuestion(out)
}

// GenerateWorld asks for a themed game world.
func (c *Client) GenerateWorld(ctx context.Context, subject, grade string) (domain.World, error) {
	out, err := c.complete(ctx, worldPrompt(subject, grade), 0.7, 500)
	if err != nil {
		return domain.World{}, err
	}
	var w domain.World
	if err := content.DecodeJSON(out, &w); err != nil {
		return domain.World{}, err
	}
	return w, nil
}

// TutorReply continues a tutoring conversation.
func (c *Client) TutorReply(ctx context.Context, subject, grade, message string, history []domain.TutorMessage) (string, error) {
	return c.complete(ctx, tutorPrompt(subject, grade, message, history), 0.8, 300)
}

// WeakTopics identifies weak areas from wrong answers.
func (c *Client) WeakTopics(ctx context.Context, subject, grade string, wrongAnswers []string) ([]string, error) {
	out, err := c.complete(ctx, weakTopicsPrompt(subject, grade, wrongAnswers), 0.5, 300)
	if err != nil {
		return nil, err
	}
	var result struct {
		WeakTopics []string `json:"weak_topics"`
	}
	if err := content.DecodeJSON(out, &result); err != nil {
		return nil, err
	}
	return result.WeakTopics, nil
}

// ClassInsight writes a short note for a teacher.
func (c *Client) ClassInsight(ctx context.Context, students []domain.StudentStats) (string, error) {
	out, err := c.complete(ctx, insightPrompt(students), 0.7, 300)
	if err != nil {
		return "", err
	}
	var result struct {
		Insight string `json:"insight"`
	}
	if err := content.DecodeJSON(out, &result); err != nil {
		return "", err
	}
	return result.Insight, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	apiKey := strings.TrimSpace(c.cfg.APIKey)
	if apiKey == "" {
		return "", ErrNotConfigured
	}

	if c.cfg.Temperature > 0 {
		temperature = c.cfg.Temperature
	}
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("completion request status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload chatResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(payload.Choices) == 0 || strings.TrimSpace(payload.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrMalformedContent)
	}
	return payload.Choices[0].Message.Content, nil
}
