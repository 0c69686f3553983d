package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cursolab/cursolab-backend/internal/platform/envutil"
	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/types"
)

// Client is the generative authoring assistant: prompt plus schema in,
// well-formed module values out. It lives entirely outside the packaging
// core; the editor only ever receives validated modules from it.
type Client interface {
	GenerateModules(ctx context.Context, topic string, count int) ([]*types.Module, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("ASSISTANT_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("Env var ASSISTANT_API_KEY is empty")
	}
	return &client{
		log:        log.With("service", "AssistantClient"),
		baseURL:    envutil.String("ASSISTANT_BASE_URL", "https://api.openai.com/v1"),
		apiKey:     apiKey,
		model:      envutil.String("ASSISTANT_MODEL", "gpt-4o-mini"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		maxRetries: envutil.Int("ASSISTANT_MAX_RETRIES", 2),
	}, nil
}

const systemPrompt = `You write course modules for a learning tool. ` +
	`Return only module objects that match the provided schema. ` +
	`Quiz answers are zero-based option indexes.`

func (c *client) GenerateModules(ctx context.Context, topic string, count int) ([]*types.Module, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("topic required")
	}
	if count <= 0 {
		count = 3
	}

	user := fmt.Sprintf("Create %d modules teaching: %s", count, topic)
	raw, err := c.generateJSON(ctx, systemPrompt, user, "module_list", moduleListSchema())
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Modules []*types.Module `json:"modules"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse assistant output: %w", err)
	}

	out := make([]*types.Module, 0, len(parsed.Modules))
	for _, m := range parsed.Modules {
		if m == nil {
			continue
		}
		m.ID = uuid.NewString()
		assignInnerIDs(m)
		if err := m.Validate(); err != nil {
			c.log.Warn("dropping malformed generated module", "error", err)
			continue
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("assistant produced no usable modules")
	}
	return out, nil
}

// assignInnerIDs replaces whatever ids the model invented for nested items.
func assignInnerIDs(m *types.Module) {
	switch {
	case m.Quiz != nil:
		for i := range m.Quiz.Questions {
			m.Quiz.Questions[i].ID = uuid.NewString()
		}
	case m.Cards != nil:
		for i := range m.Cards.Cards {
			m.Cards.Cards[i].ID = uuid.NewString()
		}
	case m.Timeline != nil:
		for i := range m.Timeline.Events {
			m.Timeline.Events[i].ID = uuid.NewString()
		}
	}
}

func (c *client) generateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (json.RawMessage, error) {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schemaName,
				"strict": false,
				"schema": schema,
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}
		raw, err := c.doChatCompletion(ctx, payload)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		c.log.Warn("assistant call failed", "attempt", attempt, "error", err)
	}
	return nil, lastErr
}

func (c *client) doChatCompletion(ctx context.Context, payload []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.baseURL, "/")+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assistant API status %d: %s", resp.StatusCode, truncate(string(respBody), 300))
	}

	var envelope struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("parse assistant envelope: %w", err)
	}
	if len(envelope.Choices) == 0 {
		return nil, fmt.Errorf("assistant returned no choices")
	}
	return json.RawMessage(envelope.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
