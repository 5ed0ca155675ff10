package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/storynest/storynest/config"
	"github.com/storynest/storynest/utils"
)

// Replies shorter than this are treated as malformed and replaced by the
// local fallback content.
const minReplyLen = 10

// Assistant fetches kid-safe writing tips and fun facts from an
// OpenAI-compatible chat-completions endpoint. Every failure mode — missing
// config, timeout, bad status, short reply — falls back to a curated local
// list, so callers never see an upstream error.
type Assistant struct {
	client *http.Client
}

// NewAssistant builds the assistant with the configured timeout.
func NewAssistant() *Assistant {
	cfg := config.Get()
	return &Assistant{
		client: &http.Client{Timeout: time.Duration(cfg.AssistantTimeoutMS) * time.Millisecond},
	}
}

var fallbackTips = []string{
	"Start your story in the middle of the action, then explain how you got there.",
	"Read your story out loud. If a sentence makes you run out of breath, split it in two.",
	"Give your main character one thing they really want. Every scene gets easier after that.",
	"Describe what things smell and sound like, not just what they look like.",
	"Endings are hard! Try writing three different last sentences and pick your favorite.",
	"A villain who believes they are the hero is twice as interesting.",
	"Stuck? Ask 'and then what went wrong?' — trouble is what makes a story move.",
}

var fallbackFacts = []string{
	"Octopuses have three hearts, and two of them stop beating when they swim.",
	"A day on Venus is longer than a year on Venus.",
	"Honey found in ancient Egyptian tombs is still safe to eat after 3,000 years.",
	"Bananas are berries, but strawberries are not.",
	"The Eiffel Tower grows about 15 centimeters taller in summer heat.",
	"Sea otters hold hands while they sleep so they don't drift apart.",
	"There are more trees on Earth than stars in the Milky Way.",
}

// DailyTip returns a short writing tip.
func (a *Assistant) DailyTip(ctx context.Context) string {
	text, err := a.complete(ctx,
		"Give one short, encouraging creative-writing tip for a 10-year-old blogger. One or two sentences, no preamble.")
	if err != nil || len([]rune(strings.TrimSpace(text))) < minReplyLen {
		if err != nil {
			utils.Sugar.Debugf("assistant tip fallback: %v", err)
		}
		return pickFallback(fallbackTips)
	}
	return strings.TrimSpace(text)
}

// FunFact returns a kid-friendly fun fact.
func (a *Assistant) FunFact(ctx context.Context) string {
	text, err := a.complete(ctx,
		"Share one surprising, kid-friendly fun fact about nature, space, or animals. One or two sentences, no preamble.")
	if err != nil || len([]rune(strings.TrimSpace(text))) < minReplyLen {
		if err != nil {
			utils.Sugar.Debugf("assistant fact fallback: %v", err)
		}
		return pickFallback(fallbackFacts)
	}
	return strings.TrimSpace(text)
}

// pickFallback selects deterministically by UTC day so the whole family sees
// the same tip all day.
func pickFallback(list []string) string {
	return list[time.Now().UTC().YearDay()%len(list)]
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (a *Assistant) complete(ctx context.Context, prompt string) (string, error) {
	cfg := config.Get()
	if cfg.AssistantBaseURL == "" || cfg.AssistantAPIKey == "" {
		return "", fmt.Errorf("assistant not configured")
	}

	payload, err := json.Marshal(chatRequest{
		Model:     cfg.AssistantModel,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: 120,
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(cfg.AssistantBaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.AssistantAPIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("assistant returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
