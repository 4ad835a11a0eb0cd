package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
)

// ColumnDef describes one report column
type ColumnDef struct {
	Definition string `json:"definition"`
	Rule       string `json:"rule,omitempty"`
}

// Definitions is the metadata document used for header tooltips
type Definitions struct {
	Columns map[string]ColumnDef `json:"columns"`
	Rules   map[string]string    `json:"rules"`

	rules map[string]string // keyed by normalized rule key
}

// Tooltip is the assembled help text of a header cell
type Tooltip struct {
	Title      string
	Definition string
	RuleLabel  string
	RuleText   string
}

// Markdown renders the tooltip as a short markdown document
func (t Tooltip) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n%s", t.Title, t.Definition)
	if t.RuleText != "" {
		fmt.Fprintf(&b, "\n\n**%s:** %s", t.RuleLabel, t.RuleText)
	}
	return b.String()
}

// ParseDefinitions decodes the metadata document
func ParseDefinitions(data []byte) (*Definitions, error) {
	var defs Definitions
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse definitions: %w", err)
	}

	defs.rules = make(map[string]string, len(defs.Rules))
	for key, text := range defs.Rules {
		defs.rules[normalizeRuleKey(key)] = text
	}
	return &defs, nil
}

// Tooltip looks up the help text of a header. ok is false when the column is unknown.
func (d *Definitions) Tooltip(header string) (Tooltip, bool) {
	if d == nil {
		return Tooltip{}, false
	}

	name := strings.TrimSpace(header)
	column, ok := d.Columns[name]
	if !ok {
		return Tooltip{}, false
	}

	tooltip := Tooltip{Title: name, Definition: column.Definition}
	if column.Rule != "" {
		key := normalizeRuleKey(column.Rule)
		if text, found := d.rules[key]; found {
			tooltip.RuleLabel = "Rule " + strings.TrimPrefix(key, "rule")
			tooltip.RuleText = text
		}
	}
	return tooltip, true
}

// normalizeRuleKey folds "Rule 1", "rule_1" and "RULE-1" into "rule1"
func normalizeRuleKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(key)))
}

// DefinitionsLoader loads the metadata document on first use.
// A failed load is retried on the next call; the first success is kept.
type DefinitionsLoader struct {
	source string
	client *retryablehttp.Client
	logger *Logger

	mu   sync.Mutex
	defs *Definitions
	raw  []byte
}

// NewDefinitionsLoader reads from a file path or an http(s) URL. An empty source never loads.
func NewDefinitionsLoader(source string, logger *Logger) *DefinitionsLoader {
	if logger == nil {
		logger = NopLogger()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = retryLogger{logger: logger}

	return &DefinitionsLoader{
		source: source,
		client: client,
		logger: logger,
	}
}

// Get returns the definitions, or nil when they are unavailable
func (l *DefinitionsLoader) Get(ctx context.Context) *Definitions {
	if l == nil || l.source == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.defs != nil {
		return l.defs
	}

	data, err := l.read(ctx)
	if err == nil {
		l.defs, err = ParseDefinitions(data)
	}
	if err != nil {
		l.logger.Warn().Err(err).Str("source", l.source).Msg("definitions unavailable, tooltips omitted")
		return nil
	}

	l.raw = data
	l.logger.Debug().Str("source", l.source).Int("columns", len(l.defs.Columns)).Msg("definitions loaded")
	return l.defs
}

// Raw returns the document bytes as loaded, loading them if needed
func (l *DefinitionsLoader) Raw(ctx context.Context) ([]byte, bool) {
	if l.Get(ctx) == nil {
		return nil, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.raw, true
}

func (l *DefinitionsLoader) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(l.source, "http://") && !strings.HasPrefix(l.source, "https://") {
		data, err := os.ReadFile(l.source)
		if err != nil {
			return nil, fmt.Errorf("failed to read definitions: %w", err)
		}
		return data, nil
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch definitions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch definitions: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
