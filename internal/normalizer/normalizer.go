// internal/normalizer/normalizer.go
package normalizer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"voicefin/internal/common/config"
	"voicefin/internal/common/logger"
	"voicefin/internal/common/metrics"
)

// canonicalPatterns is the fixed command-template grammar. Model output that
// does not match one of these exactly is discarded.
var canonicalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^set \w+ budget to \d+$`),
	regexp.MustCompile(`^add expense \d+ \w+$`),
	regexp.MustCompile(`^remind me to .+ on \d+$`),
	regexp.MustCompile(`^check balance$`),
}

// IsCanonicalCommand reports whether cmd matches the command-template grammar.
func IsCanonicalCommand(cmd string) bool {
	for _, p := range canonicalPatterns {
		if p.MatchString(cmd) {
			return true
		}
	}
	return false
}

const prompt = `You are a STRICT command normalizer.

You MUST output EXACTLY ONE command.
DO NOT invent placeholders.
DO NOT explain.
DO NOT add symbols.

Choose ONE format ONLY:

1. set <category> budget to <amount>
2. add expense <amount> <category>
3. remind me to <name> on <day>
4. check balance

### Examples

User: paid 40 for tea
Command: add expense 40 tea

User: dont let me spend more than 23 on pen
Command: set pen budget to 23

User: how much money is left
Command: check balance

User: remind me to pay rent on 10
Command: remind me to pay rent on 10

### Now convert:

User: %s
Command:`

// Normalizer rewrites loose natural language into a canonical finance command.
// Best effort only: every failure path returns the lowercased raw input, and
// the deterministic pipeline re-parses whatever comes back.
type Normalizer struct {
	model      llms.Model
	timeout    time.Duration
	maxRetries int
	logger     logger.Logger
}

// New builds a Normalizer from configuration. Returns nil when disabled, which
// callers treat as "pass raw text through".
func New(cfg config.NormalizerConfig, log logger.Logger) (*Normalizer, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return NewWithModel(model, cfg, log), nil
}

// NewWithModel builds a Normalizer over an existing model. Used by tests.
func NewWithModel(model llms.Model, cfg config.NormalizerConfig, log logger.Logger) *Normalizer {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Normalizer{
		model:      model,
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
		logger:     log.With(map[string]interface{}{"component": "normalizer"}),
	}
}

// Normalize rewrites text into a canonical command, or returns the lowercased
// raw input when the model fails or produces anything outside the grammar.
// Never returns an error.
func (n *Normalizer) Normalize(ctx context.Context, text string) string {
	fallback := strings.ToLower(strings.TrimSpace(text))
	if n == nil || n.model == nil || len(fallback) < 3 {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	command, err := n.generate(ctx, text)
	if err != nil {
		n.logger.Warn("normalizer call failed, using raw input", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.NormalizerFallbacks.Inc()
		return fallback
	}

	command = strings.ToLower(strings.TrimSpace(command))
	if !IsCanonicalCommand(command) {
		n.logger.Debug("normalizer output rejected by grammar", map[string]interface{}{
			"output": command,
		})
		metrics.NormalizerFallbacks.Inc()
		return fallback
	}

	return command
}

func (n *Normalizer) generate(ctx context.Context, text string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		out, err := llms.GenerateFromSinglePrompt(ctx, n.model,
			fmt.Sprintf(prompt, text),
			llms.WithTemperature(0),
			llms.WithMaxTokens(32),
		)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", lastErr
}
