package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Metrics lists the canonical metric names the engine must score.
var Metrics = []string{"Clarity", "Engagement", "Filler", "Pace", "Technical Depth"}

var (
	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mentorlens",
		Subsystem: "analysis",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of analysis engine requests",
	}, []string{"model"})

	analysisFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mentorlens",
		Subsystem: "analysis",
		Name:      "evaluation_failures_total",
		Help:      "Number of analysis engine failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI-backed analyzer.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIAnalyzer implements Analyzer against the OpenAI chat completion API.
type OpenAIAnalyzer struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAnalyzer builds an analyzer using the provided configuration.
func NewOpenAIAnalyzer(cfg OpenAIConfig) (*OpenAIAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/mentorlens/mentorlens-api/pkg/analysis")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIAnalyzer{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger.With().Str("component", "openai_analyzer").Logger(),
	}, nil
}

// Evaluate sends the session to the engine and parses the per-metric scores.
func (a *OpenAIAnalyzer) Evaluate(parent context.Context, input Input) ([]MetricResult, error) {
	ctx, span := a.tracer.Start(parent, "analysis.evaluate", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
		attribute.String("session_id", input.SessionID),
		attribute.String("accessibility_mode", input.AccessibilityMode),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: analyzerSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	analysisDuration.WithLabelValues(a.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		analysisFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("analysis request failed: %v: %w", err, ErrUnavailable)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from engine: %w", ErrUnavailable)
		analysisFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	results, err := parseMetricsResponse(content)
	if err != nil {
		analysisFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	a.logger.Info().
		Str("session_id", input.SessionID).
		Dur("duration", duration).
		Msg("session analysed")

	return results, nil
}

func analyzerSystemPrompt() string {
	return "You are an automated reviewer of recorded mentoring sessions. Score the session on exactly these metrics: " +
		strings.Join(Metrics, ", ") + ". Respond with a JSON object {\"metrics\": [{\"name\", \"score\" (0-1), " +
		"\"suggestion\", \"evidence\": [{\"timestamp_seconds\", \"description\"}]}]}. Cite at least one evidence clip per metric."
}

func buildUserPrompt(input Input) string {
	builder := strings.Builder{}
	builder.WriteString("# Session Recording\n")
	builder.WriteString(input.FileRef)
	builder.WriteString("\n\n## Weighting\n")
	builder.WriteString(weightingHint(input.AccessibilityMode))
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

// weightingHint biases which evidence the engine emphasises. The metric set
// itself never changes with the mode.
func weightingHint(mode string) string {
	switch mode {
	case "deaf":
		return "The mentor's audience includes deaf students. Weight caption quality and visual explanations when selecting evidence."
	case "blind":
		return "The mentor's audience includes blind students. Weight audio clarity and verbal descriptions when selecting evidence."
	case "easy":
		return "The mentor's audience prefers simplified material. Weight plain-language delivery and pacing when selecting evidence."
	case "all":
		return "The mentor's audience has mixed accessibility needs. Balance audio, caption, and visual evidence."
	default:
		return "No accessibility preference. Weight all evidence equally."
	}
}

func parseMetricsResponse(content string) ([]MetricResult, error) {
	type payload struct {
		Metrics []MetricResult `json:"metrics"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("parse analysis json: %v: %w", err, ErrUnavailable)
	}

	byName := make(map[string]MetricResult, len(data.Metrics))
	for _, metric := range data.Metrics {
		if metric.Score < 0 {
			metric.Score = 0
		}
		if metric.Score > 1 {
			metric.Score = 1
		}
		byName[metric.Name] = metric
	}

	results := make([]MetricResult, 0, len(Metrics))
	for _, name := range Metrics {
		metric, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("analysis response missing metric %q: %w", name, ErrUnavailable)
		}
		results = append(results, metric)
	}

	return results, nil
}
