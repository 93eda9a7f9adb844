package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zhouzirui/edu-guide/backend/internal/logger"
	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

// Asker is the slice of the AI adapter the refiner needs.
type Asker interface {
	Ask(ctx context.Context, system, query string) (string, error)
}

// Config 控制意图细化服务的行为。
type Config struct {
	Enabled bool
}

// Service 使用大模型为规则无法识别的问题补充分类，失败时保留规则结果。
type Service struct {
	enabled bool
	asker   Asker
	log     *logger.Logger
}

// NewService 创建意图细化服务。asker 为空时服务处于关闭状态。
func NewService(asker Asker, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		enabled: cfg.Enabled && asker != nil,
		asker:   asker,
		log:     log.With("service", "intent"),
	}
}

// Enabled 返回服务是否启用。
func (s *Service) Enabled() bool {
	return s != nil && s.enabled
}

// Refine upgrades an UNKNOWN rule classification when the model names one of
// the three guidance categories. Any other input is returned unchanged.
func (s *Service) Refine(ctx context.Context, text string, class chat.Classification) chat.Classification {
	if !s.Enabled() || class.Category != chat.CategoryUnknown {
		return class
	}

	raw, err := s.asker.Ask(ctx, refineSystemPrompt, fmt.Sprintf(refineUserPrompt, strings.TrimSpace(text)))
	if err != nil {
		s.log.Warn("intent refinement failed, keep rule result", "error", err)
		return class
	}

	category, err := parseRefinerOutput(raw)
	if err != nil {
		s.log.Warn("intent refinement output unusable, keep rule result", "error", err)
		return class
	}

	refined := class
	refined.Category = category
	refined.Topic = category.DefaultTopic()
	refined.Confident = false
	return refined
}

type refinerPayload struct {
	Category string `json:"category"`
}

// parseRefinerOutput 解析模型输出，兼容纯文本与 JSON 两种形式。
func parseRefinerOutput(content string) (chat.Category, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start != -1 && end > start {
		payload := &refinerPayload{}
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
			return "", err
		}
		trimmed = payload.Category
	}

	normalized := strings.ToLower(strings.TrimSpace(trimmed))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	switch {
	case strings.Contains(normalized, "career_guidance"):
		return chat.CategoryCareerGuidance, nil
	case strings.Contains(normalized, "mental_health"):
		return chat.CategoryMentalHealth, nil
	case strings.Contains(normalized, "general_education"):
		return chat.CategoryGeneralEducation, nil
	default:
		return "", fmt.Errorf("unrecognized category %q", content)
	}
}

const refineSystemPrompt = `You are an expert education counselor. Classify the student's query into exactly one category:
career_guidance: courses, degrees, colleges, career paths, job prospects, field selection, skills, salary.
mental_health_support: academic stress, anxiety, burnout, motivation, exam pressure, emotional wellbeing.
general_education: study techniques, learning methods, scholarships, applications, time management, other education questions.
Respond with a JSON object {"category": "<one of the three>"} and nothing else.`

const refineUserPrompt = "Student query: %q"
