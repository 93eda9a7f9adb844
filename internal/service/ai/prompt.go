package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

// PromptTemplate holds the category specific instructions for the counselor.
type PromptTemplate struct {
	Focus        string
	ContextRules []string
}

// PromptManager builds system prompts from the student's collected context.
type PromptManager struct {
	templates map[chat.Category]*PromptTemplate
}

// NewPromptManager creates a prompt manager with the default templates.
func NewPromptManager() *PromptManager {
	pm := &PromptManager{templates: make(map[chat.Category]*PromptTemplate)}
	pm.loadDefaultTemplates()
	return pm
}

const basePrompt = `You are a friendly, knowledgeable education counselor helping a student plan their studies and career.
Answer in concise bullet points grouped under short bold headings, and finish with a "**Next Steps**" block.
Only give advice about education, careers and student wellbeing.`

// BuildSystemPrompt creates the system prompt for one open question.
func (pm *PromptManager) BuildSystemPrompt(session chat.Session, class chat.Classification) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	b.WriteString("\n\nStudent profile:")
	if session.StudentName != "" {
		fmt.Fprintf(&b, "\n- Name: %s", session.StudentName)
	}
	if session.StudentAge > 0 {
		fmt.Fprintf(&b, "\n- Age: %d", session.StudentAge)
	}
	field := class.Field
	if !field.Specific() {
		field = session.AreaOfInterest
	}
	if field.Specific() {
		fmt.Fprintf(&b, "\n- Field of interest: %s", field)
	} else {
		b.WriteString("\n- Field of interest: not decided yet")
	}

	fmt.Fprintf(&b, "\n\nTone: %s", toneForAge(session.StudentAge))

	if tpl, ok := pm.templates[class.Category]; ok {
		fmt.Fprintf(&b, "\n\nFocus: %s", tpl.Focus)
		if len(tpl.ContextRules) > 0 {
			b.WriteString("\nRules:\n- ")
			b.WriteString(strings.Join(tpl.ContextRules, "\n- "))
		}
	}
	return b.String()
}

func toneForAge(age int) string {
	switch {
	case age <= 0:
		return "warm and clear."
	case age < 18:
		return "encouraging and simple; avoid jargon and suggest talking to parents or teachers for big decisions."
	case age < 25:
		return "practical and motivating; focus on concrete next steps for a young adult."
	default:
		return "professional and detailed; acknowledge prior experience and career transitions."
	}
}

func (pm *PromptManager) loadDefaultTemplates() {
	pm.templates[chat.CategoryCareerGuidance] = &PromptTemplate{
		Focus: "career guidance for the student's field: skills, education paths, roles and salary ranges.",
		ContextRules: []string{
			"Stay within the student's field unless they ask about another one",
			"Give salary figures as approximate annual USD ranges",
			"Mention required degrees and certifications where relevant",
		},
	}
	pm.templates[chat.CategoryMentalHealth] = &PromptTemplate{
		Focus: "academic stress and wellbeing support.",
		ContextRules: []string{
			"Acknowledge the student's feelings before giving advice",
			"Suggest practical coping strategies and campus resources",
			"Recommend professional help or crisis lines if they mention self-harm",
		},
	}
	pm.templates[chat.CategoryGeneralEducation] = &PromptTemplate{
		Focus: "study techniques, time management and academic planning.",
		ContextRules: []string{
			"Prefer evidence-based techniques such as active recall and spaced repetition",
			"Keep advice actionable for the student's age",
		},
	}
	pm.templates[chat.CategoryUnknown] = &PromptTemplate{
		Focus: "a general education question; relate the answer back to the student's goals where possible.",
	}
}
