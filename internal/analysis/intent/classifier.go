package intent

import (
	"strings"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

// Classifier maps an open question to a category, field and topic using the
// static vocabularies. It holds no mutable state and is safe for concurrent use.
type Classifier struct{}

// NewClassifier returns the rule-based classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify decides the category of an OPEN_QA message. hint is the session's
// stored area of interest; an explicit field mention in text overrides it.
func (c *Classifier) Classify(text string, hint chat.Field) chat.Classification {
	normalized := normalize(text)
	if hint == "" {
		hint = chat.FieldGeneral
	}

	if field, ok := detectField(normalized); ok {
		topic, confident := careerTopic(normalized)
		return chat.Classification{
			Category:      chat.CategoryCareerGuidance,
			Field:         field,
			Topic:         topic,
			Confident:     confident,
			FieldOverride: field != hint,
		}
	}

	if mentalVocab.match(normalized) {
		return chat.Classification{
			Category:  chat.CategoryMentalHealth,
			Field:     hint,
			Topic:     chat.TopicWellbeing,
			Confident: true,
		}
	}

	if studyVocab.match(normalized) {
		return chat.Classification{
			Category:  chat.CategoryGeneralEducation,
			Field:     hint,
			Topic:     chat.TopicStudy,
			Confident: true,
		}
	}

	if hint.Specific() || careerVocab.match(normalized) {
		topic, confident := careerTopic(normalized)
		return chat.Classification{
			Category:  chat.CategoryCareerGuidance,
			Field:     hint,
			Topic:     topic,
			Confident: confident,
		}
	}

	return chat.Classification{
		Category: chat.CategoryUnknown,
		Field:    hint,
		Topic:    chat.TopicHelp,
	}
}

// careerTopic picks the curated topic of a career question. confident is
// false when no topic vocabulary matched and overview is only the default.
func careerTopic(normalized string) (chat.Topic, bool) {
	switch {
	case skillsVocab.match(normalized):
		return chat.TopicSkills, true
	case salaryVocab.match(normalized):
		return chat.TopicSalary, true
	case careersVocab.match(normalized):
		return chat.TopicCareers, true
	case overviewVocab.match(normalized):
		return chat.TopicOverview, true
	default:
		return chat.TopicOverview, false
	}
}

// detectField returns the field mentioned earliest in the text.
func detectField(normalized string) (chat.Field, bool) {
	best := -1
	var field chat.Field
	for _, bucket := range fieldBuckets {
		pos := bucket.vocab.first(normalized)
		if pos < 0 {
			continue
		}
		if best < 0 || pos < best {
			best = pos
			field = bucket.field
		}
	}
	return field, best >= 0
}

func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
