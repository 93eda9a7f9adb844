package chat

// Field is an academic or career domain from the controlled set.
type Field string

const (
	FieldEngineering Field = "Engineering"
	FieldMedicine    Field = "Medicine"
	FieldArts        Field = "Arts"
	FieldBusiness    Field = "Business"
	FieldScience     Field = "Science"
	FieldLaw         Field = "Law"
	FieldGeneral     Field = "general"
)

// Fields lists the recognized fields in display order, without general.
func Fields() []Field {
	return []Field{FieldEngineering, FieldMedicine, FieldArts, FieldBusiness, FieldScience, FieldLaw}
}

// Specific reports whether f names a concrete field rather than general or nothing.
func (f Field) Specific() bool {
	return f != "" && f != FieldGeneral
}

// Category is the topical classification of a message.
type Category string

const (
	CategoryIntake           Category = "INTAKE"
	CategoryCareerGuidance   Category = "CAREER_GUIDANCE"
	CategoryMentalHealth     Category = "MENTAL_HEALTH"
	CategoryGeneralEducation Category = "GENERAL_EDUCATION"
	CategoryUnknown          Category = "UNKNOWN"
)

// Topic narrows a category to a kind of curated content.
type Topic string

const (
	TopicOverview  Topic = "overview"
	TopicSkills    Topic = "skills"
	TopicCareers   Topic = "careers"
	TopicSalary    Topic = "salary"
	TopicWellbeing Topic = "wellbeing"
	TopicStudy     Topic = "study"
	TopicHelp      Topic = "help"
)

// DefaultTopic is the topic used when nothing more specific was detected.
func (c Category) DefaultTopic() Topic {
	switch c {
	case CategoryMentalHealth:
		return TopicWellbeing
	case CategoryGeneralEducation:
		return TopicStudy
	case CategoryCareerGuidance:
		return TopicOverview
	default:
		return TopicHelp
	}
}

// Classification is the per-turn decision for a message. It is never
// persisted; Field defaults to the session's area of interest.
type Classification struct {
	Category Category `json:"category"`
	Field    Field    `json:"field,omitempty"`
	Topic    Topic    `json:"topic,omitempty"`
	// Confident is set when explicit topic vocabulary was matched.
	Confident bool `json:"confident"`
	// FieldOverride is set when the message named a field itself.
	FieldOverride bool `json:"field_override,omitempty"`
}
