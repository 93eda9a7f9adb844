package guidance

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
	"github.com/zhouzirui/edu-guide/backend/internal/model/knowledge"
)

// Composer renders curated Knowledge Base content as bullet-point replies.
// It never fails: when nothing is curated it falls back to a fixed template.
type Composer struct {
	kb knowledge.Store
}

// NewComposer builds a composer over the given knowledge store.
func NewComposer(kb knowledge.Store) *Composer {
	return &Composer{kb: kb}
}

// Match reports whether class is a confident hit on curated content. A career
// question about a specific field only matches that field's own entries; the
// general page is not a match for it.
func (c *Composer) Match(class chat.Classification) (knowledge.Entry, bool) {
	if !class.Confident {
		return knowledge.Entry{}, false
	}
	field := fieldOrGeneral(class.Field)
	if class.Category == chat.CategoryCareerGuidance && field.Specific() {
		return c.kb.Lookup(field, topicOf(class))
	}
	return c.kb.Resolve(field, topicOf(class))
}

// Compose builds the reply for class. Identical inputs give identical output.
func (c *Composer) Compose(class chat.Classification, session chat.Session) string {
	field := class.Field
	if !field.Specific() {
		field = session.AreaOfInterest
	}
	field = fieldOrGeneral(field)

	entry, ok := c.kb.Resolve(field, topicOf(class))
	if !ok {
		entry, ok = c.kb.Resolve(chat.FieldGeneral, class.Category.DefaultTopic())
	}
	if !ok {
		return renderMinimal(class.Category, field)
	}
	return Render(entry, nextSteps(class.Category, field))
}

// Render writes an entry followed by the next steps block.
func Render(entry knowledge.Entry, steps []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", entry.Title)
	for i, sec := range entry.Sections {
		if sec.Heading != "" {
			fmt.Fprintf(&b, "\n\n**%s**", sec.Heading)
		} else if i > 0 {
			b.WriteString("\n")
		}
		for _, item := range sec.Items {
			b.WriteString("\n• ")
			b.WriteString(renderItem(item))
		}
	}
	writeSteps(&b, steps)
	if entry.Closing != "" {
		b.WriteString("\n\n")
		b.WriteString(entry.Closing)
	}
	return b.String()
}

func renderItem(item knowledge.Item) string {
	detail := item.Detail
	if item.Range != nil {
		if detail == "" {
			detail = item.Range.String()
		} else {
			detail = fmt.Sprintf("%s (%s)", detail, item.Range)
		}
	}
	switch {
	case item.Label == "":
		return detail
	case detail == "":
		return fmt.Sprintf("**%s**", item.Label)
	default:
		return fmt.Sprintf("**%s**: %s", item.Label, detail)
	}
}

func writeSteps(b *strings.Builder, steps []string) {
	if len(steps) == 0 {
		return
	}
	b.WriteString("\n\n**Next Steps**")
	for _, step := range steps {
		b.WriteString("\n• ")
		b.WriteString(step)
	}
}

func renderMinimal(category chat.Category, field chat.Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", categoryTitle(category))
	b.WriteString("\n• I don't have curated notes on that yet, but I'm happy to help you think it through.")
	writeSteps(&b, nextSteps(category, field))
	return b.String()
}

func nextSteps(category chat.Category, field chat.Field) []string {
	subject := "your field"
	if field.Specific() {
		subject = string(field)
	}
	switch category {
	case chat.CategoryCareerGuidance:
		return []string{
			fmt.Sprintf("Ask me about skills, career paths or salary ranges in %s", subject),
			"Look for internships, job shadowing or volunteering to test your interest",
			"Talk to a career counselor about course and college choices",
		}
	case chat.CategoryMentalHealth:
		return []string{
			"Try one coping strategy this week and notice how it feels",
			"Reach out to your school's counseling service if things feel heavy",
			"Tell me more about what is causing the pressure",
		}
	case chat.CategoryGeneralEducation:
		return []string{
			"Pick one study technique to try this week",
			"Build a simple weekly study schedule",
			"Ask me about a specific subject, exam or application",
		}
	default:
		return []string{
			fmt.Sprintf("Ask me about skills, careers or salaries in %s", subject),
			"Share any study or exam stress you're dealing with",
		}
	}
}

func categoryTitle(category chat.Category) string {
	switch category {
	case chat.CategoryCareerGuidance:
		return "Career Guidance"
	case chat.CategoryMentalHealth:
		return "Wellbeing Support"
	case chat.CategoryGeneralEducation:
		return "Study Guidance"
	default:
		return "Education Guidance"
	}
}

func topicOf(class chat.Classification) chat.Topic {
	if class.Topic != "" {
		return class.Topic
	}
	return class.Category.DefaultTopic()
}

func fieldOrGeneral(f chat.Field) chat.Field {
	if f.Specific() {
		return f
	}
	return chat.FieldGeneral
}
