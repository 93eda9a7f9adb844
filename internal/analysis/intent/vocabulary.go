package intent

import (
	"regexp"
	"strings"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

// vocabulary matches any of its words on word boundaries. A trailing "*"
// turns a word into a prefix ("engineer*" matches "engineers", "engineering").
type vocabulary struct {
	re *regexp.Regexp
}

func newVocabulary(words ...string) vocabulary {
	alts := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		prefix := strings.HasSuffix(w, "*")
		w = regexp.QuoteMeta(strings.TrimSuffix(w, "*"))
		w = strings.ReplaceAll(w, " ", `\s+`)
		if prefix {
			w += `\w*`
		}
		alts = append(alts, w)
	}
	return vocabulary{re: regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)}
}

func (v vocabulary) match(normalized string) bool {
	return v.re.MatchString(normalized)
}

// first returns the byte offset of the earliest match or -1.
func (v vocabulary) first(normalized string) int {
	loc := v.re.FindStringIndex(normalized)
	if loc == nil {
		return -1
	}
	return loc[0]
}

type fieldVocabulary struct {
	field chat.Field
	vocab vocabulary
}

var fieldBuckets = []fieldVocabulary{
	{chat.FieldEngineering, newVocabulary(
		"engineer*", "software", "hardware", "mechanical", "electrical", "civil", "aerospace",
		"tech", "technology", "computer*", "robotic*", "programming", "coding",
	)},
	{chat.FieldMedicine, newVocabulary(
		"medicine", "medical", "doctor", "doctors", "healthcare", "nurse*", "nursing", "pharmac*",
		"dentist*", "dentistry", "veterinar*", "surgeon*", "physician*",
	)},
	{chat.FieldArts, newVocabulary(
		"art", "arts", "artist*", "graphic design", "designer*", "creative", "music*", "painting",
		"drawing", "photograph*", "film*", "animation",
	)},
	{chat.FieldBusiness, newVocabulary(
		"business*", "commerce", "business management", "mba", "financ*", "accounting", "marketing",
		"entrepreneur*", "economics",
	)},
	{chat.FieldScience, newVocabulary(
		"science", "sciences", "scientist*", "physics", "chemistry", "biology", "math", "maths",
		"mathematics", "laboratory",
	)},
	{chat.FieldLaw, newVocabulary(
		"law", "laws", "legal", "lawyer*", "attorney*", "justice", "court*",
	)},
}

var (
	mentalVocab = newVocabulary(
		"stress*", "anxiety", "anxious", "depress*", "overwhelm*", "burnout", "burned out",
		"burnt out", "tired", "exhausted", "motivat*", "pressure", "panic*", "lonely",
		"worried", "worry", "mental health", "concentrat*", "can't focus", "cannot focus",
	)
	studyVocab = newVocabulary(
		"study", "studying", "studies", "learn*", "technique*", "method*", "exam*",
		"scholarship*", "application*", "time management", "homework", "note-taking",
		"notes", "revision", "revise", "procrastinat*", "memoriz*", "resource*",
	)
	careerVocab = newVocabulary(
		"career*", "job*", "salary", "salaries", "skill*", "course*", "degree*", "college*",
		"university", "universities", "major", "field", "industry", "profession*",
	)

	skillsVocab   = newVocabulary("skill*", "requirement*", "qualification*", "prerequisite*", "competenc*")
	salaryVocab   = newVocabulary("salary", "salaries", "earn*", "pay", "paid", "pays", "income", "wage*")
	careersVocab  = newVocabulary("career*", "job*", "opportunit*", "role*", "work as", "path*")
	overviewVocab = newVocabulary("overview", "about", "introduction", "intro", "what is")
)
