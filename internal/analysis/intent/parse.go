package intent

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

const (
	MinAge        = 13
	MaxAge        = 100
	MaxNameLength = 50
)

var (
	ErrEmptyName      = errors.New("name is empty")
	ErrInvalidName    = errors.New("name must contain a letter and be at most 50 characters")
	ErrAgeNotNumeric  = errors.New("age is not a number")
	ErrAgeOutOfRange  = errors.New("age is out of range")
	namePhrasePattern = regexp.MustCompile(`(?i)\b(?:my name is|name is|i'm|i am|call me|this is)\s+([\p{L}][\p{L}'-]*)`)
	integerPattern    = regexp.MustCompile(`\d+`)
)

// ParseName extracts a student name from an intake answer. Introductions such
// as "my name is alex" yield "Alex"; anything else is taken as the name itself.
func ParseName(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyName
	}

	if m := namePhrasePattern.FindStringSubmatch(trimmed); m != nil {
		return capitalize(m[1]), nil
	}

	if utf8.RuneCountInString(trimmed) > MaxNameLength || !strings.ContainsFunc(trimmed, unicode.IsLetter) {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

// ParseAge returns the first integer in text when it falls in [MinAge, MaxAge].
func ParseAge(text string) (int, error) {
	raw := integerPattern.FindString(text)
	if raw == "" {
		return 0, ErrAgeNotNumeric
	}
	age, err := strconv.Atoi(raw)
	if err != nil || age < MinAge || age > MaxAge {
		return 0, ErrAgeOutOfRange
	}
	return age, nil
}

// ParseField maps an intake answer to a field. Unrecognized answers return
// FieldGeneral with ok=false so the caller can still advance.
func ParseField(text string) (chat.Field, bool) {
	if field, ok := detectField(normalize(text)); ok {
		return field, true
	}
	return chat.FieldGeneral, false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
