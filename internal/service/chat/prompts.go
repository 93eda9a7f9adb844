package chat

import (
	"fmt"

	"github.com/zhouzirui/edu-guide/backend/internal/analysis/intent"
	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

const (
	greetingPrompt   = "Hello! I'm your AI education assistant. I'd love to help you with your educational journey. Could you please tell me your name?"
	nameRetryPrompt  = "I didn't catch your name. Could you please tell me your name?"
	ageRetryPrompt   = "I didn't understand your age. Could you please tell me how old you are?"
	openQAEmptyInput = "What specific question or concern would you like help with regarding your education?"

	persistWarning  = "Your reply was delivered but the conversation could not be saved. It may not be remembered on your next message."
	guidanceWarning = "Your conversation was saved but this answer could not be added to the guidance log."
	resetMessage    = "Conversation reset successfully"
)

func askAgePrompt(name string) string {
	return fmt.Sprintf("Nice to meet you, %s! How old are you?", name)
}

func ageRangePrompt() string {
	return fmt.Sprintf("Please enter a valid age between %d and %d.", intent.MinAge, intent.MaxAge)
}

func askFieldPrompt(age int) string {
	return fmt.Sprintf("Great! At %d years old, you have so many exciting educational opportunities ahead. "+
		"What area interests you most? (e.g., Engineering, Medicine, Arts, Business, Science, Law)", age)
}

func openQAPrompt(field chat.Field, recognized bool) string {
	if !recognized {
		return "No problem, we can keep things general for now. " + openQAEmptyInput
	}
	return fmt.Sprintf("Excellent choice! %s is a fascinating field. Now, %s", field,
		"what specific question or concern would you like help with regarding your education?")
}
