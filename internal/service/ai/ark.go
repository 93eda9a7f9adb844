package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

// arkProvider runs requests through an eino chain: template, then chat model.
type arkProvider struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

func newArkProvider(ctx context.Context, chatModel model.ChatModel) (*arkProvider, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &arkProvider{chain: runnable}, nil
}

func (p *arkProvider) Name() string { return "ark" }

func (p *arkProvider) Complete(ctx context.Context, req Request) (string, error) {
	input := map[string]any{
		"system":  req.System,
		"history": buildHistoryMessages(req.History),
		"query":   req.Query,
	}

	msg, err := p.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if msg == nil {
		return "", nil
	}
	return msg.Content, nil
}

func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Text))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Text, nil))
		}
	}
	return history
}
