package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"quillpdf/internal/ai"
	"quillpdf/internal/model"
	"quillpdf/internal/vector"
)

var ErrMessageEmpty = errors.New("message text is empty")

const systemInstruction = "Use the following pieces of context (or previous conversation if needed) to answer the users question in markdown format."

type ChatService struct {
	files        FileStore
	messages     MessageStore
	embedder     Embedder
	index        vector.Index
	completions  CompletionStreamer
	topK         int
	historyLimit int
}

func NewChatService(
	files FileStore,
	messages MessageStore,
	embedder Embedder,
	index vector.Index,
	completions CompletionStreamer,
	topK int,
	historyLimit int,
) *ChatService {
	if topK <= 0 {
		topK = 4
	}
	if historyLimit <= 0 {
		historyLimit = 6
	}
	return &ChatService{
		files:        files,
		messages:     messages,
		embedder:     embedder,
		index:        index,
		completions:  completions,
		topK:         topK,
		historyLimit: historyLimit,
	}
}

type StreamAnswerInput struct {
	UserID  uint
	FileID  string
	Message string
}

// StreamAnswer runs the retrieval pipeline for one question. The
// user's turn is persisted before any retrieval or generation work so
// it survives downstream failures. Deltas are forwarded through
// onDelta; a failing onDelta (client gone) stops forwarding but the
// stream is still drained and the assistant turn persisted.
func (s *ChatService) StreamAnswer(
	ctx context.Context,
	input StreamAnswerInput,
	onDelta func(string) error,
) (string, error) {
	if input.UserID == 0 || strings.TrimSpace(input.FileID) == "" {
		return "", ErrInvalidInput
	}
	question := strings.TrimSpace(input.Message)
	if question == "" {
		return "", ErrMessageEmpty
	}

	file, err := s.files.GetByIDAndUserID(input.FileID, input.UserID)
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", ErrFileNotFound
	}

	userMessage := &model.Message{
		FileID:        file.ID,
		UserID:        input.UserID,
		Text:          question,
		IsUserMessage: true,
		CreatedAt:     time.Now(),
	}
	if err := s.messages.Create(userMessage); err != nil {
		return "", err
	}

	queryEmbedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", err
	}

	matches, err := s.index.Query(ctx, file.ID, queryEmbedding, s.topK)
	if err != nil {
		return "", err
	}

	history, err := s.priorMessages(file.ID, userMessage.ID)
	if err != nil {
		return "", err
	}

	prompt := buildPrompt(history, matches, question)

	// Generation is decoupled from the caller's lifetime: a client
	// disconnect must not cancel the completion or skip persistence.
	var clientGone bool
	full, err := s.completions.StreamComplete(context.WithoutCancel(ctx), prompt, func(chunk string) error {
		if clientGone {
			return nil
		}
		if deliverErr := onDelta(chunk); deliverErr != nil {
			clientGone = true
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	full = strings.TrimSpace(full)
	if full == "" {
		full = "The model returned an empty response."
	}

	assistantMessage := &model.Message{
		FileID:        file.ID,
		UserID:        input.UserID,
		Text:          full,
		IsUserMessage: false,
		CreatedAt:     time.Now(),
	}
	if err := s.messages.Create(assistantMessage); err != nil {
		return "", err
	}

	return full, nil
}

// priorMessages returns the conversation history for the prompt,
// excluding the turn persisted moments ago.
func (s *ChatService) priorMessages(fileID string, currentID uint) ([]model.Message, error) {
	recent, err := s.messages.ListRecentByFileID(fileID, s.historyLimit+1)
	if err != nil {
		return nil, err
	}
	history := make([]model.Message, 0, len(recent))
	for _, m := range recent {
		if m.ID == currentID {
			continue
		}
		history = append(history, m)
	}
	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}
	return history, nil
}

func buildPrompt(history []model.Message, matches []vector.Match, question string) []ai.ChatMessage {
	var conversation strings.Builder
	for _, m := range history {
		if m.IsUserMessage {
			conversation.WriteString("User: " + m.Text + "\n")
		} else {
			conversation.WriteString("Assistant: " + m.Text + "\n")
		}
	}

	passages := make([]string, len(matches))
	for i, match := range matches {
		passages[i] = match.Content
	}

	userContent := systemInstruction + " \n" +
		"If you don't know the answer, just say that you don't know, don't try to make up an answer.\n" +
		"\n----------------\n\n" +
		"PREVIOUS CONVERSATION:\n" + conversation.String() +
		"\n----------------\n\n" +
		"CONTEXT:\n" + strings.Join(passages, "\n\n") +
		"\n\nUSER INPUT: " + question

	return []ai.ChatMessage{
		{Role: "system", Content: systemInstruction},
		{Role: "user", Content: userContent},
	}
}
