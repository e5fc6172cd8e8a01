package ai

import "context"

// EmbeddingProvider binds an embedding config to the client so callers
// do not carry API settings around.
type EmbeddingProvider struct {
	client *OpenAICompatibleClient
	cfg    EmbeddingConfig
}

func NewEmbeddingProvider(client *OpenAICompatibleClient, cfg EmbeddingConfig) *EmbeddingProvider {
	return &EmbeddingProvider{client: client, cfg: cfg}
}

func (p *EmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.client.Embed(ctx, p.cfg, text)
}

func (p *EmbeddingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return p.client.EmbedBatch(ctx, p.cfg, texts)
}

// ChatProvider binds a chat config to the client.
type ChatProvider struct {
	client *OpenAICompatibleClient
	cfg    ChatConfig
}

func NewChatProvider(client *OpenAICompatibleClient, cfg ChatConfig) *ChatProvider {
	return &ChatProvider{client: client, cfg: cfg}
}

func (p *ChatProvider) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	return p.client.Complete(ctx, p.cfg, messages)
}

func (p *ChatProvider) StreamComplete(ctx context.Context, messages []ChatMessage, onChunk func(string) error) (string, error) {
	return p.client.StreamComplete(ctx, p.cfg, messages, onChunk)
}
