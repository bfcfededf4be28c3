package openai

import (
	"sync"

	"meridian/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultTimeoutMin = 10

// Client implements ai.GenerationClient against an OpenAI-compatible API.
// It manages separate clients for embeddings and chat/completion tasks so
// that the two concerns can point at different endpoints.
type Client struct {
	embeddingModel  string
	extractionModel string
	generationModel string

	chatURL      string
	chatKey      string
	embeddingURL string
	embeddingKey string

	reqLock    *semaphoreLock
	timeoutMin int

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewClientParams defines the configuration parameters for creating a new Client.
//
// EmbeddingURL/EmbeddingKey and ChatURL/ChatKey configure the two API
// endpoints independently; an empty URL falls back to the official API.
type NewClientParams struct {
	EmbeddingModel  string
	ExtractionModel string
	GenerationModel string

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	MaxConcurrentRequests int64
	RequestTimeoutMin     int
}

// NewClient creates and returns a new Client configured with the provided
// parameters. It initializes separate OpenAI clients for embeddings and
// chat/completion tasks.
func NewClient(params NewClientParams) *Client {
	chatClient := newOpenaiClient(params.ChatURL, params.ChatKey)
	embedClient := newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey)

	if params.MaxConcurrentRequests <= 0 {
		params.MaxConcurrentRequests = 4
	}
	if params.RequestTimeoutMin <= 0 {
		params.RequestTimeoutMin = defaultTimeoutMin
	}

	return &Client{
		embeddingModel:  params.EmbeddingModel,
		extractionModel: params.ExtractionModel,
		generationModel: params.GenerationModel,

		chatURL:      params.ChatURL,
		chatKey:      params.ChatKey,
		embeddingURL: params.EmbeddingURL,
		embeddingKey: params.EmbeddingKey,

		reqLock:    newSemaphoreLock(params.MaxConcurrentRequests),
		timeoutMin: params.RequestTimeoutMin,

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		ChatClient:      chatClient,
		EmbeddingClient: embedClient,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
