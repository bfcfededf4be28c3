package middleware

import (
	"meridian/internal/util"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"meridian/pkg/ai"
	oai "meridian/pkg/ai/ollama"
	gai "meridian/pkg/ai/openai"
	"meridian/pkg/contextengine"
	"meridian/pkg/logger"
	"meridian/pkg/store"
	storepgx "meridian/pkg/store/pgx"
	"meridian/pkg/vector"
	vectorpgx "meridian/pkg/vector/pgx"
)

// App carries the per-request service handles shared by all routes.
type App struct {
	DBConn   *pgxpool.Pool
	Queue    *amqp091.Channel
	S3       *s3.Client
	AiClient ai.GenerationClient
	Graph    store.GraphStore
	Index    vector.Index
	Engine   *contextengine.Engine
}

type AppContext struct {
	echo.Context
	App *App
}

// NewAIClient builds the configured AI backend from AI_* environment
// variables. AI_ADAPTER selects ollama; anything else uses the OpenAI
// compatible client.
func NewAIClient() ai.GenerationClient {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewClient(oai.NewClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
			GenerationModel: util.GetEnv("AI_CHAT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewClient(gai.NewClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
			GenerationModel: util.GetEnv("AI_CHAT_MODEL"),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
	}
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	s3Client *s3.Client,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			aiClient := NewAIClient()
			graph := storepgx.NewGraphDBStore(db)
			index := vectorpgx.NewVectorIndex(db, aiClient)
			engine := contextengine.NewEngine(graph, index, aiClient, contextengine.Options{
				MaxEntities:       int(util.GetEnvNumeric("CONTEXT_MAX_ENTITIES", 10)),
				MaxChunks:         int(util.GetEnvNumeric("CONTEXT_MAX_CHUNKS", 5)),
				SemanticThreshold: util.GetEnvNumeric("CONTEXT_SIMILARITY_THRESHOLD", 0),
			})

			app := &App{
				DBConn:   db,
				Queue:    queue,
				S3:       s3Client,
				AiClient: aiClient,
				Graph:    graph,
				Index:    index,
				Engine:   engine,
			}
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
