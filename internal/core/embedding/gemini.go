package embedding

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiBatchTimeout bounds a single BatchEmbedContents call.
const geminiBatchTimeout = 60 * time.Second

// GeminiProvider generates embeddings through the Gemini embedding API.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	return &GeminiProvider{client: cl, modelName: modelName}, nil
}

func (g *GeminiProvider) ModelName() string {
	return g.modelName
}

func (g *GeminiProvider) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// EmbedBatch embeds all texts in one request via EmbeddingBatch.
func (g *GeminiProvider) EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, geminiBatchTimeout)
	defer cancel()

	em := g.client.EmbeddingModel(g.modelName)
	em.TaskType = toGenaiTask(task)

	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed: %w", err)
	}

	out := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		out = append(out, e.Values)
	}
	return out, nil
}

func toGenaiTask(task TaskType) genai.TaskType {
	switch task {
	case TaskRetrievalQuery:
		return genai.TaskTypeRetrievalQuery
	case TaskRetrievalDocument:
		return genai.TaskTypeRetrievalDocument
	case TaskSemanticSimilarity:
		return genai.TaskTypeSemanticSimilarity
	case TaskClassification:
		return genai.TaskTypeClassification
	case TaskClustering:
		return genai.TaskTypeClustering
	case TaskQuestionAnswering:
		return genai.TaskTypeQuestionAnswering
	case TaskFactVerification:
		return genai.TaskTypeFactVerification
	case TaskCodeRetrievalQuery:
		// The SDK has no code-retrieval constant; the query task is the
		// nearest optimization target.
		return genai.TaskTypeRetrievalQuery
	}
	return genai.TaskTypeUnspecified
}

var _ Provider = (*GeminiProvider)(nil)
