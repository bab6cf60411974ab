package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/soumendrak/ragas/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

// TestsetOllamaClient implements ai.Client using Ollama as the backend.
// It supports text generation, schema-constrained generation, and embeddings
// via locally-hosted models.
type TestsetOllamaClient struct {
	generationModel string
	embeddingModel  string

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client

	Client *api.Client
}

// NewTestsetOllamaClientParams contains configuration options for creating
// a new TestsetOllamaClient.
type NewTestsetOllamaClientParams struct {
	GenerationModel string
	EmbeddingModel  string

	BaseURL string
	ApiKey  string

	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		// don't overwrite if already set
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewTestsetOllamaClient creates a new Ollama-based AI client with the
// specified configuration. It connects to the Ollama server at the given
// BaseURL (or the default if empty).
func NewTestsetOllamaClient(
	params NewTestsetOllamaClientParams,
) (*TestsetOllamaClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.ApiKey,
			},
			rt: http.DefaultTransport,
		},
	}

	cli := api.NewClient(u, httpClient)

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	sem := semaphore.NewWeighted(maxConcurrent)

	return &TestsetOllamaClient{
		generationModel: params.GenerationModel,
		embeddingModel:  params.EmbeddingModel,

		reqLock: sem,

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		baseURL:    u,
		apiKey:     params.ApiKey,
		httpClient: httpClient,

		Client: cli,
	}, nil
}
