package together

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/resilience"
)

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: 1,
		BreakerEnabled:   false,
	})
}

func newTestClient(url string) *Client {
	return New(Config{
		BaseURL:     url,
		APIKey:      "test-key",
		Model:       "llama-3.3-70b",
		VisionModel: "llama-vision",
	}, testExecutor())
}

func TestCompleteSendsPromptAndOptions(t *testing.T) {
	var captured map[string]any
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  the answer  "}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	answer, err := client.Complete(context.Background(), "my prompt", ports.CompletionOptions{
		Temperature: 0.3,
		MaxTokens:   1500,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer != "the answer" {
		t.Fatalf("answer = %q", answer)
	}
	if authHeader != "Bearer test-key" {
		t.Fatalf("authorization = %q", authHeader)
	}
	if captured["max_tokens"] != float64(1500) || captured["temperature"] != 0.3 {
		t.Fatalf("options not forwarded: %v", captured)
	}
	messages := captured["messages"].([]any)
	first := messages[0].(map[string]any)
	if first["content"] != "my prompt" {
		t.Fatalf("prompt not forwarded: %v", first)
	}
}

func TestCompleteMapsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Model: "m", Timeout: 10 * time.Millisecond}, testExecutor())
	_, err := client.Complete(context.Background(), "p", ports.CompletionOptions{MaxTokens: 10})
	if !domain.IsKind(err, domain.ErrServiceTimeout) {
		t.Fatalf("err = %v, want ErrServiceTimeout", err)
	}
}

func TestCompleteMapsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), "p", ports.CompletionOptions{MaxTokens: 10})
	if !domain.IsKind(err, domain.ErrServiceError) {
		t.Fatalf("err = %v, want ErrServiceError", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestCompleteMapsMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{{{`},
		{"no choices", `{"choices":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.Complete(context.Background(), "p", ports.CompletionOptions{MaxTokens: 10})
			if !domain.IsKind(err, domain.ErrMalformedResponse) {
				t.Fatalf("err = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestSummarizeImageBuildsDataURL(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"a chart"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	summary, err := client.SummarizeImage(context.Background(), []byte{0x01, 0x02}, domain.FileTypeJPG, "describe it")
	if err != nil {
		t.Fatalf("SummarizeImage() error = %v", err)
	}
	if summary != "a chart" {
		t.Fatalf("summary = %q", summary)
	}
	if captured["model"] != "llama-vision" {
		t.Fatalf("model = %v", captured["model"])
	}
	if captured["max_tokens"] != float64(visionMaxTokens) {
		t.Fatalf("max_tokens = %v", captured["max_tokens"])
	}

	messages := captured["messages"].([]any)
	content := messages[0].(map[string]any)["content"].([]any)
	imagePart := content[1].(map[string]any)["image_url"].(map[string]any)
	url := imagePart["url"].(string)
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Fatalf("jpg must normalize to jpeg data url, got %q", url)
	}
}

func TestSummarizeImageRejectsOversized(t *testing.T) {
	client := newTestClient("http://unused")
	_, err := client.SummarizeImage(context.Background(), make([]byte, MaxImageSize+1), domain.FileTypePNG, "p")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
