package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"levelup_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatStubServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	}))
}

func TestAIServiceChat(t *testing.T) {
	srv := chatStubServer(t)
	defer srv.Close()

	svc := NewAIService(config.AIConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		Model:          "test-model",
		TimeoutSeconds: 5,
	})

	content, err := svc.Chat(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", content)
}

func TestAIServiceChatErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := NewAIService(config.AIConfig{BaseURL: srv.URL, TimeoutSeconds: 5})

	_, err := svc.Chat(context.Background(), "hello")
	assert.Error(t, err)
}

// 热更新跑在 watcher goroutine 上，与请求并发；-race 下必须干净
func TestAIServiceChatDuringConfigReload(t *testing.T) {
	srv := chatStubServer(t)
	defer srv.Close()

	svc := NewAIService(config.AIConfig{
		BaseURL:        srv.URL,
		APIKey:         "key-0",
		Model:          "test-model",
		TimeoutSeconds: 5,
	})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			svc.UpdateConfig(config.AIConfig{
				BaseURL:        srv.URL,
				APIKey:         fmt.Sprintf("key-%d", i),
				Model:          "test-model",
				TimeoutSeconds: i%5 + 1,
			})
		}
	}()

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				content, err := svc.Chat(context.Background(), "hello")
				assert.NoError(t, err)
				assert.Equal(t, "ok", content)
			}
		}()
	}

	wg.Wait()
}
