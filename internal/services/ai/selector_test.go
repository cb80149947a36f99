package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": content},
		})
	}))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(testModelConfig(baseURL), "prompt", nil, nil, testLogger())
	require.NoError(t, err)
	return client
}

func TestSelectorPrimarySucceeds(t *testing.T) {
	primarySrv := chatServer(t, "from primary")
	defer primarySrv.Close()
	fallbackSrv := chatServer(t, "from fallback")
	defer fallbackSrv.Close()

	selector := NewSelector(newTestClient(t, primarySrv.URL), newTestClient(t, fallbackSrv.URL), nil, testLogger())

	answer := selector.Generate(context.Background(), "hello")
	assert.Equal(t, "from primary", answer)
}

func TestSelectorFallsBackWhenPrimaryUnreachable(t *testing.T) {
	deadSrv := chatServer(t, "unused")
	deadSrv.Close()
	fallbackSrv := chatServer(t, "Paris")
	defer fallbackSrv.Close()

	selector := NewSelector(newTestClient(t, deadSrv.URL), newTestClient(t, fallbackSrv.URL), nil, testLogger())

	answer, ok := selector.TryGenerate(context.Background(), "capital of France?")
	assert.True(t, ok)
	assert.Equal(t, "Paris", answer)
}

func TestSelectorNoFallbackConfigured(t *testing.T) {
	deadSrv := chatServer(t, "unused")
	deadSrv.Close()

	selector := NewSelector(newTestClient(t, deadSrv.URL), nil, nil, testLogger())

	answer, ok := selector.TryGenerate(context.Background(), "hello")
	assert.False(t, ok)
	assert.Equal(t, UserMessage(KindServiceUnreachable), answer)
}

func TestSelectorBothSlotsFail(t *testing.T) {
	deadPrimary := chatServer(t, "unused")
	deadPrimary.Close()
	deadFallback := chatServer(t, "unused")
	deadFallback.Close()

	selector := NewSelector(newTestClient(t, deadPrimary.URL), newTestClient(t, deadFallback.URL), nil, testLogger())

	answer, ok := selector.TryGenerate(context.Background(), "hello")
	assert.False(t, ok)
	assert.Equal(t, UserMessage(KindServiceUnreachable), answer)
}

func TestSelectorInvalidInputSkipsFallback(t *testing.T) {
	deadPrimary := chatServer(t, "unused")
	deadPrimary.Close()
	fallbackSrv := chatServer(t, "should not be asked")
	defer fallbackSrv.Close()

	selector := NewSelector(newTestClient(t, deadPrimary.URL), newTestClient(t, fallbackSrv.URL), nil, testLogger())

	answer, ok := selector.TryGenerate(context.Background(), "   ")
	assert.False(t, ok)
	assert.Equal(t, UserMessage(KindInvalidInput), answer)
}

func TestSelectorEmptyInput(t *testing.T) {
	selector := NewSelector(nil, nil, nil, testLogger())

	answer, ok := selector.TryGenerate(context.Background(), "")
	assert.False(t, ok)
	assert.Equal(t, "I didn't receive any input.", answer)
}

func TestUserMessagesAreDistinctPerKind(t *testing.T) {
	kinds := []ErrorKind{
		KindInvalidInput, KindServiceUnreachable, KindTimeout,
		KindMalformedResponse, KindUpstreamError, KindEmptyResult, KindUnknown,
	}

	seen := make(map[string]ErrorKind, len(kinds))
	for _, k := range kinds {
		msg := UserMessage(k)
		require.NotEmpty(t, msg)
		if prev, dup := seen[msg]; dup {
			t.Fatalf("kinds %s and %s share the message %q", prev, k, msg)
		}
		seen[msg] = k
	}
}
