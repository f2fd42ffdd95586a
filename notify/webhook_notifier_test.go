package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vipkeyserver/models"
)

func TestWebhookNotifierPostsContent(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	err := notifier.Notify(context.Background(), models.Event{
		Type:   models.EventKeyIssued,
		Key:    "ABCD1234",
		UserID: "42",
		Detail: "expires 2024-01-08T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Contains(t, received.Content, "ABCD1234")
	assert.Contains(t, received.Content, "42")
}

func TestWebhookNotifierFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	err := notifier.Notify(context.Background(), models.Event{Type: models.EventKeyRevoked})
	assert.Error(t, err)
}

type recordingNotifier struct {
	events []models.Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, event models.Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestDispatcherFanOut(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{err: assert.AnError}

	d := NewDispatcher(first, second)
	d.Dispatch(context.Background(), []models.Event{
		{Type: models.EventKeyIssued, Key: "AAAA1111"},
		{Type: models.EventKeyExpired, Key: "BBBB2222"},
	})

	// 한 채널의 실패가 다른 채널의 전달을 막지 않는다
	require.Len(t, first.events, 2)
	require.Len(t, second.events, 2)
	assert.Equal(t, models.EventKeyIssued, first.events[0].Type)
}
