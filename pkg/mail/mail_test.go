package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ren-jimpo/shift-management-app-sub000/config"
)

func TestAPISender_Send(t *testing.T) {
	var got apiPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer srv.Close()

	s := NewAPISender(&config.MailConfig{APIKey: "key-123", APIURL: srv.URL, From: "noreply@example.com"})
	err := s.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "hi", Text: "body"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer key-123", auth)
	assert.Equal(t, "noreply@example.com", got.From)
	assert.Equal(t, []string{"a@example.com"}, got.To)
	assert.Equal(t, "hi", got.Subject)
}

func TestAPISender_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	s := NewAPISender(&config.MailConfig{APIKey: "key", APIURL: srv.URL})
	err := s.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSenders_RejectEmptyRecipients(t *testing.T) {
	api := NewAPISender(&config.MailConfig{APIKey: "key", APIURL: "http://unused"})
	assert.ErrorIs(t, api.Send(context.Background(), Message{Subject: "x"}), ErrNoRecipients)

	logSender := NewLogSender(zap.NewNop())
	assert.ErrorIs(t, logSender.Send(context.Background(), Message{}), ErrNoRecipients)
}

func TestNewSender_FallsBackToLog(t *testing.T) {
	s := NewSender(&config.MailConfig{}, zap.NewNop())
	_, ok := s.(*LogSender)
	assert.True(t, ok)
}
