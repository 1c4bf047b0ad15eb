package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/omniscan/internal/providers"
)

func TestExtractText(t *testing.T) {
	var received struct {
		Model          string              `json:"model"`
		Messages       []map[string]string `json:"messages"`
		ResponseFormat map[string]string   `json:"response_format"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer server.Close()

	o := New("sk-test")
	o.url = server.URL
	out, err := o.ExtractText(context.Background(), providers.Config{
		Model:  "gpt-4o",
		Prompt: "classify",
		System: "you are a scanner",
		JSON:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "{}", out)
	assert.Equal(t, "gpt-4o", received.Model)
	require.Len(t, received.Messages, 2)
	assert.Equal(t, "system", received.Messages[0]["role"])
	assert.Equal(t, "user", received.Messages[1]["role"])
	assert.Equal(t, "json_object", received.ResponseFormat["type"])
}

func TestExtractTextNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	o := New("sk-test")
	o.url = server.URL
	_, err := o.ExtractText(context.Background(), providers.Config{})
	assert.Error(t, err)
}

func TestExtractTextMissingKey(t *testing.T) {
	o := New("")
	assert.False(t, o.HasCredentials())

	_, err := o.ExtractText(context.Background(), providers.Config{})
	assert.True(t, errors.Is(err, providers.ErrMissingCredentials))
}
