package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds an AdminClient pointed at a local test server
func newTestClient(t *testing.T, handler http.HandlerFunc) (*AdminClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewAdminClient(NewConfig("acme.myshopify.com", "shpat_token", "secret"))
	require.NoError(t, err)

	return client.WithEndpoint(server.URL), server
}

func TestNewAdminClient(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		client, err := NewAdminClient(NewConfig("acme.myshopify.com", "shpat_token", "secret"))

		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("invalid config", func(t *testing.T) {
		client, err := NewAdminClient(&Config{ShopDomain: "acme.myshopify.com"})

		assert.ErrorIs(t, err, ErrConfigMissingAccessToken)
		assert.Nil(t, client)
	})
}

func TestAdminClient_AddTags(t *testing.T) {
	t.Run("sends mutation with order gid and returns no user errors", func(t *testing.T) {
		var captured graphQLRequest
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "shpat_token", r.Header.Get("X-Shopify-Access-Token"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{"tagsAdd":{"userErrors":[]}}}`))
		})

		userErrors, err := client.AddTags(context.Background(), "5001", []string{"vip", "rush"})

		require.NoError(t, err)
		assert.Empty(t, userErrors)
		assert.Contains(t, captured.Query, "tagsAdd")
		assert.Equal(t, "gid://shopify/Order/5001", captured.Variables["id"])
	})

	t.Run("surfaces user errors from accepted request", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{"tagsAdd":{"userErrors":[
				{"field":["tags"],"message":"Tag is too long"}
			]}}}`))
		})

		userErrors, err := client.AddTags(context.Background(), "5001", []string{"x"})

		require.NoError(t, err)
		require.Len(t, userErrors, 1)
		assert.Equal(t, []string{"tags"}, userErrors[0].Field)
		assert.Equal(t, "Tag is too long", userErrors[0].Message)
	})

	t.Run("maps HTTP failure to request error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		userErrors, err := client.AddTags(context.Background(), "5001", []string{"vip"})

		assert.ErrorIs(t, err, ErrAPIRequestFailed)
		assert.Nil(t, userErrors)
	})

	t.Run("maps top-level graphql errors to request error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"errors":[{"message":"Throttled"}]}`))
		})

		_, err := client.AddTags(context.Background(), "5001", []string{"vip"})

		assert.ErrorIs(t, err, ErrAPIRequestFailed)
		assert.Contains(t, err.Error(), "Throttled")
	})

	t.Run("maps malformed body to invalid response", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		})

		_, err := client.AddTags(context.Background(), "5001", []string{"vip"})

		assert.ErrorIs(t, err, ErrAPIInvalidResponse)
	})
}

func TestAdminClient_RemoveTags(t *testing.T) {
	t.Run("sends mutation and surfaces user errors", func(t *testing.T) {
		var captured graphQLRequest
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{"tagsRemove":{"userErrors":[
				{"field":["id"],"message":"Order does not exist"}
			]}}}`))
		})

		userErrors, err := client.RemoveTags(context.Background(), "9999", []string{"vip"})

		require.NoError(t, err)
		assert.Contains(t, captured.Query, "tagsRemove")
		assert.Equal(t, "gid://shopify/Order/9999", captured.Variables["id"])
		require.Len(t, userErrors, 1)
		assert.Equal(t, "Order does not exist", userErrors[0].Message)
	})

	t.Run("maps connection failure to unavailable", func(t *testing.T) {
		client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		server.Close()

		_, err := client.RemoveTags(context.Background(), "5001", []string{"vip"})

		assert.ErrorIs(t, err, ErrAPIUnavailable)
	})
}
