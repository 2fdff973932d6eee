package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopsync/backend/internal/domain/order"
)

// maxResponseSize is the maximum allowed response size from the Admin API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Errors for Admin API calls
var (
	ErrAPIUnavailable     = errors.New("shopify: admin api unreachable")
	ErrAPIRequestFailed   = errors.New("shopify: admin api request failed")
	ErrAPIInvalidResponse = errors.New("shopify: admin api returned invalid response")
)

const tagsAddMutation = `mutation addTags($id: ID!, $tags: [String!]!) {
  tagsAdd(id: $id, tags: $tags) {
    userErrors {
      field
      message
    }
  }
}`

const tagsRemoveMutation = `mutation removeTags($id: ID!, $tags: [String!]!) {
  tagsRemove(id: $id, tags: $tags) {
    userErrors {
      field
      message
    }
  }
}`

// AdminClient talks to the Shopify Admin GraphQL API for a single store.
// It implements order.TagService.
type AdminClient struct {
	config     *Config
	httpClient *http.Client

	// endpoint is resolved once at construction; tests override it
	endpoint string
}

var _ order.TagService = (*AdminClient)(nil)

// NewAdminClient creates a new Admin API client with the given configuration
func NewAdminClient(config *Config) (*AdminClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &AdminClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		endpoint: config.GraphQLEndpoint(),
	}, nil
}

// WithEndpoint overrides the GraphQL endpoint. Used by tests to point the
// client at a local server.
func (c *AdminClient) WithEndpoint(endpoint string) *AdminClient {
	c.endpoint = endpoint
	return c
}

// OrderGID converts an external order id to its Admin API global id
func OrderGID(orderID string) string {
	return "gid://shopify/Order/" + orderID
}

// AddTags adds tags to the platform order identified by the external order id
func (c *AdminClient) AddTags(ctx context.Context, orderID string, tags []string) ([]order.UserError, error) {
	data, err := c.doRequest(ctx, tagsAddMutation, map[string]any{
		"id":   OrderGID(orderID),
		"tags": tags,
	})
	if err != nil {
		return nil, err
	}

	var payload tagsAddData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIInvalidResponse, err)
	}
	return toUserErrors(payload.TagsAdd.UserErrors), nil
}

// RemoveTags removes tags from the platform order identified by the external order id
func (c *AdminClient) RemoveTags(ctx context.Context, orderID string, tags []string) ([]order.UserError, error) {
	data, err := c.doRequest(ctx, tagsRemoveMutation, map[string]any{
		"id":   OrderGID(orderID),
		"tags": tags,
	})
	if err != nil {
		return nil, err
	}

	var payload tagsRemoveData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIInvalidResponse, err)
	}
	return toUserErrors(payload.TagsRemove.UserErrors), nil
}

// doRequest performs a GraphQL request against the Admin API and returns the
// data payload. Top-level GraphQL errors are treated as request failures.
func (c *AdminClient) doRequest(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	reqBody, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.config.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrAPIRequestFailed, resp.StatusCode)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIInvalidResponse, err)
	}

	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrAPIRequestFailed, envelope.Errors[0].Message)
	}
	if envelope.Data == nil {
		return nil, ErrAPIInvalidResponse
	}

	return envelope.Data, nil
}

func toUserErrors(payload []userErrorPayload) []order.UserError {
	if len(payload) == 0 {
		return nil
	}
	userErrors := make([]order.UserError, len(payload))
	for i, ue := range payload {
		userErrors[i] = order.UserError{Field: ue.Field, Message: ue.Message}
	}
	return userErrors
}
