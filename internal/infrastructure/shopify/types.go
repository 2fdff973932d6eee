package shopify

import "encoding/json"

// graphQLRequest is the wire format for Admin GraphQL calls
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLError is a top-level GraphQL execution error
type graphQLError struct {
	Message string `json:"message"`
}

// graphQLResponse is the envelope of every Admin GraphQL response
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// userErrorPayload mirrors the userErrors shape shared by tag mutations
type userErrorPayload struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// tagsAddData is the payload of the tagsAdd mutation
type tagsAddData struct {
	TagsAdd struct {
		UserErrors []userErrorPayload `json:"userErrors"`
	} `json:"tagsAdd"`
}

// tagsRemoveData is the payload of the tagsRemove mutation
type tagsRemoveData struct {
	TagsRemove struct {
		UserErrors []userErrorPayload `json:"userErrors"`
	} `json:"tagsRemove"`
}
