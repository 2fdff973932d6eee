package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// Config holds configuration for the Shopify Admin API and webhook intake
type Config struct {
	// ShopDomain is the myshopify domain of the store, e.g. "acme.myshopify.com"
	ShopDomain string
	// AccessToken is the Admin API access token for the store
	AccessToken string
	// APIVersion is the Admin API version, e.g. "2024-01"
	APIVersion string
	// APISecret is the app client secret; it signs webhook deliveries and
	// App Bridge session tokens
	APISecret string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// DefaultAPIVersion is used when no version is configured
const DefaultAPIVersion = "2024-01"

// Errors for Shopify configuration
var (
	ErrConfigMissingShopDomain  = errors.New("shopify: shop domain is required")
	ErrConfigMissingAccessToken = errors.New("shopify: access token is required")
)

// NewConfig creates a new Shopify configuration with defaults
func NewConfig(shopDomain, accessToken, apiSecret string) *Config {
	return &Config{
		ShopDomain:     shopDomain,
		AccessToken:    accessToken,
		APISecret:      apiSecret,
		APIVersion:     DefaultAPIVersion,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Shopify configuration
func (c *Config) Validate() error {
	if c.ShopDomain == "" {
		return ErrConfigMissingShopDomain
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// GraphQLEndpoint returns the Admin GraphQL endpoint for the configured store
func (c *Config) GraphQLEndpoint() string {
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.ShopDomain, c.APIVersion)
}

// VerifyWebhookHMAC checks a webhook delivery signature. Shopify signs the
// raw request body with HMAC-SHA256 over the app secret and sends the digest
// base64-encoded in the X-Shopify-Hmac-Sha256 header. Comparison is constant
// time.
func (c *Config) VerifyWebhookHMAC(body []byte, signature string) bool {
	if c.APISecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.APISecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
