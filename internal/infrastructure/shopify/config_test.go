package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{
			name: "valid config",
			config: &Config{
				ShopDomain:  "acme.myshopify.com",
				AccessToken: "shpat_token",
			},
			wantErr: nil,
		},
		{
			name: "missing shop domain",
			config: &Config{
				AccessToken: "shpat_token",
			},
			wantErr: ErrConfigMissingShopDomain,
		},
		{
			name: "missing access token",
			config: &Config{
				ShopDomain: "acme.myshopify.com",
			},
			wantErr: ErrConfigMissingAccessToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				// Check defaults are set
				assert.NotEmpty(t, tt.config.APIVersion)
				assert.True(t, tt.config.TimeoutSeconds > 0)
			}
		})
	}
}

func TestConfig_GraphQLEndpoint(t *testing.T) {
	config := NewConfig("acme.myshopify.com", "shpat_token", "secret")

	assert.Equal(t,
		"https://acme.myshopify.com/admin/api/2024-01/graphql.json",
		config.GraphQLEndpoint())
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestConfig_VerifyWebhookHMAC(t *testing.T) {
	config := NewConfig("acme.myshopify.com", "shpat_token", "webhook_secret")
	body := []byte(`{"id":5001}`)

	t.Run("accepts valid signature", func(t *testing.T) {
		assert.True(t, config.VerifyWebhookHMAC(body, signBody("webhook_secret", body)))
	})

	t.Run("rejects signature from wrong secret", func(t *testing.T) {
		assert.False(t, config.VerifyWebhookHMAC(body, signBody("other_secret", body)))
	})

	t.Run("rejects signature over different body", func(t *testing.T) {
		signature := signBody("webhook_secret", []byte(`{"id":9999}`))
		assert.False(t, config.VerifyWebhookHMAC(body, signature))
	})

	t.Run("rejects empty signature", func(t *testing.T) {
		assert.False(t, config.VerifyWebhookHMAC(body, ""))
	})

	t.Run("rejects when secret unset", func(t *testing.T) {
		unsigned := NewConfig("acme.myshopify.com", "shpat_token", "")
		assert.False(t, unsigned.VerifyWebhookHMAC(body, signBody("", body)))
	})
}

func TestOrderGID(t *testing.T) {
	assert.Equal(t, "gid://shopify/Order/5001", OrderGID("5001"))
}
