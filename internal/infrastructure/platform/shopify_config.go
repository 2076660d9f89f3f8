package platform

import (
	"errors"
	"strings"
)

const (
	// ShopifyAdapterKey is the registry key of the Shopify adapter
	ShopifyAdapterKey = "shopify"
	// ShopifyDefaultAPIVersion is the Admin REST API version used when none is configured
	ShopifyDefaultAPIVersion = "2024-10"
)

// ErrShopifyConfigInvalidVersion indicates a malformed API version
var ErrShopifyConfigInvalidVersion = errors.New("shopify: api version must look like YYYY-MM")

// ShopifyConfig holds settings shared by every store the adapter talks to.
// Credentials travel with each call.
type ShopifyConfig struct {
	// APIVersion is the Admin REST API version, e.g. 2024-10
	APIVersion string
	// BaseURL replaces https://{domain} when set (sandbox proxies, tests)
	BaseURL string
	// TimeoutSeconds is the HTTP client timeout
	TimeoutSeconds int
	// LocationID pins inventory adjustments to one location; zero means the first active location
	LocationID int64
}

// NewShopifyConfig creates a configuration with defaults
func NewShopifyConfig() *ShopifyConfig {
	return &ShopifyConfig{
		APIVersion:     ShopifyDefaultAPIVersion,
		TimeoutSeconds: 30,
	}
}

// Validate validates the configuration and fills defaults
func (c *ShopifyConfig) Validate() error {
	if c.APIVersion == "" {
		c.APIVersion = ShopifyDefaultAPIVersion
	}
	if len(c.APIVersion) != 7 || c.APIVersion[4] != '-' {
		return ErrShopifyConfigInvalidVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}

// storeURL returns the API root for a store domain
func (c *ShopifyConfig) storeURL(domain string) string {
	if c.BaseURL != "" {
		return c.BaseURL + "/admin/api/" + c.APIVersion
	}
	domain = strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://")
	return "https://" + strings.TrimRight(domain, "/") + "/admin/api/" + c.APIVersion
}
