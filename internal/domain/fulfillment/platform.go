package fulfillment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/shared"
)

// PlatformKind tells whether a platform serves shops or channels
type PlatformKind string

const (
	PlatformKindShop    PlatformKind = "shop"
	PlatformKindChannel PlatformKind = "channel"
)

// IsValid checks if the kind is known
func (k PlatformKind) IsValid() bool {
	return k == PlatformKindShop || k == PlatformKindChannel
}

// PlatformFunctions holds the function reference of each adapter operation.
// A reference is an http(s) URL or an adapter key; empty means not configured.
type PlatformFunctions struct {
	Search                 string `json:"search,omitempty"`
	GetProduct             string `json:"getProduct,omitempty"`
	CreatePurchase         string `json:"createPurchase,omitempty"`
	GetWebhooks            string `json:"getWebhooks,omitempty"`
	CreateWebhook          string `json:"createWebhook,omitempty"`
	DeleteWebhook          string `json:"deleteWebhook,omitempty"`
	AddTracking            string `json:"addTracking,omitempty"`
	AddCartToPlatformOrder string `json:"addCartToPlatformOrder,omitempty"`
	UpdateInventory        string `json:"updateInventory,omitempty"`
}

// Ref returns the reference configured for fn
func (f PlatformFunctions) Ref(fn Function) string {
	switch fn {
	case FunctionSearchProducts:
		return f.Search
	case FunctionGetProduct:
		return f.GetProduct
	case FunctionCreatePurchase:
		return f.CreatePurchase
	case FunctionGetWebhooks:
		return f.GetWebhooks
	case FunctionCreateWebhook:
		return f.CreateWebhook
	case FunctionDeleteWebhook:
		return f.DeleteWebhook
	case FunctionAddTracking:
		return f.AddTracking
	case FunctionAddCartToPlatformOrder:
		return f.AddCartToPlatformOrder
	case FunctionUpdateInventory:
		return f.UpdateInventory
	default:
		return ""
	}
}

// AdapterKeys returns the non-URL references, i.e. keys that must exist in the adapter registry
func (f PlatformFunctions) AdapterKeys() []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	for _, fn := range AllFunctions() {
		ref := f.Ref(fn)
		if ref == "" || IsHTTPRef(ref) {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		keys = append(keys, ref)
	}
	return keys
}

// IsHTTPRef reports whether ref is invoked over HTTP
func IsHTTPRef(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Platform is the adapter configuration shared by shops or channels
type Platform struct {
	shared.OwnedEntity
	Name      string
	Kind      PlatformKind
	Functions PlatformFunctions
}

// NewPlatform creates a Platform
func NewPlatform(userID uuid.UUID, name string, kind PlatformKind, functions PlatformFunctions) (*Platform, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: platform name is required", shared.ErrInvalidInput)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown platform kind %q", shared.ErrInvalidInput, kind)
	}
	return &Platform{
		OwnedEntity: shared.NewOwnedEntity(userID),
		Name:        name,
		Kind:        kind,
		Functions:   functions,
	}, nil
}

// RequireRef returns the reference for fn or ErrAdapterNotConfigured
func (p *Platform) RequireRef(fn Function) (string, error) {
	ref := p.Functions.Ref(fn)
	if ref == "" {
		return "", fmt.Errorf("%w: %s has no %s function", ErrAdapterNotConfigured, p.Name, fn)
	}
	return ref, nil
}

// Store is the common shape of a shop or channel
type Store struct {
	shared.OwnedEntity
	Name        string
	Domain      string
	AccessToken string
	PlatformID  uuid.UUID
}

// Credentials returns the adapter credentials of the store
func (s *Store) Credentials() Credentials {
	return Credentials{Domain: s.Domain, AccessToken: s.AccessToken}
}

func newStore(userID uuid.UUID, name, domain, accessToken string, platformID uuid.UUID) (Store, error) {
	if strings.TrimSpace(name) == "" {
		return Store{}, fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if platformID == uuid.Nil {
		return Store{}, fmt.Errorf("%w: platform id is required", shared.ErrInvalidInput)
	}
	return Store{
		OwnedEntity: shared.NewOwnedEntity(userID),
		Name:        name,
		Domain:      domain,
		AccessToken: accessToken,
		PlatformID:  platformID,
	}, nil
}

// Shop is the order source of a merchant
type Shop struct {
	Store
}

// NewShop creates a Shop
func NewShop(userID uuid.UUID, name, domain, accessToken string, platformID uuid.UUID) (*Shop, error) {
	store, err := newStore(userID, name, domain, accessToken, platformID)
	if err != nil {
		return nil, err
	}
	return &Shop{Store: store}, nil
}

// Channel is a downstream platform purchases are placed on
type Channel struct {
	Store
}

// NewChannel creates a Channel
func NewChannel(userID uuid.UUID, name, domain, accessToken string, platformID uuid.UUID) (*Channel, error) {
	store, err := newStore(userID, name, domain, accessToken, platformID)
	if err != nil {
		return nil, err
	}
	return &Channel{Store: store}, nil
}
