// Package apptype enumerates the kinds of App a project can install.
//
// Every app type is a compile-time descriptor paired with its own typed
// config. Lookup by code fails closed: an unknown or blank code is an error,
// never a fallback type.
package apptype

import (
	"strings"

	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/shared"
)

// Code identifies an app type in URLs and on the App row
type Code string

const (
	CodeWebChat       Code = "wwc"
	CodeTelegram      Code = "tg"
	CodeWhatsAppDemo  Code = "wpp-demo"
	CodeWhatsApp      Code = "wpp"
	CodeWhatsAppCloud Code = "wpp-cloud"
	CodeGeneric       Code = "generic"
	CodeOmie          Code = "omie"
	CodeVTEX          Code = "vtex"
)

func (c Code) String() string {
	return string(c)
}

// Category groups app types in the store front
type Category string

const (
	CategoryChannel   Category = "channel"
	CategoryExternals Category = "externals"
	CategoryEcommerce Category = "ecommerce"
)

// ProvisionKind selects the creation workflow of an app type
type ProvisionKind int

const (
	// ProvisionNone types are never created through the API; the channel
	// synchronizer imports them.
	ProvisionNone ProvisionKind = iota
	// ProvisionChannel creates a remote channel and pairs the App with it.
	ProvisionChannel
	// ProvisionWhatsAppCloud runs the embedded-signup onboarding.
	ProvisionWhatsAppCloud
	// ProvisionExternal creates an unconfigured App configured later.
	ProvisionExternal
	// ProvisionCommerce validates store credentials before creating the App.
	ProvisionCommerce
	// ProvisionGenericChannel creates a remote channel of the type named by
	// the request.
	ProvisionGenericChannel
)

// Descriptor is the static metadata of an app type
type Descriptor struct {
	Code            Code
	Name            string
	Description     string
	Summary         string
	Category        Category
	Developer       string
	BgColor         string
	Platform        app.Platform
	ChannelTypeCode string
	Provision       ProvisionKind
	Deletable       bool
}

// TypedConfig is the explicit shape of one app type's config
type TypedConfig interface {
	Validate() error
}

// Type is one entry of the registry
type Type interface {
	Descriptor() Descriptor
	// DecodeConfig reads a persisted config into the type's struct without validating it.
	DecodeConfig(cfg app.Config) (TypedConfig, error)
}

type appType[C TypedConfig] struct {
	desc Descriptor
}

func (t appType[C]) Descriptor() Descriptor {
	return t.desc
}

func (t appType[C]) DecodeConfig(cfg app.Config) (TypedConfig, error) {
	var c C
	if err := cfg.Decode(&c); err != nil {
		return nil, shared.NewValidationError("invalid %s config: %v", t.desc.Code, err)
	}
	return c, nil
}

// ValidateConfig decodes cfg for type t and validates the result
func ValidateConfig(t Type, cfg app.Config) (TypedConfig, error) {
	c, err := t.DecodeConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Registry maps codes to app types. It is immutable after construction and
// safe for concurrent use.
type Registry struct {
	byCode  map[Code]Type
	ordered []Type
}

// NewRegistry builds a registry from the given types. Later duplicates of a
// code are ignored.
func NewRegistry(types ...Type) *Registry {
	r := &Registry{byCode: make(map[Code]Type, len(types))}
	for _, t := range types {
		code := t.Descriptor().Code
		if _, exists := r.byCode[code]; exists {
			continue
		}
		r.byCode[code] = t
		r.ordered = append(r.ordered, t)
	}
	return r
}

// Lookup returns the type registered for code
func (r *Registry) Lookup(code string) (Type, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrBlankAppType
	}
	t, ok := r.byCode[Code(code)]
	if !ok {
		return nil, ErrUnknownAppType
	}
	return t, nil
}

// List returns every registered type in registration order
func (r *Registry) List() []Type {
	out := make([]Type, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// ByChannelTypeCode finds the type provisioned for an orchestration channel type (WA, WAC, TG...).
// wpp and wpp-demo share WA; types the synchronizer owns win.
func (r *Registry) ByChannelTypeCode(channelType string) (Type, bool) {
	if channelType == "" {
		return nil, false
	}
	for _, t := range r.ordered {
		d := t.Descriptor()
		if d.ChannelTypeCode != "" && strings.EqualFold(d.ChannelTypeCode, channelType) && d.Provision != ProvisionChannel {
			return t, true
		}
	}
	for _, t := range r.ordered {
		if strings.EqualFold(t.Descriptor().ChannelTypeCode, channelType) {
			return t, true
		}
	}
	return nil, false
}

var (
	ErrBlankAppType   = shared.NewDomainError(shared.CodeInvalidInput, "App type code is required")
	ErrUnknownAppType = shared.NewDomainError(shared.CodeInvalidInput, "Unknown app type")
)
