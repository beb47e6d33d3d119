package sitecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-sitecontent/internal/query"
	"github.com/goliatone/go-sitecontent/internal/site"
)

const (
	refetchResourceMessageType  = "site.resource.refetch"
	invalidatePrefixMessageType = "site.cache.invalidate"
	warmSiteMessageType         = "site.warm"
)

// ResultCallback receives the outcome of a command. It is optional and runs
// synchronously inside the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries what a command touched.
type ResultEnvelope struct {
	States   []query.State
	Matched  int
	Metadata map[string]any
}

// RefetchResourceCommand discards freshness for one resource and waits for a
// new listing.
type RefetchResourceCommand struct {
	Resource       string         `json:"resource"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (RefetchResourceCommand) Type() string { return refetchResourceMessageType }

// Validate requires a resource known to the catalogue.
func (m RefetchResourceCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Resource, validation.Required, validation.By(knownResource)),
	)
}

// InvalidatePrefixCommand marks every cached key under Prefix stale.
// Numeric tokens address detail keys, so ["services", "3"] matches the key
// of service 3.
type InvalidatePrefixCommand struct {
	Prefix         []string       `json:"prefix"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (InvalidatePrefixCommand) Type() string { return invalidatePrefixMessageType }

// Validate requires a non-empty prefix rooted at a known resource.
func (m InvalidatePrefixCommand) Validate() error {
	errs := validation.Errors{}
	if err := validation.Validate(m.Prefix, validation.Required, validation.Each(validation.Required)); err != nil {
		errs["prefix"] = err
	} else if err := knownResource(m.Prefix[0]); err != nil {
		errs["prefix"] = err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Key converts the prefix tokens into a cache key.
func (m InvalidatePrefixCommand) Key() query.Key {
	return prefixKey(m.Prefix)
}

// WarmSiteCommand loads every resource. Force refetches fresh ones too.
type WarmSiteCommand struct {
	Force          bool           `json:"force,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (WarmSiteCommand) Type() string { return warmSiteMessageType }

// Validate satisfies command.Message.
func (m WarmSiteCommand) Validate() error {
	return validation.ValidateStruct(&m)
}

func knownResource(value any) error {
	name, _ := value.(string)
	if _, ok := site.Lookup(name); !ok {
		return validation.NewError("site.resource.unknown", "must be one of "+strings.Join(site.Names(), ", "))
	}
	return nil
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
