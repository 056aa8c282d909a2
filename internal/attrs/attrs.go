// Package attrs builds the session attributes negotiated with the care agent.
//
// Every conversation carries an override record (Overrides): a fixed set of
// named attributes the agent's tool layer consumes (the auth token, customer
// scoping identifiers, goodwill grant parameters and routing hints). All keys
// are always present on the record; an empty string means "unset", and
// emptiness, not absence, decides what goes on the wire.
//
// Build is the single conversion point from record to wire map. Baseline
// provides the minimal routing context used when overrides are disabled.
// Both are pure functions.
package attrs

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Wire keys understood by the agent's tool layer.
const (
	KeyJWT                = "jwt"
	KeyCustomerOUID       = "customerOuid"
	KeyBillingAccountOUID = "billingAccountOuid"
	KeyParentOUID         = "parentOuid"
	KeyOfferingOUID       = "offeringOuid"
	KeySpecOUID           = "specOuid"
	KeyMSISDN             = "msisdn"
	KeyGoodwillSizeGB     = "goodwillSizeGb"
	KeyGoodwillReason     = "goodwillReason"
	KeyLang               = "lang"
	KeyXBrand             = "xBrand"
	KeyXChannel           = "xChannel"
)

// Goodwill grant bounds. The size is clamped to MinGoodwillGB at build time;
// the full range is enforced where values enter the system.
const (
	MinGoodwillGB     = 1
	MaxGoodwillGB     = 1000
	DefaultGoodwillGB = 2

	// DefaultGoodwillReason is the reason code prefilled into new records.
	DefaultGoodwillReason = "boosterOrPassRefund"
)

// DefaultLanguage is the language prefilled when none is configured.
const DefaultLanguage = "en"

var languages = []string{"en", "fr"}

// Languages returns the languages the agent's prompt tooling supports.
func Languages() []string {
	return slices.Clone(languages)
}

// ValidLanguage reports whether lang is a supported language code.
func ValidLanguage(lang string) bool {
	return slices.Contains(languages, lang)
}

var (
	// ErrUnknownKey indicates a key that is not part of the record.
	ErrUnknownKey = errors.New("unknown attribute key")

	// ErrInvalidValue indicates a value that violates a key's constraints.
	ErrInvalidValue = errors.New("invalid attribute value")
)

// Overrides is the per-session attribute record.
//
// GoodwillSizeGB is kept as a string on purpose: values arrive from free-text
// surfaces, and Build owns the parse-and-clamp step so an unparseable value
// degrades to the default instead of failing the turn.
type Overrides struct {
	JWT                string `json:"jwt"`
	CustomerOUID       string `json:"customerOuid"`
	BillingAccountOUID string `json:"billingAccountOuid"`
	ParentOUID         string `json:"parentOuid"`
	OfferingOUID       string `json:"offeringOuid"`
	SpecOUID           string `json:"specOuid"`
	MSISDN             string `json:"msisdn"`
	GoodwillSizeGB     string `json:"goodwillSizeGb"`
	GoodwillReason     string `json:"goodwillReason"`
	Lang               string `json:"lang"`
	XBrand             string `json:"xBrand"`
	XChannel           string `json:"xChannel"`
}

// Seed carries the configured prefill values for a new record.
type Seed struct {
	CustomerOUID   string
	GoodwillSizeGB int
	GoodwillReason string
	Language       string
	Brand          string
	Channel        string
}

// NewOverrides creates a record with the configured prefills applied.
// Out-of-range seed values fall back to the defaults so a record is always
// well-formed at creation time.
func NewOverrides(seed Seed) Overrides {
	size := seed.GoodwillSizeGB
	if size < MinGoodwillGB || size > MaxGoodwillGB {
		size = DefaultGoodwillGB
	}
	reason := seed.GoodwillReason
	if reason == "" {
		reason = DefaultGoodwillReason
	}
	lang := seed.Language
	if !ValidLanguage(lang) {
		lang = DefaultLanguage
	}
	return Overrides{
		CustomerOUID:   seed.CustomerOUID,
		GoodwillSizeGB: strconv.Itoa(size),
		GoodwillReason: reason,
		Lang:           lang,
		XBrand:         seed.Brand,
		XChannel:       seed.Channel,
	}
}

// Build converts the record into the wire attribute map.
//
// When enabled is false the result is empty (non-nil): nothing is sent and
// the agent's own defaults win. When enabled, every key whose trimmed value
// is non-empty is included verbatim. goodwillSizeGb is always included:
// parsed, clamped to at least MinGoodwillGB, and serialized back as a
// decimal string, with DefaultGoodwillGB standing in when the value does not
// parse at all.
func Build(o Overrides, enabled bool) map[string]string {
	attrs := make(map[string]string)
	if !enabled {
		return attrs
	}

	include := func(key, value string) {
		if strings.TrimSpace(value) != "" {
			attrs[key] = value
		}
	}

	include(KeyJWT, o.JWT)
	include(KeyCustomerOUID, o.CustomerOUID)
	include(KeyBillingAccountOUID, o.BillingAccountOUID)
	include(KeyParentOUID, o.ParentOUID)
	include(KeyOfferingOUID, o.OfferingOUID)
	include(KeySpecOUID, o.SpecOUID)
	include(KeyMSISDN, o.MSISDN)

	// Always transmitted so the goodwill tool never sees a missing size.
	attrs[KeyGoodwillSizeGB] = normalizeGoodwillSize(o.GoodwillSizeGB)
	include(KeyGoodwillReason, o.GoodwillReason)

	include(KeyLang, o.Lang)
	include(KeyXBrand, o.XBrand)
	include(KeyXChannel, o.XChannel)

	return attrs
}

func normalizeGoodwillSize(raw string) string {
	size, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return strconv.Itoa(DefaultGoodwillGB)
	}
	return strconv.Itoa(max(size, MinGoodwillGB))
}

// Baseline returns the minimal routing attributes used when overrides are
// disabled: brand, channel and language only, so the agent keeps resolving
// everything else itself.
func Baseline(brand, channel, lang string) map[string]string {
	return map[string]string{
		KeyXBrand:   brand,
		KeyXChannel: channel,
		KeyLang:     lang,
	}
}

// Keys lists the record keys in wire order.
func Keys() []string {
	return []string{
		KeyJWT,
		KeyCustomerOUID,
		KeyBillingAccountOUID,
		KeyParentOUID,
		KeyOfferingOUID,
		KeySpecOUID,
		KeyMSISDN,
		KeyGoodwillSizeGB,
		KeyGoodwillReason,
		KeyLang,
		KeyXBrand,
		KeyXChannel,
	}
}

// Set assigns value to the named key. Constrained keys are validated:
// goodwillSizeGb must be an integer within [MinGoodwillGB, MaxGoodwillGB]
// and lang must be a supported language code.
func (o *Overrides) Set(key, value string) error {
	switch key {
	case KeyJWT:
		o.JWT = value
	case KeyCustomerOUID:
		o.CustomerOUID = value
	case KeyBillingAccountOUID:
		o.BillingAccountOUID = value
	case KeyParentOUID:
		o.ParentOUID = value
	case KeyOfferingOUID:
		o.OfferingOUID = value
	case KeySpecOUID:
		o.SpecOUID = value
	case KeyMSISDN:
		o.MSISDN = value
	case KeyGoodwillSizeGB:
		size, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || size < MinGoodwillGB || size > MaxGoodwillGB {
			return fmt.Errorf("%w: %s must be an integer between %d and %d",
				ErrInvalidValue, KeyGoodwillSizeGB, MinGoodwillGB, MaxGoodwillGB)
		}
		o.GoodwillSizeGB = strconv.Itoa(size)
	case KeyGoodwillReason:
		o.GoodwillReason = value
	case KeyLang:
		if value != "" && !ValidLanguage(value) {
			return fmt.Errorf("%w: lang must be one of %v", ErrInvalidValue, languages)
		}
		o.Lang = value
	case KeyXBrand:
		o.XBrand = value
	case KeyXChannel:
		o.XChannel = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// Unset clears the named key. goodwillSizeGb resets to its default instead,
// since it is always transmitted.
func (o *Overrides) Unset(key string) error {
	if key == KeyGoodwillSizeGB {
		o.GoodwillSizeGB = strconv.Itoa(DefaultGoodwillGB)
		return nil
	}
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	switch key {
	case KeyJWT:
		o.JWT = ""
	case KeyCustomerOUID:
		o.CustomerOUID = ""
	case KeyBillingAccountOUID:
		o.BillingAccountOUID = ""
	case KeyParentOUID:
		o.ParentOUID = ""
	case KeyOfferingOUID:
		o.OfferingOUID = ""
	case KeySpecOUID:
		o.SpecOUID = ""
	case KeyMSISDN:
		o.MSISDN = ""
	case KeyGoodwillReason:
		o.GoodwillReason = ""
	case KeyLang:
		o.Lang = ""
	case KeyXBrand:
		o.XBrand = ""
	case KeyXChannel:
		o.XChannel = ""
	}
	return nil
}

// Value returns the current value of the named key and whether the key exists.
func (o Overrides) Value(key string) (string, bool) {
	switch key {
	case KeyJWT:
		return o.JWT, true
	case KeyCustomerOUID:
		return o.CustomerOUID, true
	case KeyBillingAccountOUID:
		return o.BillingAccountOUID, true
	case KeyParentOUID:
		return o.ParentOUID, true
	case KeyOfferingOUID:
		return o.OfferingOUID, true
	case KeySpecOUID:
		return o.SpecOUID, true
	case KeyMSISDN:
		return o.MSISDN, true
	case KeyGoodwillSizeGB:
		return o.GoodwillSizeGB, true
	case KeyGoodwillReason:
		return o.GoodwillReason, true
	case KeyLang:
		return o.Lang, true
	case KeyXBrand:
		return o.XBrand, true
	case KeyXChannel:
		return o.XChannel, true
	default:
		return "", false
	}
}

// maskedValue is the placeholder for masked token content.
const maskedValue = "████████"

// Redacted returns a copy of the record safe for display surfaces: the JWT
// keeps only its first and last two characters.
func (o Overrides) Redacted() Overrides {
	o.JWT = maskToken(o.JWT)
	return o
}

func maskToken(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}
