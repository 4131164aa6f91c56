// Package validate sanitizes and type-checks raw item input before it
// reaches the list core. Every function is a pure mapping from untyped
// input to a validated value or an *Error naming the first violated rule;
// nothing here touches the database.
package validate

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mkarlin/gimmie/internal/domain"
)

// Field and value limits, mirrored by the DB column types.
const (
	MaxNameLen    = 255
	MaxLinkLen    = 2000
	MaxAddedByLen = 100

	// DefaultAddedBy is stored when the caller leaves added_by blank.
	DefaultAddedBy = "Unknown"
)

// maxCost is the largest accepted cost value.
var maxCost = decimal.NewFromInt(1_000_000)

// Error reports the first validation rule an input violated. The message is
// safe to return to API clients verbatim.
type Error struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Field + ": " + e.Reason }

func errf(field, format string, args ...any) *Error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Item holds a fully validated set of item fields, ready for insertion.
type Item struct {
	Name    string
	Cost    *float64
	Link    *string
	Type    domain.ItemType
	AddedBy string
}

var (
	alnumRE  = regexp.MustCompile(`[a-zA-Z0-9]`)
	domainRE = regexp.MustCompile(`^[a-z0-9.-]+$`)
	moneyRE  = regexp.MustCompile(`[^0-9.-]`)
)

// ItemData validates a complete raw item record, typically a decoded JSON
// object. Validation is all-or-nothing: the first violated rule aborts with
// an *Error and no partially validated result is returned. Absent type
// defaults to "want"; absent added_by defaults to "Unknown".
func ItemData(raw map[string]any) (Item, error) {
	var out Item
	var err error

	if out.Name, err = Name(raw["name"]); err != nil {
		return Item{}, err
	}
	if out.Cost, err = Cost(raw["cost"]); err != nil {
		return Item{}, err
	}
	if out.Link, err = Link(raw["link"]); err != nil {
		return Item{}, err
	}
	typ := raw["type"]
	if typ == nil {
		typ = domain.TypeWant
	}
	if out.Type, err = Type(typ); err != nil {
		return Item{}, err
	}
	if out.AddedBy, err = AddedBy(raw["added_by"]); err != nil {
		return Item{}, err
	}
	return out, nil
}

// ItemPatch validates a partial update. Only recognized keys present in raw
// are validated and returned, mapped to their column names; id and position
// are never patchable and are ignored. An empty patch is not an error.
func ItemPatch(raw map[string]any) (map[string]any, error) {
	fields := make(map[string]any)
	if v, ok := raw["name"]; ok {
		name, err := Name(v)
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if v, ok := raw["cost"]; ok {
		cost, err := Cost(v)
		if err != nil {
			return nil, err
		}
		fields["cost"] = cost
	}
	if v, ok := raw["link"]; ok {
		link, err := Link(v)
		if err != nil {
			return nil, err
		}
		fields["link"] = link
	}
	if v, ok := raw["type"]; ok {
		typ, err := Type(v)
		if err != nil {
			return nil, err
		}
		fields["type"] = typ
	}
	if v, ok := raw["added_by"]; ok {
		addedBy, err := AddedBy(v)
		if err != nil {
			return nil, err
		}
		fields["added_by"] = addedBy
	}
	return fields, nil
}

// Name validates the item name: required, trimmed, HTML-escaped, at most
// MaxNameLen characters, and must contain at least one letter or digit.
func Name(v any) (string, error) {
	s, ok := asString(v)
	if !ok {
		return "", errf("name", "must be a string")
	}
	s = sanitize(s)
	if s == "" {
		return "", errf("name", "is required")
	}
	if len(s) > MaxNameLen {
		return "", errf("name", "exceeds maximum length of %d characters", MaxNameLen)
	}
	if !alnumRE.MatchString(s) {
		return "", errf("name", "must contain at least one letter or number")
	}
	return s, nil
}

// Cost validates the cost field. Nil or empty input means "no cost" and
// yields nil. String input is stripped of currency symbols before parsing.
// The value must be a non-negative decimal no greater than 1,000,000 with
// at most two fractional digits.
func Cost(v any) (*float64, error) {
	var d decimal.Decimal
	switch c := v.(type) {
	case nil:
		return nil, nil
	case string:
		c = moneyRE.ReplaceAllString(c, "")
		if c == "" {
			return nil, nil
		}
		var err error
		if d, err = decimal.NewFromString(c); err != nil {
			return nil, errf("cost", "must be a valid number")
		}
	case float64:
		d = decimal.NewFromFloat(c)
	case int:
		d = decimal.NewFromInt(int64(c))
	case int64:
		d = decimal.NewFromInt(c)
	default:
		return nil, errf("cost", "must be a valid number")
	}

	if d.IsNegative() {
		return nil, errf("cost", "must be a positive number")
	}
	if d.GreaterThan(maxCost) {
		return nil, errf("cost", "exceeds maximum allowed value")
	}
	if d.Exponent() < -2 {
		return nil, errf("cost", "can have at most 2 decimal places")
	}
	f, _ := d.Float64()
	return &f, nil
}

// Link validates the optional URL field. Nil or empty input yields nil.
// A missing scheme is normalized to https://; only http, https, and ftp
// schemes are accepted, the host must be present, and the domain charset
// is restricted to letters, digits, dots, and hyphens.
func Link(v any) (*string, error) {
	s, ok := asString(v)
	if !ok {
		return nil, errf("link", "must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if len(s) > MaxLinkLen {
		return nil, errf("link", "exceeds maximum length of %d characters", MaxLinkLen)
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, errf("link", "is not a valid URL")
	}
	if u.Scheme == "" {
		s = "https://" + s
		if u, err = url.Parse(s); err != nil {
			return nil, errf("link", "is not a valid URL")
		}
	}
	switch u.Scheme {
	case "http", "https", "ftp":
	default:
		return nil, errf("link", "must use http, https, or ftp")
	}
	if u.Host == "" {
		return nil, errf("link", "is not a valid URL")
	}
	if !domainRE.MatchString(strings.ToLower(u.Hostname())) {
		return nil, errf("link", "has an invalid domain")
	}
	return &s, nil
}

// Type validates the item type: it must be exactly "want" or "need".
func Type(v any) (domain.ItemType, error) {
	s, _ := asString(v)
	if s != domain.TypeWant && s != domain.TypeNeed {
		return "", errf("type", "must be either 'want' or 'need'")
	}
	return s, nil
}

// AddedBy validates the optional added_by field. It is sanitized like a
// name but without the alphanumeric requirement; blank input falls back
// to DefaultAddedBy.
func AddedBy(v any) (string, error) {
	s, ok := asString(v)
	if !ok {
		return "", errf("added_by", "must be a string")
	}
	s = sanitize(s)
	if s == "" {
		return DefaultAddedBy, nil
	}
	if len(s) > MaxAddedByLen {
		return "", errf("added_by", "exceeds maximum length of %d characters", MaxAddedByLen)
	}
	return s, nil
}

// sanitize strips NUL bytes, escapes HTML entities, and trims whitespace.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = html.EscapeString(s)
	return strings.TrimSpace(s)
}

// asString coerces nil and string inputs; nil maps to "". Any other type
// reports failure so callers can name the offending field.
func asString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", true
	case string:
		return s, true
	default:
		return "", false
	}
}
