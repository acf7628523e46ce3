package sift

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"

	"github.com/sift-go/sift/schema"
)

// Extension builders. Each is a pure function producing a composed schema
// fragment from the engine's primitives; none hold state beyond schema
// construction time.

// URLOpts tunes the URL and Domain builders. Zero values keep the 2-10
// host-label defaults.
type URLOpts struct {
	MinLabels int
	MaxLabels int
}

func (o URLOpts) labels() (int, int) {
	min, max := 2, 10
	if o.MinLabels > 0 {
		min = o.MinLabels
	}
	if o.MaxLabels > 0 {
		max = o.MaxLabels
	}
	return min, max
}

// Enum builds a string schema restricted to exactly the given value set.
// values may be a slice of strings, or any map whose keys become the
// allowed set.
func Enum(values any) *schema.Node {
	allowed := enumValues(values)
	set := make([]any, len(allowed))
	for i, v := range allowed {
		set[i] = v
	}
	return schema.String().Valid(set...)
}

func enumValues(values any) []string {
	switch v := values.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	rv := reflect.ValueOf(values)
	if rv.Kind() == reflect.Map {
		out := make([]string, 0, rv.Len())
		for _, key := range rv.MapKeys() {
			out = append(out, fmt.Sprint(key.Interface()))
		}
		sort.Strings(out)
		return out
	}
	return nil
}

// URL builds a string schema requiring a parseable http(s) URL with a
// bounded number of host labels.
func URL(opts ...URLOpts) *schema.Node {
	var o URLOpts
	if len(opts) > 0 {
		o = opts[0]
	}
	minLabels, maxLabels := o.labels()
	return schema.String().
		Custom("url", func(value any) (any, error) {
			s, _ := value.(string)
			if err := checkURL(s, minLabels, maxLabels, "http", "https"); err != nil {
				return nil, err
			}
			return s, nil
		}).
		Messages(map[string]string{
			schema.CodeAnyFallback: "Please provide a valid URL",
		})
}

// Domain builds a string schema that normalizes its input to a bare,
// lower-cased host: an optional scheme and "www." prefix are stripped, the
// remainder is re-validated as an https URL, and the bare host is the
// resulting value.
func Domain(opts ...URLOpts) *schema.Node {
	var o URLOpts
	if len(opts) > 0 {
		o = opts[0]
	}
	minLabels, maxLabels := o.labels()
	return schema.String().
		Custom("domain", func(value any) (any, error) {
			s, _ := value.(string)
			host := strings.ToLower(strings.TrimSpace(s))
			if i := strings.Index(host, "://"); i >= 0 {
				host = host[i+3:]
			}
			host = strings.TrimPrefix(host, "www.")
			if i := strings.IndexAny(host, "/?#"); i >= 0 {
				host = host[:i]
			}
			if err := checkURL("https://"+host, minLabels, maxLabels, "https"); err != nil {
				return nil, errors.New("must be a valid domain")
			}
			return host, nil
		}).
		Messages(map[string]string{
			schema.CodeAnyFallback: "Please provide a valid domain",
		})
}

// Email builds a lower-cased, syntax-checked email schema.
func Email() *schema.Node {
	return schema.String().Email().Lowercase()
}

// PhoneNumber builds a string schema that normalizes a leading "00" to "+",
// ensures a leading "+", and parses the result as an international phone
// number. The resulting value is the canonical E.164 form.
func PhoneNumber() *schema.Node {
	return schema.String().
		Min(6).
		Max(20).
		Custom("phoneNumber", func(value any) (any, error) {
			s, _ := value.(string)
			s = strings.TrimSpace(s)
			if strings.HasPrefix(s, "00") {
				s = "+" + s[2:]
			}
			if !strings.HasPrefix(s, "+") {
				s = "+" + s
			}
			parsed, err := phonenumbers.Parse(s, "")
			if err != nil || !phonenumbers.IsValidNumber(parsed) {
				return nil, errors.New("must be a valid phone number")
			}
			return phonenumbers.Format(parsed, phonenumbers.E164), nil
		}).
		Messages(map[string]string{
			schema.CodeAnyFallback: "Please provide a valid phone number",
		})
}

// ID builds the opaque-identifier schema: a string of 30-33 characters, or
// a non-negative number.
func ID() *schema.Node {
	return schema.Alternatives(
		schema.String().Min(30).Max(33),
		schema.Number().Min(0),
	)
}

// UUID builds a string schema accepting any RFC 4122 textual form and
// yielding the canonical lower-case representation.
func UUID() *schema.Node {
	return schema.String().Custom("uuid", func(value any) (any, error) {
		s, _ := value.(string)
		parsed, err := uuid.Parse(s)
		if err != nil {
			return nil, errors.New("must be a valid UUID")
		}
		return parsed.String(), nil
	})
}

func checkURL(s string, minLabels, maxLabels int, schemes ...string) error {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return errors.New("must be a valid URL")
	}
	schemeOK := false
	for _, scheme := range schemes {
		if u.Scheme == scheme {
			schemeOK = true
			break
		}
	}
	if !schemeOK {
		return fmt.Errorf("scheme must be one of %v", schemes)
	}
	labels := strings.Split(u.Hostname(), ".")
	if len(labels) < minLabels || len(labels) > maxLabels {
		return fmt.Errorf("host must have between %d and %d labels", minLabels, maxLabels)
	}
	for _, label := range labels {
		if label == "" {
			return errors.New("host contains an empty label")
		}
	}
	return nil
}
