package sift

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sift-go/sift/schema"
)

func validateOK(t *testing.T, node *schema.Node, input any) any {
	t.Helper()
	v := newTestValidator(t, Opts{})
	out, err := v.Validate(context.Background(), node, input)
	require.NoError(t, err)
	return out
}

func firstMessage(t *testing.T, invalid *InvalidDataError) string {
	t.Helper()
	for _, entries := range invalid.Fields {
		require.NotEmpty(t, entries)
		return entries[0].Message
	}
	t.Fatal("no field entries")
	return ""
}

func TestEnum(t *testing.T) {
	t.Run("FromSlice", func(t *testing.T) {
		node := Enum([]string{"red", "green"})
		assert.Equal(t, "red", validateOK(t, node, "red"))

		invalid := validateErr(t, node, "blue")
		require.Len(t, invalid.Fields[""], 1)
		assert.Equal(t, schema.CodeAnyOnly, invalid.Fields[""][0].Code)
	})

	t.Run("FromMapKeys", func(t *testing.T) {
		node := Enum(map[string]int{"low": 1, "high": 2})
		assert.Equal(t, "low", validateOK(t, node, "low"))
		validateErr(t, node, "medium")
	})
}

func TestURL(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.Equal(t, "https://example.com/path", validateOK(t, URL(), "https://example.com/path"))
		assert.Equal(t, "http://sub.example.co.uk", validateOK(t, URL(), "http://sub.example.co.uk"))
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, bad := range []string{"not a url", "ftp://example.com", "https://localhost"} {
			invalid := validateErr(t, URL(), bad)
			assert.Equal(t, "Please provide a valid URL", firstMessage(t, invalid))
		}
	})

	t.Run("LabelBounds", func(t *testing.T) {
		validateErr(t, URL(URLOpts{MinLabels: 3}), "https://example.com")
		assert.Equal(t, "https://a.example.com",
			validateOK(t, URL(URLOpts{MinLabels: 3}), "https://a.example.com"))
	})
}

func TestDomain(t *testing.T) {
	t.Run("NormalizesToBareHost", func(t *testing.T) {
		assert.Equal(t, "example.com", validateOK(t, Domain(), "https://www.Example.com/path"))
		assert.Equal(t, "example.com", validateOK(t, Domain(), "example.com"))
		assert.Equal(t, "sub.example.com", validateOK(t, Domain(), "http://Sub.Example.com"))
	})

	t.Run("Invalid", func(t *testing.T) {
		invalid := validateErr(t, Domain(), "not a url")
		assert.Equal(t, "Please provide a valid domain", firstMessage(t, invalid))
	})
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", validateOK(t, Email(), "User@Example.com"))

	invalid := validateErr(t, Email(), "not-an-email")
	require.Len(t, invalid.Fields[""], 1)
	assert.Equal(t, schema.CodeStringEmail, invalid.Fields[""][0].Code)
}

func TestPhoneNumber(t *testing.T) {
	t.Run("DoubleZeroNormalized", func(t *testing.T) {
		assert.Equal(t, "+14155552671", validateOK(t, PhoneNumber(), "0014155552671"))
	})

	t.Run("PlusEnsured", func(t *testing.T) {
		assert.Equal(t, "+14155552671", validateOK(t, PhoneNumber(), "14155552671"))
	})

	t.Run("Invalid", func(t *testing.T) {
		invalid := validateErr(t, PhoneNumber(), "999")
		assert.Equal(t, "Please provide a valid phone number", firstMessage(t, invalid))
	})

	t.Run("InvalidKeepsSingleEntry", func(t *testing.T) {
		// Too short and unparseable; the fallback message suppresses the
		// second detail.
		invalid := validateErr(t, PhoneNumber(), "99")
		require.Len(t, invalid.Fields[""], 1)
	})
}

func TestID(t *testing.T) {
	longID := strings.Repeat("x", 32)
	assert.Equal(t, longID, validateOK(t, ID(), longID))
	assert.Equal(t, float64(5), validateOK(t, ID(), 5))

	validateErr(t, ID(), "short")
	validateErr(t, ID(), -3)
}

func TestUUID(t *testing.T) {
	canonical := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	assert.Equal(t, canonical, validateOK(t, UUID(), strings.ToUpper(canonical)))

	invalid := validateErr(t, UUID(), "not-a-uuid")
	require.Len(t, invalid.Fields[""], 1)
	assert.Equal(t, schema.CodeAnyCustom, invalid.Fields[""][0].Code)
}
