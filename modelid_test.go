package sift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel map[string]FieldDescriptor

func (m fakeModel) Field(name string) (FieldDescriptor, bool) {
	fd, ok := m[name]
	return fd, ok
}

type fakeStore map[string]fakeModel

func (s fakeStore) Model(name string) (ModelDescriptor, bool) {
	m, ok := s[name]
	return m, ok
}

func testStore() fakeStore {
	return fakeStore{
		"user": fakeModel{
			"id": FieldDescriptor{Type: FieldTypeInteger},
		},
		"order": fakeModel{
			"id":     FieldDescriptor{Type: FieldTypeString, Prefix: "ord_", Length: 6},
			"userId": FieldDescriptor{Type: FieldTypeInteger, Ref: &FieldRef{Model: "user", Key: "id"}},
		},
		"loop": fakeModel{
			"id": FieldDescriptor{Ref: &FieldRef{Model: "loop", Key: "id"}},
		},
	}
}

func TestModelID(t *testing.T) {
	store := testStore()

	t.Run("IntegerField", func(t *testing.T) {
		node, err := ModelID(store, "user")
		require.NoError(t, err)

		assert.Equal(t, float64(7), validateOK(t, node, 7))
		// Numeric strings are accepted and parsed.
		assert.Equal(t, float64(7), validateOK(t, node, "7"))

		validateErr(t, node, "abc")
		validateErr(t, node, -1)
	})

	t.Run("StringFieldShape", func(t *testing.T) {
		node, err := ModelID(store, "order.id")
		require.NoError(t, err)

		assert.Equal(t, "ord_a1b2c3", validateOK(t, node, "ord_a1b2c3"))
		validateErr(t, node, "ord_short")
		validateErr(t, node, "a1b2c3")
	})

	t.Run("ForeignKeyFollowedTransitively", func(t *testing.T) {
		node, err := ModelID(store, "order.userId")
		require.NoError(t, err)
		assert.Equal(t, float64(9), validateOK(t, node, 9))
	})

	t.Run("FieldOptOverridesRef", func(t *testing.T) {
		node, err := ModelID(store, "order", ModelIDOpts{Field: "userId"})
		require.NoError(t, err)
		assert.NotNil(t, node)
	})

	t.Run("MissingModelFailsSynchronously", func(t *testing.T) {
		_, err := ModelID(store, "ghost")
		var resErr *ModelResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, CodeModelResolution, resErr.Code())
		assert.Equal(t, "ghost", resErr.Model)
	})

	t.Run("MissingFieldFailsSynchronously", func(t *testing.T) {
		_, err := ModelID(store, "user.ghost")
		var resErr *ModelResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, "ghost", resErr.Field)
	})

	t.Run("NilStore", func(t *testing.T) {
		_, err := ModelID(nil, "user")
		var resErr *ModelResolutionError
		require.ErrorAs(t, err, &resErr)
	})

	t.Run("ReferenceCycleAborts", func(t *testing.T) {
		_, err := ModelID(store, "loop")
		var resErr *ModelResolutionError
		require.ErrorAs(t, err, &resErr)
	})
}
