package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewData(t *testing.T) {
	t.Run("fresh session gets stamped", func(t *testing.T) {
		d := NewData(nil, 3, nil)

		v, ok := d.Get("_v")
		require.True(t, ok)
		assert.Equal(t, 3, v)
	})

	t.Run("current version keeps contents", func(t *testing.T) {
		raw := map[string]any{"_v": 2, "user": "steve"}
		d := NewData(raw, 2, nil)

		v, ok := d.Get("user")
		require.True(t, ok)
		assert.Equal(t, "steve", v)
	})

	t.Run("stale version clears contents", func(t *testing.T) {
		raw := map[string]any{"_v": 1, "user": "steve"}
		d := NewData(raw, 2, nil)

		_, ok := d.Get("user")
		assert.False(t, ok)

		v, ok := d.Get("_v")
		require.True(t, ok)
		assert.Equal(t, 2, v)
	})

	t.Run("json-decoded float version is accepted", func(t *testing.T) {
		raw := map[string]any{"_v": float64(2), "user": "steve"}
		d := NewData(raw, 2, nil)

		_, ok := d.Get("user")
		assert.True(t, ok)
	})

	t.Run("missing version clears contents", func(t *testing.T) {
		raw := map[string]any{"user": "steve"}
		d := NewData(raw, 1, nil)

		_, ok := d.Get("user")
		assert.False(t, ok)
	})
}

func TestDataMutation(t *testing.T) {
	d := NewData(nil, 1, nil)

	d.Set("cart", []any{"sku-1"})
	v, ok := d.Get("cart")
	require.True(t, ok)
	assert.Equal(t, []any{"sku-1"}, v)

	d.Delete("cart")
	_, ok = d.Get("cart")
	assert.False(t, ok)

	d.Set("user", "steve")
	d.Clear()
	_, ok = d.Get("user")
	assert.False(t, ok)
	_, ok = d.Get("_v")
	assert.True(t, ok)
}

func TestDataProvider(t *testing.T) {
	d := NewData(nil, 1, nil)
	d.Set("user", "steve")

	data, ok := d.Provider().TryGet()
	require.True(t, ok)
	assert.Equal(t, "steve", data["user"])
}
