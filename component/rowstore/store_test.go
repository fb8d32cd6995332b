package rowstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/y7ut/settingsgrid/settings"
)

func TestStoreLoadProjects(t *testing.T) {
	s := New([]string{"key", "value"})
	s.Load(settings.Snapshot{{"key": "a", "value": "1", "extra": "x"}, {"key": "b"}, nil})

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, settings.Snapshot{
		{"key": "a", "value": "1"},
		{"key": "b", "value": ""},
		{"key": "", "value": ""},
	}, s.All())
	assert.Equal(t, settings.Row{"key": "b", "value": ""}, s.Value(1))
	assert.Nil(t, s.Value(3))
	assert.Nil(t, s.Value(-1))
}

func TestStoreLoadDoesNotAlias(t *testing.T) {
	s := New([]string{"key"})
	in := settings.Snapshot{{"key": "a"}}
	s.Load(in)
	in[0]["key"] = "changed"
	assert.Equal(t, "a", s.Cell(0, "key"))
}

func TestStoreRefsSurviveReordering(t *testing.T) {
	s := New([]string{"key"})
	a := s.Append()
	b := s.Append()
	_, err := s.Set(a, "key", "a")
	require.NoError(t, err)

	require.NoError(t, s.Swap(0, 1))
	assert.Equal(t, 1, s.Index(a))
	assert.Equal(t, 0, s.Index(b))

	c, err := s.Insert(0)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Index(c))
	assert.Equal(t, 2, s.Index(a))

	require.NoError(t, s.Remove(2))
	assert.Equal(t, -1, s.Index(a))
	_, err = s.Set(a, "key", "x")
	assert.ErrorIs(t, err, ErrNoRow)

	s.Load(nil)
	assert.Equal(t, -1, s.Index(b))
	assert.Zero(t, s.Len())
}

func TestStoreBounds(t *testing.T) {
	s := New([]string{"key"})
	_, err := s.Insert(1)
	assert.ErrorIs(t, err, ErrNoRow)
	assert.ErrorIs(t, s.Remove(0), ErrNoRow)
	assert.ErrorIs(t, s.Swap(0, 1), ErrNoRow)
	_, err = s.Ref(0)
	assert.ErrorIs(t, err, ErrNoRow)
}
