package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAppend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runtime", "log")

	ok, err := PathExists(dir)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, line := range []string{"one\n", "two\n"} {
		f, err := OpenAppend(dir, "settingsgrid.log")
		require.NoError(t, err)
		_, err = f.WriteString(line)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}

	data, err := os.ReadFile(filepath.Join(dir, "settingsgrid.log"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))

	require.NoError(t, PathExistOrCreate(dir))
}
