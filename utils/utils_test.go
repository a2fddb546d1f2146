package utils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/crypto"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Token    string `json:"access_token" validate:"notblank"`
	PageSize int    `json:"page_size" validate:"gte=1,lte=100"`
}

func TestValidateTranslatesWithJSONNames(t *testing.T) {
	err := Validate(&sampleConfig{Token: "  ", PageSize: 500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_token must not be blank")
	assert.Contains(t, err.Error(), "page_size")

	assert.NoError(t, Validate(&sampleConfig{Token: "abc", PageSize: 10}))
}

func TestGetKeysHash(t *testing.T) {
	a := map[string]any{"id": "1", "name": "x"}
	b := map[string]any{"id": "1", "name": "y"}
	c := map[string]any{"id": "2", "name": "x"}

	assert.Equal(t, GetKeysHash(a, "id"), GetKeysHash(b, "id"))
	assert.NotEqual(t, GetKeysHash(a, "id"), GetKeysHash(c, "id"))
	assert.NotEqual(t, GetKeysHash(a), GetKeysHash(b))
}

func TestULIDIsMonotonic(t *testing.T) {
	first := ULID()
	second := ULID()
	assert.Len(t, first, 26)
	assert.Less(t, first, second)
}

func TestArrayContainsAndForEach(t *testing.T) {
	idx, found := ArrayContains([]string{"a", "b"}, func(s string) bool { return s == "b" })
	assert.True(t, found)
	assert.Equal(t, 1, idx)

	_, found = ArrayContains([]int{1}, func(i int) bool { return i == 2 })
	assert.False(t, found)

	visited := 0
	err := ForEach([]int{1, 2, 3}, func(i int) error {
		visited++
		if i == 2 {
			return errors.New("stop")
		}
		return nil
	})
	assert.EqualError(t, err, "stop")
	assert.Equal(t, 2, visited)
}

func TestErrExecSequentialRunsAll(t *testing.T) {
	calls := 0
	err := ErrExecSequential(
		func() error { calls++; return errors.New("first") },
		func() error { calls++; return nil },
		func() error { calls++; return errors.New("third") },
	)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "third")
	assert.NoError(t, ErrExecSequential(func() error { return nil }))
}

func TestUnmarshalFile(t *testing.T) {
	dir := t.TempDir()
	type cfg struct {
		Token    string `json:"access_token"`
		PageSize int    `json:"page_size"`
	}

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"access_token":"a","page_size":10}`), 0o600))
	out := cfg{}
	require.NoError(t, UnmarshalFile(jsonPath, &out, false))
	assert.Equal(t, cfg{Token: "a", PageSize: 10}, out)

	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("access_token: b\npage_size: 20\n"), 0o600))
	out = cfg{}
	require.NoError(t, UnmarshalFile(yamlPath, &out, false))
	assert.Equal(t, cfg{Token: "b", PageSize: 20}, out)

	assert.Error(t, UnmarshalFile(filepath.Join(dir, "missing.json"), &out, false))
}

func TestUnmarshalFileEncrypted(t *testing.T) {
	viper.Set(constants.EncryptionKey, "secret")
	defer viper.Set(constants.EncryptionKey, "")

	d, err := crypto.NewDecrypter(context.Background(), "secret")
	require.NoError(t, err)
	sealed, err := d.Encrypt([]byte(`{"access_token":"enc"}`))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, sealed, 0o600))

	out := map[string]any{}
	require.NoError(t, UnmarshalFile(path, &out, true))
	assert.Equal(t, "enc", out["access_token"])
}

func TestTimestampedFileName(t *testing.T) {
	name := TimestampedFileName(constants.ParquetFileExt)
	assert.True(t, strings.HasSuffix(name, ".parquet"))
	assert.Contains(t, name, "_")
}
