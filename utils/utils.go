package utils

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/crypto"
	"github.com/goccy/go-json"
	"github.com/mitchellh/hashstructure"
	"github.com/oklog/ulid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"
)

var (
	ulidMutex   = sync.Mutex{}
	ulidEntropy = ulid.Monotonic(rand.Reader, 0)
)

// Ternary returns a when cond holds, b otherwise.
func Ternary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}

// ArrayContains returns the index of the first element matching match.
func ArrayContains[T any](set []T, match func(elem T) bool) (int, bool) {
	for idx, elem := range set {
		if match(elem) {
			return idx, true
		}
	}
	return -1, false
}

// ForEach runs fn for every element and stops at the first error.
func ForEach[T any](set []T, fn func(elem T) error) error {
	for _, elem := range set {
		if err := fn(elem); err != nil {
			return err
		}
	}
	return nil
}

// ULID returns a monotonic, lexically sortable identifier.
func ULID() string {
	ulidMutex.Lock()
	defer ulidMutex.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// GetKeysHash hashes the values of keys in record. With no keys the whole
// record is hashed.
func GetKeysHash(record map[string]any, keys ...string) string {
	var target any = record
	if len(keys) > 0 {
		values := make([]any, 0, len(keys))
		for _, key := range keys {
			values = append(values, record[key])
		}
		target = values
	}

	hash, err := hashstructure.Hash(target, nil)
	if err != nil {
		// unhashable values fall back to their printed form
		hash, _ = hashstructure.Hash(fmt.Sprintf("%v", target), nil)
	}
	return fmt.Sprintf("%d", hash)
}

// Unmarshal converts from into object through a JSON round trip.
func Unmarshal(from, object any) error {
	b, err := json.Marshal(from)
	if err != nil {
		return fmt.Errorf("error marshaling object: %s", err)
	}

	if err := json.Unmarshal(b, object); err != nil {
		return fmt.Errorf("error unmarshaling from object: %s", err)
	}
	return nil
}

// UnmarshalFile reads a JSON or YAML file into dest. When credentials is set
// and an encryption key is configured the file is decrypted first.
func UnmarshalFile(file string, dest any, credentials bool) error {
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", file)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("file not found: %s", err)
	}

	if credentials {
		decrypter, err := crypto.NewDecrypter(context.Background(), viper.GetString(constants.EncryptionKey))
		if err != nil {
			return fmt.Errorf("failed to initialize decryption: %s", err)
		}
		if decrypter != nil {
			data, err = decrypter.DecryptJSON(context.Background(), data)
			if err != nil {
				return fmt.Errorf("failed to decrypt file[%s]: %s", file, err)
			}
		}
	}

	ext := strings.ToLower(filepath.Ext(file))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return fmt.Errorf("failed to convert yaml file[%s]: %s", file, err)
		}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal file[%s]: %s", file, err)
	}
	return nil
}

func IsValidSubcommand(available []*cobra.Command, sub string) bool {
	for _, s := range available {
		if sub == s.CalledAs() || sub == s.Name() {
			return true
		}
		for _, alias := range s.Aliases {
			if sub == alias {
				return true
			}
		}
	}
	return false
}

// TimestampedFileName builds a sortable file name like 1700000000000_01HF....parquet
func TimestampedFileName(extension string) string {
	return fmt.Sprintf("%d_%s.%s", time.Now().UTC().UnixMilli(), ULID(), extension)
}
