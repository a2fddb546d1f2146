/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/goccy/go-json"
)

const kmsPrefix = "arn:aws:kms:"

// KMSClient is the subset of the KMS API used for config decryption.
type KMSClient interface {
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// Decrypter turns encrypted config payloads back into plain JSON. A key that
// is a KMS ARN decrypts through AWS KMS, any other key is hashed into an
// AES-256-GCM key.
type Decrypter struct {
	kms      KMSClient
	localKey []byte
}

type cryptoObj struct {
	EncryptedData string `json:"encrypted_data"`
}

// NewDecrypter builds a Decrypter for key. An empty key yields nil.
func NewDecrypter(ctx context.Context, key string) (*Decrypter, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}

	if strings.HasPrefix(key, kmsPrefix) {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return &Decrypter{kms: kms.NewFromConfig(cfg)}, nil
	}

	hash := sha256.Sum256([]byte(key))
	return &Decrypter{localKey: hash[:]}, nil
}

// NewKMSDecrypter wraps an existing KMS client.
func NewKMSDecrypter(client KMSClient) *Decrypter {
	return &Decrypter{kms: client}
}

func (d *Decrypter) Decrypt(ctx context.Context, cipherData []byte) ([]byte, error) {
	if d.kms != nil {
		out, err := d.kms.Decrypt(ctx, &kms.DecryptInput{CiphertextBlob: cipherData})
		if err != nil {
			return nil, fmt.Errorf("kms decryption failed: %w", err)
		}
		return out.Plaintext, nil
	}

	aead, err := d.aead()
	if err != nil {
		return nil, err
	}

	nonceSize := aead.NonceSize()
	if len(cipherData) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := cipherData[:nonceSize], cipherData[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}

// Encrypt seals plaintext with the local key and returns the
// {"encrypted_data": ...} document that DecryptJSON accepts.
func (d *Decrypter) Encrypt(plaintext []byte) ([]byte, error) {
	if d.kms != nil {
		return nil, errors.New("encryption through kms is not supported locally")
	}

	aead, err := d.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return json.Marshal(cryptoObj{EncryptedData: base64.StdEncoding.EncodeToString(sealed)})
}

// DecryptJSON unwraps an {"encrypted_data": "<base64>"} document.
func (d *Decrypter) DecryptJSON(ctx context.Context, data []byte) ([]byte, error) {
	obj := cryptoObj{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to unmarshal encrypted data: %s", err)
	}
	if obj.EncryptedData == "" {
		return nil, errors.New("encrypted_data field is empty")
	}

	encrypted, err := base64.StdEncoding.DecodeString(obj.EncryptedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %s", err)
	}

	return d.Decrypt(ctx, encrypted)
}

func (d *Decrypter) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(d.localKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
