package crypto

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKMS struct {
	plaintext []byte
	err       error
	got       []byte
}

func (f *fakeKMS) Decrypt(_ context.Context, params *kms.DecryptInput, _ ...func(*kms.Options)) (*kms.DecryptOutput, error) {
	f.got = params.CiphertextBlob
	if f.err != nil {
		return nil, f.err
	}
	return &kms.DecryptOutput{Plaintext: f.plaintext}, nil
}

func TestNewDecrypterEmptyKey(t *testing.T) {
	d, err := NewDecrypter(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	d, err := NewDecrypter(ctx, "my-passphrase")
	require.NoError(t, err)

	sealed, err := d.Encrypt([]byte(`{"access_token":"pat-123"}`))
	require.NoError(t, err)

	plain, err := d.DecryptJSON(ctx, sealed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"pat-123"}`, string(plain))

	other, err := NewDecrypter(ctx, "wrong-passphrase")
	require.NoError(t, err)
	_, err = other.DecryptJSON(ctx, sealed)
	assert.Error(t, err)
}

func TestDecryptJSONRejectsMalformed(t *testing.T) {
	ctx := context.Background()
	d, err := NewDecrypter(ctx, "key")
	require.NoError(t, err)

	_, err = d.DecryptJSON(ctx, []byte(`{"encrypted_data": ""}`))
	assert.Error(t, err)

	_, err = d.DecryptJSON(ctx, []byte(`{"encrypted_data": "%%%"}`))
	assert.Error(t, err)

	_, err = d.Decrypt(ctx, []byte("abc"))
	assert.EqualError(t, err, "ciphertext too short")
}

func TestKMSDecrypt(t *testing.T) {
	client := &fakeKMS{plaintext: []byte(`{"a":1}`)}
	d := NewKMSDecrypter(client)

	plain, err := d.DecryptJSON(context.Background(), []byte(`{"encrypted_data":"AQID"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(plain))
	assert.Equal(t, []byte{1, 2, 3}, client.got)

	client.err = errors.New("denied")
	_, err = d.Decrypt(context.Background(), []byte{1})
	assert.ErrorContains(t, err, "denied")

	_, err = d.Encrypt([]byte("x"))
	assert.Error(t, err)
}
