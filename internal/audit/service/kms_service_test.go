package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestKMSService_OpenKeeper(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	t.Run("Success_LocalSecrets", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		require.NotNil(t, keeper)

		_, ok := keeper.(*secrets.Keeper)
		assert.True(t, ok, "keeper should be *secrets.Keeper")

		assert.NoError(t, keeper.Close())
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "invalid://uri")
		assert.Error(t, err)
		assert.Nil(t, keeper)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})

	t.Run("Error_EmptyURI", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "")
		assert.Error(t, err)
		assert.Nil(t, keeper)
	})
}

func TestUnwrapSigningKey(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()
	keyURI := generateLocalSecretsURI(t)

	// Wrap a fresh root key the way the create-signing-key command does
	rootKey := make([]byte, 32)
	_, err := rand.Read(rootKey)
	require.NoError(t, err)

	keeper, err := kmsService.OpenKeeper(ctx, keyURI)
	require.NoError(t, err)
	ciphertext, err := keeper.Encrypt(ctx, rootKey)
	require.NoError(t, err)
	require.NoError(t, keeper.Close())

	wrapped := base64.StdEncoding.EncodeToString(ciphertext)

	unwrapped, err := UnwrapSigningKey(ctx, kmsService, keyURI, wrapped)
	require.NoError(t, err)
	assert.Equal(t, rootKey, unwrapped)
}

func TestUnwrapSigningKey_InvalidBase64(t *testing.T) {
	kmsService := NewKMSService()

	_, err := UnwrapSigningKey(context.Background(), kmsService, generateLocalSecretsURI(t), "%%% not base64 %%%")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode wrapped signing key")
}

func TestUnwrapSigningKey_WrongKey(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	// Wrap under one key, attempt to unwrap under another
	keeper, err := kmsService.OpenKeeper(ctx, generateLocalSecretsURI(t))
	require.NoError(t, err)
	ciphertext, err := keeper.Encrypt(ctx, []byte("audit signing root key material"))
	require.NoError(t, err)
	require.NoError(t, keeper.Close())

	_, err = UnwrapSigningKey(ctx, kmsService, generateLocalSecretsURI(t), base64.StdEncoding.EncodeToString(ciphertext))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unwrap signing key")
}
