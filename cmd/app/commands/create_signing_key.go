package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	auditService "github.com/hardwarexpress/audittrail/internal/audit/service"
)

// RunCreateSigningKey generates a cryptographically secure 32-byte root key for
// audit log tamper signing, wraps it with KMS, and prints the environment
// configuration. Key material is zeroed from memory after wrapping.
//
// The kmsKeyURI parameter is required. For local development, use
// kmsKeyURI="base64key://<32-byte-base64-key>".
//
// Output format:
//   - AUDIT_SIGNING_KMS_KEY_URI="<uri>"
//   - AUDIT_SIGNING_WRAPPED_KEY="<base64-encoded-kms-ciphertext>"
//
// Security: Never use the base64key provider in production. Use cloud KMS key
// URIs (gcpkms, awskms, azurekeyvault, hashivault).
func RunCreateSigningKey(
	ctx context.Context,
	kmsService auditService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
) error {
	// Validate required KMS parameter
	if kmsKeyURI == "" {
		return fmt.Errorf(
			"--kms-key-uri is required\n\nFor local development, use:\n  --kms-key-uri=\"base64key://<32-byte-base64-key>\"\n\nFor production, use cloud KMS key URIs:\n  --kms-key-uri=\"gcpkms://projects/.../cryptoKeys/...\"\n  --kms-key-uri=\"awskms:///alias/...\"\n  --kms-key-uri=\"azurekeyvault://...\"",
		)
	}

	// Generate a cryptographically secure 32-byte signing root key
	rootKey := make([]byte, 32)
	if _, err := rand.Read(rootKey); err != nil {
		return fmt.Errorf("failed to generate signing key: %w", err)
	}

	logger.Info("creating audit signing key", slog.String("kms_key_uri", kmsKeyURI))

	// Open keeper and wrap the root key with KMS
	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	ciphertext, err := keeper.Encrypt(ctx, rootKey)
	if err != nil {
		return fmt.Errorf("failed to wrap signing key with KMS: %w", err)
	}

	// Zero out the root key from memory
	for i := range rootKey {
		rootKey[i] = 0
	}

	encodedKey := base64.StdEncoding.EncodeToString(ciphertext)

	_, _ = fmt.Fprintln(writer, "# Audit Signing Key Configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "AUDIT_SIGNING_KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "AUDIT_SIGNING_WRAPPED_KEY=\"%s\"\n", encodedKey)

	return nil
}
