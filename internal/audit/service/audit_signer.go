package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/hardwarexpress/audittrail/internal/audit/domain"
)

// signingKeyInfo versions the HKDF derivation so the signing scheme can
// change without old signatures failing silently.
const signingKeyInfo = "audit-log-signing-v1"

type auditLogSigner struct {
	signingKey []byte
}

// NewAuditLogSigner creates an HMAC-SHA256 signer for audit log entries.
// The signing key is derived from rootKey with HKDF-SHA256 and held for the
// signer's lifetime; rootKey itself is zeroed before returning.
func NewAuditLogSigner(rootKey []byte) (AuditLogSigner, error) {
	if len(rootKey) == 0 {
		return nil, auditDomain.ErrSigningKeyUnavailable
	}

	signingKey, err := deriveSigningKey(rootKey)
	zero(rootKey)
	if err != nil {
		return nil, err
	}

	return &auditLogSigner{signingKey: signingKey}, nil
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the
// root key, keeping signing usage separate from any other use of the root key.
func deriveSigningKey(rootKey []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, rootKey, nil, []byte(signingKeyInfo))

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalizeEntry converts an audit log entry to its canonical byte
// representation for signing.
// Format: id || actor_id || actor_role || action || resource || outcome ||
// ip_address || severity || created_at.
// Variable-length and optional fields are length-prefixed to prevent
// ambiguity; an absent optional field encodes as a zero-length prefix. The
// description and classification state are left out of the envelope: both may
// change when the classification pipeline completes, and the signature must
// survive that transition.
func canonicalizeEntry(auditLog *auditDomain.AuditLog) []byte {
	// Estimate capacity to reduce allocations (typical entry ~200 bytes)
	buf := make([]byte, 0, 256)

	buf = append(buf, auditLog.ID[:]...)

	if auditLog.ActorID != nil {
		buf = appendLengthPrefixed(buf, auditLog.ActorID[:])
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}
	buf = appendLengthPrefixed(buf, stringPtrBytes(auditLog.ActorRole))
	buf = appendLengthPrefixed(buf, []byte(auditLog.Action))
	buf = appendLengthPrefixed(buf, []byte(auditLog.Resource))
	buf = appendLengthPrefixed(buf, []byte(auditLog.Outcome))
	buf = appendLengthPrefixed(buf, stringPtrBytes(auditLog.IPAddress))
	buf = appendLengthPrefixed(buf, []byte(auditLog.Severity))

	// Append timestamp (Unix nano for precision)
	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(auditLog.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Format: [length (4 bytes)] + [data (length bytes)]
// Panics if data length exceeds uint32 max (4GB) to prevent integer overflow.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max (4GB)")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

func stringPtrBytes(s *string) []byte {
	if s == nil {
		return nil
	}
	return []byte(*s)
}

// Sign generates the HMAC-SHA256 signature over the entry's canonical
// representation. Returns a 32-byte signature.
func (a *auditLogSigner) Sign(auditLog *auditDomain.AuditLog) ([]byte, error) {
	mac := hmac.New(sha256.New, a.signingKey)
	mac.Write(canonicalizeEntry(auditLog))
	return mac.Sum(nil), nil
}

// Verify checks if the entry's stored signature matches its current fields.
// Returns nil if valid, ErrSignatureInvalid if tampered or invalid.
func (a *auditLogSigner) Verify(auditLog *auditDomain.AuditLog) error {
	expectedSig, err := a.Sign(auditLog)
	if err != nil {
		return err
	}

	if !hmac.Equal(auditLog.Signature, expectedSig) {
		return auditDomain.ErrSignatureInvalid
	}

	return nil
}

// zero overwrites sensitive data in memory with zeros.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
