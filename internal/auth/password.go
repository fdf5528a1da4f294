// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides password hashing and verification utilities
// using the scrypt algorithm for secure credential storage.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Scrypt parameters (interactive-login work factor, 64-byte derived key).
const (
	ScryptN       = 32768
	ScryptR       = 8
	ScryptP       = 1
	ScryptKeyLen  = 64
	ScryptSaltLen = 16
)

// credentialSeparator splits the derived key from the salt in the stored
// credential: hex(digest).hex(salt).
const credentialSeparator = "."

// HashPassword derives a scrypt hash of the password with a fresh random
// salt and returns the storable credential in hex(digest).hex(salt) form.
func HashPassword(password string) (string, error) {
	salt := make([]byte, ScryptSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	digest, err := scrypt.Key([]byte(password), salt, ScryptN, ScryptR, ScryptP, ScryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("deriving key: %w", err)
	}

	return hex.EncodeToString(digest) + credentialSeparator + hex.EncodeToString(salt), nil
}

// CheckPassword verifies a password against a stored credential.
// Uses constant-time comparison to prevent timing attacks. A malformed
// credential yields (false, error); callers must surface a generic
// invalid-credentials result either way so the cases are indistinguishable.
func CheckPassword(password, credential string) (bool, error) {
	digestHex, saltHex, ok := strings.Cut(credential, credentialSeparator)
	if !ok {
		return false, fmt.Errorf("invalid credential format")
	}

	expected, err := hex.DecodeString(digestHex)
	if err != nil {
		return false, fmt.Errorf("decoding digest: %w", err)
	}
	if len(expected) != ScryptKeyLen {
		return false, fmt.Errorf("invalid digest length: %d", len(expected))
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("decoding salt: %w", err)
	}

	digest, err := scrypt.Key([]byte(password), salt, ScryptN, ScryptR, ScryptP, ScryptKeyLen)
	if err != nil {
		return false, fmt.Errorf("deriving key: %w", err)
	}

	return subtle.ConstantTimeCompare(digest, expected) == 1, nil
}
