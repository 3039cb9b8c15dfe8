package api

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// AdminTokenPrefix marks tokens minted by GenerateAdminToken.
const AdminTokenPrefix = "adv_"

// GenerateAdminToken creates an analytics admin token and its bcrypt hash.
// The token is shown once; only the hash goes into configuration.
func GenerateAdminToken() (token, hash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("GenerateAdminToken: %w", err)
	}
	token = AdminTokenPrefix + hex.EncodeToString(raw)

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("GenerateAdminToken: %w", err)
	}
	return token, string(hashBytes), nil
}
