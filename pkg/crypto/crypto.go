package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// bcryptSaltLength covers the "$2a$10$" prefix plus the 22 character encoded salt.
	bcryptSaltLength = 29
	// maxPasswordBytes is the most input bcrypt reads; longer passwords are cut here.
	maxPasswordBytes = 72
)

// ErrInvalidTokenLength is returned when a token of zero or negative length is requested.
var ErrInvalidTokenLength = errors.New("crypto: token length must be positive")

// HashPassword returns a bcrypt hash of the supplied password. Every call draws a fresh salt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordBytes(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares the hashed password with the plaintext candidate.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), passwordBytes(password)) == nil
}

func passwordBytes(password string) []byte {
	raw := []byte(password)
	if len(raw) > maxPasswordBytes {
		return raw[:maxPasswordBytes]
	}
	return raw
}

// SaltFromHash extracts the salt section embedded in a bcrypt digest.
func SaltFromHash(hashedPassword string) string {
	if len(hashedPassword) < bcryptSaltLength {
		return ""
	}
	return hashedPassword[:bcryptSaltLength]
}

// GenerateToken returns a random URL-safe token of the requested byte length.
func GenerateToken(length int) (string, error) {
	buffer, err := randomBytes(length)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// GenerateHexToken returns length random bytes encoded as lowercase hex.
func GenerateHexToken(length int) (string, error) {
	buffer, err := randomBytes(length)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buffer), nil
}

func randomBytes(length int) ([]byte, error) {
	if length <= 0 {
		return nil, ErrInvalidTokenLength
	}
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}
