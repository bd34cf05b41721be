package credentials

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const secretChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// secretLength gives roughly 190 bits of entropy, enough for a
// bearer credential that is only ever stored hashed
const secretLength = 32

// GenerateDeviceID generates a new device identifier
func GenerateDeviceID() string {
	return uuid.New().String()
}

// GenerateDeviceSecret generates a random device secret. The plaintext is
// returned to the device exactly once at registration; only its hash is kept.
func GenerateDeviceSecret() (string, error) {
	secret := make([]byte, secretLength)

	for i := 0; i < secretLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(secretChars))))
		if err != nil {
			return "", err
		}
		secret[i] = secretChars[num.Int64()]
	}

	return string(secret), nil
}
