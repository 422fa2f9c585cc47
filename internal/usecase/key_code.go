package usecase

import (
	"crypto/rand"
	"io"
)

// keyAlphabet is uppercase Latin letters plus digits, per the key format the
// admin hands out to users.
const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateKeyCode creates a random activation key code of the given length.
func generateKeyCode(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := 0; i < length; i++ {
		buffer[i] = keyAlphabet[int(buffer[i])%len(keyAlphabet)]
	}
	return string(buffer), nil
}
