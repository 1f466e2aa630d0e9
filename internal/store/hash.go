package store

import (
	"crypto/sha256"
	"fmt"
	"os"
)

// HashContent returns the hex SHA-256 of content, the form stored in
// files.hash.
func HashContent(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// HashFile reads path and returns its content hash.
func HashFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return HashContent(content), nil
}
