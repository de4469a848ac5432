package snapshot

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
)

// Digest returns the hex SHA3-256 of the snapshot's JSON encoding.
// Map keys are encoded sorted, so equal snapshots share a digest.
func Digest(snap *model.PageSnapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
