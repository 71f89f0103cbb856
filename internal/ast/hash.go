package ast

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/atlas-desktop/trading-backend/pkg/types"
)

// CanonicalJSON returns a stable JSON encoding of a StrategyAST: fixed
// field order (Go struct field order is preserved by encoding/json) with
// no extraneous whitespace, suitable as the input to a content-addressable
// hash. Supplements the persistence interface's dedup hash (spec §6).
func CanonicalJSON(s *types.StrategyAST) ([]byte, error) {
	return json.Marshal(s)
}

// Hash returns the SHA-256 hex digest of a strategy's canonical JSON.
func Hash(s *types.StrategyAST) (string, error) {
	b, err := CanonicalJSON(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
