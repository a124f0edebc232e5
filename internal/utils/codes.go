package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateCode returns a 6-digit code drawn uniformly from
// [100000, 999999]. Fixed width avoids leading-zero ambiguity.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
