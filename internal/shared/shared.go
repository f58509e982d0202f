package shared

import (
	"crypto/rand"
	"math/big"
	"os"
	"strings"
)

const EnvSimulationDebugMode = "SIMULATION_DEBUG_MODE"

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// IsSimulationDebugMode checks if verbose logging of simulated wallet operations is enabled via environment variable
func IsSimulationDebugMode() bool {
	debugMode := os.Getenv(EnvSimulationDebugMode)
	return strings.ToLower(debugMode) == "true" || strings.ToLower(debugMode) == "1"
}

// RandomBase36 returns n random upper case base36 characters.
func RandomBase36(n int) string {
	var sb strings.Builder
	sb.Grow(n)

	limit := big.NewInt(int64(len(base36Alphabet)))
	for range n {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		sb.WriteByte(base36Alphabet[idx.Int64()])
	}
	return sb.String()
}

var markupStripper = strings.NewReplacer("<", "", ">", "")

// SanitizeInput strips angle brackets from user supplied text.
func SanitizeInput(input string) string {
	return markupStripper.Replace(input)
}
