package room

import (
	"errors"
	"math/rand"
	"strconv"
)

const maxPinAttempts = 1000

// ErrPinSpaceExhausted is returned when no free PIN could be found.
var ErrPinSpaceExhausted = errors.New("pin space exhausted")

// GeneratePin creates a random 4-digit numeric PIN. It retries
// against existing keys so two rooms can never share a PIN.
func GeneratePin(existing map[string]bool) (string, error) {
	for i := 0; i < maxPinAttempts; i++ {
		pin := randomPin()
		if !existing[pin] {
			return pin, nil
		}
	}
	return "", ErrPinSpaceExhausted
}

func randomPin() string {
	return strconv.Itoa(1000 + rand.Intn(9000))
}
