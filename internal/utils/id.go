package utils

import "github.com/google/uuid"

// NewID returns a random identifier for connections and participants.
func NewID() string {
	return uuid.NewString()
}

// ShortID returns the first n characters of id, or id itself when shorter.
func ShortID(id string, n int) string {
	count := 0
	for i := range id {
		if count == n {
			return id[:i]
		}
		count++
	}
	return id
}
