package utils

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewID returns a unique identifier of the form "<prefix>_<uuid>".
func NewID(prefix string) string {
	id, err := uuid.NewRandom()
	if err != nil {
		// Fallback to timestamp if the random source is unavailable.
		return prefix + "_" + strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	if prefix == "" {
		return id.String()
	}
	return prefix + "_" + id.String()
}
