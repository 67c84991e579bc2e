package xid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TemporaryPrefix marks ids that have no backing inventory record.
const TemporaryPrefix = "tmp-"

func New(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%s", prefix, id.String())
}

// Temporary returns a time-based token for manual cart lines.
func Temporary() string {
	return fmt.Sprintf("%s%d", TemporaryPrefix, time.Now().UnixNano())
}

func IsTemporary(id string) bool {
	return len(id) > len(TemporaryPrefix) && id[:len(TemporaryPrefix)] == TemporaryPrefix
}
