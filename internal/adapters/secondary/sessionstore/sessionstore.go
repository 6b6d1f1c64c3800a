// Package sessionstore persists the serialized console session under a
// single key, either in a local file or in Redis.
package sessionstore

import (
	"encoding/json"
	"fmt"

	"github.com/lorrc/voice2ticket/internal/core/domain"
)

// BaseKey is the storage key of the terminal console's session.
const BaseKey = "v2t_user"

// ConsoleKey is the storage key of an HTTP console's session.
func ConsoleKey(consoleID string) string {
	return BaseKey + ":" + consoleID
}

func encode(session *domain.Session) ([]byte, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decoding stored session: %w", err)
	}
	return &session, nil
}
