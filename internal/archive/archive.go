// Package archive stores rendered scope documents outside the database.
package archive

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get for unknown objects.
var ErrNotFound = errors.New("archived object not found")

// Store keeps named objects grouped by session.
type Store interface {
	// Put stores content and returns a location string for it.
	Put(ctx context.Context, sessionID, name string, content []byte, contentType string) (string, error)
	Get(ctx context.Context, sessionID, name string) ([]byte, error)
	List(ctx context.Context, sessionID string) ([]string, error)
}

func objectKey(sessionID, name string) string {
	return strings.TrimSpace(sessionID) + "/" + strings.TrimLeft(strings.TrimSpace(name), "/")
}

func checkKey(sessionID, name string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("session id is required")
	}
	if strings.TrimSpace(name) == "" {
		return errors.New("object name is required")
	}
	return nil
}
