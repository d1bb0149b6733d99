package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kursadbilgin/failedemails-report/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const defaultTableStateTTL = 24 * time.Hour

// TableState is the sort a viewer last picked for a report table.
type TableState struct {
	SortColumn    string               `json:"sortColumn"`
	SortDirection domain.SortDirection `json:"sortDirection"`
}

// TableStateStore persists per-session table state, keyed by session id
// and table unique id.
type TableStateStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewTableStateStore(client *goredis.Client, ttl time.Duration) (*TableStateStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		ttl = defaultTableStateTTL
	}
	return &TableStateStore{client: client, ttl: ttl}, nil
}

// Load returns the stored state, or ok=false when the session has none.
func (s *TableStateStore) Load(ctx context.Context, sessionID string, table string) (TableState, bool, error) {
	key, err := tableStateKey(sessionID, table)
	if err != nil {
		return TableState{}, false, err
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return TableState{}, false, nil
	}
	if err != nil {
		return TableState{}, false, fmt.Errorf("failed to load table state: %w", err)
	}

	var state TableState
	if err := json.Unmarshal(raw, &state); err != nil {
		return TableState{}, false, fmt.Errorf("failed to decode table state: %w", err)
	}
	return state, true, nil
}

func (s *TableStateStore) Save(ctx context.Context, sessionID string, table string, state TableState) error {
	key, err := tableStateKey(sessionID, table)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode table state: %w", err)
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save table state: %w", err)
	}
	return nil
}

func (s *TableStateStore) Reset(ctx context.Context, sessionID string, table string) error {
	key, err := tableStateKey(sessionID, table)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to reset table state: %w", err)
	}
	return nil
}

func tableStateKey(sessionID string, table string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	table = strings.TrimSpace(table)
	if sessionID == "" || table == "" {
		return "", fmt.Errorf("%w: session id and table are required", domain.ErrValidation)
	}
	return "tablestate:" + sessionID + ":" + table, nil
}
