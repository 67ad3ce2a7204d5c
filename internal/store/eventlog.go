package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sortable-tree/internal/model"

	"github.com/google/uuid"
)

const (
	EventLogBackendJSONL  = "jsonl"
	EventLogBackendSQLite = "sqlite"
)

// EventLog is the append-only record of dispatched actions.
type EventLog interface {
	Append(ctx context.Context, ev model.Event) error
	// Tail returns the last limit events (all when limit <= 0), oldest first.
	Tail(ctx context.Context, limit int) ([]model.Event, error)
	// ForEntity returns the last limit events about entityID, oldest first.
	ForEntity(ctx context.Context, entityID string, limit int) ([]model.Event, error)
}

// OpenEventLog returns the event log for backend ("" means jsonl).
func (s Store) OpenEventLog(backend string) (EventLog, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", EventLogBackendJSONL:
		return JSONLEventLog{Path: s.eventsPath()}, nil
	case EventLogBackendSQLite:
		return SQLiteEventLog{Store: s}, nil
	default:
		return nil, fmt.Errorf("invalid events backend: %q (expected jsonl|sqlite)", backend)
	}
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(typ, entityID string, payload []byte) model.Event {
	return model.Event{
		ID:       uuid.NewString(),
		TS:       time.Now().UTC(),
		Type:     typ,
		EntityID: entityID,
		Payload:  json.RawMessage(payload),
	}
}

func validateEvent(ev model.Event) error {
	if strings.TrimSpace(ev.ID) == "" {
		return errors.New("event: missing id")
	}
	if strings.TrimSpace(ev.Type) == "" {
		return errors.New("event: missing type")
	}
	return nil
}

type JSONLEventLog struct {
	Path string
}

func (l JSONLEventLog) Append(_ context.Context, ev model.Event) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	return err
}

func (l JSONLEventLog) Tail(ctx context.Context, limit int) ([]model.Event, error) {
	return l.scan(limit, func(model.Event) bool { return true })
}

func (l JSONLEventLog) ForEntity(ctx context.Context, entityID string, limit int) ([]model.Event, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return []model.Event{}, nil
	}
	return l.scan(limit, func(ev model.Event) bool { return ev.EntityID == entityID })
}

// scan keeps the last limit matching events in a ring buffer.
func (l JSONLEventLog) scan(limit int, keep func(model.Event) bool) ([]model.Event, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Event{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var all []model.Event
	var ring []model.Event
	if limit > 0 {
		ring = make([]model.Event, limit)
	}
	start, size := 0, 0

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(strings.TrimSpace(sc.Text())) == 0 {
			continue
		}
		var ev model.Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return nil, err
		}
		if !keep(ev) {
			continue
		}
		if limit <= 0 {
			all = append(all, ev)
			continue
		}
		if size < limit {
			ring[size] = ev
			size++
		} else {
			ring[start] = ev
			start = (start + 1) % limit
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if limit <= 0 {
		if all == nil {
			all = []model.Event{}
		}
		return all, nil
	}
	if size < limit {
		return ring[:size], nil
	}
	out := make([]model.Event, 0, limit)
	out = append(out, ring[start:]...)
	out = append(out, ring[:start]...)
	return out, nil
}

type SQLiteEventLog struct {
	Store Store
}

func (l SQLiteEventLog) Append(ctx context.Context, ev model.Event) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	db, err := l.Store.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	payload := string(ev.Payload)
	if payload == "" {
		payload = "null"
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO events(event_id, ts, type, entity_id, payload) VALUES(?, ?, ?, ?, ?)`,
		ev.ID, ev.TS.UTC().Format(time.RFC3339Nano), ev.Type, ev.EntityID, payload)
	return err
}

func (l SQLiteEventLog) Tail(ctx context.Context, limit int) ([]model.Event, error) {
	return l.query(ctx, "", limit)
}

func (l SQLiteEventLog) ForEntity(ctx context.Context, entityID string, limit int) ([]model.Event, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return []model.Event{}, nil
	}
	return l.query(ctx, entityID, limit)
}

func (l SQLiteEventLog) query(ctx context.Context, entityID string, limit int) ([]model.Event, error) {
	db, err := l.Store.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT event_id, ts, type, entity_id, payload FROM events`
	var args []any
	if entityID != "" {
		q += ` WHERE entity_id = ?`
		args = append(args, entityID)
	}
	q += ` ORDER BY seq DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var (
			ev      model.Event
			ts      string
			payload string
		)
		if err := rows.Scan(&ev.ID, &ts, &ev.Type, &ev.EntityID, &payload); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			ev.TS = t
		}
		ev.Payload = json.RawMessage(payload)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Newest first from the query; callers get chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
