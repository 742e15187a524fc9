// Package store provides the default PostgreSQL-backed broker.Store (spec
// §4.8/§6), and the golang-migrate wiring that runs the schema in §6's
// persistent-schema table when ENABLE_MIGRATIONS is set.
//
// Grounded on the teacher's modules/database DatabaseService (database/sql
// handle management, Connect/Close/Ping lifecycle) and on
// original_source/radishmq/src/db/pool.rs (one pool per worker, pool size
// from DB_POOL_MAX_CONNECTIONS_THREAD).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/f-str/radishmq/internal/broker"
)

// ErrNotConnected mirrors the teacher's ErrDatabaseNotConnected — returned
// by any operation attempted before Open succeeds.
var ErrNotConnected = errors.New("database not connected")

// PGStore is the default broker.Store implementation against PostgreSQL.
// cmd/radishd opens one *PGStore and shares it across every worker in the
// pool; database/sql's own pool then multiplexes all workers' queries over
// MaxOpenConns connections.
type PGStore struct {
	db *sql.DB
}

// Open establishes a connection pool against dsn using the pgx stdlib
// driver, sized to maxConns (cmd/radishd passes spec §6's
// DB_POOL_MAX_CONNECTIONS_THREAD multiplied by the worker count).
func Open(dsn string, maxConns int) (*PGStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PGStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *PGStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle for migration wiring (store.RunMigrations
// needs a *sql.DB, not a broker.Store).
func (s *PGStore) DB() *sql.DB { return s.db }

var _ broker.Store = (*PGStore)(nil)

func (s *PGStore) CreateMessageTopic(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO message_topic (topic_name, data_index) VALUES ($1, 0)
		 ON CONFLICT (topic_name) DO NOTHING`, name)
	return wrap("create message topic", err)
}

func (s *PGStore) DeleteMessageTopic(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM message_topic WHERE topic_name = $1`, name)
	return wrap("delete message topic", err)
}

func (s *PGStore) PublishMessageTopic(ctx context.Context, name string, count uint64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE message_topic SET data_index = data_index + $2 WHERE topic_name = $1`, name, count)
	return wrap("publish message topic", err)
}

func (s *PGStore) ResetMessageTopicIndex(ctx context.Context, name string, subtrahend uint64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE message_topic SET data_index = data_index - $2 WHERE topic_name = $1`, name, subtrahend)
	return wrap("reset message topic index", err)
}

func (s *PGStore) AddMessageTopicPublisher(ctx context.Context, topic, publisher string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO message_topic_publisher (message_topic_id, publisher_name)
		SELECT id, $2 FROM message_topic WHERE topic_name = $1
		ON CONFLICT DO NOTHING`, topic, publisher)
	return wrap("add message topic publisher", err)
}

func (s *PGStore) RemoveMessageTopicPublisher(ctx context.Context, topic, publisher string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM message_topic_publisher
		WHERE publisher_name = $2
		  AND message_topic_id = (SELECT id FROM message_topic WHERE topic_name = $1)`, topic, publisher)
	return wrap("remove message topic publisher", err)
}

func (s *PGStore) AddMessageTopicSubscriber(ctx context.Context, topic, subscriber string, cursor uint64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO message_topic_subscriber (message_topic_id, subscriber_name, subscriber_index)
		SELECT id, $2, $3 FROM message_topic WHERE topic_name = $1
		ON CONFLICT DO NOTHING`, topic, subscriber, cursor)
	return wrap("add message topic subscriber", err)
}

func (s *PGStore) RemoveMessageTopicSubscriber(ctx context.Context, topic, subscriber string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM message_topic_subscriber
		WHERE subscriber_name = $2
		  AND message_topic_id = (SELECT id FROM message_topic WHERE topic_name = $1)`, topic, subscriber)
	return wrap("remove message topic subscriber", err)
}

func (s *PGStore) UpdateMessageTopicSubscriberCursor(ctx context.Context, topic, subscriber string, cursor uint64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE message_topic_subscriber SET subscriber_index = $3
		WHERE subscriber_name = $2
		  AND message_topic_id = (SELECT id FROM message_topic WHERE topic_name = $1)`, topic, subscriber, cursor)
	return wrap("update message topic subscriber cursor", err)
}

func (s *PGStore) CreateTaskTopic(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task_topic (topic_name) VALUES ($1) ON CONFLICT (topic_name) DO NOTHING`, name)
	return wrap("create task topic", err)
}

func (s *PGStore) DeleteTaskTopic(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM task_topic WHERE topic_name = $1`, name)
	return wrap("delete task topic", err)
}

// PublishTaskTopic is a deliberate no-op beyond confirming the call reached
// the store: task payloads are not durable (spec Non-goals, §4.8, §9). The
// count argument exists only so the event carries the same shape as
// PublishMessageTopic; it is not written anywhere.
func (s *PGStore) PublishTaskTopic(ctx context.Context, name string, count int) error {
	return nil
}

func (s *PGStore) AddTaskTopicPublisher(ctx context.Context, topic, publisher string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_topic_publisher (task_topic_id, publisher_name)
		SELECT id, $2 FROM task_topic WHERE topic_name = $1
		ON CONFLICT DO NOTHING`, topic, publisher)
	return wrap("add task topic publisher", err)
}

func (s *PGStore) RemoveTaskTopicPublisher(ctx context.Context, topic, publisher string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM task_topic_publisher
		WHERE publisher_name = $2
		  AND task_topic_id = (SELECT id FROM task_topic WHERE topic_name = $1)`, topic, publisher)
	return wrap("remove task topic publisher", err)
}

func (s *PGStore) AddTaskTopicSubscriber(ctx context.Context, topic, subscriber string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_topic_subscriber (task_topic_id, subscriber_name)
		SELECT id, $2 FROM task_topic WHERE topic_name = $1
		ON CONFLICT DO NOTHING`, topic, subscriber)
	return wrap("add task topic subscriber", err)
}

func (s *PGStore) RemoveTaskTopicSubscriber(ctx context.Context, topic, subscriber string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM task_topic_subscriber
		WHERE subscriber_name = $2
		  AND task_topic_id = (SELECT id FROM task_topic WHERE topic_name = $1)`, topic, subscriber)
	return wrap("remove task topic subscriber", err)
}

// wrap applies the uniform "log and swallow" policy's first half (the
// error gets a stable prefix); the actual logging happens in the worker
// that calls Event.Apply (spec §4.8: "all adapter errors are logged and
// swallowed").
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
