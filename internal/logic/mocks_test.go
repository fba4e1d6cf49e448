package logic

import (
	"context"
	"reflect"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// MockPg implements PgPool for testing
type MockPg struct {
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	ExecCalls    int
}

func (m *MockPg) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (m *MockPg) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockPgRow{err: pgx.ErrNoRows}
}

func (m *MockPg) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.ExecCalls++
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

// MockPgRow implements pgx.Row for testing
type MockPgRow struct {
	data []any
	err  error
}

func (r *MockPgRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, val := range r.data {
		if i < len(dest) {
			assign(dest[i], val)
		}
	}
	return nil
}

// MockCHConn implements driver.Conn for testing
type MockCHConn struct {
	driver.Conn
	QueryRowFunc func(ctx context.Context, query string, args ...interface{}) driver.Row
}

func (m *MockCHConn) QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, query, args...)
	}
	return &MockCHRow{}
}

// MockCHRow implements driver.Row for testing
type MockCHRow struct {
	driver.Row
	data []any
	err  error
}

func (r *MockCHRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	for i, val := range r.data {
		if i < len(dest) {
			assign(dest[i], val)
		}
	}
	return nil
}

func (r *MockCHRow) Err() error { return r.err }

// MockRedis implements RedisClient for testing
type MockRedis struct {
	data map[string]map[string]string
	err  error
}

func (m *MockRedis) HGet(ctx context.Context, key string, field string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	if val, ok := m.data[key][field]; ok {
		cmd.SetVal(val)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func assign(dest interface{}, val interface{}) {
	v := reflect.ValueOf(dest).Elem()
	valV := reflect.ValueOf(val)
	if valV.Type().ConvertibleTo(v.Type()) {
		v.Set(valV.Convert(v.Type()))
		return
	}
	v.Set(valV)
}
