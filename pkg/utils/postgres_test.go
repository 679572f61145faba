package utils

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
)

// txRecorder is a minimal sql driver that records transaction outcomes.
type txRecorder struct {
	begins    int
	commits   int
	rollbacks int
}

func (r *txRecorder) Open(string) (driver.Conn, error) { return &recorderConn{rec: r}, nil }

type recorderConn struct{ rec *txRecorder }

func (c *recorderConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("not implemented")
}
func (c *recorderConn) Close() error { return nil }
func (c *recorderConn) Begin() (driver.Tx, error) {
	c.rec.begins++
	return &recorderTx{rec: c.rec}, nil
}

type recorderTx struct{ rec *txRecorder }

func (t *recorderTx) Commit() error   { t.rec.commits++; return nil }
func (t *recorderTx) Rollback() error { t.rec.rollbacks++; return nil }

// name must be unique per test: database/sql driver registration is global.
func newRecorderDB(t *testing.T, name string) (*sql.DB, *txRecorder) {
	t.Helper()
	rec := &txRecorder{}
	sql.Register(name, rec)
	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, rec
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, rec := newRecorderDB(t, "txrec-commit")

	err := WithTx(context.Background(), db, &sql.TxOptions{}, func(context.Context, *sql.Tx) error {
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.begins != 1 || rec.commits != 1 || rec.rollbacks != 0 {
		t.Fatalf("begins=%d commits=%d rollbacks=%d", rec.begins, rec.commits, rec.rollbacks)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, rec := newRecorderDB(t, "txrec-error")
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, &sql.TxOptions{}, func(context.Context, *sql.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error back, got %v", err)
	}
	if rec.commits != 0 || rec.rollbacks != 1 {
		t.Fatalf("commits=%d rollbacks=%d", rec.commits, rec.rollbacks)
	}
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db, rec := newRecorderDB(t, "txrec-panic")

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic to be re-thrown")
		}
		if rec.commits != 0 || rec.rollbacks != 1 {
			t.Fatalf("commits=%d rollbacks=%d", rec.commits, rec.rollbacks)
		}
	}()
	_ = WithTx(context.Background(), db, &sql.TxOptions{}, func(context.Context, *sql.Tx) error {
		panic("boom")
	})
}
