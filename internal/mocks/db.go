package mocks

import (
	"database/sql"
	"database/sql/driver"
	"errors"
)

// txDriver is a stub database/sql driver whose connections support only
// transactions. Services run their store calls through mock stores, so no
// statement ever reaches the driver; only Begin, Commit, and Rollback are
// exercised.
type txDriver struct{}

func (txDriver) Open(name string) (driver.Conn, error) { return txConn{}, nil }

type txConn struct{}

func (txConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("statements not supported by mock driver")
}
func (txConn) Close() error              { return nil }
func (txConn) Begin() (driver.Tx, error) { return txTx{}, nil }

type txTx struct{}

func (txTx) Commit() error   { return nil }
func (txTx) Rollback() error { return nil }

func init() {
	sql.Register("mocktx", txDriver{})
}

// NewTxDB returns a *sql.DB whose transactions always begin and commit
// successfully. Use it to satisfy services that wrap mock store calls in a
// transaction.
func NewTxDB() *sql.DB {
	db, err := sql.Open("mocktx", "")
	if err != nil {
		// ALLOW-PANIC: the stub driver is registered above and cannot fail
		panic("failed to open mock transaction db: " + err.Error())
	}
	return db
}
