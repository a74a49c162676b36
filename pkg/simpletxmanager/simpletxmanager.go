package simpletxmanager

import (
	"context"
	"database/sql"
	"time"

	"github.com/m04kA/SMC-ConsultationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ConsultationService/pkg/txmanager"
)

// sqlBeginner адаптирует *sql.DB к txmanager.Beginner
type sqlBeginner struct {
	db *sql.DB
}

func (b sqlBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx, err := b.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return dbmetrics.SqlTxWrapper{Tx: tx}, nil
}

// NewTransactionManager создает менеджер транзакций поверх *sql.DB без сбора метрик
func NewTransactionManager(db *sql.DB, timeout time.Duration) *txmanager.TransactionManager {
	return txmanager.NewTransactionManager(sqlBeginner{db: db}).WithTimeout(timeout)
}

// LocalManager менеджер для хранилищ в памяти: транзакций нет, только таймаут
type LocalManager struct {
	timeout time.Duration
}

// NewLocalManager создает менеджер для in-memory хранилища
func NewLocalManager(timeout time.Duration) *LocalManager {
	return &LocalManager{timeout: timeout}
}

func (m *LocalManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return fn(ctx)
}

func (m *LocalManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

func (m *LocalManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}
