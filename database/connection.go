package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	DBName   string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", c.User, c.Password, c.Host, c.DBName)
}

type Connection struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewConnection(config DatabaseConfig, logger *zap.Logger) (*Connection, error) {
	db, err := sql.Open("mysql", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	conn := WrapDB(db, logger)

	if err := conn.ensureConnection(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return conn, nil
}

// WrapDB builds a Connection around an already opened pool.
func WrapDB(db *sql.DB, logger *zap.Logger) *Connection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connection{db: db, logger: logger}
}

func (c *Connection) ensureConnection(ctx context.Context) error {
	for retries := 0; retries < 3; retries++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := c.db.PingContext(pingCtx)
		cancel()

		if err == nil {
			return nil
		}

		c.logger.Warn("database ping failed", zap.Int("attempt", retries+1), zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second * time.Duration(retries+1)):
		}
	}
	return fmt.Errorf("failed to establish database connection after 3 attempts")
}

func (c *Connection) Close() error {
	return c.db.Close()
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.ensureConnection(ctx)
}

func (c *Connection) GetDB() *sql.DB {
	return c.db
}

func (c *Connection) BeginTransaction(ctx context.Context) (*Transaction, error) {
	if err := c.ensureConnection(ctx); err != nil {
		return nil, fmt.Errorf("database connection check failed: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Transaction{tx: tx, logger: c.logger}, nil
}
