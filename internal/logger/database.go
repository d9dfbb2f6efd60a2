package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"Process_Insights/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConnection implements DatabaseConnection on a pgx connection pool
type PostgresConnection struct {
	pool *pgxpool.Pool
}

// NewPostgresConnection connects to the log database and ensures the log table exists
func NewPostgresConnection(connectionString string) (DatabaseConnection, error) {
	c, err := newPostgresConnection(connectionString)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// poolConfig parses the connection string and applies pool limits
func poolConfig(connectionString string) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log database connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	// Hosted Postgres drops idle connections silently; recycle them
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	// Poolers in transaction mode reject prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec
	config.ConnConfig.StatementCacheCapacity = 0

	config.ConnConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}
		return d.DialContext(ctx, "tcp", addr)
	}

	return config, nil
}

// newPostgresConnection creates the concrete implementation
func newPostgresConnection(connectionString string) (*PostgresConnection, error) {
	config, err := poolConfig(connectionString)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create log database pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("log database ping failed (host %s, port %d): %w", config.ConnConfig.Host, config.ConnConfig.Port, err)
	}

	conn := &PostgresConnection{pool: pool}
	if err := conn.createTableIfNotExists(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create logs table: %w", err)
	}

	return conn, nil
}

const createLogsTable = `
	CREATE TABLE IF NOT EXISTS dashboard_logs (
		id UUID PRIMARY KEY,
		timestamp TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		severity VARCHAR(10) CHECK (severity IN ('low', 'medium', 'high')),
		message TEXT NOT NULL,
		operation VARCHAR(100) NOT NULL,
		target_name VARCHAR(255),
		process_id UUID NOT NULL,
		process_type VARCHAR(20) NOT NULL CHECK (process_type IN ('request', 'internal')),
		client_ip INET,
		error_details TEXT,
		metadata JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_dashboard_logs_timestamp ON dashboard_logs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_dashboard_logs_severity ON dashboard_logs(severity) WHERE severity IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_dashboard_logs_operation ON dashboard_logs(operation);
	CREATE INDEX IF NOT EXISTS idx_dashboard_logs_process_id ON dashboard_logs(process_id);
`

func (p *PostgresConnection) createTableIfNotExists(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, createLogsTable)
	return err
}

const insertLog = `
	INSERT INTO dashboard_logs
	(id, timestamp, severity, message, operation, target_name, process_id, process_type, client_ip, error_details, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// logArgs converts an entry into insert arguments, mapping empty optional fields to NULL
func logArgs(entry *models.LogEntry) ([]interface{}, error) {
	nullable := func(s string) interface{} {
		if s == "" {
			return nil
		}
		return s
	}

	var metadata interface{}
	if len(entry.Metadata) > 0 {
		jsonBytes, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
		}
		metadata = string(jsonBytes)
	}

	return []interface{}{
		entry.ID,
		entry.Timestamp,
		nullable(string(entry.Severity)),
		entry.Message,
		entry.Operation,
		nullable(entry.TargetName),
		entry.ProcessID,
		string(entry.ProcessType),
		nullable(entry.ClientIP),
		nullable(entry.Error),
		metadata,
	}, nil
}

// InsertLog inserts a log entry into the log table
func (p *PostgresConnection) InsertLog(ctx context.Context, entry *models.LogEntry) error {
	args, err := logArgs(entry)
	if err != nil {
		return err
	}

	if _, err := p.pool.Exec(ctx, insertLog, args...); err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}
	return nil
}

// Ping checks if the database connection is alive
func (p *PostgresConnection) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the connection pool
func (p *PostgresConnection) Close() error {
	p.pool.Close()
	return nil
}
