package docstore

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"os"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SQL stores documents as rows of a single `documents` table.
type SQL struct {
	db *sql.DB
}

// NewSQL wraps an open database handle.
func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

// OpenMySQL opens and pings a MySQL (or TiDB) database. When the DSN asks
// for tls=tidb a TLS config with that name is registered from caPath.
func OpenMySQL(ctx context.Context, dsn, caPath string, logger *zap.Logger) (*sql.DB, error) {
	if strings.Contains(dsn, "tls=tidb") {
		registerTiDBTLS(caPath, logger)
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping db")
	}
	return db, nil
}

func registerTiDBTLS(caPath string, logger *zap.Logger) {
	pool := x509.NewCertPool()
	b, err := os.ReadFile(caPath)
	if err != nil {
		logger.Warn("could not read CA file, falling back to InsecureSkipVerify", zap.String("path", caPath), zap.Error(err))
		_ = mysql.RegisterTLSConfig("tidb", &tls.Config{InsecureSkipVerify: true})
		return
	}
	if !pool.AppendCertsFromPEM(b) {
		logger.Warn("could not parse CA file, falling back to InsecureSkipVerify", zap.String("path", caPath))
		_ = mysql.RegisterTLSConfig("tidb", &tls.Config{InsecureSkipVerify: true})
		return
	}
	_ = mysql.RegisterTLSConfig("tidb", &tls.Config{RootCAs: pool})
}

// EnsureTable creates the documents table if it doesn't exist.
func (s *SQL) EnsureTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS documents (
        name VARCHAR(191) PRIMARY KEY,
        body LONGTEXT NOT NULL,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
    )`)
	if err != nil {
		return errors.Wrap(err, "create documents table")
	}
	return nil
}

func (s *SQL) Read(ctx context.Context, name string) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE name = ?", name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "select %s", name)
	}
	return []byte(body), nil
}

func (s *SQL) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO documents (name, body) VALUES (?, ?)
        ON DUPLICATE KEY UPDATE body = VALUES(body)`, name, string(data))
	if err != nil {
		return errors.Wrapf(err, "upsert %s", name)
	}
	return nil
}
