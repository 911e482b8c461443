package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/studywith/internal/config"
	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/keyring"
	"github.com/julianstephens/studywith/internal/storage"
	"github.com/julianstephens/studywith/internal/storage/postgres"
	"github.com/julianstephens/studywith/internal/storage/sqlite"
)

// NewStore picks the storage provider for the configured backend.
func NewStore(cfg config.Config) (storage.Provider, error) {
	switch cfg.Backend {
	case constants.BackendJSON:
		return storage.NewJSONStore(cfg.DataDir), nil
	case constants.BackendSQLite:
		return sqlite.NewStore(filepath.Join(cfg.DataDir, constants.SQLiteFileName)), nil
	case constants.BackendPostgres:
		connStr, err := postgresConnString(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// postgresConnString prefers the config file and falls back to the keyring.
// Only the keyring may hold a password.
func postgresConnString(cfg config.Config) (string, error) {
	if cfg.PostgresURL != "" {
		if valid, err := postgres.ValidateConnString(cfg.PostgresURL); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return "", fmt.Errorf("postgres_url in the config file must not contain a password; store it with the OS keyring or use .pgpass")
			}
			return "", err
		}
		return cfg.PostgresURL, nil
	}

	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no PostgreSQL connection configured: set postgres_url in %s or store one in the OS keyring", config.DefaultPath())
		}
		return "", err
	}
	return connStr, nil
}

// OpenSource resolves a --source argument: a PostgreSQL connection string,
// a .db file, or a JSON data directory.
func OpenSource(source string) (storage.Provider, error) {
	switch {
	case strings.HasPrefix(source, "postgres://") || strings.HasPrefix(source, "postgresql://") || strings.Contains(source, "host="):
		if valid, err := postgres.ValidateConnString(source); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(source), nil
	case filepath.Ext(source) == ".db":
		return sqlite.NewStore(source), nil
	default:
		info, err := os.Stat(source)
		if err != nil {
			return nil, fmt.Errorf("source not found: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("source %s is neither a .db file nor a data directory", source)
		}
		return storage.NewJSONStore(source), nil
	}
}
