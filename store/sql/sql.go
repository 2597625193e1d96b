package sql

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	"github.com/tursodatabase/go-libsql"
	_ "modernc.org/sqlite"
)

const ProviderKey = "sql"

// Driver selects how PrimaryDSN is opened. Everything except mysql
// speaks the sqlite dialect and is schema-managed by Initialize.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverLibSQL = "libsql"
	DriverTurso  = "turso"
)

type Provider struct {
	PrimaryDSN string `json:"primaryDsn"` // user:password@tcp(hostname:port), file: path or libsql:// url
	Database   string `json:"database"`
	Driver     string `json:"driver"`
	TursoToken string `json:"tursoToken"`

	primaryConnection *sql.DB
	tursoDir          string
	tursoConnector    *libsql.Connector
	afterUpdate       []func()
}

func FromJson(data []byte) (*Provider, error) {
	p := &Provider{}
	if err := json.Unmarshal(data, &p); err == nil {
		return p, nil
	} else {
		return nil, err
	}
}

func (p *Provider) driver() string {
	if p.Driver == "" {
		return DriverMySQL
	}
	return p.Driver
}

func (p *Provider) sqliteDialect() bool {
	return p.driver() != DriverMySQL
}

func (p *Provider) Close() error {
	var errs []error
	if p.primaryConnection != nil {
		errs = append(errs, p.primaryConnection.Close())
	}
	if p.tursoConnector != nil {
		errs = append(errs, p.tursoConnector.Close())
	}
	if p.tursoDir != "" {
		errs = append(errs, os.RemoveAll(p.tursoDir))
	}
	return errors.Join(errs...)
}

func (p *Provider) Sync() error {
	if p.tursoConnector != nil {
		return p.tursoConnector.Sync()
	}
	return nil
}

func (p *Provider) Connect() error {
	if p.primaryConnection == nil {
		var err error
		switch p.driver() {
		case DriverSQLite:
			p.primaryConnection, err = sql.Open("sqlite", p.PrimaryDSN)
		case DriverLibSQL:
			p.primaryConnection, err = sql.Open("libsql", p.PrimaryDSN)
		case DriverTurso:
			dbName := "dirsync.db"
			primaryUrl := "libsql://" + p.Database + ".turso.io"

			p.tursoDir, err = os.MkdirTemp("", "libsql-*")
			if err != nil {
				return fmt.Errorf("error creating temporary directory: %s", err)
			}

			dbPath := filepath.Join(p.tursoDir, dbName)
			p.tursoConnector, err = libsql.NewEmbeddedReplicaConnector(dbPath, primaryUrl, libsql.WithAuthToken(p.TursoToken))
			if err != nil {
				return err
			}
			_ = p.tursoConnector.Sync()

			p.primaryConnection = sql.OpenDB(p.tursoConnector)
		default:
			p.primaryConnection, err = sql.Open("mysql", p.PrimaryDSN+"/"+p.Database+"?parseTime=true")
		}

		if err != nil {
			return err
		}
	}

	// Ping the database to ensure a successful connection
	return p.primaryConnection.Ping()
}

// Initialize connects and, for sqlite dialects, applies any pending
// migrations. MySQL schemas are provisioned out of band.
func (p *Provider) Initialize() error {
	if err := p.Connect(); err != nil {
		return err
	}

	if err := p.Sync(); err != nil {
		return err
	}

	if p.sqliteDialect() {
		createMigrations := false
		row := p.primaryConnection.QueryRow("SELECT tbl_name FROM sqlite_master WHERE type='table' AND name = 'dirsync_migrations';")
		if row != nil {
			if row.Err() != nil {
				return row.Err()
			}
			tblName := ""
			_ = row.Scan(&tblName)
			createMigrations = tblName == ""
		}

		if createMigrations {
			_, err := p.primaryConnection.Exec("create table dirsync_migrations (migration varchar(255) not null primary key, applied int not null)")
			if err != nil {
				return err
			}
		}

		processed := make(map[string]bool)
		rows, err := p.primaryConnection.Query("SELECT migration, applied FROM dirsync_migrations;")
		if err != nil {
			return err
		}
		for rows.Next() {
			var migKey string
			var applied int
			if scanErr := rows.Scan(&migKey, &applied); scanErr != nil {
				return scanErr
			}
			processed[migKey] = applied == 1
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, query := range migrations() {
			if !processed[query.key] {
				if _, migErr := p.primaryConnection.Exec(query.query); migErr != nil {
					return migErr
				}
				if _, migErr := p.primaryConnection.Exec("INSERT INTO dirsync_migrations (migration, applied) VALUES (?, 1);", query.key); migErr != nil {
					return migErr
				}
			}
		}
	}

	return nil
}

func (p *Provider) AfterUpdate(exec func()) error {
	p.afterUpdate = append(p.afterUpdate, exec)
	return nil
}

func (p *Provider) update() {
	for _, exec := range p.afterUpdate {
		exec()
	}
}
