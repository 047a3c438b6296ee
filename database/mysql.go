package database

import (
	"context"
	"crm/schemas"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const (
	MYSQL_CONN_MAX_LIFETIME = 5 * time.Minute
	MYSQL_MAX_OPEN_CONNS    = 10
	MYSQL_MAX_IDLE_CONNS    = 10

	LEGACY_LEADS_QUERY = "SELECT id, COALESCE(nome, ''), COALESCE(empresa, ''), COALESCE(email, ''), COALESCE(celular, ''), COALESCE(valor, 0) FROM leads_legado WHERE id > ? ORDER BY id LIMIT ?"
)

// ReadLegacyLeads pages through the legacy CRM table starting after afterID.
func ReadLegacyLeads(ctx context.Context, mysqlURI string, afterID int64, limit int) ([]schemas.LegacyLead, error) {
	if mysqlURI == "" {
		return nil, fmt.Errorf("MYSQL_URI is not configured")
	}

	mysqlDB, err := sql.Open("mysql", mysqlURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	defer mysqlDB.Close()

	mysqlDB.SetConnMaxLifetime(MYSQL_CONN_MAX_LIFETIME)
	mysqlDB.SetMaxOpenConns(MYSQL_MAX_OPEN_CONNS)
	mysqlDB.SetMaxIdleConns(MYSQL_MAX_IDLE_CONNS)

	rows, err := mysqlDB.QueryContext(ctx, LEGACY_LEADS_QUERY, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy leads from MySQL: %w", err)
	}
	defer rows.Close()

	leads := []schemas.LegacyLead{}
	for rows.Next() {
		lead := schemas.LegacyLead{}
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.Company, &lead.Email, &lead.Mobile, &lead.Value); err != nil {
			return nil, fmt.Errorf("failed to scan legacy lead row: %w", err)
		}
		leads = append(leads, lead)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legacy lead rows: %w", err)
	}

	return leads, nil
}
