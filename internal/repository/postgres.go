// Package repository provides PostgreSQL access to the raw process records
// and the product catalog.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/Hendyvelarius/lapidashboard-sub000/internal/stage"
)

type PostgresRecordRepository struct {
	db *sql.DB
}

func NewPostgresRecordRepository(connectionString string) (*PostgresRecordRepository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresRecordRepository{db: db}, nil
}

// GetProcessRecords returns every per-step record for batches that have not
// been archived. NULL timestamps come back as nil pointers; the engine
// treats them as "not yet reached".
func (r *PostgresRecordRepository) GetProcessRecords(ctx context.Context) ([]stage.Record, error) {
	query := `
		SELECT
			batch_no, product_id, COALESCE(product_name, ''),
			COALESCE(department, ''), stage_group, step_name,
			sequence_order, start_date, end_date, idle_start_date,
			COALESCE(display_flag, FALSE)
		FROM process_step_records
		WHERE archived_at IS NULL
		ORDER BY batch_no, sequence_order
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	var records []stage.Record
	for rows.Next() {
		var rec stage.Record
		var startDate, endDate, idleStartDate sql.NullTime

		if err := rows.Scan(
			&rec.BatchNo,
			&rec.ProductID,
			&rec.ProductName,
			&rec.Department,
			&rec.StageGroup,
			&rec.StepName,
			&rec.SequenceOrder,
			&startDate,
			&endDate,
			&idleStartDate,
			&rec.DisplayFlag,
		); err != nil {
			return nil, err
		}

		rec.StartDate = nullableTime(startDate)
		rec.EndDate = nullableTime(endDate)
		rec.IdleStartDate = nullableTime(idleStartDate)

		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetProductCatalog returns the product ID to name/category mapping.
// Products missing from the catalog fall back to the Other category at
// lookup time.
func (r *PostgresRecordRepository) GetProductCatalog(ctx context.Context) (stage.Catalog, error) {
	query := `
		SELECT product_id, COALESCE(product_name, ''), COALESCE(category, '')
		FROM products
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	catalog := make(stage.Catalog)
	for rows.Next() {
		var p stage.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category); err != nil {
			return nil, err
		}
		catalog[p.ID] = p
	}

	return catalog, rows.Err()
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (r *PostgresRecordRepository) Close() error {
	return r.db.Close()
}
