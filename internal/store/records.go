package store

import (
	"context"
	"fmt"
)

// Record is one persisted extraction result.
type Record struct {
	ID    int64
	Value string
}

var validTables = map[string]bool{
	EmailTable: true,
	PhoneTable: true,
}

// AddRecords appends values to the named table inside one transaction.
func (s *Store) AddRecords(ctx context.Context, table string, values []string) error {
	if !validTables[table] {
		return fmt.Errorf("unknown record table %q", table)
	}
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (record) VALUES (?)`, table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, value := range values {
		if _, err := stmt.ExecContext(ctx, value); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}
	return tx.Commit()
}

// ListRecords returns every row of the named table in insertion order.
func (s *Store) ListRecords(ctx context.Context, table string) ([]Record, error) {
	if !validTables[table] {
		return nil, fmt.Errorf("unknown record table %q", table)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, record FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.ID, &record.Value); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) AddEmails(ctx context.Context, values []string) error {
	return s.AddRecords(ctx, EmailTable, values)
}

func (s *Store) AddPhones(ctx context.Context, values []string) error {
	return s.AddRecords(ctx, PhoneTable, values)
}

func (s *Store) ListEmails(ctx context.Context) ([]Record, error) {
	return s.ListRecords(ctx, EmailTable)
}

func (s *Store) ListPhones(ctx context.Context) ([]Record, error) {
	return s.ListRecords(ctx, PhoneTable)
}
