// internal/store/sqlite/store.go
package sqlite

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/VladimirMonin/students-api-411/internal/models"
	"github.com/VladimirMonin/students-api-411/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
	}}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, TranslateToSQLite)
}

// TranslateToSQLite converts Postgres DDL to SQLite dialect
func TranslateToSQLite(sql string) string {
	replacements := map[string]string{
		"BIGSERIAL PRIMARY KEY": "INTEGER PRIMARY KEY AUTOINCREMENT",
		"BIGINT":                "INTEGER",
		"BOOLEAN":               "INTEGER",
		"TRUE":                  "1",
		"FALSE":                 "0",
		"VARCHAR(50)":           "TEXT",
		"now()":                 "CURRENT_TIMESTAMP",
	}
	result := sql
	for from, to := range replacements {
		result = strings.ReplaceAll(result, from, to)
	}
	return result
}

func (s *SQLiteStore) CreateStudent(student *models.Student) error {
	res, err := s.DB.Exec(`
		INSERT INTO students (first_name, middle_name, last_name, age, group_id)
		VALUES (?, ?, ?, ?, ?)
	`,
		student.FirstName,
		student.MiddleName,
		student.LastName,
		student.Age,
		student.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new student id: %w", err)
	}
	student.ID = id
	return nil
}

func (s *SQLiteStore) CreateGroup(group *models.Group) error {
	res, err := s.DB.Exec(`
		INSERT INTO groups (group_name, start_date, end_date, profession)
		VALUES (?, ?, ?, ?)
	`,
		group.GroupName,
		group.StartDate,
		group.EndDate,
		group.Profession,
	)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new group id: %w", err)
	}
	group.ID = id
	return nil
}
