package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/VladimirMonin/students-api-411/internal/models"
	"github.com/VladimirMonin/students-api-411/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
	}}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

func (s *PostgresStore) CreateStudent(student *models.Student) error {
	err := s.DB.QueryRow(`
		INSERT INTO students (first_name, middle_name, last_name, age, group_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		student.FirstName,
		student.MiddleName,
		student.LastName,
		student.Age,
		student.GroupID,
	).Scan(&student.ID)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateGroup(group *models.Group) error {
	err := s.DB.QueryRow(`
		INSERT INTO groups (group_name, start_date, end_date, profession)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`,
		group.GroupName,
		group.StartDate,
		group.EndDate,
		group.Profession,
	).Scan(&group.ID)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}
