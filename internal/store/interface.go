package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/VladimirMonin/students-api-411/internal/models"
)

type RecordStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateStudent(student *models.Student) error
	GetStudent(id int64) (*models.Student, error)
	UpdateStudent(student *models.Student) error
	DeleteStudent(id int64) error
	ListStudents(groupID *int64, sortField, order string) ([]models.StudentWithGroup, error)

	CreateGroup(group *models.Group) error
	GetGroupByName(name string) (*models.Group, error)
	GetGroupByID(id int64) (*models.Group, error)

	CreateAPIKey(key *models.APIKey) error
	GetAPIKey(key string) (*models.APIKey, error)
	DeactivateAPIKey(key string) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) GetStudent(id int64) (*models.Student, error) {
	var student models.Student
	query := s.Converter(`
		SELECT id, first_name, middle_name, last_name, age, group_id
		FROM students
		WHERE id = ?
	`)

	err := s.DB.Get(&student, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (s *BaseStore) UpdateStudent(student *models.Student) error {
	query := s.Converter(`
		UPDATE students
		SET first_name = ?, middle_name = ?, last_name = ?, age = ?, group_id = ?
		WHERE id = ?
	`)

	_, err := s.DB.Exec(query,
		student.FirstName,
		student.MiddleName,
		student.LastName,
		student.Age,
		student.GroupID,
		student.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

func (s *BaseStore) DeleteStudent(id int64) error {
	query := s.Converter(`DELETE FROM students WHERE id = ?`)
	if _, err := s.DB.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	return nil
}

// ListStudents fetches students with their group names, optionally filtered
// by group and ordered by a whitelisted sort field. An empty sortField keeps
// insertion order by id.
func (s *BaseStore) ListStudents(groupID *int64, sortField, order string) ([]models.StudentWithGroup, error) {
	query := `
		SELECT s.id, s.first_name, s.middle_name, s.last_name, s.age, g.group_name AS group_name
		FROM students s
		LEFT JOIN groups g ON g.id = s.group_id
	`

	var args []interface{}
	if groupID != nil {
		query += " WHERE s.group_id = ?"
		args = append(args, *groupID)
	}

	column, ok := sortColumns[sortField]
	if !ok {
		column = "s.id"
	}
	direction := "ASC"
	if strings.EqualFold(order, "desc") {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", column, direction)

	var students []models.StudentWithGroup
	err := s.DB.Select(&students, s.Converter(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	return students, nil
}

func (s *BaseStore) GetGroupByName(name string) (*models.Group, error) {
	var group models.Group
	query := s.Converter(`
		SELECT id, group_name, start_date, end_date, profession
		FROM groups
		WHERE group_name = ?
	`)

	err := s.DB.Get(&group, query, name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group by name: %w", err)
	}
	return &group, nil
}

func (s *BaseStore) GetGroupByID(id int64) (*models.Group, error) {
	var group models.Group
	query := s.Converter(`
		SELECT id, group_name, start_date, end_date, profession
		FROM groups
		WHERE id = ?
	`)

	err := s.DB.Get(&group, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group by id: %w", err)
	}
	return &group, nil
}

func (s *BaseStore) GetAPIKey(key string) (*models.APIKey, error) {
	var record models.APIKey
	query := s.Converter(`
		SELECT id, key, username, role, active
		FROM api_keys
		WHERE key = ?
	`)

	err := s.DB.Get(&record, query, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return &record, nil
}

func (s *BaseStore) CreateAPIKey(key *models.APIKey) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO api_keys (key, username, role, active)
		VALUES (:key, :username, :role, :active)
	`, key)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

func (s *BaseStore) DeactivateAPIKey(key string) error {
	query := s.Converter(`UPDATE api_keys SET active = FALSE WHERE key = ?`)
	if _, err := s.DB.Exec(query, key); err != nil {
		return fmt.Errorf("failed to deactivate api key: %w", err)
	}
	return nil
}
