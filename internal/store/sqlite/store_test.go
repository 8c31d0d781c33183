// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VladimirMonin/students-api-411/internal/models"
)

// setupTestDB creates an in-memory SQLite database and initializes schema
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	// Create tables directly instead of using migrations for tests
	schema := `
	CREATE TABLE IF NOT EXISTS groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		group_name TEXT NOT NULL UNIQUE,
		start_date INTEGER NOT NULL,
		end_date INTEGER,
		profession TEXT
	);

	CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		middle_name TEXT,
		last_name TEXT NOT NULL,
		age INTEGER,
		group_id INTEGER REFERENCES groups(id)
	);

	CREATE TABLE IF NOT EXISTS api_keys (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		active INTEGER NOT NULL DEFAULT 1
	);`

	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err, "Failed to create store")

	_, err = s.DB.Exec(schema)
	require.NoError(t, err, "Failed to create schema")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

type testData struct {
	store  *SQLiteStore
	python *models.Group
	java   *models.Group
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)

	python := &models.Group{GroupName: "python411", StartDate: 1700000000}
	java := &models.Group{GroupName: "java412", StartDate: 1700000000}
	require.NoError(t, s.CreateGroup(python), "Failed to create group")
	require.NoError(t, s.CreateGroup(java), "Failed to create group")

	return &testData{
		store:  s,
		python: python,
		java:   java,
	}, cleanup
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestCreateAndGetStudent(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	student := &models.Student{
		FirstName:  "Иван",
		MiddleName: strPtr("Иванович"),
		LastName:   "Петров",
		Age:        intPtr(20),
		GroupID:    &td.python.ID,
	}

	t.Run("create assigns fresh id", func(t *testing.T) {
		err := td.store.CreateStudent(student)
		require.NoError(t, err, "Failed to create student")
		assert.Greater(t, student.ID, int64(0))
	})

	t.Run("get returns the same record", func(t *testing.T) {
		got, err := td.store.GetStudent(student.ID)
		require.NoError(t, err, "Failed to get student")
		require.NotNil(t, got)
		assert.Equal(t, student.FirstName, got.FirstName)
		assert.Equal(t, student.MiddleName, got.MiddleName)
		assert.Equal(t, student.LastName, got.LastName)
		assert.Equal(t, student.Age, got.Age)
		require.NotNil(t, got.GroupID)
		assert.Equal(t, td.python.ID, *got.GroupID)
	})

	t.Run("ids are never reused", func(t *testing.T) {
		second := &models.Student{FirstName: "Анна", LastName: "Сидорова", GroupID: &td.python.ID}
		require.NoError(t, td.store.CreateStudent(second))
		assert.Greater(t, second.ID, student.ID)
	})

	t.Run("get missing student returns nil", func(t *testing.T) {
		got, err := td.store.GetStudent(99999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUpdateStudent(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	student := &models.Student{
		FirstName: "Пётр",
		LastName:  "Смирнов",
		Age:       intPtr(19),
		GroupID:   &td.python.ID,
	}
	require.NoError(t, td.store.CreateStudent(student))

	student.Age = intPtr(20)
	student.GroupID = &td.java.ID
	require.NoError(t, td.store.UpdateStudent(student))

	got, err := td.store.GetStudent(student.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Пётр", got.FirstName)
	assert.Equal(t, "Смирнов", got.LastName)
	assert.Equal(t, intPtr(20), got.Age)
	assert.Equal(t, td.java.ID, *got.GroupID)
}

func TestDeleteStudent(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	student := &models.Student{FirstName: "Ольга", LastName: "Кузнецова", GroupID: &td.python.ID}
	require.NoError(t, td.store.CreateStudent(student))

	require.NoError(t, td.store.DeleteStudent(student.ID))

	got, err := td.store.GetStudent(student.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "Student should be gone after delete")
}

func TestListStudents(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	students := []*models.Student{
		{FirstName: "Иван", LastName: "Петров", Age: intPtr(22), GroupID: &td.python.ID},
		{FirstName: "Анна", LastName: "Сидорова", Age: intPtr(18), GroupID: &td.python.ID},
		{FirstName: "Олег", LastName: "Афанасьев", Age: intPtr(25), GroupID: &td.java.ID},
	}
	for _, s := range students {
		require.NoError(t, td.store.CreateStudent(s))
	}

	t.Run("no filter returns everyone", func(t *testing.T) {
		rows, err := td.store.ListStudents(nil, "", "asc")
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("filter restricts to one group", func(t *testing.T) {
		rows, err := td.store.ListStudents(&td.python.ID, "", "asc")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, row := range rows {
			require.NotNil(t, row.GroupName)
			assert.Equal(t, "python411", *row.GroupName)
		}
	})

	t.Run("sort by age desc", func(t *testing.T) {
		rows, err := td.store.ListStudents(nil, "age", "desc")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Афанасьев", rows[0].LastName)
		assert.Equal(t, "Сидорова", rows[2].LastName)
	})

	t.Run("sort by last_name asc", func(t *testing.T) {
		rows, err := td.store.ListStudents(nil, "last_name", "asc")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Афанасьев", rows[0].LastName)
		assert.Equal(t, "Сидорова", rows[2].LastName)
	})

	t.Run("empty group is an empty list, not an error", func(t *testing.T) {
		empty := &models.Group{GroupName: "go413", StartDate: 1700000000}
		require.NoError(t, td.store.CreateGroup(empty))

		rows, err := td.store.ListStudents(&empty.ID, "", "asc")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestGroupLookups(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("by name", func(t *testing.T) {
		got, err := td.store.GetGroupByName("python411")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, td.python.ID, got.ID)
	})

	t.Run("by id", func(t *testing.T) {
		got, err := td.store.GetGroupByID(td.java.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "java412", got.GroupName)
	})

	t.Run("unknown name returns nil", func(t *testing.T) {
		got, err := td.store.GetGroupByName("NoSuchGroup")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestAPIKeys(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	key := &models.APIKey{
		Key:      "sk-st411-deadbeefcafe",
		Username: "admin",
		Role:     models.RoleAdmin,
		Active:   true,
	}
	require.NoError(t, td.store.CreateAPIKey(key))

	t.Run("lookup", func(t *testing.T) {
		got, err := td.store.GetAPIKey(key.Key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "admin", got.Username)
		assert.True(t, got.IsAdmin())
		assert.True(t, got.Active)
	})

	t.Run("unknown key returns nil", func(t *testing.T) {
		got, err := td.store.GetAPIKey("sk-st411-nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("deactivate flips the flag, keeps the row", func(t *testing.T) {
		require.NoError(t, td.store.DeactivateAPIKey(key.Key))

		got, err := td.store.GetAPIKey(key.Key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.False(t, got.Active)
	})
}
