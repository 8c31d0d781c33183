package store

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN  string
	Type DatabaseType
}

// Student list sort whitelist: query-param name -> column expression.
// "group" sorts by the joined group name, like the source API.
var sortColumns = map[string]string{
	"last_name": "s.last_name",
	"age":       "s.age",
	"group":     "g.group_name",
}

// IsSortable reports whether param is an allowed sort field.
func IsSortable(param string) bool {
	_, ok := sortColumns[param]
	return ok
}
