package models

// Group is a cohort. GroupName is unique, enforced by the schema.
// Students reference groups by id and surface only the group name.
type Group struct {
	ID         int64   `db:"id" json:"id"`
	GroupName  string  `db:"group_name" json:"group_name" validate:"required,min=2,max=50"`
	StartDate  int64   `db:"start_date" json:"start_date"`
	EndDate    *int64  `db:"end_date" json:"end_date"`
	Profession *string `db:"profession" json:"profession"`
}

func (g *Group) Validate() error {
	return validate.Struct(g)
}
