package models

// Student is a persisted record. GroupID points at groups.id and may be
// absent; a set GroupID always references an existing group.
type Student struct {
	ID         int64   `db:"id" json:"id"`
	FirstName  string  `db:"first_name" json:"first_name"`
	MiddleName *string `db:"middle_name" json:"middle_name"`
	LastName   string  `db:"last_name" json:"last_name"`
	Age        *int    `db:"age" json:"age"`
	GroupID    *int64  `db:"group_id" json:"-"`
}

// StudentWithGroup is the list-query row: student columns plus the joined
// group name.
type StudentWithGroup struct {
	Student
	GroupName *string `db:"group_name"`
}

// StudentResponse is the wire shape all student endpoints return.
type StudentResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Group      *string `json:"group"`
	Age        *int    `json:"age"`
	MiddleName *string `json:"middle_name"`
}

func (s *Student) Response(groupName *string) StudentResponse {
	return StudentResponse{
		ID:         s.ID,
		Name:       s.FirstName + " " + s.LastName,
		Group:      groupName,
		Age:        s.Age,
		MiddleName: s.MiddleName,
	}
}

func (s *StudentWithGroup) Response() StudentResponse {
	return s.Student.Response(s.GroupName)
}

// StudentCreate is the validated creation intent. Group is a group name,
// resolved to an id by the handler after validation passes.
type StudentCreate struct {
	FirstName  string  `json:"first_name" validate:"required,min=2,max=50"`
	MiddleName *string `json:"middle_name" validate:"omitempty,max=50"`
	LastName   string  `json:"last_name" validate:"required,min=2,max=50"`
	Age        *int    `json:"age" validate:"required,gte=16,lte=100"`
	Group      string  `json:"group" validate:"required,min=2,max=50"`
}

func (c *StudentCreate) Validate() error {
	return validate.Struct(c)
}

func (c *StudentCreate) Student(groupID int64) *Student {
	return &Student{
		FirstName:  c.FirstName,
		MiddleName: c.MiddleName,
		LastName:   c.LastName,
		Age:        c.Age,
		GroupID:    &groupID,
	}
}

// StudentUpdate is the partial-update intent: nil means leave unchanged,
// a present value must still satisfy the field constraints.
type StudentUpdate struct {
	FirstName  *string `json:"first_name" validate:"omitempty,min=2,max=50"`
	MiddleName *string `json:"middle_name" validate:"omitempty,max=50"`
	LastName   *string `json:"last_name" validate:"omitempty,min=2,max=50"`
	Age        *int    `json:"age" validate:"omitempty,gte=16,lte=100"`
	Group      *string `json:"group" validate:"omitempty,min=2,max=50"`
}

func (u *StudentUpdate) Validate() error {
	return validate.Struct(u)
}

// Apply copies the supplied fields onto the record. The group reference is
// resolved by the caller, not here.
func (u *StudentUpdate) Apply(s *Student) {
	if u.FirstName != nil {
		s.FirstName = *u.FirstName
	}
	if u.MiddleName != nil {
		s.MiddleName = u.MiddleName
	}
	if u.LastName != nil {
		s.LastName = *u.LastName
	}
	if u.Age != nil {
		s.Age = u.Age
	}
}
