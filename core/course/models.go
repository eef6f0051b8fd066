package course

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("course not found")

// SortableFields are the course columns listings may be ordered by.
var SortableFields = []string{"code", "title", "created_at"}

// Course lives in a tenant's isolated database. TeacherID references a user
// in the global directory store.
type Course struct {
	ID        string    `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Title     string    `json:"title" db:"title"`
	TeacherID string    `json:"teacher_id" db:"teacher_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

type Enrollment struct {
	ID         string    `json:"id" db:"id"`
	CourseID   string    `json:"course_id" db:"course_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"` // UTC
}
