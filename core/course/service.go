package course

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

type (
	// Repository methods take the per-request tenant pool since courses live
	// in each tenant's own database.
	Repository interface {
		CreateCourse(ctx context.Context, db *sqlx.DB, c Course) (Course, error)
		QueryAllCourses(ctx context.Context, db *sqlx.DB, ord ...core.DBOrdering) ([]Course, error)
		GetCourseByID(ctx context.Context, db *sqlx.DB, id string) (Course, error)
		// QueryEnrollments filters by course and, when userID is set, by the
		// enrolled user.
		QueryEnrollments(ctx context.Context, db *sqlx.DB, courseID string, userID null.String) ([]Enrollment, error)
	}

	Service struct {
		repo Repository
	}

	NewCourse struct {
		Code  string `json:"code" validate:"required,alphanum_"`
		Title string `json:"title" validate:"required"`
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Code = core.CleanString(nc.Code, true /* lower */)
	nc.Title = core.CleanString(nc.Title)
	return validate.Struct(nc)
}

func (svc *Service) Create(ctx context.Context, db *sqlx.DB, nc NewCourse, teacherID string) (Course, error) {
	c := Course{
		ID:        uuid.NewString(),
		Code:      nc.Code,
		Title:     nc.Title,
		TeacherID: teacherID,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateCourse(ctx, db, c)
}

func (svc *Service) QueryAll(ctx context.Context, db *sqlx.DB, ord ...core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx, db, ord...)
}

func (svc *Service) GetByID(ctx context.Context, db *sqlx.DB, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, db, id)
}

func (svc *Service) QueryEnrollments(ctx context.Context, db *sqlx.DB, courseID string, userID null.String) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, db, courseID, userID)
}
