package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

// courseRepository runs against the per-request tenant pool, never the global
// database; the pool is passed in per call.
type courseRepository struct{}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository() course.Repository {
	return &courseRepository{}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, db *sqlx.DB, c course.Course) (course.Course, error) {
	_, err := db.NamedExecContext(ctx,
		`INSERT INTO course (id, code, title, teacher_id, created_at)
		 VALUES (:id, :code, :title, :teacher_id, :created_at)`, c)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return c, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context, db *sqlx.DB, ord ...core.DBOrdering) ([]course.Course, error) {
	query := `SELECT id, code, title, teacher_id, created_at FROM course`
	if len(ord) > 0 {
		orderings := make([]string, len(ord))
		for i, o := range ord {
			orderings[i] = o.String()
		}
		query += ` ORDER BY ` + strings.Join(orderings, ", ")
	} else {
		query += ` ORDER BY code`
	}

	courses := make([]course.Course, 0)
	if err := db.SelectContext(ctx, &courses, query); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, db *sqlx.DB, id string) (course.Course, error) {
	var c course.Course
	err := db.GetContext(ctx, &c, `SELECT id, code, title, teacher_id, created_at FROM course WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course by ID")
	}
	return c, nil
}

func (repo *courseRepository) QueryEnrollments(ctx context.Context, db *sqlx.DB, courseID string, userID null.String) ([]course.Enrollment, error) {
	query := `SELECT id, course_id, user_id, enrolled_at FROM enrollment WHERE course_id = $1`
	args := []interface{}{courseID}
	if userID.Valid {
		query += ` AND user_id = $2`
		args = append(args, userID.String)
	}
	query += ` ORDER BY enrolled_at`

	enrollments := make([]course.Enrollment, 0)
	if err := db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	return enrollments, nil
}
