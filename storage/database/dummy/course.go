package dummydb

import (
	"context"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

// courseRepository ignores the pool argument; tests exercise the pipeline,
// not SQL.
type courseRepository struct {
	db         *courseTable
	enrollment *enrollmentTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course, enrollment: db.enrollment}
}

func (repo *courseRepository) CreateCourse(_ context.Context, _ *sqlx.DB, c course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) QueryAllCourses(_ context.Context, _ *sqlx.DB, _ ...core.DBOrdering) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, _ *sqlx.DB, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryEnrollments(_ context.Context, _ *sqlx.DB, courseID string, userID null.String) ([]course.Enrollment, error) {
	repo.enrollment.RLock()
	defer repo.enrollment.RUnlock()

	enrollments := make([]course.Enrollment, 0)
	for _, e := range repo.enrollment.table {
		if e.CourseID != courseID {
			continue
		}
		if userID.Valid && e.UserID != userID.String {
			continue
		}
		enrollments = append(enrollments, *e)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].EnrolledAt.Before(enrollments[j].EnrolledAt) })
	return enrollments, nil
}

// AddCourse seeds a course row for tests.
func AddCourse(db *DB, c course.Course) {
	db.course.Lock()
	defer db.course.Unlock()
	db.course.table[c.ID] = &c
}

// AddEnrollment seeds an enrollment row for tests.
func AddEnrollment(db *DB, e course.Enrollment) {
	db.enrollment.Lock()
	defer db.enrollment.Unlock()
	db.enrollment.table[e.ID] = &e
}
