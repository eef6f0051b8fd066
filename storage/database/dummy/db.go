// Package dummydb provides in-memory repositories for tests.
package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/tenant"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		tenant     *tenantTable
		user       *userTable
		course     *courseTable
		enrollment *enrollmentTable
	}

	tenantTable struct {
		sync.RWMutex
		table map[string]*tenant.Tenant
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string]*course.Enrollment
	}
)

func Open() (*DB, error) {
	db := &DB{
		tenant:     &tenantTable{table: make(map[string]*tenant.Tenant)},
		user:       &userTable{table: make(map[string]*user.User)},
		course:     &courseTable{table: make(map[string]*course.Course)},
		enrollment: &enrollmentTable{table: make(map[string]*course.Enrollment)},
	}
	return db, nil
}
