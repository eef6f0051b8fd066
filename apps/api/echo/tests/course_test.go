package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

func Test_courseApi_create(t *testing.T) {
	app := setup(t)

	createTenant(t, "collegea", "College A")
	teacher := createUser(t, "Teacher", "teacher", "teacher@test.cd", "", "collegea", user.RoleTeacher, true)
	admin := createUser(t, "Admin", "admin", "admin@test.cd", "", "collegea", user.RoleAdmin, true)
	student := createUser(t, "Hero", "hero", "hero@test.cd", "", "collegea", user.RoleStudent, true)

	newCourse := marchallObj(t, map[string]string{"code": "MAT101", "title": "Algebra I"})

	tests := []httpTest{
		{
			name: "auth required", body: newCourse,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "students may not create", token: getToken(t, student), body: newCourse,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Message: "access restricted to roles: admin, teacher"}),
		},
		{
			name: "missing title", token: getToken(t, teacher), body: marchallObj(t, map[string]string{"code": "MAT101"}),
			wantCode: http.StatusBadRequest,
		},
		{name: "teacher creates", token: getToken(t, teacher), body: newCourse, wantCode: http.StatusCreated, extra: teacher},
		{
			name: "admin creates", token: getToken(t, admin), body: marchallObj(t, map[string]string{"code": "PHY201", "title": "Mechanics"}),
			wantCode: http.StatusCreated, extra: admin,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/courses"
		tt.host = "collegea.darasa.cd"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var created course.Course
				if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
					t.Fatalf("unmarshalling course failed: %v", err)
				}
				// the creator becomes the course's teacher
				if owner := tt.extra.(user.User); created.TeacherID != owner.ID {
					t.Errorf("teacher_id = %s; want %s", created.TeacherID, owner.ID)
				}
			}
		})
	}
}

func Test_courseApi_query(t *testing.T) {
	app := setup(t)

	createTenant(t, "collegea", "College A")
	teacher := createUser(t, "Teacher", "teacher", "teacher@test.cd", "", "collegea", user.RoleTeacher, true)
	student := createUser(t, "Hero", "hero", "hero@test.cd", "", "collegea", user.RoleStudent, true)

	mat := seedCourse(t, "c1", "mat101", "Algebra I", teacher.ID)
	phy := seedCourse(t, "c2", "phy201", "Mechanics", teacher.ID)

	tests := []httpTest{
		{
			name: "auth required", path: "/v1/courses",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "any role may list", path: "/v1/courses", token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, mat, phy),
		},
		{
			// SQL smuggled through the ordering param is dropped by the binder
			name: "hostile ordering ignored", path: "/v1/courses?ordering=code%3B%20DROP%20TABLE%20course--", token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallList(t, mat, phy),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.host = "collegea.darasa.cd"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_queryEnrollments(t *testing.T) {
	app := setup(t)

	createTenant(t, "collegea", "College A")
	teacher := createUser(t, "Teacher", "teacher", "teacher@test.cd", "", "collegea", user.RoleTeacher, true)
	admin := createUser(t, "Admin", "admin", "admin@test.cd", "", "collegea", user.RoleAdmin, true)
	hero := createUser(t, "Hero", "hero", "hero@test.cd", "", "collegea", user.RoleStudent, true)
	ndog := createUser(t, "N Dog", "ndog", "ndog@test.cd", "", "collegea", user.RoleStudent, true)

	mat := seedCourse(t, "c1", "mat101", "Algebra I", teacher.ID)
	heroEnr := seedEnrollment(t, "e1", mat.ID, hero.ID, time.Now().UTC())
	ndogEnr := seedEnrollment(t, "e2", mat.ID, ndog.ID, time.Now().UTC().Add(time.Second))

	tests := []httpTest{
		{
			name: "unknown course", path: "/v1/courses/lol/enrollments", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Message: "not found"}),
		},
		{
			name: "admin sees all", path: "/v1/courses/" + mat.ID + "/enrollments", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, heroEnr, ndogEnr),
		},
		{
			name: "admin filters by user", path: "/v1/courses/" + mat.ID + "/enrollments?user_id=" + ndog.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, ndogEnr),
		},
		{
			name: "teacher sees all", path: "/v1/courses/" + mat.ID + "/enrollments", token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallList(t, heroEnr, ndogEnr),
		},
		{
			name: "student defaults to own", path: "/v1/courses/" + mat.ID + "/enrollments", token: getToken(t, hero),
			wantCode: http.StatusOK, wantData: marchallList(t, heroEnr),
		},
		{
			name: "student queries own explicitly", path: "/v1/courses/" + mat.ID + "/enrollments?user_id=" + hero.ID, token: getToken(t, hero),
			wantCode: http.StatusOK, wantData: marchallList(t, heroEnr),
		},
		{
			name: "student may not query others", path: "/v1/courses/" + mat.ID + "/enrollments?user_id=" + ndog.ID, token: getToken(t, hero),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Message: "students may only access their own records"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.host = "collegea.darasa.cd"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func seedCourse(t *testing.T, id, code, title, teacherID string) course.Course {
	t.Helper()
	c := course.Course{ID: id, Code: code, Title: title, TeacherID: teacherID, CreatedAt: time.Now().UTC()}
	dummydb.AddCourse(db, c)
	return c
}

func seedEnrollment(t *testing.T, id, courseID, userID string, at time.Time) course.Enrollment {
	t.Helper()
	e := course.Enrollment{ID: id, CourseID: courseID, UserID: userID, EnrolledAt: at}
	dummydb.AddEnrollment(db, e)
	return e
}
