package tests

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/tenant"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

const tenantIDHeader = "X-Tenant-ID"

var (
	db         *dummydb.DB
	usrRepo    user.Repository
	tenantRepo tenant.Repository
	codec      *auth.Codec

	// failingTenants makes the pool opener fail for the listed tenant IDs.
	failingTenants map[string]struct{}
	openerMu       sync.Mutex
	openerCalls    int

	errTenantRequired   = httpErr{Message: "tenant identification required"}
	errUnknownTenant    = httpErr{Message: "unknown tenant"}
	errMissingToken     = httpErr{Message: "authorization credential not provided"}
	errInvalidToken     = httpErr{Message: "invalid token"}
	errExpiredToken     = httpErr{Message: "token has expired"}
	errPermissionDenied = httpErr{Message: "permission denied"}
)

func setup(t *testing.T) Server {
	t.Helper()

	core.Conf.TestMode = true
	core.Conf.Debug = false
	user.Setup(core.Conf)

	// set up DB & repos
	var err error
	db, err = dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	tenantRepo = dummydb.NewTenantRepository(db)
	courseRepo := dummydb.NewCourseRepository(db)

	// set up services
	logger := logsvc.NewZerologLogger(core.Conf, io.Discard)
	mailSvc := emailsvc.NewConsoleService(logger)
	usrSvc := user.NewService(usrRepo, mailSvc)
	courseSvc := course.NewService(courseRepo)
	codec = auth.NewCodec(core.Conf.SecretKey)
	tenantSvc := tenant.NewService(tenantRepo, codec)

	failingTenants = make(map[string]struct{})
	openerCalls = 0
	registry := database.NewPoolRegistry(core.Conf, tenantRepo, testOpener)

	// set up server
	return NewServer(&Options{
		DisableReqLogs: true,
		Logger:         logger,
		Codec:          codec,
		Registry:       registry,
		TenantSvc:      tenantSvc,
		UserSvc:        usrSvc,
		CourseSvc:      courseSvc,
	})
}

// testOpener hands out inert pools; the dummy repositories never touch them.
func testOpener(_ *core.Config, dbName string) (*sqlx.DB, error) {
	openerMu.Lock()
	defer openerMu.Unlock()
	openerCalls++
	for id := range failingTenants {
		if dbName == core.Conf.Database.TenantDBName(id) {
			return nil, sql.ErrConnDone
		}
	}
	return sqlx.NewDb(new(sql.DB), "postgres"), nil
}

func openerCallCount() int {
	openerMu.Lock()
	defer openerMu.Unlock()
	return openerCalls
}

func createTenant(t *testing.T, id, name string) tenant.Tenant {
	t.Helper()
	now := time.Now().UTC()
	tnt, err := tenantRepo.CreateTenant(context.Background(), tenant.Tenant{
		ID:        id,
		Name:      name,
		DBName:    core.Conf.Database.TenantDBName(id),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTenant() failed, %v", err)
	}
	return tnt
}

func createUser(t *testing.T, name, uname, email, pwd, tenantID string, role user.Role, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		ID:        uname, // deterministic IDs keep assertions readable
		TenantID:  tenantID,
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd == "" {
		pwd = "password123"
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}
	return usr
}

type httpErr struct {
	Message string `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	host     string // tenant subdomain host; "" defaults to the tenant-less api host
	tenantID string // X-Tenant-ID header
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newRequest(tt httpTest) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(tt.body) > 0 {
		body.Write(tt.body)
	}
	req := httptest.NewRequest(tt.method, tt.path, &body)
	req.Header.Set("Content-Type", "application/json")
	// httptest defaults Host to example.com whose first label would resolve
	// as a tenant; the reserved api subdomain keeps requests tenant-less
	req.Host = "api.darasa.cd"
	if tt.host != "" {
		req.Host = tt.host
	}
	if tt.tenantID != "" {
		req.Header.Set(tenantIDHeader, tt.tenantID)
	}
	if tt.token != "" {
		req.Header.Set("Authorization", "Bearer "+tt.token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := codec.Issue(GetPrincipalClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
