package httpserver_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gldesigns/leather-shop/internal/assets"
	"github.com/gldesigns/leather-shop/internal/hash"
	"github.com/gldesigns/leather-shop/internal/httpserver"
	"github.com/gldesigns/leather-shop/internal/logging"
	"github.com/gldesigns/leather-shop/internal/models"
	"github.com/gldesigns/leather-shop/internal/repo"
	"github.com/gldesigns/leather-shop/internal/service"
	"github.com/gldesigns/leather-shop/internal/tokens"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	t     *testing.T
	e     *echo.Echo
	db    *gorm.DB
	store *assets.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}))

	store, err := assets.NewStore(t.TempDir())
	require.NoError(t, err)

	gormRepo := &repo.GormRepo{DB: db}
	authSvc := &service.AuthService{Repo: gormRepo, JWTSecret: testSecret}
	catalogSvc := &service.CatalogService{Repo: gormRepo, Assets: store}

	e := echo.New()
	e.HTTPErrorHandler = httpserver.ErrorHandler(logging.New("error"))
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		JWTSecret:      testSecret,
		UploadDir:      store.Dir(),
		DB:             db,
	})

	return &testEnv{t: t, e: e, db: db, store: store}
}

func (env *testEnv) do(method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	env.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSON(method, path string, payload any, token string) *httptest.ResponseRecorder {
	env.t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(env.t, err)
		body = bytes.NewReader(data)
	}
	return env.do(method, path, body, echo.MIMEApplicationJSON, token)
}

// doRawJSON sends a pre-built JSON body, used when field presence matters.
func (env *testEnv) doRawJSON(method, path, payload, token string) *httptest.ResponseRecorder {
	env.t.Helper()
	return env.do(method, path, bytes.NewReader([]byte(payload)), echo.MIMEApplicationJSON, token)
}

type filePart struct {
	name        string
	contentType string
	content     []byte
}

func (env *testEnv) doMultipart(method, path string, fields map[string]string, file *filePart, token string) *httptest.ResponseRecorder {
	env.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(env.t, w.WriteField(k, v))
	}
	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="`+file.name+`"`)
		header.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(header)
		require.NoError(env.t, err)
		_, err = part.Write(file.content)
		require.NoError(env.t, err)
	}
	require.NoError(env.t, w.Close())

	return env.do(method, path, &buf, w.FormDataContentType(), token)
}

func (env *testEnv) createUser(email, password, role string) *models.User {
	env.t.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(env.t, err)
	user := &models.User{Email: email, PasswordHash: pwHash, Role: role}
	require.NoError(env.t, env.db.Create(user).Error)
	return user
}

func (env *testEnv) adminToken() string {
	env.t.Helper()
	user := env.createUser("admin@shop.com", "admin-pass", models.RoleAdmin)
	token, err := tokens.Issue(user.ID, user.Email, user.Role, testSecret)
	require.NoError(env.t, err)
	return token
}

func (env *testEnv) clientToken() string {
	env.t.Helper()
	user := env.createUser("client@shop.com", "client-pass", models.RoleClient)
	token, err := tokens.Issue(user.ID, user.Email, user.Role, testSecret)
	require.NoError(env.t, err)
	return token
}

func (env *testEnv) uploadCount() int {
	env.t.Helper()
	entries, err := os.ReadDir(env.store.Dir())
	require.NoError(env.t, err)
	return len(entries)
}

func (env *testEnv) productCount() int64 {
	env.t.Helper()
	var n int64
	require.NoError(env.t, env.db.Model(&models.Product{}).Count(&n).Error)
	return n
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func pngPart() *filePart {
	return &filePart{name: "photo.png", contentType: "image/png", content: []byte("fake-png-bytes")}
}
