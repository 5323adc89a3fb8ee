package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/fitness-tracker/internal/docstore"
	"github.com/iliyamo/fitness-tracker/internal/utils"
)

func newTestServer(t *testing.T, publicBaseURL string) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	RegisterRoutes(e)
	RegisterAPI(e, NewHandlers(docstore.NewMemoryStore(), utils.NewPasswordHasher(bcrypt.MinCost), publicBaseURL))
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var l []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l), rec.Body.String())
	return l
}

func createUser(t *testing.T, e *echo.Echo, name, email string) string {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/api/users", `{"username":"`+name+`","email":"`+email+`","password":"pw-`+name+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decodeMap(t, rec)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t, "")
	rec := do(t, e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDiscoveryUsesConfiguredBase(t *testing.T) {
	e := newTestServer(t, "https://fit.example.com/")
	rec := do(t, e, http.MethodGet, "/api/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"users": "https://fit.example.com/api/users/",
		"teams": "https://fit.example.com/api/teams/",
		"activities": "https://fit.example.com/api/activities/",
		"leaderboard": "https://fit.example.com/api/leaderboard/",
		"workouts": "https://fit.example.com/api/workouts/"
	}`, rec.Body.String())
}

func TestDiscoveryDerivesBaseFromRequest(t *testing.T) {
	e := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Host = "localhost:8000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	m := decodeMap(t, rec)
	assert.Equal(t, "http://localhost:8000/api/users/", m["users"])
	assert.Equal(t, "http://localhost:8000/api/workouts/", m["workouts"])
}

func TestUserResponsesNeverCarryPassword(t *testing.T) {
	e := newTestServer(t, "")
	id := createUser(t, e, "alice", "Alice@Example.com")

	for _, rec := range []*httptest.ResponseRecorder{
		do(t, e, http.MethodGet, "/api/users/"+id, ""),
		do(t, e, http.MethodGet, "/api/users", ""),
		do(t, e, http.MethodPatch, "/api/users/"+id, `{"password":"new-secret"}`),
	} {
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "password")
		assert.NotContains(t, rec.Body.String(), "$2a$")
	}

	rec := do(t, e, http.MethodGet, "/api/users/"+id, "")
	assert.Equal(t, "alice@example.com", decodeMap(t, rec)["email"])
}

func TestUserErrorsMapToStatusCodes(t *testing.T) {
	e := newTestServer(t, "")
	createUser(t, e, "alice", "alice@example.com")

	rec := do(t, e, http.MethodPost, "/api/users", `{"username":"a2","email":"ALICE@example.com","password":"x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/users", `{"username":"bob","email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email", decodeMap(t, rec)["field"])

	rec = do(t, e, http.MethodPost, "/api/users", `{"username":"bob","email":"bob@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password", decodeMap(t, rec)["field"])

	rec = do(t, e, http.MethodPost, "/api/users", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/users/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodDelete, "/api/users/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyCredentials(t *testing.T) {
	e := newTestServer(t, "")
	id := createUser(t, e, "alice", "alice@example.com")

	rec := do(t, e, http.MethodPost, "/api/users/verify", `{"email":"ALICE@example.com","password":"pw-alice"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, id, decodeMap(t, rec)["id"])

	rec = do(t, e, http.MethodPost, "/api/users/verify", `{"email":"alice@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/users/verify", `{"email":"alice@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityRequiresExistingUser(t *testing.T) {
	e := newTestServer(t, "")

	rec := do(t, e, http.MethodPost, "/api/activities", `{"user_id":"ghost","activity_type":"run","duration":"00:30:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user not found", decodeMap(t, rec)["error"])

	rec = do(t, e, http.MethodPost, "/api/leaderboard", `{"user_id":"ghost","score":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityDurationRoundTrip(t *testing.T) {
	e := newTestServer(t, "")
	uid := createUser(t, e, "alice", "alice@example.com")

	rec := do(t, e, http.MethodPost, "/api/activities", `{"user_id":"`+uid+`","activity_type":"cycling","duration":"1h30m"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeMap(t, rec)
	assert.Equal(t, "01:30:00", created["duration"])

	id := created["id"].(string)
	rec = do(t, e, http.MethodPut, "/api/activities/"+id, `{"duration":90061}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1 01:01:01", decodeMap(t, rec)["duration"])

	rec = do(t, e, http.MethodPatch, "/api/activities/"+id, `{"duration":"-00:01:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, body := range []string{`{"duration":"213504 00:00:00"}`, `{"duration":1e300}`} {
		rec = do(t, e, http.MethodPatch, "/api/activities/"+id, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	rec = do(t, e, http.MethodPost, "/api/activities", `{"user_id":"`+uid+`","activity_type":"walk","duration":"213504 00:00:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/activities/"+id, "")
	assert.Equal(t, "1 01:01:01", decodeMap(t, rec)["duration"])
}

// TestUserDeleteCascadesOverHTTP walks the whole lifecycle: two users in a
// team with activities and scores, then one user is deleted.
func TestUserDeleteCascadesOverHTTP(t *testing.T) {
	e := newTestServer(t, "")
	alice := createUser(t, e, "alice", "alice@example.com")
	bob := createUser(t, e, "bob", "bob@example.com")

	rec := do(t, e, http.MethodPost, "/api/teams", `{"name":"Blue","member_ids":["`+alice+`","`+bob+`","ghost"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	team := decodeMap(t, rec)
	teamID := team["id"].(string)
	require.Len(t, team["members"], 2)

	for _, body := range []string{
		`{"user_id":"` + alice + `","activity_type":"run","duration":"00:30:00"}`,
		`{"user_id":"` + bob + `","activity_type":"swim","duration":"00:45:00"}`,
	} {
		rec = do(t, e, http.MethodPost, "/api/activities", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec = do(t, e, http.MethodPost, "/api/leaderboard", `{"user_id":"`+alice+`","score":100}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/api/activities?user_id="+alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = do(t, e, http.MethodDelete, "/api/users/"+alice, "")
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/api/teams/"+teamID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	members := decodeMap(t, rec)["members"].([]any)
	require.Len(t, members, 1)
	assert.Equal(t, bob, members[0].(map[string]any)["id"])

	rec = do(t, e, http.MethodGet, "/api/activities", "")
	activities := decodeList(t, rec)
	require.Len(t, activities, 1)
	assert.Equal(t, bob, activities[0]["user"].(map[string]any)["id"])

	rec = do(t, e, http.MethodGet, "/api/leaderboard", "")
	assert.Empty(t, decodeList(t, rec))

	rec = do(t, e, http.MethodGet, "/api/users/"+alice, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeamMembershipReplacedOnUpdate(t *testing.T) {
	e := newTestServer(t, "")
	alice := createUser(t, e, "alice", "alice@example.com")
	bob := createUser(t, e, "bob", "bob@example.com")

	rec := do(t, e, http.MethodPost, "/api/teams", `{"name":"Red","member_ids":["`+alice+`"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeMap(t, rec)["id"].(string)

	rec = do(t, e, http.MethodPatch, "/api/teams/"+id, `{"name":"Crimson"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeMap(t, rec)
	assert.Equal(t, "Crimson", got["name"])
	assert.Len(t, got["members"], 1)

	rec = do(t, e, http.MethodPut, "/api/teams/"+id, `{"member_ids":["`+bob+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	members := decodeMap(t, rec)["members"].([]any)
	require.Len(t, members, 1)
	assert.Equal(t, bob, members[0].(map[string]any)["id"])

	rec = do(t, e, http.MethodPatch, "/api/teams/"+id, `{"member_ids":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeMap(t, rec)["members"])
}

func TestWorkoutCRUD(t *testing.T) {
	e := newTestServer(t, "")

	rec := do(t, e, http.MethodPost, "/api/workouts", `{"name":"Intervals","description":"8x400m"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeMap(t, rec)["id"].(string)

	rec = do(t, e, http.MethodPatch, "/api/workouts/"+id, `{"description":"10x400m"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeMap(t, rec)
	assert.Equal(t, "Intervals", got["name"])
	assert.Equal(t, "10x400m", got["description"])

	rec = do(t, e, http.MethodDelete, "/api/workouts/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/workouts/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/workouts", `{"description":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
