package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	gws "github.com/gorilla/websocket"
	"github.com/isdelr/ewaste-ai-be/internal/auth"
	"github.com/isdelr/ewaste-ai-be/internal/classifier"
	"github.com/isdelr/ewaste-ai-be/internal/database"
	"github.com/isdelr/ewaste-ai-be/internal/metrics"
	"github.com/isdelr/ewaste-ai-be/internal/models"
	"github.com/isdelr/ewaste-ai-be/internal/services"
	"github.com/isdelr/ewaste-ai-be/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixedSource int

func (f fixedSource) IntN(int) int { return int(f) }

type testEnv struct {
	router *chi.Mux
	store  *database.Store
	hub    *websocket.Hub
	tokens *auth.TokenManager
}

func userWithID(id int64) models.User {
	return models.User{ID: id, Email: "ghost@x.com", Type: models.AccountIndividual}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := database.New()
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheus(reg)
	tokens := auth.NewTokenManager("test-secret", 7*24*time.Hour)
	users := services.NewUserService(store, bcrypt.MinCost, rec)
	_, err := users.EnsureAdmin("Admin User", "admin@ewaste.com", "admin123")
	require.NoError(t, err)

	router := NewRouter(Dependencies{
		Tokens:         tokens,
		Users:          users,
		Analyses:       services.NewAnalysisService(store, classifier.New(fixedSource(7)), hub, rec),
		Stats:          services.NewStatsService(store),
		Centers:        services.NewCenterService(),
		Totals:         store,
		Hub:            hub,
		Gatherer:       reg,
		Port:           5000,
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxUploadBytes: 10 << 20,
	})
	return &testEnv{router: router, store: store, hub: hub, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.serve(t, req)
}

func (e *testEnv) serve(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	var out map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (e *testEnv) upload(t *testing.T, token, field, fileName string, size int) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte{0xff}, size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/predict", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.serve(t, req)
}

func (e *testEnv) register(t *testing.T, name, email, password string) string {
	t.Helper()
	code, body := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, code, body)
	return body["token"].(string)
}

func TestJaneDoeScenario(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Jane Doe", "email": "jane@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, body["success"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "individual", user["type"])

	code, body = env.upload(t, token, "image", "old_battery.jpg", 2048)
	require.Equal(t, http.StatusOK, code, body)
	analysis := body["analysis"].(map[string]interface{})
	assert.Equal(t, "Lithium Battery", analysis["wasteType"])
	confidence := analysis["confidence"].(float64)
	assert.GreaterOrEqual(t, confidence, 80.0)
	assert.LessOrEqual(t, confidence, 100.0)
	assert.Equal(t, float64(1), body["analysisId"])
	fileInfo := body["fileInfo"].(map[string]interface{})
	assert.Equal(t, "old_battery.jpg", fileInfo["originalName"])
	assert.Equal(t, "2.00 KB", fileInfo["size"])
	assert.Equal(t, float64(1), body["userStats"].(map[string]interface{})["totalAnalyses"])

	code, body = env.do(t, http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, code)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["totalAnalyses"])
	assert.InDelta(t, 15.2, stats["totalCO2Saved"], 1e-9)
	impact := stats["environmentalImpact"].(map[string]interface{})
	assert.InDelta(t, 15.2/21.77, impact["treesSaved"], 1e-9)
	assert.InDelta(t, 15.2/4600, impact["carsOffRoad"], 1e-9)
	assert.InDelta(t, 15200, impact["smartphonesCharged"], 1e-6)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Jane", "jane@x.com", "secret1")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing password", map[string]string{"name": "A", "email": "a@x.com"}},
		{"missing name", map[string]string{"email": "a@x.com", "password": "p"}},
		{"duplicate email", map[string]string{"name": "J", "email": "jane@x.com", "password": "p"}},
		{"admin type", map[string]string{"name": "A", "email": "b@x.com", "password": "p", "userType": "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := env.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{"))
	code, body := env.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestLoginDoesNotRevealWhichFieldWasWrong(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Jane", "jane@x.com", "secret1")

	code, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "jane@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "Login successful", body["message"])

	wrongPass, wrongBody := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "jane@x.com", "password": "nope"})
	unknown, unknownBody := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, wrongPass)
	assert.Equal(t, http.StatusUnauthorized, unknown)
	assert.Equal(t, wrongBody, unknownBody)
	assert.Equal(t, "Invalid credentials", wrongBody["error"])

	code, body = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@ewaste.com", "password": "admin123"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "admin", body["user"].(map[string]interface{})["type"])
}

func TestProfileRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Jane", "jane@x.com", "secret1")
	env.register(t, "Bob", "bob@x.com", "secret2")

	code, body := env.do(t, http.MethodPut, "/api/auth/profile", token, map[string]string{
		"name": "Jane Smith", "userType": "recycler", "password": "ignored",
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Jane Smith", body["user"].(map[string]interface{})["name"])

	code, body = env.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Jane Smith", user["name"])
	assert.Equal(t, "recycler", user["type"])

	// the password in the update body was not applied
	code, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "jane@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, code)

	code, body = env.do(t, http.MethodPut, "/api/auth/profile", token, map[string]string{"email": "bob@x.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	code, _ = env.do(t, http.MethodPut, "/api/auth/profile", token, map[string]string{"userType": "admin"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProfileForVanishedUser(t *testing.T) {
	env := newTestEnv(t)
	token, err := env.tokens.GenerateJWT(userWithID(99))
	require.NoError(t, err)

	code, body := env.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body["error"])
}

func TestAuthFailures(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/api/dashboard/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Access token required", body["error"])

	code, body = env.do(t, http.MethodGet, "/api/analyses", "garbage", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Invalid or expired token", body["error"])

	other := auth.NewTokenManager("other-secret", time.Hour)
	forged, err := other.GenerateJWT(userWithID(1))
	require.NoError(t, err)
	code, _ = env.do(t, http.MethodGet, "/api/auth/profile", forged, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = env.upload(t, "", "image", "phone.jpg", 10)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestPredictRejectsBadUploads(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Jane", "jane@x.com", "secret1")

	code, body := env.upload(t, token, "photo", "phone.jpg", 10)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No image file provided", body["error"])

	code, body = env.do(t, http.MethodPost, "/api/predict", token, map[string]string{"image": "phone.jpg"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No image file provided", body["error"])

	code, body = env.upload(t, token, "image", "huge_laptop.png", 10<<20+1)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Image exceeds the 10MB upload limit", body["error"])

	assert.Equal(t, 0, env.store.Totals().Analyses)
}

func TestAnalysesPagingAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	jane := env.register(t, "Jane", "jane@x.com", "secret1")
	bob := env.register(t, "Bob", "bob@x.com", "secret2")

	for _, name := range []string{"a_cable.jpg", "b_phone.jpg", "c_screen.jpg"} {
		code, _ := env.upload(t, jane, "image", name, 100)
		require.Equal(t, http.StatusOK, code)
	}

	code, body := env.do(t, http.MethodGet, "/api/analyses?page=1&limit=2", jane, nil)
	require.Equal(t, http.StatusOK, code)
	analyses := body["analyses"].([]interface{})
	require.Len(t, analyses, 2)
	assert.Equal(t, "c_screen.jpg", analyses[0].(map[string]interface{})["filename"])
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(3), pagination["total"])
	assert.Equal(t, float64(2), pagination["totalPages"])

	code, body = env.do(t, http.MethodGet, "/api/analyses?page=9&limit=2", jane, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["analyses"])
	assert.Equal(t, float64(3), body["pagination"].(map[string]interface{})["total"])

	code, body = env.do(t, http.MethodGet, "/api/analyses?page=zero&limit=-4", jane, nil)
	require.Equal(t, http.StatusOK, code)
	pagination = body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(20), pagination["limit"])

	code, body = env.do(t, http.MethodGet, "/api/analyses/1", jane, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a_cable.jpg", body["analysis"].(map[string]interface{})["filename"])

	for _, path := range []string{"/api/analyses/1", "/api/analyses/999", "/api/analyses/abc"} {
		code, body = env.do(t, http.MethodGet, path, bob, nil)
		assert.Equal(t, http.StatusNotFound, code, path)
		assert.Equal(t, "Analysis not found", body["error"], path)
	}

	code, body = env.do(t, http.MethodGet, "/api/analyses", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["analyses"])
}

func TestRecyclingCenters(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/api/recycling/centers?lat=40.7128&lng=-74.0060", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Sorted by distance from your location", body["note"])
	centers := body["centers"].([]interface{})
	require.NotEmpty(t, centers)
	prev := -1.0
	for _, c := range centers {
		d := c.(map[string]interface{})["distanceKm"].(float64)
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
	query := body["query"].(map[string]interface{})
	assert.Equal(t, 40.7128, query["lat"])

	code, body = env.do(t, http.MethodGet, "/api/recycling/centers?limit=2", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Default list", body["note"])
	centers = body["centers"].([]interface{})
	require.Len(t, centers, 2)
	assert.Nil(t, centers[0].(map[string]interface{})["distanceKm"])

	for _, q := range []string{
		"lat=north&lng=1",
		"lat=NaN&lng=0",
		"lat=1e200&lng=0",
		"lat=0&lng=-Inf",
		"lat=91&lng=0",
		"lat=0&lng=180.5",
		"lat=40&lng=-74&radius=Inf",
		"lat=40&lng=-74&radius=NaN",
	} {
		code, body = env.do(t, http.MethodGet, "/api/recycling/centers?"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, code, q)
		assert.Equal(t, false, body["success"], q)
		assert.NotEmpty(t, body["error"], q)
	}

	code, body = env.do(t, http.MethodGet, "/api/recycling/centers?lat=-90&lng=180&radius=5", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Sorted by distance from your location", body["note"])

	code, body = env.do(t, http.MethodGet, "/api/recycling/centers/1", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["center"].(map[string]interface{})["id"])

	code, body = env.do(t, http.MethodGet, "/api/recycling/centers/404", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Recycling center not found", body["error"])
}

func TestPublicEndpoints(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["endpoints"])

	code, body = env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body["status"])
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["totalUsers"])
	assert.Equal(t, float64(len(classifier.Categories())), stats["totalCategories"])

	code, body = env.do(t, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(7), body["count"])

	code, body = env.do(t, http.MethodGet, "/no/such/thing", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Endpoint not found", body["error"])
	assert.Equal(t, false, body["success"])

	code, _ = env.do(t, http.MethodDelete, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Jane", "jane@x.com", "secret1")
	code, _ := env.upload(t, token, "image", "pcb.jpg", 10)
	require.Equal(t, http.StatusOK, code)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ewaste_analyses_total{category="Circuit Board"} 1`)
	assert.Contains(t, rec.Body.String(), "ewaste_registrations_total 1")
}

func TestPasswordNeverLeaves(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Jane", "jane@x.com", "secret1")

	for _, path := range []string{"/api/auth/profile", "/api/dashboard/stats"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		body := strings.ToLower(rec.Body.String())
		assert.NotContains(t, body, "password", path)
		assert.NotContains(t, body, "$2a$", path)
	}
}

func TestLiveFeed(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	token := env.register(t, "Jane", "jane@x.com", "secret1")
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"

	_, resp, err := gws.DefaultDialer.Dial(wsURL+"?token=garbage", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := gws.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	code, _ := env.upload(t, token, "image", "old_laptop.png", 10)
	require.Equal(t, http.StatusOK, code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg websocket.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, websocket.ActionAnalysisCreated, msg.Action)
	payload := msg.Payload.(map[string]interface{})
	assert.Equal(t, "Laptop", payload["analysis"].(map[string]interface{})["prediction"].(map[string]interface{})["wasteType"])

	require.NoError(t, conn.WriteJSON(websocket.Message{Action: websocket.ActionPing}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, websocket.ActionPong, msg.Action)
}
