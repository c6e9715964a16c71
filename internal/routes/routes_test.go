package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quantbasket/quantbasket/internal/config"
	"github.com/quantbasket/quantbasket/internal/logging"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	err := Setup(app, Deps{
		Cfg: config.Config{
			AppEnv:        "development",
			JWTSecret:     "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    24 * time.Hour,
		},
		Logger: logging.Discard(),
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	var parsed map[string]any
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}

func signUp(t *testing.T, app *fiber.App, email string) (accessToken, refreshToken string) {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"email":     email,
		"password":  "hunter2secret",
		"full_name": "Ada Lovelace",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d (%v)", resp.StatusCode, body)
	}
	access, _ := body["access_token"].(string)
	refresh, _ := body["refresh_token"].(string)
	if access == "" || refresh == "" {
		t.Fatalf("signup: expected token pair, got %v", body)
	}
	return access, refresh
}

func TestSignupLoginAndProfile(t *testing.T) {
	app := testApp(t)
	signUp(t, app, "ada@example.com")

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "ada@example.com",
		"password": "hunter2secret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%v)", resp.StatusCode, body)
	}
	token, _ := body["access_token"].(string)

	resp, profile := doJSON(t, app, http.MethodGet, "/api/v1/me/profile", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d (%v)", resp.StatusCode, profile)
	}
	if profile["full_name"] != "Ada Lovelace" {
		t.Fatalf("expected signup name on profile, got %v", profile["full_name"])
	}
}

func TestDuplicateSignupConflicts(t *testing.T) {
	app := testApp(t)
	signUp(t, app, "ada@example.com")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"email":     "ada@example.com",
		"password":  "hunter2secret",
		"full_name": "Someone Else",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}
}

func TestMeSurfaceRequiresAuth(t *testing.T) {
	app := testApp(t)

	for _, path := range []string{"/api/v1/me/profile", "/api/v1/me/tokens", "/api/v1/me/portfolio"} {
		resp, _ := doJSON(t, app, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without token, got %d", path, resp.StatusCode)
		}
	}

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/me/profile", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", resp.StatusCode)
	}
}

func TestPurchaseImpactAndRedemptionFlow(t *testing.T) {
	app := testApp(t)
	token, _ := signUp(t, app, "ada@example.com")

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/me/tokens/purchase", token, map[string]any{
		"category": "community",
		"symbol":   "sae",
		"amount":   50,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("purchase: expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["balance"] != float64(50) {
		t.Fatalf("expected balance 50, got %v", body["balance"])
	}

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/me/impact", token, map[string]any{
		"type":        "tree_planting",
		"description": "planted 12 trees",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("impact: expected 200, got %d (%v)", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/me/redemptions", token, map[string]any{
		"benefit_type": "event_pass",
		"symbol":       "SAE",
		"cost":         30,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("redeem: expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["balance"] != float64(20) {
		t.Fatalf("expected balance 20 after redemption, got %v", body["balance"])
	}
	if ref, _ := body["reference"].(string); ref == "" {
		t.Fatalf("expected a fulfillment reference, got %v", body)
	}

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/me/redemptions", token, map[string]any{
		"benefit_type": "event_pass",
		"symbol":       "SAE",
		"cost":         500,
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("overdrawn redeem: expected 422, got %d (%v)", resp.StatusCode, body)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	app := testApp(t)
	access, refresh := signUp(t, app, "ada@example.com")

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": refresh,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d (%v)", resp.StatusCode, body)
	}
	rotated, _ := body["access_token"].(string)
	if rotated == "" {
		t.Fatalf("expected rotated access token, got %v", body)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", rotated, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}

	// Every outstanding token is now invalid.
	for _, tok := range []string{access, rotated} {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/me/profile", tok, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
		}
	}
}

func TestFavoritesLifecycle(t *testing.T) {
	app := testApp(t)
	token, _ := signUp(t, app, "ada@example.com")

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/coins", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("coins: expected 200, got %d", resp.StatusCode)
	}

	resp, favs := doJSON(t, app, http.MethodGet, "/api/v1/me/favorites", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("favorites: expected 200, got %d (%v)", resp.StatusCode, favs)
	}
}

func TestPing(t *testing.T) {
	app := testApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/ping", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ping: expected 200, got %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected ok status, got %v", body)
	}
	if body["request_id"] == "" {
		t.Fatal("expected a request id")
	}
}
