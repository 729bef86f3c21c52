package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func newDeviceApp() *fiber.App {
	app := fiber.New()
	app.Use(NewDeviceMiddleware(false).Identify)
	app.Get("/whoami", func(c fiber.Ctx) error {
		return c.SendString(DeviceID(c))
	})
	return app
}

func TestIdentify(t *testing.T) {
	const known = "6f1c2b1e-8a0d-4a53-9d7c-3f0e2d7b9a11"

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantID     string // empty means a fresh id is expected
		wantIssued bool
	}{
		{"header wins", known, "device_cookie_1", fiber.StatusOK, known, false},
		{"cookie", "", "device_cookie_1", fiber.StatusOK, "device_cookie_1", false},
		{"issues new id", "", "", fiber.StatusOK, "", true},
		{"replaces invalid cookie", "", "bad:id", fiber.StatusOK, "", true},
		{"rejects invalid header", "../x", "", fiber.StatusBadRequest, "", false},
	}

	app := newDeviceApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(DeviceHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DeviceCookie, Value: tt.cookie})
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != fiber.StatusOK {
				return
			}

			body, _ := io.ReadAll(resp.Body)
			got := string(body)
			if tt.wantID != "" && got != tt.wantID {
				t.Errorf("device = %q, want %q", got, tt.wantID)
			}

			var issued *http.Cookie
			for _, c := range resp.Cookies() {
				if c.Name == DeviceCookie {
					issued = c
				}
			}
			if tt.wantIssued {
				if issued == nil {
					t.Fatal("no device cookie issued")
				}
				if issued.Value != got || len(got) != 36 {
					t.Errorf("issued cookie %q, device %q", issued.Value, got)
				}
				if !strings.Contains(resp.Header.Get("Set-Cookie"), "HttpOnly") {
					t.Error("device cookie not HttpOnly")
				}
			} else if issued != nil {
				t.Errorf("unexpected cookie issued: %q", issued.Value)
			}
		})
	}
}
