package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"engagehub/internal/validation"
)

const (
	// DeviceHeader lets non-browser clients name their device explicitly.
	DeviceHeader = "X-Device-ID"
	// DeviceCookie carries the issued device id between browser requests.
	DeviceCookie = "engage_device"

	deviceLocal  = "device"
	deviceMaxAge = 400 * 24 * time.Hour
)

// DeviceMiddleware resolves the device a request acts for. Support counts and
// completed history are kept per device.
type DeviceMiddleware struct {
	secure bool
}

// NewDeviceMiddleware creates a device middleware. secure marks the issued
// cookie Secure.
func NewDeviceMiddleware(secure bool) *DeviceMiddleware {
	return &DeviceMiddleware{secure: secure}
}

// Identify stores the device id in the request locals, issuing a new id in a
// cookie when the request carries no valid one.
func (m *DeviceMiddleware) Identify(c fiber.Ctx) error {
	if id := c.Get(DeviceHeader); id != "" {
		if !validation.ValidateDeviceID(id) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status": "error",
				"error":  "invalid device id",
			})
		}
		c.Locals(deviceLocal, id)
		return c.Next()
	}

	id := c.Cookies(DeviceCookie)
	if !validation.ValidateDeviceID(id) {
		id = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     DeviceCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(deviceMaxAge.Seconds()),
			Secure:   m.secure,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	c.Locals(deviceLocal, id)
	return c.Next()
}

// DeviceID returns the id resolved by Identify, or "" outside it.
func DeviceID(c fiber.Ctx) string {
	id, _ := c.Locals(deviceLocal).(string)
	return id
}
