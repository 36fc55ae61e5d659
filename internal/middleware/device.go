package middleware

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	deviceKey    ctxKey = 2
	DeviceHeader        = "X-Device-ID"
	deviceCookie        = "painmap_device"
	maxDeviceLen        = 64
)

// WithDevice records the anonymous device id sent by the client, from the
// X-Device-ID header or the painmap_device cookie.
func WithDevice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(DeviceHeader))
		if id == "" {
			if c, err := r.Cookie(deviceCookie); err == nil {
				id = strings.TrimSpace(c.Value)
			}
		}
		id = clampDeviceID(id)
		if id != "" {
			r = r.WithContext(context.WithValue(r.Context(), deviceKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

// clampDeviceID drops invalid UTF-8 and cuts id to maxDeviceLen bytes
// without splitting a rune.
func clampDeviceID(id string) string {
	id = strings.ToValidUTF8(id, "")
	if len(id) <= maxDeviceLen {
		return id
	}
	n := maxDeviceLen
	for n > 0 && !utf8.RuneStart(id[n]) {
		n--
	}
	return strings.TrimSpace(id[:n])
}

func DeviceIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(deviceKey).(string)
	return s
}

// OwnerFromContext prefers the signed-in user over the device id. Device
// owners are namespaced so they never collide with user ids.
func OwnerFromContext(ctx context.Context) string {
	if uid := UserIDFromContext(ctx); uid != "" {
		return "user:" + uid
	}
	if dev := DeviceIDFromContext(ctx); dev != "" {
		return "device:" + dev
	}
	return ""
}
