package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// DeviceIDHeader carries the opaque, client-generated installation
// identifier required on all public calls. It scopes rate limits and
// attributes unauthenticated writes without identifying a person.
const DeviceIDHeader = "X-Device-ID"

const maxDeviceIDLength = 128

// RequireDevice rejects public requests without a plausible device id and
// places the id on the request context.
func RequireDevice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := strings.TrimSpace(r.Header.Get(DeviceIDHeader))
		if deviceID == "" || len(deviceID) > maxDeviceIDLength {
			writeError(w, http.StatusBadRequest, "device_required", "missing or invalid "+DeviceIDHeader+" header")
			return
		}
		ctx := context.WithValue(r.Context(), deviceIDKey, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceIDFromContext returns the device id placed by RequireDevice.
func DeviceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(deviceIDKey).(string); ok {
		return v
	}
	return ""
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": errCode, "message": message})
}
