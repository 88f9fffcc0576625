package web

import (
	"encoding/json"
	"net/http"
)

// User-facing error messages stay generic; diagnostics go to the log.
const (
	msgBadRequest = "בקשה לא תקינה."
	msgNotFound   = "הפריט המבוקש לא נמצא."
	msgInternal   = "אירעה שגיאה בעיבוד הבקשה, נסו שוב בעוד רגע."
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
