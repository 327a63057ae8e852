package handlers

import (
	"net/http"
	"time"

	"github.com/dcode-ide/apiserver/internal/languages"
	"github.com/dcode-ide/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// APIVersion is reported by the root banner.
const APIVersion = "1.0.0"

// HealthRouter registers the liveness and metadata routes.
func HealthRouter(r chi.Router, started time.Time) {
	r.Get("/", Banner)
	r.Get("/health", Health(started))
	r.Get("/languages", Languages)
}

type BannerResponse struct {
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Banner reports that the API is up.
func Banner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BannerResponse{
		Message:   "D-Code Backend API is running!",
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Version:   APIVersion,
	})
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	// Uptime is in seconds.
	Uptime float64 `json:"uptime"`
}

// Health reports uptime since started.
func Health(started time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: now.UTC(),
			Uptime:    now.Sub(started).Seconds(),
		})
	}
}

type LanguagesResponse struct {
	Response
	Languages []types.Language `json:"languages"`
}

// Languages lists the languages projects can be created in.
func Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LanguagesResponse{
		Response:  ok("Languages fetched successfully"),
		Languages: languages.All(),
	})
}

type NoticeResponse struct {
	Response
	Status   string `json:"status"`
	Endpoint string `json:"endpoint"`
}

// EndpointNotice answers GET on a POST-only endpoint with a hint.
func EndpointNotice(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, NoticeResponse{
			Response: ok(path + " endpoint exists. Use POST with a JSON body."),
			Status:   "endpoint_exists",
			Endpoint: path,
		})
	}
}
