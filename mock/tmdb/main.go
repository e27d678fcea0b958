// Mock TMDB-style API server for local development. Serves static
// catalog data from data.json and synthesizes season and episode
// payloads on demand.
package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

//go:embed data.json
var jsonData []byte

type dataset struct {
	Movies  []json.RawMessage `json:"movies"`
	Series  []json.RawMessage `json:"series"`
	People  []json.RawMessage `json:"people"`
	Credits json.RawMessage   `json:"credits"`
}

const (
	totalPages   = 42
	totalResults = 833
)

func main() {
	var data dataset
	if err := json.Unmarshal(jsonData, &data); err != nil {
		log.Fatalf("[TMDB] bad data.json: %v", err)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /configuration", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, map[string]any{
			"images": map[string]any{
				"secure_base_url": "https://image.tmdb.org/t/p/",
			},
		})
	})

	for _, path := range []string{"/movie/popular", "/movie/top_rated", "/trending/movie/week"} {
		mux.HandleFunc("GET "+path, pagedHandler(data.Movies))
	}
	for _, path := range []string{"/tv/popular", "/trending/tv/week"} {
		mux.HandleFunc("GET "+path, pagedHandler(data.Series))
	}

	mux.HandleFunc("GET /search/multi", pagedHandler(append(append([]json.RawMessage{}, data.Movies...), data.Series...)))

	mux.HandleFunc("GET /movie/{id}", detailHandler(data.Movies))
	mux.HandleFunc("GET /tv/{id}", detailHandler(data.Series))
	mux.HandleFunc("GET /person/{id}", detailHandler(data.People))

	mux.HandleFunc("GET /person/{id}/combined_credits", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, r, data.Credits)
	})

	mux.HandleFunc("GET /tv/{id}/season/{n}", func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(r.PathValue("n"))
		if err != nil {
			notFound(w, r)
			return
		}
		writeJSON(w, r, seasonPayload(n))
	})

	mux.HandleFunc("GET /tv/{id}/season/{n}/episode/{e}", func(w http.ResponseWriter, r *http.Request) {
		n, err1 := strconv.Atoi(r.PathValue("n"))
		e, err2 := strconv.Atoi(r.PathValue("e"))
		if err1 != nil || err2 != nil {
			notFound(w, r)
			return
		}
		writeJSON(w, r, episodePayload(n, e))
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	log.Println("Mock TMDB running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

// pagedHandler serves the pool inside the standard paged envelope. Every
// page returns the same pool; the envelope's totals advertise a large
// catalog so pagination can be exercised.
func pagedHandler(pool []json.RawMessage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}

		writeJSON(w, r, map[string]any{
			"page":          page,
			"total_pages":   totalPages,
			"total_results": totalResults,
			"results":       pool,
		})
	}
}

// detailHandler looks the id up in the pool by its "id" field.
func detailHandler(pool []json.RawMessage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		for _, raw := range pool {
			var row struct {
				ID int `json:"id"`
			}
			if json.Unmarshal(raw, &row) == nil && strconv.Itoa(row.ID) == id {
				writeRaw(w, r, raw)
				return
			}
		}
		notFound(w, r)
	}
}

func seasonPayload(n int) map[string]any {
	episodes := make([]map[string]any, 0, 8)
	for e := 1; e <= 8; e++ {
		episodes = append(episodes, episodePayload(n, e))
	}
	return map[string]any{
		"season_number": n,
		"name":          fmt.Sprintf("Season %d", n),
		"overview":      fmt.Sprintf("Overview of season %d.", n),
		"air_date":      fmt.Sprintf("20%02d-01-01", 10+n),
		"episodes":      episodes,
	}
}

func episodePayload(n, e int) map[string]any {
	return map[string]any{
		"season_number":  n,
		"episode_number": e,
		"name":           fmt.Sprintf("Episode %d", e),
		"overview":       fmt.Sprintf("Episode %d of season %d.", e, n),
		"air_date":       fmt.Sprintf("20%02d-%02d-01", 10+n, e),
		"still_path":     fmt.Sprintf("/still-s%de%d.jpg", n, e),
		"runtime":        45,
		"vote_average":   7.2,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	simulateLatency()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[TMDB] Write error: %v", err)
		return
	}
	log.Printf("[TMDB] %s %s - 200 OK", r.Method, r.URL.Path)
}

func writeRaw(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	simulateLatency()
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(raw); err != nil {
		log.Printf("[TMDB] Write error: %v", err)
		return
	}
	log.Printf("[TMDB] %s %s - 200 OK", r.Method, r.URL.Path)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"status_message":"The resource you requested could not be found."}`))
	log.Printf("[TMDB] %s %s - 404 Not Found", r.Method, r.URL.Path)
}

// simulateLatency adds 50-200ms so timeout handling can be observed
// locally.
func simulateLatency() {
	time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)
}
