// Mock Stremio Cinemeta addon server for local development. Serves the
// manifest, full catalogs, and meta objects from data.json.
package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

//go:embed data.json
var jsonData []byte

type dataset struct {
	Movies []json.RawMessage `json:"movies"`
	Series []json.RawMessage `json:"series"`
}

func main() {
	var data dataset
	if err := json.Unmarshal(jsonData, &data); err != nil {
		log.Fatalf("[Cinemeta] bad data.json: %v", err)
	}

	byID := map[string]json.RawMessage{}
	for _, raw := range append(append([]json.RawMessage{}, data.Movies...), data.Series...) {
		var row struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(raw, &row) == nil && row.ID != "" {
			byID[row.ID] = raw
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /manifest.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, map[string]any{
			"id":          "community.cinemeta.mock",
			"version":     "3.0.0",
			"name":        "Cinemeta",
			"description": "Mock catalog addon",
			"resources":   []string{"catalog", "meta"},
			"types":       []string{"movie", "series"},
		})
	})

	mux.HandleFunc("GET /catalog/movie/top.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, map[string]any{"metas": data.Movies})
	})
	mux.HandleFunc("GET /catalog/series/top.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, map[string]any{"metas": data.Series})
	})

	mux.HandleFunc("GET /meta/{type}/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		// The addon addresses metas as /meta/{type}/{id}.json.
		if len(id) > 5 && id[len(id)-5:] == ".json" {
			id = id[:len(id)-5]
		}
		raw, ok := byID[id]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprintf(w, `{"err":"meta %s not found"}`, id)
			log.Printf("[Cinemeta] %s %s - 404 Not Found", r.Method, r.URL.Path)
			return
		}
		writeJSON(w, r, map[string]any{"meta": raw})
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	log.Println("Mock Cinemeta running on :8082")
	server := &http.Server{
		Addr:         ":8082",
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	// Simulate network latency (50-200ms)
	time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[Cinemeta] Write error: %v", err)
		return
	}
	log.Printf("[Cinemeta] %s %s - 200 OK", r.Method, r.URL.Path)
}
