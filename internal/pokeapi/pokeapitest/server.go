// Package pokeapitest provides an in-memory PokeAPI stand-in for tests.
package pokeapitest

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/f3rmion/pokedex/internal/pokedex"
)

// Server serves the list, entry and sprite endpoints for a fixed set of entries.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	entries  []pokedex.Entry
	status   map[string]int           // name -> forced status code
	hold     map[string]chan struct{} // name -> closed to release the response
	requests atomic.Int64
}

// Starters is a small fixture set shared by tests.
func Starters() []pokedex.Entry {
	return []pokedex.Entry{
		{ID: 1, Name: "bulbasaur", HeightDecimeters: 7, WeightHectograms: 69, Types: []string{"grass", "poison"}},
		{ID: 4, Name: "charmander", HeightDecimeters: 6, WeightHectograms: 85, Types: []string{"fire"}},
		{ID: 7, Name: "squirtle", HeightDecimeters: 5, WeightHectograms: 90, Types: []string{"water"}},
		{ID: 25, Name: "pikachu", HeightDecimeters: 4, WeightHectograms: 60, Types: []string{"electric"}},
	}
}

// NewServer starts a server for entries. Sprite URLs are filled in to point
// at the server unless an entry is named "missingno", which has none.
func NewServer(entries []pokedex.Entry) *Server {
	s := &Server{
		status: make(map[string]int),
		hold:   make(map[string]chan struct{}),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))

	for _, e := range entries {
		if e.Name != "missingno" {
			e.SpriteURL = fmt.Sprintf("%s/sprites/%d.png", s.URL, e.ID)
		}
		s.entries = append(s.entries, e)
	}
	return s
}

// BaseURL is the API root to hand to pokeapi.NewClient.
func (s *Server) BaseURL() string {
	return s.URL + "/api/v2"
}

// Entries returns the served entries with their sprite URLs.
func (s *Server) Entries() []pokedex.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pokedex.Entry(nil), s.entries...)
}

// FailWith forces every request for name to answer with status. The name
// "list" targets the list endpoint.
func (s *Server) FailWith(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[name] = status
}

// Hold blocks responses for name until the returned release func is called.
// Release before closing the server; Close waits for held requests.
func (s *Server) Hold(name string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.hold[name] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Requests returns how many requests the server has received.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	path := strings.TrimPrefix(r.URL.Path, "/api/v2")
	switch {
	case path == "/pokemon":
		s.handleList(w, r)
	case strings.HasPrefix(path, "/pokemon/"):
		s.handleEntry(w, r, strings.Trim(strings.TrimPrefix(path, "/pokemon/"), "/"))
	case strings.HasPrefix(r.URL.Path, "/sprites/"):
		s.handleSprite(w, strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/sprites/"), ".png"))
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if status, ok := s.forced("list"); ok {
		w.WriteHeader(status)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	entries := s.Entries()
	if limit > len(entries) {
		limit = len(entries)
	}

	results := make([]pokedex.Reference, 0, limit)
	for _, e := range entries[:limit] {
		results = append(results, pokedex.Reference{
			Name: e.Name,
			URL:  fmt.Sprintf("%s/api/v2/pokemon/%d/", s.URL, e.ID),
		})
	}

	writeJSON(w, map[string]any{"count": len(entries), "results": results})
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request, key string) {
	entry, ok := s.find(key)
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	ch := s.hold[entry.Name]
	s.mu.Unlock()
	if ch != nil {
		select {
		case <-ch:
		case <-r.Context().Done():
			return
		}
	}

	if status, ok := s.forced(entry.Name); ok {
		w.WriteHeader(status)
		return
	}

	types := make([]map[string]any, 0, len(entry.Types))
	for i, t := range entry.Types {
		types = append(types, map[string]any{
			"slot": i + 1,
			"type": map[string]string{"name": t, "url": s.URL + "/api/v2/type/" + t},
		})
	}

	var sprite any
	if entry.SpriteURL != "" {
		sprite = entry.SpriteURL
	}

	writeJSON(w, map[string]any{
		"id":      entry.ID,
		"name":    entry.Name,
		"height":  entry.HeightDecimeters,
		"weight":  entry.WeightHectograms,
		"sprites": map[string]any{"front_default": sprite},
		"types":   types,
	})
}

func (s *Server) handleSprite(w http.ResponseWriter, id string) {
	n, err := strconv.Atoi(id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	// 8x8 sprite: transparent border around a solid block.
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	fill := color.NRGBA{R: uint8(n * 10), G: 200, B: 50, A: 255}
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			img.Set(x, y, fill)
		}
	}

	w.Header().Set("Content-Type", "image/png")
	png.Encode(w, img)
}

func (s *Server) find(key string) (pokedex.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Name == key || strconv.Itoa(e.ID) == key {
			return e, true
		}
	}
	return pokedex.Entry{}, false
}

func (s *Server) forced(name string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.status[name]
	return status, ok
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
