// Package apitest runs an in-memory toilet tracker backend for tests.
//
// The server implements the seven REST endpoints the client consumes, signs
// HS256 JWTs for its users and lets tests force failures per route:
//
//	srv := apitest.NewServer()
//	defer srv.Close()
//	srv.Fail("leaderboard", http.StatusUnauthorized, "Not authorized")
package apitest

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/toilettracker/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Route names accepted by Fail and Hits.
const (
	RouteLogin        = "login"
	RouteSignup       = "signup"
	RouteProgress     = "progress"
	RouteEntries      = "entries"
	RouteLeaderboard  = "leaderboard"
	RouteCreateEntry  = "create_entry"
	RouteToggleGolden = "toggle_golden"
	RoutePing         = "ping"
)

// duplicateRadius is how close (in degrees) two entries of one user may be
// before the second is rejected as already logged.
const duplicateRadius = 0.0001

type failure struct {
	status  int
	message string
}

type Server struct {
	*httptest.Server

	secret []byte

	mu       sync.Mutex
	now      func() time.Time
	users    map[string]string
	entries  map[string][]models.Entry
	failures map[string]failure
	hits     map[string]int
	headers  map[string]http.Header
	hold     map[string]chan struct{}
}

func NewServer() *Server {
	s := &Server{
		secret:   []byte("apitest-secret"),
		now:      time.Now,
		users:    make(map[string]string),
		entries:  make(map[string][]models.Entry),
		failures: make(map[string]failure),
		hits:     make(map[string]int),
		headers:  make(map[string]http.Header),
		hold:     make(map[string]chan struct{}),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.route(RoutePing, false, func(w http.ResponseWriter, r *http.Request, _ string) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.route(RouteLogin, false, s.login))
		r.Post("/auth/signup", s.route(RouteSignup, false, s.signup))

		r.Get("/toilets/my-progress", s.route(RouteProgress, true, s.progress))
		r.Get("/toilets/leaderboard", s.route(RouteLeaderboard, true, s.leaderboard))
		r.Get("/toilets", s.route(RouteEntries, true, s.list))
		r.Post("/toilets", s.route(RouteCreateEntry, true, s.create))
		r.Patch("/toilets/{id}/toggle-golden", s.route(RouteToggleGolden, true, s.toggle))
	})
	return r
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, email string)

// route counts the hit, applies a forced failure or hold, enforces the bearer
// token and then calls h with the caller's email.
func (s *Server) route(name string, auth bool, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[name]++
		s.headers[name] = r.Header.Clone()
		f, failing := s.failures[name]
		hold := s.hold[name]
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			writeMessage(w, f.status, f.message)
			return
		}

		var email string
		if auth {
			var err error
			email, err = s.authenticate(r)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}
		}
		h(w, r, email)
	}
}

func (s *Server) authenticate(r *http.Request) (string, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return "", errors.New("missing token")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	email, _ := claims["email"].(string)
	s.mu.Lock()
	_, known := s.users[email]
	s.mu.Unlock()
	if !known {
		return "", errors.New("unknown user")
	}
	return email, nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, _ string) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}

	s.mu.Lock()
	password, ok := s.users[creds.Email]
	s.mu.Unlock()
	if !ok || password != creds.Password {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	s.writeToken(w, http.StatusOK, creds.Email)
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request, _ string) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.Lock()
	_, exists := s.users[creds.Email]
	if !exists {
		s.users[creds.Email] = creds.Password
	}
	s.mu.Unlock()

	if exists {
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	}
	s.writeToken(w, http.StatusCreated, creds.Email)
}

func (s *Server) progress(w http.ResponseWriter, _ *http.Request, email string) {
	s.mu.Lock()
	total := len(s.entries[email])
	s.mu.Unlock()

	remaining := max(models.Goal-total, 0)
	percentage := math.Round(float64(total)/models.Goal*1000) / 10

	message := "Keep going!"
	switch {
	case total == 0:
		message = "Log your first toilet to get started!"
	case remaining == 0:
		message = "Legend! You have conquered 400 toilets!"
	}

	writeJSON(w, http.StatusOK, models.Progress{
		Total:      total,
		Remaining:  remaining,
		Percentage: percentage,
		Message:    message,
	})
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request, email string) {
	s.mu.Lock()
	entries := models.SortByVisitedDesc(s.entries[email])
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) leaderboard(w http.ResponseWriter, _ *http.Request, _ string) {
	s.mu.Lock()
	rows := make([]models.LeaderboardEntry, 0, len(s.users))
	for email := range s.users {
		if n := len(s.entries[email]); n > 0 {
			rows = append(rows, models.LeaderboardEntry{Email: email, Total: n})
		}
	}
	s.mu.Unlock()

	slices.SortFunc(rows, func(a, b models.LeaderboardEntry) int {
		if a.Total != b.Total {
			return b.Total - a.Total
		}
		return strings.Compare(a.Email, b.Email)
	})
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, email string) {
	var in models.NewEntry
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}
	if in.Name == "" {
		writeMessage(w, http.StatusBadRequest, "Name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries[email] {
		c, ok := e.Coordinates()
		if ok && math.Abs(c.Latitude-in.Latitude) < duplicateRadius && math.Abs(c.Longitude-in.Longitude) < duplicateRadius {
			writeMessage(w, http.StatusBadRequest, "You already logged this toilet!")
			return
		}
	}

	entry := models.Entry{
		ID:        strings.ReplaceAll(uuid.NewString(), "-", "")[:24],
		Name:      in.Name,
		Address:   in.Address,
		Location:  models.NewPoint(models.Coordinates{Latitude: in.Latitude, Longitude: in.Longitude}),
		VisitedAt: s.now().UTC(),
	}
	s.entries[email] = append(s.entries[email], entry)
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request, email string) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries[email] {
		e := &s.entries[email][i]
		if e.ID != id {
			continue
		}
		e.IsGoldenBowl = !e.IsGoldenBowl
		message := "Golden Bowl removed"
		if e.IsGoldenBowl {
			message = "Marked as Golden Bowl!"
		}
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: message})
		return
	}
	writeMessage(w, http.StatusNotFound, "Toilet not found")
}

func (s *Server) writeToken(w http.ResponseWriter, status int, email string) {
	token, err := s.Token(email, time.Hour)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, status, models.AuthResponse{Token: token})
}

// Token signs a token for email valid for ttl. A negative ttl yields an
// already expired token.
func (s *Server) Token(email string, ttl time.Duration) (string, error) {
	now := s.clock()
	claims := jwt.MapClaims{
		"id":    uuid.NewString(),
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// AddUser registers a user directly.
func (s *Server) AddUser(email, password string) {
	s.mu.Lock()
	s.users[email] = password
	s.mu.Unlock()
}

// SeedEntry stores an entry for email, assigning an ID when empty.
func (s *Server) SeedEntry(email string, e models.Entry) models.Entry {
	if e.ID == "" {
		e.ID = strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
	}
	s.mu.Lock()
	s.entries[email] = append(s.entries[email], e)
	s.mu.Unlock()
	return e
}

// UserEntries returns a copy of the entries stored for email.
func (s *Server) UserEntries(email string) []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries[email])
}

// Fail makes route answer with status and message until Recover is called.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	s.failures[route] = failure{status: status, message: message}
	s.mu.Unlock()
}

func (s *Server) Recover(route string) {
	s.mu.Lock()
	delete(s.failures, route)
	s.mu.Unlock()
}

// Hold blocks requests to route until the returned release func is called.
func (s *Server) Hold(route string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.hold[route] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.hold, route)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Hits reports how many requests reached route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// LastHeaders returns the headers of the latest request to route.
func (s *Server) LastHeaders(route string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[route].Clone()
}

// SetClock overrides the time source used for visit timestamps and tokens.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Server) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.MessageResponse{Message: message})
}
