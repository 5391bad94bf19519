// Package apitest provides an in-memory fake of the budget service for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

type user struct {
	id       int
	username string
	password string
	budget   float64
}

// Entry is a stored expenditure.
type Entry struct {
	ID     int     `json:"id"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Note   string  `json:"note"`
}

// Server is a fake budget service backed by memory.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[int]*user
	entries  map[int][]Entry
	nextUser int
	nextExp  int
	calls    map[string]int

	// Fail, when set, makes every request whose path starts with the key
	// return the mapped status code.
	Fail map[string]int
	// Gate, when non-nil, is received from before each GET /get_expenditures
	// response is written. Tests use it to hold a load in flight.
	Gate chan struct{}
}

// New starts a fake service. Close it with Server.Close.
func New() *Server {
	s := &Server{
		users:   make(map[int]*user),
		entries: make(map[int][]Entry),
		calls:   make(map[string]int),
		Fail:    make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /set_budget", s.handleSetBudget)
	mux.HandleFunc("POST /add_expenditure", s.handleAddExpenditure)
	mux.HandleFunc("GET /get_expenditures/{id}", s.handleGetExpenditures)
	mux.HandleFunc("GET /get_user/{id}", s.handleGetUser)

	s.Server = httptest.NewServer(s.middleware(mux))
	return s
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[routeKey(r.URL.Path)]++
		var status int
		for prefix, code := range s.Fail {
			if strings.HasPrefix(r.URL.Path, prefix) {
				status = code
			}
		}
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"message": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// routeKey strips the user id from GET paths so calls can be counted per endpoint.
func routeKey(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	return "/" + parts[0]
}

// Calls returns how many requests hit the endpoint (e.g. "/add_expenditure").
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// TotalCalls returns the number of requests of any kind.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// SetFail injects a failure status for paths with the given prefix. Zero clears it.
func (s *Server) SetFail(prefix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.Fail, prefix)
		return
	}
	s.Fail[prefix] = status
}

// Seed creates a user with a budget and entries, returning its id.
func (s *Server) Seed(username, password string, budget float64, entries ...Entry) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	u := &user{id: s.nextUser, username: username, password: password, budget: budget}
	s.users[u.id] = u
	for _, e := range entries {
		s.nextExp++
		e.ID = s.nextExp
		s.entries[u.id] = append(s.entries[u.id], e)
	}
	return strconv.Itoa(u.id)
}

// Budget returns the stored budget for user id.
func (s *Server) Budget(id string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, _ := strconv.Atoi(id)
	if u, ok := s.users[n]; ok {
		return u.budget
	}
	return 0
}

// Entries returns a copy of the stored entries for user id.
func (s *Server) Entries(id string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, _ := strconv.Atoi(id)
	return append([]Entry(nil), s.entries[n]...)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Username == "" || c.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Username and password are required"})
		return
	}

	s.mu.Lock()
	for _, u := range s.users {
		if u.username == c.Username {
			s.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Username already exists"})
			return
		}
	}
	s.nextUser++
	u := &user{id: s.nextUser, username: c.Username, password: c.Password}
	s.users[u.id] = u
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully", "user_id": u.id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	_ = json.NewDecoder(r.Body).Decode(&c)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.username == c.Username && u.password == c.Password {
			writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user_id": u.id})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
}

func (s *Server) lookup(raw string) (*user, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	u, ok := s.users[n]
	return u, ok
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID json.Number `json:"user_id"`
		Budget float64     `json:"budget"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.lookup(body.UserID.String())
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return
	}
	u.budget = body.Budget
	writeJSON(w, http.StatusOK, map[string]string{"message": "Budget updated successfully"})
}

func (s *Server) handleAddExpenditure(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID json.Number `json:"user_id"`
		Amount float64     `json:"amount"`
		Date   string      `json:"date"`
		Note   string      `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.lookup(body.UserID.String())
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return
	}
	s.nextExp++
	s.entries[u.id] = append(s.entries[u.id], Entry{ID: s.nextExp, Amount: body.Amount, Date: body.Date, Note: body.Note})
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Expenditure added successfully"})
}

func (s *Server) handleGetExpenditures(w http.ResponseWriter, r *http.Request) {
	if s.Gate != nil {
		<-s.Gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.lookup(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusOK, []Entry{})
		return
	}
	entries := s.entries[u.id]
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.lookup(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": u.id, "username": u.username, "budget": u.budget})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
