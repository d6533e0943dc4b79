// Package apitest runs an in-process fake of the delivery backend for tests.
// Routes mirror the real API; behaviour is driven by the exported fields,
// which tests may change between calls (under Lock/Unlock when the server
// is already serving).
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/deliveryio/internal/common"
	"github.com/gorilla/mux"
)

// Account is a backend user.
type Account struct {
	Password string
	Token    string
	// ID and Building are omitted from the token response when zero.
	ID       int64
	Building string
}

// Upload is a package received through POST /api/packages/list/.
type Upload struct {
	OwnerName     string
	ApNumber      string
	PackageType   string
	PhotoName     string
	PhotoType     string
	PhotoData     []byte
	Authorization string
}

// Call is one request seen by the server.
type Call struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type Server struct {
	*httptest.Server

	mu sync.Mutex

	Accounts  map[string]Account
	Packages  []any
	Paginate  bool
	Types     []map[string]any
	Buildings []map[string]any
	// Fail forces a status for a path, e.g. Fail["/api/token/"] = 500.
	Fail map[string]int

	Registered []map[string]any
	Uploads    []Upload
	Calls      []Call
}

// New starts a server that is closed when the test ends.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		Accounts: map[string]Account{},
		Fail:     map[string]int{},
		Types: []map[string]any{
			{"id": 1, "type": "Caixa"},
			{"id": 2, "type": "Envelope"},
		},
		Buildings: []map[string]any{
			{"id": 1, "building_name": "Bloco A"},
			{"id": 2, "building_name": "Bloco B"},
		},
	}

	r := mux.NewRouter()
	r.Use(s.record, s.failures)
	r.HandleFunc("/api/token/", s.token).Methods(http.MethodPost)
	r.HandleFunc("/api/register/", s.register).Methods(http.MethodPost)
	r.HandleFunc("/api/packages/list/", s.requireToken(s.listPackages)).Methods(http.MethodGet)
	r.HandleFunc("/api/packages/list/", s.requireToken(s.createPackage)).Methods(http.MethodPost)
	r.HandleFunc("/api/types/", s.catalog(func() any { return s.Types })).Methods(http.MethodGet)
	r.HandleFunc("/api/buildings/", s.catalog(func() any { return s.Buildings })).Methods(http.MethodGet)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) Lock()   { s.mu.Lock() }
func (s *Server) Unlock() { s.mu.Unlock() }

// CallsTo returns how many requests hit path.
func (s *Server) CallsTo(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		if c.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.Calls = append(s.Calls, Call{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get(common.RequestIDHeader),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		code, ok := s.Fail[r.URL.Path]
		s.mu.Unlock()
		if ok {
			writeJSON(w, code, map[string]string{"detail": http.StatusText(code)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed"})
		return
	}

	s.mu.Lock()
	acc, ok := s.Accounts[in.Username]
	s.mu.Unlock()
	if !ok || acc.Password != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}

	out := map[string]any{"access": acc.Token, "refresh": "refresh-" + acc.Token}
	if acc.ID != 0 {
		out["id"] = acc.ID
	}
	if acc.Building != "" {
		out["building"] = acc.Building
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed"})
		return
	}

	username, _ := in["username"].(string)
	email, _ := in["email"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.Accounts[username]; taken {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"A user with that username already exists."}})
		return
	}
	if !strings.Contains(email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"Enter a valid email address."}})
		return
	}

	password, _ := in["password"].(string)
	s.Accounts[username] = Account{Password: password, Token: "tok-" + username}
	s.Registered = append(s.Registered, in)
	writeJSON(w, http.StatusCreated, map[string]any{"username": username, "email": email})
}

func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if ok {
			s.mu.Lock()
			ok = false
			for _, acc := range s.Accounts {
				if acc.Token == token {
					ok = true
					break
				}
			}
			s.mu.Unlock()
		}
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		next(w, r)
	}
}

func (s *Server) listPackages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := append([]any(nil), s.Packages...)
	paginate := s.Paginate
	s.mu.Unlock()

	if items == nil {
		items = []any{}
	}
	if paginate {
		writeJSON(w, http.StatusOK, map[string]any{"count": len(items), "next": nil, "previous": nil, "results": items})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createPackage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}

	file, header, err := r.FormFile("photo_field")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"photo_field": {"No file was submitted."}})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}

	up := Upload{
		OwnerName:     r.FormValue("owner_name"),
		ApNumber:      r.FormValue("ap_number"),
		PackageType:   r.FormValue("package_type"),
		PhotoName:     header.Filename,
		PhotoType:     header.Header.Get("Content-Type"),
		PhotoData:     data,
		Authorization: r.Header.Get("Authorization"),
	}
	if _, err := strconv.Atoi(up.ApNumber); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"ap_number": {"A valid integer is required."}})
		return
	}

	s.mu.Lock()
	s.Uploads = append(s.Uploads, up)
	id := len(s.Uploads)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "owner_name": up.OwnerName})
}

func (s *Server) catalog(items func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, items())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
