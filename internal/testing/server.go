package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/cinex/internal/models"
)

// RecordedRequest is what [MovieServer] saw for one request.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	RequestID     string
	Body          string
}

type account struct {
	user     models.User
	password string
}

type failure struct {
	status  int
	message string
}

// MovieServer is an in-memory movie API served over [httptest.Server].
type MovieServer struct {
	*httptest.Server

	mu         sync.Mutex
	movies     []models.Movie
	accounts   map[string]*account
	tokens     map[string]int
	watchlists map[int]map[int]time.Time
	likes      map[int]map[int]bool
	failures   map[string]failure
	requests   []RecordedRequest
	nextUserID int
}

// NewMovieServer starts a server seeded with movies (or [SampleMovies] when none are given).
// It is closed when the test ends.
func NewMovieServer(t *testing.T, movies ...models.Movie) *MovieServer {
	t.Helper()
	if len(movies) == 0 {
		movies = SampleMovies()
	}

	s := &MovieServer{
		movies:     movies,
		accounts:   map[string]*account{},
		tokens:     map[string]int{},
		watchlists: map[int]map[int]time.Time{},
		likes:      map[int]map[int]bool{},
		failures:   map[string]failure{},
		nextUserID: 1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /movies", s.listMovies)
	mux.HandleFunc("GET /movies/filters", s.filterOptions)
	mux.HandleFunc("GET /movies/{id}", s.getMovie)
	mux.HandleFunc("GET /watchlist", s.authed(s.getWatchlist))
	mux.HandleFunc("GET /watchlist/status", s.authed(s.watchlistStatus))
	mux.HandleFunc("POST /watchlist/{id}", s.authed(s.addToWatchlist))
	mux.HandleFunc("DELETE /watchlist/{id}", s.authed(s.removeFromWatchlist))
	mux.HandleFunc("POST /user/likes", s.authed(s.like))
	mux.HandleFunc("DELETE /user/likes/{id}", s.authed(s.unlike))
	mux.HandleFunc("GET /user/watchlist", s.authed(s.userWatchlist))
	mux.HandleFunc("POST /user/watchlist", s.authed(s.addUserWatchlist))
	mux.HandleFunc("DELETE /user/watchlist/{id}", s.authed(s.removeUserWatchlist))
	mux.HandleFunc("GET /user/recommendations", s.authed(s.recommendations))
	mux.HandleFunc("POST /auth/register", s.register)
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("GET /auth/me", s.authed(s.me))

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// SampleMovies is a small catalog used across tests.
func SampleMovies() []models.Movie {
	return []models.Movie{
		{ID: 1, Title: "Sholay", ReleaseYear: 1975, Genre: "Action", Language: "Hindi", IMDbRating: 8.1, BudgetCrores: 3, GrossCrores: 15, FilmImageURL: "https://img.example.com/sholay.jpg", Synopsis: "Two outlaws are hired to capture a bandit."},
		{ID: 2, Title: "Lagaan", ReleaseYear: 2001, Genre: "Drama", Language: "Hindi", IMDbRating: 8.1, BudgetCrores: 25, GrossCrores: 65.97, PosterURL: "https://img.example.com/lagaan.jpg"},
		{ID: 3, Title: "Dilwale Dulhania Le Jayenge", ReleaseYear: 1995, Genre: "Romance", Language: "Hindi", IMDbRating: 8.0, BudgetCrores: 4, GrossCrores: 102.5},
		{ID: 4, Title: "3 Idiots", ReleaseYear: 2009, Genre: "Comedy", Language: "Hindi", IMDbRating: 8.4, BudgetCrores: 55, GrossCrores: 460},
		{ID: 5, Title: "Drishyam", ReleaseYear: 2015, Genre: "Crime, Drama", Language: "Hindi", IMDbRating: 8.2, BudgetCrores: 38, GrossCrores: 110},
	}
}

// SeedUser registers an account directly and returns a valid token for it.
func (s *MovieServer) SeedUser(username, email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.createAccount(username, email, password)
	return s.issueToken(acct.user.ID)
}

// Fail makes every request to path respond with status and message until [MovieServer.Recover] is called.
func (s *MovieServer) Fail(path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, message: message}
}

// Recover removes an injected failure.
func (s *MovieServer) Recover(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, path)
}

// Requests returns the recorded requests whose path is path, or all of them when path is empty.
func (s *MovieServer) Requests(path string) []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []RecordedRequest
	for _, r := range s.requests {
		if path == "" || r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// InWatchlist reports whether the user owning token has movieID watchlisted.
func (s *MovieServer) InWatchlist(token string, movieID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.watchlists[s.tokens[token]][movieID]
	return ok
}

// Liked reports whether the user owning token likes movieID.
func (s *MovieServer) Liked(token string, movieID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likes[s.tokens[token]][movieID]
}

func (s *MovieServer) createAccount(username, email, password string) *account {
	acct := &account{
		user:     models.User{ID: s.nextUserID, Username: username, Email: email, CreatedAt: "2025-01-01T00:00:00"},
		password: password,
	}
	s.nextUserID++
	s.accounts[email] = acct
	return acct
}

func (s *MovieServer) issueToken(userID int) string {
	token := fmt.Sprintf("token-%d-%d", userID, len(s.tokens)+1)
	s.tokens[token] = userID
	return token
}

func (s *MovieServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          string(body),
		})
		f, failing := s.failures[r.URL.Path]
		s.mu.Unlock()

		if failing {
			writeJSON(w, f.status, map[string]any{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *MovieServer) authed(next func(http.ResponseWriter, *http.Request, int)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		userID, known := s.tokens[token]
		s.mu.Unlock()
		if !ok || !known {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "Missing Authorization Header"})
			return
		}
		next(w, r, userID)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *MovieServer) movie(id int) (models.Movie, bool) {
	for _, m := range s.movies {
		if m.ID == id {
			return m, true
		}
	}
	return models.Movie{}, false
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
		return 0, false
	}
	return id, true
}

func summary(m models.Movie) models.Movie {
	m.Synopsis = ""
	return m
}

func (s *MovieServer) listMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))
	genre := strings.ToLower(strings.TrimSpace(q.Get("genre")))
	year, _ := strconv.Atoi(q.Get("year"))
	minRating, hasMin := parseFloat(q.Get("min_rating"))
	maxRating, hasMax := parseFloat(q.Get("max_rating"))
	sortKey := q.Get("sort")
	if sortKey == "" {
		sortKey = "rating_desc"
	}
	limit := 60
	if l, err := strconv.Atoi(q.Get("limit")); err == nil {
		limit = l
	}

	s.mu.Lock()
	var out []models.Movie
	for _, m := range s.movies {
		switch {
		case search != "" && !strings.Contains(strings.ToLower(m.Title), search):
		case genre != "" && !strings.Contains(strings.ToLower(m.Genre), genre):
		case year != 0 && m.ReleaseYear != year:
		case hasMin && m.IMDbRating < minRating:
		case hasMax && m.IMDbRating > maxRating:
		default:
			out = append(out, summary(m))
		}
	}
	s.mu.Unlock()

	slices.SortStableFunc(out, func(a, b models.Movie) int {
		switch sortKey {
		case "rating_asc":
			return cmpFloat(a.IMDbRating, b.IMDbRating)
		case "year_desc":
			return b.ReleaseYear - a.ReleaseYear
		case "year_asc":
			return a.ReleaseYear - b.ReleaseYear
		case "title_asc":
			return strings.Compare(a.Title, b.Title)
		default:
			return cmpFloat(b.IMDbRating, a.IMDbRating)
		}
	})

	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []models.Movie{}
	}

	applied := map[string]any{"search": search, "genre": genre, "year": nil, "min_rating": nil, "max_rating": nil, "sort": sortKey}
	if year != 0 {
		applied["year"] = year
	}
	if hasMin {
		applied["min_rating"] = minRating
	}
	if hasMax {
		applied["max_rating"] = maxRating
	}

	writeJSON(w, http.StatusOK, map[string]any{"movies": out, "total_count": len(out), "filters_applied": applied})
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (s *MovieServer) filterOptions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	genreSet := map[string]bool{}
	yearSet := map[int]bool{}
	lo, hi := 10.0, 0.0
	for _, m := range s.movies {
		genreSet[m.Genre] = true
		yearSet[m.ReleaseYear] = true
		lo, hi = min(lo, m.IMDbRating), max(hi, m.IMDbRating)
	}
	s.mu.Unlock()

	genres := make([]string, 0, len(genreSet))
	for g := range genreSet {
		genres = append(genres, g)
	}
	slices.Sort(genres)

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	slices.Sort(years)
	slices.Reverse(years)

	sorts := make([]models.SortOption, len(models.SortKeys))
	for i, k := range models.SortKeys {
		sorts[i] = models.SortOption{Value: k, Label: k.Label()}
	}

	writeJSON(w, http.StatusOK, models.FilterOptions{
		Genres:      genres,
		Years:       years,
		RatingRange: models.RatingRange{Min: lo, Max: hi},
		SortOptions: sorts,
	})
}

func (s *MovieServer) getMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	m, found := s.movie(id)
	s.mu.Unlock()
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Movie not found"})
		return
	}
	if m.PosterURL == "" {
		m.PosterURL = m.FilmImageURL
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *MovieServer) getWatchlist(w http.ResponseWriter, r *http.Request, userID int) {
	s.mu.Lock()
	entries := []models.WatchlistEntry{}
	for _, m := range s.movies {
		if added, ok := s.watchlists[userID][m.ID]; ok {
			entries = append(entries, models.WatchlistEntry{
				Movie:            summary(m),
				AddedToWatchlist: added.Format("2006-01-02T15:04:05.000000"),
				InWatchlist:      true,
			})
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"watchlist": entries, "total_count": len(entries)})
}

func (s *MovieServer) watchlistStatus(w http.ResponseWriter, r *http.Request, userID int) {
	raw := r.URL.Query().Get("movie_ids")
	status := map[string]bool{}
	if raw == "" {
		writeJSON(w, http.StatusOK, map[string]any{"status": status})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid movie_ids format"})
			return
		}
		_, in := s.watchlists[userID][id]
		status[strconv.Itoa(id)] = in
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

func (s *MovieServer) addToWatchlist(w http.ResponseWriter, r *http.Request, userID int) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, found := s.movie(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Movie not found"})
		return
	}
	if _, exists := s.watchlists[userID][id]; exists {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Movie already in watchlist", "in_watchlist": true})
		return
	}
	if s.watchlists[userID] == nil {
		s.watchlists[userID] = map[int]time.Time{}
	}
	s.watchlists[userID][id] = time.Now()
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true, "message": fmt.Sprintf("'%s' added to watchlist", m.Title), "in_watchlist": true, "movie": summary(m),
	})
}

func (s *MovieServer) removeFromWatchlist(w http.ResponseWriter, r *http.Request, userID int) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, found := s.movie(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Movie not found"})
		return
	}
	if _, exists := s.watchlists[userID][id]; !exists {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Movie not in watchlist", "in_watchlist": false})
		return
	}
	delete(s.watchlists[userID], id)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true, "message": fmt.Sprintf("'%s' removed from watchlist", m.Title), "in_watchlist": false, "movie": summary(m),
	})
}

func decodeMovieID(r *http.Request) (int, bool) {
	var body struct {
		MovieID int `json:"movie_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.MovieID == 0 {
		return 0, false
	}
	return body.MovieID, true
}

func (s *MovieServer) like(w http.ResponseWriter, r *http.Request, userID int) {
	id, ok := decodeMovieID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "movie_id is required"})
		return
	}

	s.mu.Lock()
	if s.likes[userID] == nil {
		s.likes[userID] = map[int]bool{}
	}
	s.likes[userID][id] = true
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

func (s *MovieServer) unlike(w http.ResponseWriter, r *http.Request, userID int) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.likes[userID], id)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *MovieServer) userWatchlist(w http.ResponseWriter, r *http.Request, userID int) {
	s.mu.Lock()
	movies := []models.Movie{}
	for _, m := range s.movies {
		if _, ok := s.watchlists[userID][m.ID]; ok {
			movies = append(movies, summary(m))
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"movies": movies})
}

func (s *MovieServer) addUserWatchlist(w http.ResponseWriter, r *http.Request, userID int) {
	id, ok := decodeMovieID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "movie_id is required"})
		return
	}

	s.mu.Lock()
	if s.watchlists[userID] == nil {
		s.watchlists[userID] = map[int]time.Time{}
	}
	s.watchlists[userID][id] = time.Now()
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

func (s *MovieServer) removeUserWatchlist(w http.ResponseWriter, r *http.Request, userID int) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.watchlists[userID], id)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// recommendations suggests unwatchlisted movies rated 8.2 or higher.
func (s *MovieServer) recommendations(w http.ResponseWriter, r *http.Request, userID int) {
	s.mu.Lock()
	movies := []models.Movie{}
	for _, m := range s.movies {
		if _, in := s.watchlists[userID][m.ID]; !in && m.IMDbRating >= 8.2 {
			movies = append(movies, summary(m))
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"movies": movies})
}

func (s *MovieServer) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" || body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Missing fields"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[body.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "User already exists"})
		return
	}
	acct := s.createAccount(body.Username, body.Email, body.Password)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully", "token": s.issueToken(acct.user.ID), "user": acct.user,
	})
}

func (s *MovieServer) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Missing credentials"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[body.Email]
	if !ok || acct.password != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": s.issueToken(acct.user.ID), "user": acct.user})
}

func (s *MovieServer) me(w http.ResponseWriter, r *http.Request, userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if acct.user.ID == userID {
			writeJSON(w, http.StatusOK, map[string]any{"id": acct.user.ID, "username": acct.user.Username, "email": acct.user.Email})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "User not found"})
}
