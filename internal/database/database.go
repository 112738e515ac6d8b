package database

import (
	"errors"
	"sort"
	"sync"

	"github.com/isdelr/ewaste-ai-be/internal/models"
)

var (
	// ErrNotFound is returned when a user or analysis does not exist (or is not visible to the caller).
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when another user already holds the email.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository is the credential store.
type UserRepository interface {
	CreateUser(user models.User) (models.User, error)
	GetUserByID(id int64) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
	UpdateUserProfile(id int64, update models.ProfileUpdate) (models.User, error)
}

// AnalysisRepository is the append-only analysis ledger.
type AnalysisRepository interface {
	// AppendAnalysis assigns the next id, stores the record and bumps the owner's
	// stats as one unit. The returned user carries the updated stats.
	AppendAnalysis(analysis models.Analysis) (models.Analysis, models.User, error)
	ListAnalyses(userID int64, offset, limit int) ([]models.Analysis, int, error)
	GetAnalysis(userID, id int64) (models.Analysis, error)
	AnalysesForUser(userID int64) ([]models.Analysis, error)
	// UserWithAnalyses reads the user and all of their analyses under one lock,
	// so the stats always agree with the records.
	UserWithAnalyses(userID int64) (models.User, []models.Analysis, error)
}

// Totals are platform-wide counters.
type Totals struct {
	Users      int
	Analyses   int
	CO2Saved   float64
	ByCategory map[string]int
}

// Store keeps users and analyses in process memory behind a single lock.
type Store struct {
	mu sync.RWMutex

	users        map[int64]*models.User
	usersByEmail map[string]int64
	nextUserID   int64

	analyses       []models.Analysis // ascending id order
	byUser         map[int64][]int   // indexes into analyses, ascending
	nextAnalysisID int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:          make(map[int64]*models.User),
		usersByEmail:   make(map[string]int64),
		byUser:         make(map[int64][]int),
		nextUserID:     1,
		nextAnalysisID: 1,
	}
}

// CreateUser stores a new user, assigning the next id. Email uniqueness is exact-match.
func (s *Store) CreateUser(user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByEmail[user.Email]; taken {
		return models.User{}, ErrEmailTaken
	}

	user.ID = s.nextUserID
	s.nextUserID++
	user.Stats = models.UserStats{}

	stored := user
	s.users[user.ID] = &stored
	s.usersByEmail[user.Email] = user.ID
	return copyUser(stored), nil
}

// GetUserByID returns the user with the given id, including the password hash.
func (s *Store) GetUserByID(id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return copyUser(*u), nil
}

// GetUserByEmail returns the user with the given email, including the password hash.
func (s *Store) GetUserByEmail(email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return copyUser(*s.users[id]), nil
}

// UpdateUserProfile applies the non-nil fields of update.
func (s *Store) UpdateUserProfile(id int64, update models.ProfileUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}

	if update.Email != nil && *update.Email != u.Email {
		if _, taken := s.usersByEmail[*update.Email]; taken {
			return models.User{}, ErrEmailTaken
		}
		delete(s.usersByEmail, u.Email)
		u.Email = *update.Email
		s.usersByEmail[u.Email] = u.ID
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Type != nil {
		u.Type = *update.Type
	}
	return copyUser(*u), nil
}

// AppendAnalysis implements AnalysisRepository.
func (s *Store) AppendAnalysis(analysis models.Analysis) (models.Analysis, models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[analysis.UserID]
	if !ok {
		return models.Analysis{}, models.User{}, ErrNotFound
	}

	analysis = analysis.Clone()
	analysis.ID = s.nextAnalysisID
	s.nextAnalysisID++

	s.analyses = append(s.analyses, analysis)
	s.byUser[u.ID] = append(s.byUser[u.ID], len(s.analyses)-1)

	ts := analysis.Timestamp
	u.Stats.TotalAnalyses++
	u.Stats.TotalCO2Saved += analysis.Prediction.CO2Saved
	u.Stats.LastAnalysis = &ts

	return analysis.Clone(), copyUser(*u), nil
}

// ListAnalyses returns one page of the user's analyses, newest first, plus the total count.
func (s *Store) ListAnalyses(userID int64, offset, limit int) ([]models.Analysis, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.byUser[userID]
	total := len(idx)
	out := []models.Analysis{}
	if offset < 0 || limit <= 0 || offset >= total {
		return out, total, nil
	}

	// idx is ascending by id; walk it backwards.
	for i := total - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.analyses[idx[i]].Clone())
	}
	return out, total, nil
}

// GetAnalysis returns the analysis only if userID owns it.
func (s *Store) GetAnalysis(userID, id int64) (models.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// ids are dense and ascending, so binary search the ledger.
	i := sort.Search(len(s.analyses), func(i int) bool { return s.analyses[i].ID >= id })
	if i == len(s.analyses) || s.analyses[i].ID != id || s.analyses[i].UserID != userID {
		return models.Analysis{}, ErrNotFound
	}
	return s.analyses[i].Clone(), nil
}

// AnalysesForUser returns all of the user's analyses in ascending id order.
func (s *Store) AnalysesForUser(userID int64) ([]models.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.byUser[userID]
	out := make([]models.Analysis, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.analyses[i].Clone())
	}
	return out, nil
}

// UserWithAnalyses implements AnalysisRepository.
func (s *Store) UserWithAnalyses(userID int64) (models.User, []models.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return models.User{}, nil, ErrNotFound
	}
	idx := s.byUser[userID]
	out := make([]models.Analysis, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.analyses[i].Clone())
	}
	return copyUser(*u), out, nil
}

// Totals computes platform-wide counters.
func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := Totals{
		Users:      len(s.users),
		Analyses:   len(s.analyses),
		ByCategory: make(map[string]int),
	}
	for _, u := range s.users {
		t.CO2Saved += u.Stats.TotalCO2Saved
	}
	for _, a := range s.analyses {
		t.ByCategory[a.Prediction.WasteType]++
	}
	return t
}

func copyUser(u models.User) models.User {
	if u.Stats.LastAnalysis != nil {
		ts := *u.Stats.LastAnalysis
		u.Stats.LastAnalysis = &ts
	}
	return u
}
