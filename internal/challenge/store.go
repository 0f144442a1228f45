package challenge

import (
	"sort"
	"sync"

	"github.com/verte-zerg/reptrack/internal/model"
)

// Store maps user ids to profiles. Each user has its own lock so writes for
// one user never wait on another user's work.
type Store struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
	locks    map[string]*sync.Mutex
	newFn    func(userID string) *model.Profile
}

// NewStore returns an empty store. newFn builds profiles for unknown users;
// nil means model.NewProfile.
func NewStore(newFn func(userID string) *model.Profile) *Store {
	if newFn == nil {
		newFn = model.NewProfile
	}
	return &Store{
		profiles: map[string]*model.Profile{},
		locks:    map[string]*sync.Mutex{},
		newFn:    newFn,
	}
}

// lockUser acquires the user's lock and returns its release func.
func (s *Store) lockUser(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// profile returns the user's profile, creating it on first access. The
// caller must hold the user's lock.
func (s *Store) profile(userID string) *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		p = s.newFn(userID)
		p.UserID = userID
		s.profiles[userID] = p
	}
	if p.Challenges == nil {
		p.Challenges = map[string]*model.Challenge{}
	}
	return p
}

// lookup returns the user's profile without creating it.
func (s *Store) lookup(userID string) (*model.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	return p, ok
}

// Users returns the known user ids in sorted order.
func (s *Store) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}

// Replace swaps the whole content for the given profiles. Nil challenge maps
// are normalized so loaded data behaves like freshly created data.
func (s *Store) Replace(profiles map[string]*model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = make(map[string]*model.Profile, len(profiles))
	for id, p := range profiles {
		if p == nil {
			continue
		}
		p.UserID = id
		if p.Challenges == nil {
			p.Challenges = map[string]*model.Challenge{}
		}
		for _, c := range p.Challenges {
			if c.DailyRecords == nil {
				c.DailyRecords = map[string]int{}
			}
		}
		s.profiles[id] = p
	}
}
