package auth

import (
	"context"
	"gorm.io/datatypes"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/models"
	"strings"
	"sync"
	"time"
)

// memStore 是 UserStore 的内存实现，用一把锁模拟事务
type memStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

var _ UserStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{nextID: 1, users: map[uint]*models.User{}}
}

func (m *memStore) put(u models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = &u
	return &u
}

func (m *memStore) adminCount() int64 {
	var n int64
	for _, u := range m.users {
		if u.Role.IsPrivileged() {
			n++
		}
	}
	return n
}

func (m *memStore) FindByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) FindByIdentity(_ context.Context, identity string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == identity || u.Email == strings.ToLower(identity) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (m *memStore) AdminExists(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adminCount() > 0, nil
}

func (m *memStore) FirstAdmin(context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var first *models.User
	for _, u := range m.users {
		if u.Role.IsPrivileged() && (first == nil || u.ID < first.ID) {
			first = u
		}
	}
	if first == nil {
		return nil, apperr.NotFound("admin user")
	}
	cp := *first
	return &cp, nil
}

func (m *memStore) CreateFirstAdmin(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	taken := false
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			taken = true
		}
	}
	if err := CheckFirstAdmin(m.adminCount() > 0, taken); err != nil {
		return err
	}

	user.ID = m.nextID
	m.nextID++
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) RecordLogin(_ context.Context, id uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (m *memStore) UpdatePassword(_ context.Context, id uint, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.Password = hash
	return nil
}

func (m *memStore) UpdateProfile(_ context.Context, id uint, profile models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.Profile = datatypes.NewJSONType(profile)
	return nil
}

func (m *memStore) UpdateAccount(_ context.Context, id uint, patch AccountPatch) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	if err := CheckAccountPatch(u, &patch, m.adminCount()); err != nil {
		return nil, err
	}
	updated := patch.Apply(*u)
	m.users[id] = &updated
	cp := updated
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	if err := CheckDeletion(u, m.adminCount()); err != nil {
		return err
	}
	delete(m.users, id)
	return nil
}
