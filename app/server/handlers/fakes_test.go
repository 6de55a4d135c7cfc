package handlers

import (
	"context"
	"errors"
	"gorm.io/datatypes"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/auth"
	"portfolio-backend/app/server/models"
	"portfolio-backend/app/server/query"
	"portfolio-backend/app/server/stats"
	"portfolio-backend/app/server/store"
	"strconv"
	"strings"
	"sync"
	"time"
)

var errStoreDown = errors.New("connection refused")

// fakeUsers 同时实现 auth.UserStore 与 UserRepository
type fakeUsers struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

var (
	_ auth.UserStore = (*fakeUsers)(nil)
	_ UserRepository = (*fakeUsers)(nil)
)

func newFakeUsers() *fakeUsers {
	return &fakeUsers{nextID: 1, users: map[uint]*models.User{}}
}

func (f *fakeUsers) put(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = &u
	return &u
}

func (f *fakeUsers) admins() int64 {
	var n int64
	for _, u := range f.users {
		if u.Role.IsPrivileged() {
			n++
		}
	}
	return n
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByIdentity(_ context.Context, identity string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == identity || u.Email == strings.ToLower(identity) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (f *fakeUsers) AdminExists(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.admins() > 0, nil
}

func (f *fakeUsers) FirstAdmin(context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var first *models.User
	for _, u := range f.users {
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

func (f *fakeUsers) CreateFirstAdmin(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	taken := false
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			taken = true
		}
	}
	if err := auth.CheckFirstAdmin(f.admins() > 0, taken); err != nil {
		return err
	}
	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) RecordLogin(_ context.Context, id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.Password = hash
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uint, profile models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.Profile = datatypes.NewJSONType(profile)
	return nil
}

func (f *fakeUsers) UpdateAccount(_ context.Context, id uint, patch auth.AccountPatch) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	if err := auth.CheckAccountPatch(u, &patch, f.admins()); err != nil {
		return nil, err
	}
	updated := patch.Apply(*u)
	f.users[id] = &updated
	cp := updated
	return &cp, nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	if err := auth.CheckDeletion(u, f.admins()); err != nil {
		return err
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) List(_ context.Context, _ store.UserFilter, p query.Params) ([]models.User, query.Pagination, error) {
	users, _ := f.All(context.Background())
	return users, query.NewPagination(p.Page, p.Limit, int64(len(users))), nil
}

func (f *fakeUsers) All(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := []models.User{}
	for id := uint(1); id < f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

// fakeProjects 记录最后一次查询的条件
type fakeProjects struct {
	mu         sync.Mutex
	nextID     uint
	projects   map[uint]*models.Project
	lastFilter store.ProjectFilter
	lastParams query.Params
	lastTerm   string
	err        error
}

var _ ProjectRepository = (*fakeProjects)(nil)

func newFakeProjects() *fakeProjects {
	return &fakeProjects{nextID: 1, projects: map[uint]*models.Project{}}
}

func (f *fakeProjects) put(p models.Project) *models.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID
	f.nextID++
	f.projects[p.ID] = &p
	return &p
}

func (f *fakeProjects) List(_ context.Context, filter store.ProjectFilter, p query.Params) ([]models.Project, query.Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, query.Pagination{}, f.err
	}
	f.lastFilter, f.lastParams = filter, p
	projects := []models.Project{}
	for id := uint(1); id < f.nextID; id++ {
		if pr, ok := f.projects[id]; ok && (filter.IsPublic == nil || pr.IsPublic == *filter.IsPublic) {
			projects = append(projects, *pr)
		}
	}
	return projects, query.NewPagination(p.Page, p.Limit, int64(len(projects))), nil
}

func (f *fakeProjects) Get(_ context.Context, id uint) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, apperr.NotFound("project")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) increment(id uint, bump func(*models.ProjectMetrics)) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok || !p.IsPublic {
		return nil, apperr.NotFound("project")
	}
	bump(&p.Metrics)
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) View(_ context.Context, id uint) (*models.Project, error) {
	return f.increment(id, func(m *models.ProjectMetrics) { m.Views++ })
}

func (f *fakeProjects) Like(_ context.Context, id uint) (*models.Project, error) {
	return f.increment(id, func(m *models.ProjectMetrics) { m.Likes++ })
}

func (f *fakeProjects) Create(_ context.Context, project *models.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	project.ID = f.nextID
	f.nextID++
	cp := *project
	f.projects[project.ID] = &cp
	return nil
}

func (f *fakeProjects) Update(_ context.Context, id uint, mutate store.Mutator[models.Project]) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, apperr.NotFound("project")
	}
	cp := *p
	if err := mutate(&cp); err != nil {
		return nil, err
	}
	// 与数据库实现一致，计数不会被覆盖
	cp.Metrics = p.Metrics
	f.projects[id] = &cp
	out := cp
	return &out, nil
}

func (f *fakeProjects) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return apperr.NotFound("project")
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeProjects) Featured(_ context.Context, limit int) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	projects := []models.Project{}
	for id := uint(1); id < f.nextID && len(projects) < limit; id++ {
		if p, ok := f.projects[id]; ok && p.Featured && p.IsPublic {
			projects = append(projects, *p)
		}
	}
	return projects, nil
}

func (f *fakeProjects) Search(_ context.Context, term string, filter store.ProjectFilter, _ int) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTerm, f.lastFilter = term, filter
	return []models.Project{}, nil
}

func (f *fakeProjects) Facets(context.Context) (*store.ProjectFacets, error) {
	return &store.ProjectFacets{Categories: []string{"backend"}, Technologies: []string{"Go"}, Tags: []string{}}, nil
}

func (f *fakeProjects) Recent(ctx context.Context, _ int) ([]models.Project, error) {
	return f.All(ctx)
}

func (f *fakeProjects) All(context.Context) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	projects := []models.Project{}
	for id := uint(1); id < f.nextID; id++ {
		if p, ok := f.projects[id]; ok {
			projects = append(projects, *p)
		}
	}
	return projects, nil
}

type fakeContacts struct {
	mu       sync.Mutex
	nextID   uint
	contacts map[uint]*models.Contact
	err      error
}

var _ ContactRepository = (*fakeContacts)(nil)

func newFakeContacts() *fakeContacts {
	return &fakeContacts{nextID: 1, contacts: map[uint]*models.Contact{}}
}

func (f *fakeContacts) List(_ context.Context, _ store.ContactFilter, p query.Params) ([]models.Contact, query.Pagination, error) {
	contacts, _ := f.All(context.Background())
	return contacts, query.NewPagination(p.Page, p.Limit, int64(len(contacts))), nil
}

func (f *fakeContacts) Create(_ context.Context, contact *models.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	contact.ID = f.nextID
	f.nextID++
	cp := *contact
	f.contacts[contact.ID] = &cp
	return nil
}

func (f *fakeContacts) Get(_ context.Context, id uint) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return nil, apperr.NotFound("contact")
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContacts) Update(_ context.Context, id uint, mutate store.Mutator[models.Contact]) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return nil, apperr.NotFound("contact")
	}
	cp := *c
	if err := mutate(&cp); err != nil {
		return nil, err
	}
	f.contacts[id] = &cp
	out := cp
	return &out, nil
}

func (f *fakeContacts) MarkSpam(_ context.Context, id uint) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return nil, apperr.NotFound("contact")
	}
	c.IsSpam = true
	if !c.HasTag(models.SpamTag) {
		c.Tags = append(c.Tags, models.SpamTag)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContacts) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contacts[id]; !ok {
		return apperr.NotFound("contact")
	}
	delete(f.contacts, id)
	return nil
}

func (f *fakeContacts) Recent(ctx context.Context, _ int) ([]models.Contact, error) {
	return f.All(ctx)
}

func (f *fakeContacts) All(context.Context) ([]models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contacts := []models.Contact{}
	for id := uint(1); id < f.nextID; id++ {
		if c, ok := f.contacts[id]; ok {
			contacts = append(contacts, *c)
		}
	}
	return contacts, nil
}

type fakeReporter struct{}

func (fakeReporter) Projects(context.Context) (*stats.ProjectReport, error) {
	return &stats.ProjectReport{Total: 2, ByCategory: stats.Breakdown{"backend": 2}}, nil
}

func (fakeReporter) Contacts(context.Context) (*stats.ContactReport, error) {
	return &stats.ContactReport{Total: 1, New: 1}, nil
}

func (fakeReporter) Users(context.Context) (*stats.UserReport, error) {
	return &stats.UserReport{Total: 1, Active: 1, Admins: 1}, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	contacts []models.Contact
}

func (n *recordingNotifier) ContactSubmitted(contact *models.Contact) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contacts = append(n.contacts, *contact)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.contacts)
}

func errStoreDownDependency() error {
	return apperr.Dependency("list projects", errStoreDown)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
