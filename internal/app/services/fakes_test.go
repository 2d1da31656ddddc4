package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/tutorledger/internal/app/models"
	"github.com/yigit/tutorledger/internal/app/repositories"
	"github.com/yigit/tutorledger/internal/config"
	"github.com/yigit/tutorledger/internal/pkg/apperrors"
)

type memToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

// memStore is an in-memory stand-in for the database shared by the fake repositories
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    []models.User
	students []models.Student
	sessions []models.Session
	tokens   map[string]*memToken
	inserts  int

	failStudentCreate error
}

func newMemStore() *memStore {
	return &memStore{tokens: make(map[string]*memToken)}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

type memSnapshot struct {
	nextID   int64
	users    []models.User
	students []models.Student
	sessions []models.Session
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memSnapshot{
		nextID:   m.nextID,
		users:    append([]models.User(nil), m.users...),
		students: append([]models.Student(nil), m.students...),
		sessions: append([]models.Session(nil), m.sessions...),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID, m.users, m.students, m.sessions = s.nextID, s.users, s.students, s.sessions
}

func (m *memStore) repos() *repositories.Repositories {
	return &repositories.Repositories{
		Users:    &fakeUserRepo{m},
		Students: &fakeStudentRepo{m},
		Sessions: &fakeSessionRepo{m},
		Tokens:   &fakeTokenRepo{m},
	}
}

// fakeTx rolls the store back when fn fails
type fakeTx struct {
	store *memStore
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *repositories.Repositories) error) error {
	f.calls++
	snap := f.store.snapshot()
	if err := fn(ctx, f.store.repos()); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

type fakeUserRepo struct{ m *memStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == user.Username {
			return apperrors.NewDuplicateIdentityError("username", user.Username)
		}
		if u.Email == strings.ToLower(user.Email) {
			return apperrors.NewDuplicateIdentityError("email", user.Email)
		}
	}
	user.ID = r.m.id()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.m.users = append(r.m.users, *user)
	r.m.inserts++
	return nil
}

func (r *fakeUserRepo) find(match func(models.User) bool) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role models.RoleType) ([]models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.User
	for _, u := range r.m.users {
		if u.RoleType == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeStudentRepo struct{ m *memStore }

func (r *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failStudentCreate != nil {
		return r.m.failStudentCreate
	}
	found := false
	for _, u := range r.m.users {
		if u.ID == student.ParentID {
			found = true
		}
	}
	if !found {
		return apperrors.ErrParentNotFound
	}
	student.ID = r.m.id()
	r.m.students = append(r.m.students, *student)
	r.m.inserts++
	return nil
}

func (r *fakeStudentRepo) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.students {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (r *fakeStudentRepo) filter(match func(models.Student) bool) []models.Student {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]models.Student, 0)
	for _, s := range r.m.students {
		if match(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *fakeStudentRepo) GetByName(ctx context.Context, name string) ([]models.Student, error) {
	return r.filter(func(s models.Student) bool { return s.Name == name }), nil
}

func (r *fakeStudentRepo) ListAll(ctx context.Context) ([]models.Student, error) {
	return r.filter(func(models.Student) bool { return true }), nil
}

func (r *fakeStudentRepo) ListByParent(ctx context.Context, parentID int64) ([]models.Student, error) {
	return r.filter(func(s models.Student) bool { return s.ParentID == parentID }), nil
}

func (r *fakeStudentRepo) UpdateDefaultPrice(ctx context.Context, id int64, price models.Money) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := range r.m.students {
		if r.m.students[i].ID == id {
			r.m.students[i].DefaultPrice = price
			return nil
		}
	}
	return apperrors.ErrStudentNotFound
}

type fakeSessionRepo struct{ m *memStore }

func (r *fakeSessionRepo) Create(ctx context.Context, session *models.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	session.ID = r.m.id()
	session.Paid = false
	r.m.sessions = append(r.m.sessions, *session)
	r.m.inserts++
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id int64) (*models.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.sessions {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, apperrors.ErrSessionNotFound
}

func (r *fakeSessionRepo) filter(match func(models.Session) bool) []models.Session {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]models.Session, 0)
	for _, s := range r.m.sessions {
		if match(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (r *fakeSessionRepo) ListByStudent(ctx context.Context, studentID int64) ([]models.Session, error) {
	return r.filter(func(s models.Session) bool { return s.StudentID == studentID }), nil
}

func (r *fakeSessionRepo) ListByStudents(ctx context.Context, studentIDs []int64) ([]models.Session, error) {
	want := make(map[int64]bool, len(studentIDs))
	for _, id := range studentIDs {
		want[id] = true
	}
	return r.filter(func(s models.Session) bool { return want[s.StudentID] }), nil
}

func (r *fakeSessionRepo) ListAll(ctx context.Context) ([]models.Session, error) {
	return r.filter(func(models.Session) bool { return true }), nil
}

func (r *fakeSessionRepo) ListByPaid(ctx context.Context, paid bool) ([]models.Session, error) {
	return r.filter(func(s models.Session) bool { return s.Paid == paid }), nil
}

func (r *fakeSessionRepo) SetPaid(ctx context.Context, id int64, paid bool) (*models.Session, error) {
	r.m.mu.Lock()
	for i := range r.m.sessions {
		if r.m.sessions[i].ID == id {
			r.m.sessions[i].Paid = paid
			s := r.m.sessions[i]
			r.m.mu.Unlock()
			return &s, nil
		}
	}
	r.m.mu.Unlock()
	return nil, apperrors.ErrSessionNotFound
}

type fakeTokenRepo struct{ m *memStore }

func (r *fakeTokenRepo) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.tokens[token] = &memToken{userID: userID, expiry: expiryDate}
	return nil
}

func (r *fakeTokenRepo) GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tokens[token]
	switch {
	case !ok:
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	case t.revoked:
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	case t.expiry.Before(time.Now()):
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return t.userID, t.expiry, nil
}

func (r *fakeTokenRepo) RevokeToken(ctx context.Context, token string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}

func (r *fakeTokenRepo) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, t := range r.m.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

func defaultOptions() Options {
	return Options{
		MarkPaidMode:          config.MarkPaidToggle,
		ParentProvisioning:    config.ParentProvisioningStrict,
		ParentPasswordPolicy:  config.ParentPasswordGenerate,
		ParentDefaultPassword: "parent123",
		GeneratedPasswordLen:  12,
	}
}

// fixture is a populated store with a teacher, two parents and their children
type fixture struct {
	store   *memStore
	repos   *repositories.Repositories
	tx      *fakeTx
	teacher models.User
	parentA models.User
	parentB models.User
	sophie  models.Student
	lucas   models.Student
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{store: store, repos: store.repos(), tx: &fakeTx{store: store}}
	ctx := context.Background()

	f.teacher = models.User{Username: "teacher", Email: "teacher@example.com", PasswordHash: "x", RoleType: models.RoleTeacher}
	f.parentA = models.User{Username: "martin", Email: "parent@example.com", PasswordHash: "x", RoleType: models.RoleParent}
	f.parentB = models.User{Username: "dubois", Email: "dubois@example.com", PasswordHash: "x", RoleType: models.RoleParent}
	for _, u := range []*models.User{&f.teacher, &f.parentA, &f.parentB} {
		_ = f.repos.Users.Create(ctx, u)
	}

	f.sophie = models.Student{Name: "Sophie Martin", ParentID: f.parentA.ID, DefaultPrice: models.MoneyFromCents(2550)}
	f.lucas = models.Student{Name: "Lucas Dubois", ParentID: f.parentB.ID, DefaultPrice: models.MoneyFromCents(4000)}
	_ = f.repos.Students.Create(ctx, &f.sophie)
	_ = f.repos.Students.Create(ctx, &f.lucas)
	store.inserts = 0
	return f
}

var nopLogger = zerolog.Nop()
