package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appModels "github.com/yigit/tutorledger/internal/app/models"
	appRepos "github.com/yigit/tutorledger/internal/app/repositories"
	"github.com/yigit/tutorledger/internal/config"
	"github.com/yigit/tutorledger/internal/pkg/apperrors"
)

type memUsers struct{ users []appModels.User }

func (m *memUsers) Create(ctx context.Context, u *appModels.User) error {
	u.ID = int64(len(m.users) + 1)
	m.users = append(m.users, *u)
	return nil
}

func (m *memUsers) find(match func(appModels.User) bool) (*appModels.User, error) {
	for i := range m.users {
		if match(m.users[i]) {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*appModels.User, error) {
	return m.find(func(u appModels.User) bool { return u.ID == id })
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*appModels.User, error) {
	return m.find(func(u appModels.User) bool { return u.Username == username })
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*appModels.User, error) {
	return m.find(func(u appModels.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *memUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

func (m *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) ListByRole(ctx context.Context, role appModels.RoleType) ([]appModels.User, error) {
	var out []appModels.User
	for _, u := range m.users {
		if u.RoleType == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type memStudents struct{ students []appModels.Student }

func (m *memStudents) Create(ctx context.Context, s *appModels.Student) error {
	s.ID = int64(len(m.students) + 1)
	m.students = append(m.students, *s)
	return nil
}

func (m *memStudents) GetByID(ctx context.Context, id int64) (*appModels.Student, error) {
	for _, s := range m.students {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (m *memStudents) GetByName(ctx context.Context, name string) ([]appModels.Student, error) {
	var out []appModels.Student
	for _, s := range m.students {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStudents) ListAll(ctx context.Context) ([]appModels.Student, error) {
	return m.students, nil
}

func (m *memStudents) ListByParent(ctx context.Context, parentID int64) ([]appModels.Student, error) {
	var out []appModels.Student
	for _, s := range m.students {
		if s.ParentID == parentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStudents) UpdateDefaultPrice(ctx context.Context, id int64, price appModels.Money) error {
	return nil
}

type memSessions struct{ sessions []appModels.Session }

func (m *memSessions) Create(ctx context.Context, s *appModels.Session) error {
	s.ID = int64(len(m.sessions) + 1)
	m.sessions = append(m.sessions, *s)
	return nil
}

func (m *memSessions) GetByID(ctx context.Context, id int64) (*appModels.Session, error) {
	for _, s := range m.sessions {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, apperrors.ErrSessionNotFound
}

func (m *memSessions) ListByStudent(ctx context.Context, studentID int64) ([]appModels.Session, error) {
	return m.ListByStudents(ctx, []int64{studentID})
}

func (m *memSessions) ListByStudents(ctx context.Context, ids []int64) ([]appModels.Session, error) {
	var out []appModels.Session
	for _, s := range m.sessions {
		for _, id := range ids {
			if s.StudentID == id {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (m *memSessions) ListAll(ctx context.Context) ([]appModels.Session, error) {
	return m.sessions, nil
}

func (m *memSessions) ListByPaid(ctx context.Context, paid bool) ([]appModels.Session, error) {
	var out []appModels.Session
	for _, s := range m.sessions {
		if s.Paid == paid {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSessions) SetPaid(ctx context.Context, id int64, paid bool) (*appModels.Session, error) {
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			m.sessions[i].Paid = paid
			s := m.sessions[i]
			return &s, nil
		}
	}
	return nil, apperrors.ErrSessionNotFound
}

func newTestSeeder() (*Seeder, *appRepos.Repositories) {
	repos := &appRepos.Repositories{
		Users:    &memUsers{},
		Students: &memStudents{},
		Sessions: &memSessions{},
	}
	s := NewSeeder(repos, zerolog.Nop())
	s.hash = func(p string) (string, error) { return "hashed:" + p, nil }
	s.now = func() time.Time { return time.Date(2024, 3, 28, 15, 0, 0, 0, time.UTC) }
	return s, repos
}

func seedConfig(demo bool) *config.Config {
	cfg := &config.Config{}
	cfg.Seed.Enabled = true
	cfg.Seed.DemoData = demo
	cfg.Seed.TeacherUsername = "teacher"
	cfg.Seed.TeacherEmail = "teacher@example.com"
	cfg.Seed.TeacherPassword = "teacher-pass"
	cfg.Accounts.ParentDefaultPassword = "parent123"
	return cfg
}

func TestCreateDefaultData_Teacher(t *testing.T) {
	s, repos := newTestSeeder()
	ctx := context.Background()

	require.NoError(t, s.CreateDefaultData(ctx, seedConfig(false)))
	require.NoError(t, s.CreateDefaultData(ctx, seedConfig(false)))

	teachers, err := repos.Users.ListByRole(ctx, appModels.RoleTeacher)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "hashed:teacher-pass", teachers[0].PasswordHash)

	students, _ := repos.Students.ListAll(ctx)
	assert.Empty(t, students)
}

func TestCreateDefaultData_Demo(t *testing.T) {
	s, repos := newTestSeeder()
	ctx := context.Background()

	require.NoError(t, s.CreateDefaultData(ctx, seedConfig(true)))
	require.NoError(t, s.CreateDefaultData(ctx, seedConfig(true)))

	students, _ := repos.Students.GetByName(ctx, DemoStudentName)
	require.Len(t, students, 1)
	assert.Equal(t, int64(DemoPriceCents), students[0].DefaultPrice.Cents())

	sessions, _ := repos.Sessions.ListByStudent(ctx, students[0].ID)
	require.Len(t, sessions, 4)
	paid, _ := repos.Sessions.ListByPaid(ctx, true)
	assert.Len(t, paid, 2)
	for _, p := range paid {
		assert.True(t, p.Date.Before(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)))
	}
}

func TestCreateDefaultData_Disabled(t *testing.T) {
	s, repos := newTestSeeder()
	cfg := seedConfig(true)
	cfg.Seed.Enabled = false

	require.NoError(t, s.CreateDefaultData(context.Background(), cfg))
	users, _ := repos.Users.ListByRole(context.Background(), appModels.RoleTeacher)
	assert.Empty(t, users)
}
