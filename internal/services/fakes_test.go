package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"seminarrsvp/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func cloneSeminar(s *domain.Seminar) *domain.Seminar {
	c := *s
	c.Invitees = slices.Clone(s.Invitees)
	c.Attendees = slices.Clone(s.Attendees)
	c.ConfirmedAttendees = slices.Clone(s.ConfirmedAttendees)
	if s.QRCode != nil {
		qr := *s.QRCode
		c.QRCode = &qr
	}
	return &c
}

// fakeSeminarRepo is an in-memory SeminarRepository. Conditional updates hold the mutex
// for the whole check-and-mutate, like a single store statement.
type fakeSeminarRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Seminar
	nextID int

	// staleAccepts makes the next n AcceptInvitation calls report ErrConditionNotMet
	// without looking at state, simulating lost races.
	staleAccepts int
	err          error
}

func newFakeSeminarRepo() *fakeSeminarRepo {
	return &fakeSeminarRepo{byID: make(map[string]*domain.Seminar), nextID: 1}
}

func (f *fakeSeminarRepo) put(s *domain.Seminar) *domain.Seminar {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == "" {
		s.ID = fmt.Sprintf("sem-%d", f.nextID)
		f.nextID++
	}
	f.byID[s.ID] = cloneSeminar(s)
	return s
}

func (f *fakeSeminarRepo) Create(ctx context.Context, s *domain.Seminar) error {
	if f.err != nil {
		return f.err
	}
	f.put(s)
	return nil
}

func (f *fakeSeminarRepo) GetByID(ctx context.Context, id string) (*domain.Seminar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrSeminarNotFound
	}
	return cloneSeminar(s), nil
}

func (f *fakeSeminarRepo) filter(keep func(*domain.Seminar) bool) ([]*domain.Seminar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Seminar, 0)
	for _, s := range f.byID {
		if keep(s) {
			out = append(out, cloneSeminar(s))
		}
	}
	slices.SortFunc(out, func(a, b *domain.Seminar) int {
		if a.Date+a.Time != b.Date+b.Time {
			if a.Date+a.Time < b.Date+b.Time {
				return -1
			}
			return 1
		}
		if a.ID < b.ID {
			return -1
		}
		return 1
	})
	return out, nil
}

func (f *fakeSeminarRepo) List(ctx context.Context) ([]*domain.Seminar, error) {
	return f.filter(func(*domain.Seminar) bool { return true })
}

func (f *fakeSeminarRepo) ListByAgent(ctx context.Context, agentID string) ([]*domain.Seminar, error) {
	return f.filter(func(s *domain.Seminar) bool { return s.AgentID == agentID })
}

func (f *fakeSeminarRepo) ListByInvitee(ctx context.Context, userID string) ([]*domain.Seminar, error) {
	return f.filter(func(s *domain.Seminar) bool { return s.IsInvited(userID) })
}

func (f *fakeSeminarRepo) ListByAttendee(ctx context.Context, userID string) ([]*domain.Seminar, error) {
	return f.filter(func(s *domain.Seminar) bool { return s.IsAttendee(userID) })
}

func (f *fakeSeminarRepo) Update(ctx context.Context, id string, p domain.SeminarPatch) (*domain.Seminar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrSeminarNotFound
	}
	if p.Capacity != nil && *p.Capacity < len(s.Attendees) {
		return nil, domain.ErrConditionNotMet
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Date != nil {
		s.Date = *p.Date
	}
	if p.Time != nil {
		s.Time = *p.Time
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Capacity != nil {
		s.Capacity = *p.Capacity
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.QRCode != nil {
		qr := *p.QRCode
		s.QRCode = &qr
	}
	if p.ClearQRCode {
		s.QRCode = nil
	}
	s.UpdatedAt = time.Now()
	return cloneSeminar(s), nil
}

func (f *fakeSeminarRepo) AddInvitees(ctx context.Context, id string, userIDs []string) (*domain.Seminar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrSeminarNotFound
	}
	for _, uid := range userIDs {
		if !s.IsInvited(uid) && !s.IsAttendee(uid) {
			s.Invitees = append(s.Invitees, uid)
		}
	}
	return cloneSeminar(s), nil
}

func (f *fakeSeminarRepo) AcceptInvitation(ctx context.Context, id, userID string) (*domain.Seminar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrSeminarNotFound
	}
	if f.staleAccepts > 0 {
		f.staleAccepts--
		return nil, domain.ErrConditionNotMet
	}
	if s.CheckAccept(userID) != nil {
		return nil, domain.ErrConditionNotMet
	}
	s.Invitees = slices.DeleteFunc(s.Invitees, func(v string) bool { return v == userID })
	s.Attendees = append(s.Attendees, userID)
	s.ConfirmedAttendees = append(s.ConfirmedAttendees, userID)
	return cloneSeminar(s), nil
}

func (f *fakeSeminarRepo) DeclineInvitation(ctx context.Context, id, userID string) (*domain.Seminar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrSeminarNotFound
	}
	if s.CheckDecline(userID) != nil {
		return nil, domain.ErrConditionNotMet
	}
	s.Invitees = slices.DeleteFunc(s.Invitees, func(v string) bool { return v == userID })
	return cloneSeminar(s), nil
}

func (f *fakeSeminarRepo) Register(ctx context.Context, id, userID string) (*domain.Seminar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrSeminarNotFound
	}
	if s.CheckRegister(userID) != nil {
		return nil, domain.ErrConditionNotMet
	}
	s.Attendees = append(s.Attendees, userID)
	return cloneSeminar(s), nil
}

func (f *fakeSeminarRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrSeminarNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	nextID  int
	addErr  error
	removed []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) add(email, name string, role domain.Role, phone string) *domain.User {
	u := domain.NewUser(email, name, role, phone, time.Now(), time.Now())
	_ = f.Create(context.Background(), u)
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	c := *u
	f.byID[u.ID] = &c
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	c.RegisteredSeminars = slices.Clone(u.RegisteredSeminars)
	return &c, nil
}

func (f *fakeUserRepo) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.User, 0)
	for _, u := range f.byID {
		if role == "" || u.Role == role {
			c := *u
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.User) int {
		if a.Email < b.Email {
			return -1
		}
		return 1
	})
	return out, nil
}

func (f *fakeUserRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ListByEmails(ctx context.Context, emails []string, role domain.Role) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.User, 0)
	for _, e := range emails {
		for _, u := range f.byID {
			if u.Email == e && (role == "" || u.Role == role) {
				c := *u
				out = append(out, &c)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) AddRegisteredSeminar(ctx context.Context, userID, seminarID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if !slices.Contains(u.RegisteredSeminars, seminarID) {
		u.RegisteredSeminars = append(u.RegisteredSeminars, seminarID)
	}
	return nil
}

func (f *fakeUserRepo) RemoveRegisteredSeminar(ctx context.Context, seminarID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, seminarID)
	for _, u := range f.byID {
		u.RegisteredSeminars = slices.DeleteFunc(u.RegisteredSeminars, func(v string) bool { return v == seminarID })
	}
	return nil
}

// recordingDispatcher records notices instead of sending them.
type recordingDispatcher struct {
	mu          sync.Mutex
	qrErr       error
	qrContent   []string
	acceptances []string
	invitations map[string][]string
	welcomes    []string
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{invitations: make(map[string][]string)}
}

func (d *recordingDispatcher) GenerateQRArtifact(ctx context.Context, url string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.qrErr != nil {
		return "", d.qrErr
	}
	d.qrContent = append(d.qrContent, url)
	return "data:image/png;base64,UVI=", nil
}

func (d *recordingDispatcher) SendAcceptanceNotice(user *domain.User, seminar *domain.Seminar) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acceptances = append(d.acceptances, user.ID+"@"+seminar.ID)
}

func (d *recordingDispatcher) SendInvitationNotices(seminar *domain.Seminar, invitees []*domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range invitees {
		d.invitations[seminar.ID] = append(d.invitations[seminar.ID], u.Email)
	}
}

func (d *recordingDispatcher) SendWelcome(user *domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.welcomes = append(d.welcomes, user.Email)
}

func (d *recordingDispatcher) acceptanceCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.acceptances)
}

func validSeminarInput() domain.SeminarInput {
	return domain.SeminarInput{
		Title:       "Go Concurrency",
		Date:        "2026-11-20",
		Time:        "14:30",
		Description: "Channels and contexts",
		Capacity:    2,
		Price:       49.5,
	}
}
