package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"confernet/internal/domain"
)

// fakeBackend is an in-memory domain.Backend. Every method records its name in calls.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	events     map[string]*domain.Event
	users      map[string]*domain.UserProfile
	joined     map[string][]string
	bookmarked map[string][]string
	attendees  map[string][]string
	comments   map[string][]*domain.Comment
	ratings    map[string][]int
	files      map[string]map[string][]*domain.UploadedFile
	messages   []*domain.Message
	registered []*domain.Registration
	created    []*domain.Event

	// errs forces the named method to fail.
	errs map[string]error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		events:     map[string]*domain.Event{},
		users:      map[string]*domain.UserProfile{},
		joined:     map[string][]string{},
		bookmarked: map[string][]string{},
		attendees:  map[string][]string{},
		comments:   map[string][]*domain.Comment{},
		ratings:    map[string][]int{},
		files:      map[string]map[string][]*domain.UploadedFile{},
		errs:       map[string]error{},
	}
}

func (f *fakeBackend) record(name string) error {
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) addEvent(e *domain.Event) {
	f.events[e.ID] = e
}

func (f *fakeBackend) addUser(u *domain.UserProfile) {
	f.users[u.UserID] = u
}

func (f *fakeBackend) eventsByID(ids []string) []*domain.Event {
	out := []*domain.Event{}
	for _, id := range ids {
		if e, ok := f.events[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func without(list []string, id string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (f *fakeBackend) CreateEvent(ctx context.Context, ev *domain.Event) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateEvent"); err != nil {
		return nil, err
	}
	cp := *ev
	cp.ID = "ev-new"
	f.events[cp.ID] = &cp
	f.created = append(f.created, &cp)
	return &cp, nil
}

func (f *fakeBackend) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListEvents"); err != nil {
		return nil, err
	}
	out := []*domain.Event{}
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeBackend) ListUpcomingEvents(ctx context.Context) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListUpcomingEvents"); err != nil {
		return nil, err
	}
	out := []*domain.Event{}
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeBackend) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetEvent"); err != nil {
		return nil, err
	}
	e, ok := f.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeBackend) UpdateEvent(ctx context.Context, eventID string, ev *domain.Event) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateEvent"); err != nil {
		return nil, err
	}
	cp := *ev
	f.events[eventID] = &cp
	return &cp, nil
}

func (f *fakeBackend) DeleteEvent(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteEvent"); err != nil {
		return err
	}
	delete(f.events, eventID)
	return nil
}

func (f *fakeBackend) ListEventAttendees(ctx context.Context, eventID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListEventAttendees"); err != nil {
		return nil, err
	}
	return append([]string{}, f.attendees[eventID]...), nil
}

func (f *fakeBackend) PostComment(ctx context.Context, eventID, userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("PostComment"); err != nil {
		return err
	}
	f.comments[eventID] = append(f.comments[eventID], &domain.Comment{UserID: userID, Text: text, Timestamp: time.Now()})
	return nil
}

func (f *fakeBackend) ListComments(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListComments"); err != nil {
		return nil, err
	}
	return append([]*domain.Comment{}, f.comments[eventID]...), nil
}

func (f *fakeBackend) PostRating(ctx context.Context, eventID, userID string, rating int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("PostRating"); err != nil {
		return err
	}
	f.ratings[eventID] = append(f.ratings[eventID], rating)
	return nil
}

func (f *fakeBackend) GetRatingSummary(ctx context.Context, eventID string) (*domain.RatingSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetRatingSummary"); err != nil {
		return nil, err
	}
	rs := f.ratings[eventID]
	sum := &domain.RatingSummary{TotalRatings: len(rs)}
	for _, r := range rs {
		sum.AverageRating += float64(r)
	}
	if len(rs) > 0 {
		sum.AverageRating /= float64(len(rs))
	}
	return sum, nil
}

func (f *fakeBackend) ListUsers(ctx context.Context) ([]*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListUsers"); err != nil {
		return nil, err
	}
	out := []*domain.UserProfile{}
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeBackend) GetUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetUser"); err != nil {
		return nil, err
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeBackend) ListUsersByIDs(ctx context.Context, userIDs []string) ([]*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListUsersByIDs"); err != nil {
		return nil, err
	}
	out := []*domain.UserProfile{}
	for _, id := range userIDs {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeBackend) ListUsersByRole(ctx context.Context, role domain.Role) ([]*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListUsersByRole"); err != nil {
		return nil, err
	}
	out := []*domain.UserProfile{}
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeBackend) BookmarkEvent(ctx context.Context, userID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("BookmarkEvent"); err != nil {
		return err
	}
	f.bookmarked[userID] = append(without(f.bookmarked[userID], eventID), eventID)
	return nil
}

func (f *fakeBackend) RemoveEventBookmark(ctx context.Context, userID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RemoveEventBookmark"); err != nil {
		return err
	}
	f.bookmarked[userID] = without(f.bookmarked[userID], eventID)
	return nil
}

func (f *fakeBackend) ListBookmarkedEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListBookmarkedEvents"); err != nil {
		return nil, err
	}
	return f.eventsByID(f.bookmarked[userID]), nil
}

func (f *fakeBackend) BookmarkSession(ctx context.Context, userID, sessionID string) error {
	return nil
}

func (f *fakeBackend) RemoveSessionBookmark(ctx context.Context, userID, sessionID string) error {
	return nil
}

func (f *fakeBackend) ListBookmarkedSessions(ctx context.Context, userID string) ([]string, error) {
	return []string{}, nil
}

func (f *fakeBackend) JoinEvent(ctx context.Context, userID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("JoinEvent"); err != nil {
		return err
	}
	f.joined[userID] = append(without(f.joined[userID], eventID), eventID)
	return nil
}

func (f *fakeBackend) LeaveEvent(ctx context.Context, userID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("LeaveEvent"); err != nil {
		return err
	}
	f.joined[userID] = without(f.joined[userID], eventID)
	return nil
}

func (f *fakeBackend) ListRegisteredEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListRegisteredEvents"); err != nil {
		return nil, err
	}
	return f.eventsByID(f.joined[userID]), nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, senderID, receiverID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SendMessage"); err != nil {
		return err
	}
	f.messages = append(f.messages, &domain.Message{SenderID: senderID, ReceiverID: receiverID, Text: text, Timestamp: time.Now()})
	return nil
}

func (f *fakeBackend) ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListConversations"); err != nil {
		return nil, err
	}
	seen := map[string]*domain.Conversation{}
	out := []*domain.Conversation{}
	for i := len(f.messages) - 1; i >= 0; i-- {
		m := f.messages[i]
		partner := m.ReceiverID
		if m.ReceiverID == userID {
			partner = m.SenderID
		} else if m.SenderID != userID {
			continue
		}
		if _, ok := seen[partner]; ok {
			continue
		}
		c := &domain.Conversation{PartnerID: partner, LastMessage: m.Text, Timestamp: m.Timestamp}
		seen[partner] = c
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeBackend) GetChatHistory(ctx context.Context, userID, partnerID string) ([]*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetChatHistory"); err != nil {
		return nil, err
	}
	out := []*domain.Message{}
	for _, m := range f.messages {
		if (m.SenderID == userID && m.ReceiverID == partnerID) || (m.SenderID == partnerID && m.ReceiverID == userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeBackend) UploadSpeakerFile(ctx context.Context, eventID, userID, fileName string, r io.Reader) (*domain.UploadedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UploadSpeakerFile"); err != nil {
		return nil, err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	file := &domain.UploadedFile{FileURL: "https://files.test/" + fileName, FileName: fileName, UploadedBy: userID}
	if f.files[eventID] == nil {
		f.files[eventID] = map[string][]*domain.UploadedFile{}
	}
	f.files[eventID][userID] = append(f.files[eventID][userID], file)
	return file, nil
}

func (f *fakeBackend) DeleteSpeakerFile(ctx context.Context, eventID, userID, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("DeleteSpeakerFile")
}

func (f *fakeBackend) ListUploadedFiles(ctx context.Context, eventID string) (map[string][]*domain.UploadedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListUploadedFiles"); err != nil {
		return nil, err
	}
	out := map[string][]*domain.UploadedFile{}
	for k, v := range f.files[eventID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeBackend) RegisterUser(ctx context.Context, reg *domain.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RegisterUser"); err != nil {
		return err
	}
	f.registered = append(f.registered, reg)
	return nil
}

// fakeVenues is a fixed domain.VenueCatalog.
type fakeVenues []domain.Venue

func (v fakeVenues) List() []domain.Venue { return v }

func (v fakeVenues) ByMapURL(mapURL string) (domain.Venue, bool) {
	for _, venue := range v {
		if venue.MapURL == mapURL {
			return venue, true
		}
	}
	return domain.Venue{}, false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
