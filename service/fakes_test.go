package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MinilikBelachew/voice-chat/models"
	"github.com/MinilikBelachew/voice-chat/repository"

	"github.com/google/uuid"
)

// --- in-memory store fakes shared by the service tests ---

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User

	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.SelectedPersona == "" {
		user.SelectedPersona = models.PersonaFriendly
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, name, aiName, aiBehavior string, voiceID *string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user.Name = &name
	user.AIName = &aiName
	user.AIBehavior = &aiBehavior
	user.VoiceID = voiceID
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) UpdateSelectedPersona(ctx context.Context, id uuid.UUID, persona models.Persona) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.SelectedPersona = persona
	return nil
}

type fakeMemoryStore struct {
	mu       sync.Mutex
	memories []*models.Memory
	seq      int

	createErr error
}

func newFakeMemoryStore() *fakeMemoryStore {
	return &fakeMemoryStore{}
}

func (f *fakeMemoryStore) Create(ctx context.Context, memory *models.Memory) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	memory.ID = uuid.New()
	memory.CreatedAt = time.Unix(int64(f.seq), 0)
	if memory.Category == "" {
		memory.Category = models.CategoryGeneral
	}
	if memory.Importance == 0 {
		memory.Importance = models.DefaultImportance
	}
	copied := *memory
	f.memories = append(f.memories, &copied)
	return nil
}

func (f *fakeMemoryStore) ListTopByImportance(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Memory
	for _, m := range f.memories {
		if m.UserID == userID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMemoryStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Memory
	for _, m := range f.memories {
		if m.UserID == userID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMemoryStore) contents(userID uuid.UUID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.memories {
		if m.UserID == userID {
			out = append(out, m.Content)
		}
	}
	return out
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens []*models.VerificationToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{}
}

func (f *fakeTokenStore) Create(ctx context.Context, token *models.VerificationToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *token
	f.tokens = append(f.tokens, &copied)
	return nil
}

func (f *fakeTokenStore) Find(ctx context.Context, identifier, code string) (*models.VerificationToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.Identifier == identifier && t.Token == code {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTokenStore) Delete(ctx context.Context, identifier, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.tokens[:0]
	for _, t := range f.tokens {
		if t.Identifier != identifier || t.Token != code {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

func (f *fakeTokenStore) DeleteByIdentifier(ctx context.Context, identifier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.tokens[:0]
	for _, t := range f.tokens {
		if t.Identifier != identifier {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

func (f *fakeTokenStore) count(identifier string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tokens {
		if t.Identifier == identifier {
			n++
		}
	}
	return n
}

// captureMailer records issued codes
type captureMailer struct {
	mu    sync.Mutex
	codes []string
	to    []string

	sendErr error
}

func (m *captureMailer) SendCode(ctx context.Context, to, code string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, to)
	m.codes = append(m.codes, code)
	return nil
}

func (m *captureMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.codes) == 0 {
		return ""
	}
	return m.codes[len(m.codes)-1]
}
