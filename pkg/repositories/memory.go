package repositories

import (
	"context"
	"sync"

	"github.com/cbodonnell/yahtzee/pkg/repositories/models"
)

// MemoryRepository keeps everything in process memory.
// It backs the memory:// database URL and the tests.
type MemoryRepository struct {
	lock     sync.RWMutex
	users    map[string]*models.User
	records  map[string][]models.Record
	logs     [][]string
	snapshot []byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:   make(map[string]*models.User),
		records: make(map[string][]models.Record),
	}
}

func (r *MemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) FindUser(ctx context.Context, username string) (*models.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, &ErrNotFound{}
	}
	copy := *user
	return &copy, nil
}

func (r *MemoryRepository) CreateUser(ctx context.Context, username string) (*models.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.users[username]; ok {
		return nil, &ErrUserExists{Username: username}
	}
	user := &models.User{Username: username}
	r.users[username] = user
	copy := *user
	return &copy, nil
}

func (r *MemoryRepository) UpdateHighScore(ctx context.Context, username string, score int) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	user, ok := r.users[username]
	if !ok {
		return &ErrNotFound{}
	}
	user.HighScore = score
	return nil
}

func (r *MemoryRepository) GetRecords(ctx context.Context, key string) ([]models.Record, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return append([]models.Record{}, r.records[key]...), nil
}

func (r *MemoryRepository) SetRecords(ctx context.Context, key string, records []models.Record) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.records[key] = append([]models.Record{}, records...)
	return nil
}

func (r *MemoryRepository) AppendLog(ctx context.Context, entries []string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.logs = append(r.logs, append([]string{}, entries...))
	return nil
}

// Logs returns every transcript batch appended so far.
func (r *MemoryRepository) Logs() [][]string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	logs := make([][]string, len(r.logs))
	for i, batch := range r.logs {
		logs[i] = append([]string{}, batch...)
	}
	return logs
}

func (r *MemoryRepository) SaveSnapshot(ctx context.Context, data []byte) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.snapshot = append([]byte{}, data...)
	return nil
}

func (r *MemoryRepository) LoadSnapshot(ctx context.Context) ([]byte, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.snapshot == nil {
		return nil, &ErrNotFound{}
	}
	return append([]byte{}, r.snapshot...), nil
}
