package repository

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/materials-console/internal/domain/entity"
	"github.com/sangkips/materials-console/internal/domain/enum"
	domainRepo "github.com/sangkips/materials-console/internal/domain/repository"
)

// DraftStoreConfig holds configuration for the in-memory draft store
type DraftStoreConfig struct {
	IdleTTL       time.Duration // drafts untouched for this long are dropped
	SweepInterval time.Duration // how often idle drafts are swept; zero disables sweeping
}

// DraftStore is an in-memory DraftRepository. Drafts are transient form
// state, so nothing survives a restart.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]*entity.TransactionDraft
	ttl    time.Duration
	now    func() time.Time
	stop   chan struct{}
}

// NewDraftStore creates a draft store and starts its sweeper
func NewDraftStore(cfg DraftStoreConfig) *DraftStore {
	s := &DraftStore{
		drafts: make(map[uuid.UUID]*entity.TransactionDraft),
		ttl:    cfg.IdleTTL,
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	if cfg.SweepInterval > 0 && cfg.IdleTTL > 0 {
		go s.sweepLoop(cfg.SweepInterval)
	}

	return s
}

var _ domainRepo.DraftRepository = (*DraftStore)(nil)

func (s *DraftStore) Create(ctx context.Context, draft *entity.TransactionDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[draft.ID] = draft.Clone()
	return nil
}

func (s *DraftStore) Get(ctx context.Context, id uuid.UUID) (*entity.TransactionDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	if !ok {
		return nil, domainRepo.ErrDraftNotFound
	}
	return d.Clone(), nil
}

func (s *DraftStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.TransactionDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts := make([]entity.TransactionDraft, 0)
	for _, d := range s.drafts {
		if d.OwnerID == ownerID {
			drafts = append(drafts, *d.Clone())
		}
	}
	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].CreatedAt.Before(drafts[j].CreatedAt)
	})
	return drafts, nil
}

func (s *DraftStore) Update(ctx context.Context, id uuid.UUID, fn func(d *entity.TransactionDraft) error) (*entity.TransactionDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.drafts[id]
	if !ok {
		return nil, domainRepo.ErrDraftNotFound
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = s.now()
	s.drafts[id] = working

	return working.Clone(), nil
}

func (s *DraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[id]; !ok {
		return domainRepo.ErrDraftNotFound
	}
	delete(s.drafts, id)
	return nil
}

// Close stops the sweeper
func (s *DraftStore) Close() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

func (s *DraftStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				log.Printf("Draft store: dropped %d idle drafts", n)
			}
		case <-s.stop:
			return
		}
	}
}

// sweep removes idle drafts. Drafts with a submission in flight are kept
// until the submission settles.
func (s *DraftStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, d := range s.drafts {
		if d.State == enum.DraftStateSubmitted {
			continue
		}
		if d.UpdatedAt.Before(cutoff) {
			delete(s.drafts, id)
			removed++
		}
	}
	return removed
}
