// Package store holds the process-wide anime collection and keeps it in step with
// the remote REST collection.
//
// Every view reads from one Store. Mutations go to the remote first; only after the
// remote answers is the local collection replaced, under the Store's lock. Transport
// failures never escape: they become a failure toast, a log line, and a nil/false
// result.
package store

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"animemanager/internal/notify"
	"animemanager/pkg/models"
)

// Toast messages shown after each operation.
const (
	MsgLoadFailed   = "Could not load the anime catalog"
	MsgGetFailed    = "Could not fetch the anime"
	MsgCreated      = "Anime added successfully"
	MsgCreateFailed = "Could not create the anime"
	MsgUpdated      = "Anime updated successfully"
	MsgUpdateFailed = "Could not update the anime"
	MsgDeleted      = "Anime deleted successfully"
	MsgDeleteFailed = "Could not delete the anime"
)

// ErrLoad is the inline error shown by the list view after a failed load.
const ErrLoad = "Error loading the anime catalog"

type Store struct {
	remote   Remote
	notifier notify.Notifier
	logger   *log.Logger

	mu      sync.RWMutex
	animes  []models.Anime
	loading bool
	loadErr string
	loaded  bool
}

// New returns a Store in the loading state with an empty collection; call LoadAll
// to populate it.
func New(remote Remote, notifier notify.Notifier, logger *log.Logger) *Store {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Store{
		remote:   remote,
		notifier: notifier,
		logger:   logger,
		animes:   []models.Anime{},
		loading:  true,
	}
}

// Snapshot is a consistent view of the collection and its flags.
type Snapshot struct {
	Animes  []models.Anime
	Loading bool
	Error   string
	Loaded  bool // at least one LoadAll succeeded
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Animes:  cloneAll(s.animes),
		Loading: s.loading,
		Error:   s.loadErr,
		Loaded:  s.loaded,
	}
}

// Animes returns a copy of the collection.
func (s *Store) Animes() []models.Anime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.animes)
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error is the inline list error, "" when the last load succeeded.
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// LoadAll replaces the collection with the remote one. On failure the previous
// collection stays and the error flag is set. Loading is cleared either way.
func (s *Store) LoadAll(ctx context.Context) bool {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	list, err := s.remote.List(ctx)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.loadErr = ErrLoad
		s.mu.Unlock()
		s.fail("load", "", MsgLoadFailed, err)
		return false
	}
	s.animes = cloneAll(list)
	s.loadErr = ""
	s.loaded = true
	s.mu.Unlock()

	s.logger.Debug("collection loaded", "count", len(list))
	return true
}

// GetByID fetches one record from the remote. nil means not found or unreachable;
// the local collection is not touched.
func (s *Store) GetByID(ctx context.Context, id string) *models.Anime {
	a, err := s.remote.Get(ctx, id)
	if err != nil {
		s.fail("get", id, MsgGetFailed, err)
		return nil
	}
	return &a
}

// Create submits a new record and appends the server's copy to the collection.
func (s *Store) Create(ctx context.Context, a models.Anime) *models.Anime {
	created, err := s.remote.Create(ctx, a.Clone())
	if err != nil {
		s.fail("create", "", MsgCreateFailed, err)
		return nil
	}

	s.mu.Lock()
	s.animes = append(s.animes, created.Clone())
	s.mu.Unlock()

	s.notifier.Notify(notify.Success(MsgCreated))
	s.logger.Info("anime created", "id", created.ID, "title", created.Title)
	return &created
}

// Update replaces the record with id remotely, then the matching local entry.
func (s *Store) Update(ctx context.Context, id string, a models.Anime) *models.Anime {
	updated, err := s.remote.Update(ctx, id, a.Clone())
	if err != nil {
		s.fail("update", id, MsgUpdateFailed, err)
		return nil
	}

	s.mu.Lock()
	for i := range s.animes {
		if s.animes[i].ID == id {
			s.animes[i] = updated.Clone()
			break
		}
	}
	s.mu.Unlock()

	s.notifier.Notify(notify.Success(MsgUpdated))
	s.logger.Info("anime updated", "id", id)
	return &updated
}

// Delete removes the record remotely and locally. An unknown id is a failure.
func (s *Store) Delete(ctx context.Context, id string) bool {
	if err := s.remote.Delete(ctx, id); err != nil {
		s.fail("delete", id, MsgDeleteFailed, err)
		return false
	}

	s.mu.Lock()
	kept := s.animes[:0:0]
	for _, a := range s.animes {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.animes = kept
	s.mu.Unlock()

	s.notifier.Notify(notify.Success(MsgDeleted))
	s.logger.Info("anime deleted", "id", id)
	return true
}

func (s *Store) fail(op, id, msg string, err error) {
	s.logger.Error("store operation failed", "op", op, "id", id, "err", err)
	s.notifier.Notify(notify.Failure(msg))
}

func cloneAll(list []models.Anime) []models.Anime {
	out := make([]models.Anime, len(list))
	for i, a := range list {
		out[i] = a.Clone()
	}
	return out
}
