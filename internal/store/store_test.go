package store

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animemanager/internal/mockapi"
	"animemanager/internal/notify"
	"animemanager/pkg/database"
	"animemanager/pkg/models"
)

// newRemoteStore runs the mock API behind httptest and returns a Store wired to it.
func newRemoteStore(t *testing.T) (*Store, *notify.Recorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	logger := log.New(io.Discard)
	srv := httptest.NewServer(mockapi.New(db, nil, logger).Router())
	t.Cleanup(srv.Close)

	rec := &notify.Recorder{}
	return New(NewClient(srv.URL, srv.Client()), rec, logger), rec
}

func record(title string, genres ...string) models.Anime {
	return models.Anime{
		Title:        title,
		ImageURL:     "https://img.example.com/" + title + ".png",
		Synopsis:     title + " synopsis that is long enough",
		Genres:       genres,
		Rating:       7.5,
		SeasonCount:  1,
		EpisodeCount: 12,
		Status:       models.StatusFinished,
		ReleaseYear:  2010,
		Studio:       "Madhouse",
	}
}

func lastToast(t *testing.T, rec *notify.Recorder) notify.Toast {
	t.Helper()
	toast, ok := rec.Last()
	require.True(t, ok, "expected a toast")
	return toast
}

func TestNewStartsLoading(t *testing.T) {
	s := New(&fakeRemote{}, nil, log.New(io.Discard))
	assert.True(t, s.Loading())
	assert.Empty(t, s.Animes())
	assert.Equal(t, "", s.Error())
}

func TestLoadAll(t *testing.T) {
	s, _ := newRemoteStore(t)
	require.NotNil(t, s.Create(context.Background(), record("Naruto", "Action")))
	require.NotNil(t, s.Create(context.Background(), record("Monster", "Thriller")))

	fresh := New(s.remote, nil, log.New(io.Discard))
	require.True(t, fresh.LoadAll(context.Background()))

	snap := fresh.Snapshot()
	assert.False(t, snap.Loading)
	assert.True(t, snap.Loaded)
	assert.Empty(t, snap.Error)
	require.Len(t, snap.Animes, 2)
	assert.Equal(t, "Naruto", snap.Animes[0].Title)
	assert.Equal(t, "Monster", snap.Animes[1].Title)
}

func TestLoadAllFailureKeepsCollection(t *testing.T) {
	remote := &fakeRemote{list: []models.Anime{{ID: "1", Title: "Naruto", Genres: []string{"Action"}}}}
	rec := &notify.Recorder{}
	s := New(remote, rec, log.New(io.Discard))
	require.True(t, s.LoadAll(context.Background()))

	remote.err = errors.New("connection refused")
	assert.False(t, s.LoadAll(context.Background()))

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, ErrLoad, snap.Error)
	require.Len(t, snap.Animes, 1)
	assert.Equal(t, "Naruto", snap.Animes[0].Title)

	toast := lastToast(t, rec)
	assert.Equal(t, notify.LevelError, toast.Level)
	assert.Equal(t, MsgLoadFailed, toast.Message)

	remote.err = nil
	require.True(t, s.LoadAll(context.Background()))
	assert.Empty(t, s.Error(), "a later success clears the error")
}

func TestCreateAppendsServerRecord(t *testing.T) {
	s, rec := newRemoteStore(t)
	require.True(t, s.LoadAll(context.Background()))
	before := len(s.Animes())

	draft := record("Mushishi", "Mystery", "Slice of Life")
	created := s.Create(context.Background(), draft)
	require.NotNil(t, created)
	assert.NotEmpty(t, created.ID)

	after := s.Animes()
	require.Len(t, after, before+1)
	got := after[len(after)-1]
	assert.Equal(t, created.ID, got.ID)
	draft.ID = created.ID
	assert.Equal(t, draft, got)

	toast := lastToast(t, rec)
	assert.Equal(t, notify.LevelSuccess, toast.Level)
	assert.Equal(t, MsgCreated, toast.Message)
}

func TestCreateFailureLeavesCollection(t *testing.T) {
	remote := &fakeRemote{list: []models.Anime{{ID: "1", Title: "A"}}}
	rec := &notify.Recorder{}
	s := New(remote, rec, log.New(io.Discard))
	require.True(t, s.LoadAll(context.Background()))

	remote.err = &StatusError{Op: "create anime", Code: 500}
	assert.Nil(t, s.Create(context.Background(), record("B", "Drama")))
	assert.Len(t, s.Animes(), 1)
	assert.Equal(t, MsgCreateFailed, lastToast(t, rec).Message)
	assert.Empty(t, s.Error(), "mutation failures do not set the list error")
}

func TestUpdateReplacesOnlyMatchingEntry(t *testing.T) {
	s, rec := newRemoteStore(t)
	a := s.Create(context.Background(), record("Naruto", "Action"))
	b := s.Create(context.Background(), record("Bleach", "Action"))
	c := s.Create(context.Background(), record("Monster", "Thriller"))
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotNil(t, c)

	repl := record("Bleach: Thousand-Year Blood War", "Action", "Supernatural")
	repl.Rating = 9.0
	updated := s.Update(context.Background(), b.ID, repl)
	require.NotNil(t, updated)
	assert.Equal(t, b.ID, updated.ID)

	list := s.Animes()
	require.Len(t, list, 3)
	assert.Equal(t, *a, list[0])
	assert.Equal(t, *c, list[2])
	assert.Equal(t, b.ID, list[1].ID)
	assert.Equal(t, "Bleach: Thousand-Year Blood War", list[1].Title)
	assert.Equal(t, []string{"Action", "Supernatural"}, list[1].Genres)
	assert.Equal(t, 9.0, list[1].Rating)

	assert.Equal(t, MsgUpdated, lastToast(t, rec).Message)
}

func TestUpdateUnknownID(t *testing.T) {
	s, rec := newRemoteStore(t)
	require.NotNil(t, s.Create(context.Background(), record("Naruto", "Action")))
	before := s.Animes()

	assert.Nil(t, s.Update(context.Background(), "999", record("Ghost", "Horror")))
	assert.Equal(t, before, s.Animes())
	assert.Equal(t, MsgUpdateFailed, lastToast(t, rec).Message)
}

func TestDelete(t *testing.T) {
	s, rec := newRemoteStore(t)
	a := s.Create(context.Background(), record("Naruto", "Action"))
	b := s.Create(context.Background(), record("Bleach", "Action"))
	require.NotNil(t, a)
	require.NotNil(t, b)

	assert.True(t, s.Delete(context.Background(), a.ID))
	for _, x := range s.Animes() {
		assert.NotEqual(t, a.ID, x.ID)
	}
	assert.Len(t, s.Animes(), 1)
	assert.Equal(t, MsgDeleted, lastToast(t, rec).Message)

	before := s.Animes()
	assert.False(t, s.Delete(context.Background(), a.ID), "already gone")
	assert.False(t, s.Delete(context.Background(), "nope"))
	assert.Equal(t, before, s.Animes())
	assert.Equal(t, MsgDeleteFailed, lastToast(t, rec).Message)
}

func TestGetByIDDoesNotTouchCollection(t *testing.T) {
	s, rec := newRemoteStore(t)
	created := s.Create(context.Background(), record("Naruto", "Action"))
	require.NotNil(t, created)
	rec.Reset()

	got := s.GetByID(context.Background(), created.ID)
	require.NotNil(t, got)
	assert.Equal(t, *created, *got)
	assert.Empty(t, rec.Toasts())

	got.Title = "mutated by caller"
	assert.Equal(t, "Naruto", s.Animes()[0].Title)

	assert.Nil(t, s.GetByID(context.Background(), "404"))
	assert.Equal(t, MsgGetFailed, lastToast(t, rec).Message)
	assert.Len(t, s.Animes(), 1)
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	remote := &fakeRemote{list: []models.Anime{{ID: "1", Title: "A", Genres: []string{"Drama"}}}}
	s := New(remote, nil, log.New(io.Discard))
	require.True(t, s.LoadAll(context.Background()))

	list := s.Animes()
	list[0].Genres[0] = "Changed"
	list[0].Title = "Changed"

	again := s.Animes()
	assert.Equal(t, "A", again[0].Title)
	assert.Equal(t, []string{"Drama"}, again[0].Genres)
}

func TestAsyncLoad(t *testing.T) {
	s, _ := newRemoteStore(t)
	ctx := context.Background()

	f := Async(func() bool { return s.LoadAll(ctx) })
	ok, err := f.Await(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, s.Loading())
}

func TestAwaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	f := Async(func() int {
		<-release
		return 1
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeRemote struct {
	list []models.Anime
	err  error
}

func (f *fakeRemote) List(context.Context) ([]models.Anime, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func (f *fakeRemote) Get(_ context.Context, id string) (models.Anime, error) {
	if f.err != nil {
		return models.Anime{}, f.err
	}
	for _, a := range f.list {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Anime{}, &StatusError{Op: "get anime " + id, Code: 404}
}

func (f *fakeRemote) Create(_ context.Context, a models.Anime) (models.Anime, error) {
	if f.err != nil {
		return models.Anime{}, f.err
	}
	return a, nil
}

func (f *fakeRemote) Update(_ context.Context, id string, a models.Anime) (models.Anime, error) {
	if f.err != nil {
		return models.Anime{}, f.err
	}
	a.ID = id
	return a, nil
}

func (f *fakeRemote) Delete(context.Context, string) error { return f.err }
