package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"animemanager/internal/anime"
	"animemanager/pkg/database"
	"animemanager/pkg/models"
)

func startCatalog(t *testing.T) (*Client, func(models.Anime) models.Anime) {
	t.Helper()
	db, err := database.Open(database.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	Register(srv, NewServer(db))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	insert := func(a models.Anime) models.Anime {
		out, err := anime.Create(db, a)
		require.NoError(t, err)
		return out
	}
	return c, insert
}

func TestGetAnime(t *testing.T) {
	c, insert := startCatalog(t)
	created := insert(models.Anime{Title: "Mushishi", Genres: []string{"Mystery"}, Status: models.StatusFinished})

	got, err := c.GetAnime(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestGetAnimeNotFound(t *testing.T) {
	c, _ := startCatalog(t)

	_, err := c.GetAnime(context.Background(), "404")
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestListAnimes(t *testing.T) {
	c, insert := startCatalog(t)
	insert(models.Anime{Title: "A", Genres: []string{"Drama"}})
	insert(models.Anime{Title: "B", Genres: []string{"Comedy"}})

	list, err := c.ListAnimes(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Title)
	assert.Equal(t, "B", list[1].Title)
}
