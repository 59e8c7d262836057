package main

import (
	"bytes"
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
	grpcclient "animemanager/internal/grpc"
	"animemanager/pkg/database"
	"animemanager/pkg/models"
)

func catalogClient(t *testing.T, titles ...string) *grpcclient.Client {
	t.Helper()
	db, err := database.Open(database.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	for i, title := range titles {
		_, err := anime.Create(db, models.Anime{
			Title:       title,
			Genres:      []string{"Drama"},
			Status:      models.StatusFinished,
			ReleaseYear: 2000 + i,
			Rating:      8,
		})
		require.NoError(t, err)
	}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	grpcclient.Register(srv, grpcclient.NewServer(db))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := grpcclient.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPrintCatalogLists(t *testing.T) {
	c := catalogClient(t, "Monster", "Mushishi")

	var buf bytes.Buffer
	require.NoError(t, printCatalog(context.Background(), &buf, c, ""))
	assert.Equal(t, "1\tMonster\t2000\tFinished\t8.0\n2\tMushishi\t2001\tFinished\t8.0\n", buf.String())
}

func TestPrintCatalogSingle(t *testing.T) {
	c := catalogClient(t, "Monster", "Mushishi")

	var buf bytes.Buffer
	require.NoError(t, printCatalog(context.Background(), &buf, c, "2"))
	assert.Equal(t, "2\tMushishi\t2001\tFinished\t8.0\n", buf.String())

	err := printCatalog(context.Background(), &buf, c, "99")
	assert.Equal(t, codes.NotFound, status.Code(err))
}
