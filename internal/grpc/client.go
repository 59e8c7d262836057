package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"animemanager/pkg/models"
)

// Client calls the catalog service.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to target without TLS. Extra options are applied after the defaults.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) GetAnime(ctx context.Context, id string) (models.Anime, error) {
	out := new(AnimeResponse)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/GetAnime", &GetAnimeRequest{ID: id}, out); err != nil {
		return models.Anime{}, err
	}
	return out.Anime, nil
}

func (c *Client) ListAnimes(ctx context.Context) ([]models.Anime, error) {
	out := new(ListAnimesResponse)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/ListAnimes", &ListAnimesRequest{}, out); err != nil {
		return nil, err
	}
	return out.Results, nil
}
