package grpc

import (
	"context"
	"database/sql"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"animemanager/internal/anime"
	"animemanager/pkg/models"
)

const ServiceName = "animemanager.Catalog"

type GetAnimeRequest struct {
	ID string `json:"id"`
}

type AnimeResponse struct {
	Anime models.Anime `json:"anime"`
}

type ListAnimesRequest struct{}

type ListAnimesResponse struct {
	Results []models.Anime `json:"results"`
	Total   int            `json:"total"`
}

// CatalogServer is the read-only catalog service.
type CatalogServer interface {
	GetAnime(context.Context, *GetAnimeRequest) (*AnimeResponse, error)
	ListAnimes(context.Context, *ListAnimesRequest) (*ListAnimesResponse, error)
}

// Server implementation
type Server struct {
	db *sql.DB
}

func NewServer(db *sql.DB) *Server {
	return &Server{db: db}
}

// Register mounts srv on s.
func Register(s *grpc.Server, srv CatalogServer) {
	s.RegisterService(&serviceDesc, srv)
}

func (s *Server) GetAnime(ctx context.Context, req *GetAnimeRequest) (*AnimeResponse, error) {
	a, err := anime.GetByID(s.db, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.Errorf(codes.NotFound, "anime not found: %v", req.ID)
		}
		return nil, status.Errorf(codes.Internal, "failed to get anime: %v", err)
	}
	return &AnimeResponse{Anime: a}, nil
}

func (s *Server) ListAnimes(ctx context.Context, req *ListAnimesRequest) (*ListAnimesResponse, error) {
	list, err := anime.List(s.db)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to list animes: %v", err)
	}
	return &ListAnimesResponse{Results: list, Total: len(list)}, nil
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetAnime", Handler: getAnimeHandler},
		{MethodName: "ListAnimes", Handler: listAnimesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "animemanager/catalog",
}

func getAnimeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetAnimeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetAnime(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetAnime"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).GetAnime(ctx, req.(*GetAnimeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listAnimesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListAnimesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).ListAnimes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ListAnimes"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).ListAnimes(ctx, req.(*ListAnimesRequest))
	}
	return interceptor(ctx, in, info, handler)
}
