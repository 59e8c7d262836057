package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/charmbracelet/log"

	grpcclient "animemanager/internal/grpc"
	"animemanager/pkg/models"
)

// catalog is the read side of the gRPC catalog client.
type catalog interface {
	GetAnime(ctx context.Context, id string) (models.Anime, error)
	ListAnimes(ctx context.Context) ([]models.Anime, error)
}

func main() {
	grpcAddr := flag.String("grpc", "", "print the catalog from this gRPC address instead of following the feed")
	id := flag.String("id", "", "with -grpc, print only this anime")
	flag.Parse()

	logger := log.NewWithOptions(os.Stdout, log.Options{ReportTimestamp: true, Prefix: "feed"})

	if *grpcAddr != "" {
		c, err := grpcclient.NewClient(*grpcAddr)
		if err != nil {
			logger.Fatal("connect", "addr", *grpcAddr, "err", err)
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := printCatalog(ctx, os.Stdout, c, *id); err != nil {
			logger.Error("catalog", "addr", *grpcAddr, "err", err)
		}
		return
	}

	addr := "127.0.0.1:9090"
	if flag.NArg() > 0 {
		addr = flag.Arg(0)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		logger.Fatal("connect", "addr", addr, "err", err)
	}
	defer conn.Close()

	logger.Info("connected to change feed", "addr", addr)

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		var ev models.ChangeEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			logger.Warn("bad event", "line", sc.Text(), "err", err)
			continue
		}
		logger.Info(ev.Action, "id", ev.AnimeID, "title", ev.Title)
	}
	logger.Info("disconnected")
}

// printCatalog writes one line per anime, or just the one named by id.
func printCatalog(ctx context.Context, w io.Writer, c catalog, id string) error {
	var list []models.Anime
	if id != "" {
		a, err := c.GetAnime(ctx, id)
		if err != nil {
			return err
		}
		list = []models.Anime{a}
	} else {
		all, err := c.ListAnimes(ctx)
		if err != nil {
			return err
		}
		list = all
	}
	for _, a := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.1f\n", a.ID, a.Title, a.ReleaseYear, a.Status.Label(), a.Rating)
	}
	return nil
}
