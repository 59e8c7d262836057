package changefeed

import (
	"bufio"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"animemanager/pkg/models"
)

// writeWait bounds each write to a feed client.
var writeWait = 5 * time.Second

// Server receives change events and broadcasts them to every TCP client as
// newline-delimited JSON.
type Server struct {
	addr   string
	logger *log.Logger

	mu      sync.Mutex
	clients map[net.Conn]struct{}
	ln      net.Listener

	events    <-chan models.ChangeEvent
	done      chan struct{}
	closeOnce sync.Once
}

func New(addr string, events <-chan models.ChangeEvent, logger *log.Logger) *Server {
	return &Server{
		addr:    addr,
		logger:  logger,
		clients: make(map[net.Conn]struct{}),
		events:  events,
		done:    make(chan struct{}),
	}
}

// Start listens and blocks in the accept loop until Close is called.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return ln.Close()
	default:
	}
	s.ln = ln
	s.mu.Unlock()
	s.logger.Info("change feed listening", "addr", ln.Addr().String())

	go s.broadcastLoop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return nil
		}
		s.addClient(conn)
		s.logger.Debug("feed client connected", "remote", conn.RemoteAddr().String())

		go s.readLoop(conn)
	}
}

// Close stops accepting, ends the broadcast loop and disconnects every client.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		_ = conn.Close()
		delete(s.clients, conn)
	}
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

// Count returns the number of connected clients.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) addClient(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[conn] = struct{}{}
}

func (s *Server) removeClient(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, conn)
	_ = conn.Close()
}

// readLoop only exists to notice disconnects; clients never send anything useful.
func (s *Server) readLoop(conn net.Conn) {
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
	}
	s.removeClient(conn)
	s.logger.Debug("feed client disconnected", "remote", conn.RemoteAddr().String())
}

func (s *Server) broadcastLoop() {
	for {
		select {
		case <-s.done:
			return
		case evt, ok := <-s.events:
			if !ok {
				return
			}
			s.broadcast(evt)
		}
	}
}

// broadcast writes evt to a snapshot of the clients. Writes happen outside the lock
// and under a deadline; a client that cannot keep up is dropped.
func (s *Server) broadcast(evt models.ChangeEvent) {
	b, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error("marshal change event", "err", err)
		return
	}
	b = append(b, '\n')

	s.mu.Lock()
	conns := make([]net.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if _, err := conn.Write(b); err != nil {
			s.logger.Warn("dropping feed client", "remote", conn.RemoteAddr().String(), "err", err)
			s.removeClient(conn)
		}
	}
}
