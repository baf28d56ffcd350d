// Package server exposes sessions over TCP with a line protocol.
//
// The client sends one command per line. Every reply is the session's text
// followed by an empty line, so a client reads until it sees a blank line.
// Lines longer than maxLineLength are discarded with an error reply.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"sync"

	"github.com/Domenick1991/flightbooking/internal/monitoring"
	"github.com/Domenick1991/flightbooking/internal/session"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

const maxLineLength = 4096

var lineTooLongReply = fmt.Sprintf("Error: command longer than %d bytes\n", maxLineLength)

type Server struct {
	newSession func() *session.Session
	log        *logger.Logger

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool
	wg      sync.WaitGroup
}

type Option func(*Server)

func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// New returns a server that gives every connection its own session.
func New(newSession func() *session.Session, opts ...Option) *Server {
	s := &Server{
		newSession: newSession,
		log:        logger.Default(),
		conns:      make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve accepts connections until ctx is cancelled, then closes the listener
// and every open connection and waits for their handlers to return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
		s.closeAll()
	}()

	defer s.wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.closeAll()
			return fmt.Errorf("accept: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.ServeConn(ctx, conn)
		}()
	}
}

// ServeConn runs one session over conn until the client quits or disconnects.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	if !s.add(conn) {
		return
	}
	defer s.remove(conn)

	monitoring.SessionOpened()
	defer monitoring.SessionClosed()

	log := s.log.With("remote", conn.RemoteAddr().String())
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("session panicked, closing connection", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	sess := s.newSession()
	ctx = logger.WithLogger(ctx, log)
	log.Infow("session opened")

	r := bufio.NewReaderSize(conn, maxLineLength)
	w := bufio.NewWriter(conn)

	for {
		line, tooLong, err := readLine(r)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Warnw("read command", "error", err)
			}
			break
		}

		reply, quit := lineTooLongReply, false
		if !tooLong {
			reply, quit = sess.Execute(ctx, line)
		}
		if _, err := io.WriteString(w, reply+"\n"); err != nil {
			log.Warnw("write reply", "error", err)
			return
		}
		if err := w.Flush(); err != nil {
			log.Warnw("write reply", "error", err)
			return
		}
		if quit {
			break
		}
	}
	log.Infow("session closed", "username", sess.Username())
}

// readLine returns the next line without its terminator. A line that does not
// fit the reader's buffer is consumed up to its end and reported as tooLong.
func readLine(r *bufio.Reader) (line string, tooLong bool, err error) {
	buf, isPrefix, err := r.ReadLine()
	if err != nil {
		return "", false, err
	}
	if !isPrefix {
		return string(buf), false, nil
	}
	for isPrefix {
		if _, isPrefix, err = r.ReadLine(); err != nil {
			return "", true, err
		}
	}
	return "", true, nil
}

// add registers conn unless the server is shutting down.
func (s *Server) add(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) remove(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closing = true
	for conn := range s.conns {
		conn.Close()
	}
}
