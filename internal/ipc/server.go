package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/screenshot-tool/internal/runtimepath"
)

// Handler is the running overlay as seen from the control socket.
// Fullscreen and Cancel must only enqueue work for the overlay's own
// goroutine; they are called from connection goroutines.
type Handler interface {
	Fullscreen() error
	Cancel() error
	Status() StatusData
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a server on the default control socket path.
func NewServer(handler Handler) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerWithPath(socketPath, handler), nil
}

// NewServerWithPath creates a server on an explicit socket path.
func NewServerWithPath(socketPath string, handler Handler) *Server {
	// Callers hold the instance lock, so a leftover socket is stale.
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		handler:    handler,
		startTime:  time.Now(),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			if ne, ok := err.(net.Error); ok && !ne.Timeout() {
				return
			}
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	var resp *Response
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		resp = failure("invalid request: %v", err)
	} else {
		resp = s.dispatch(req.Command)
	}

	if err := writeLine(conn, resp); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

func (s *Server) dispatch(cmd CommandType) *Response {
	switch cmd {
	case CommandFullscreen:
		log.Println("IPC: fullscreen requested")
		if err := s.handler.Fullscreen(); err != nil {
			return failure("fullscreen: %v", err)
		}
		return okResponse(nil)

	case CommandCancel:
		log.Println("IPC: cancel requested")
		if err := s.handler.Cancel(); err != nil {
			return failure("cancel: %v", err)
		}
		return okResponse(nil)

	case CommandGetStatus:
		status := s.handler.Status()
		if status.PID == 0 {
			status.PID = os.Getpid()
		}
		status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
		return okResponse(status)
	}
	return failure("unknown command: %s", cmd)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
