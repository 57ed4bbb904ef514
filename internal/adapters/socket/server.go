package socket

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// maxRequestLine caps one request line; link requests carry whole notes.
const maxRequestLine = 4 * 1024 * 1024

// AppQueries provides access to app state for server handlers.
// Thread safety is the implementor's responsibility.
type AppQueries interface {
	Link(params LinkParams) LinkResult
	Match(text string) MatchResult
	Titles() TitlesResult
	Backlinks(params BacklinksParams) (BacklinksResult, error)
	Reload() (ReloadResult, error)
	Health() HealthResult
}

// Server is the daemon that listens on a Unix socket and serves link requests.
type Server struct {
	queries  AppQueries
	log      logr.Logger
	listener net.Listener
	sockPath string
	started  time.Time

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server answering from queries.
func NewServer(queries AppQueries, sockPath string, log logr.Logger) *Server {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Server{
		queries:    queries,
		log:        log.WithName("socket"),
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first; if the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		s.log.V(1).Info("removing stale socket", "path", s.sockPath)
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop gracefully shuts down the server, closing the listener and removing the socket file.
// Idempotent (remote shutdown followed by a signal calls it twice).
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), maxRequestLine)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		start := time.Now()
		resp := s.handleRequest(req)
		s.log.V(1).Info("request", "method", req.Method, "id", req.ID,
			"elapsed", time.Since(start), "error", resp.Error)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}

	if errors.Is(scanner.Err(), bufio.ErrTooLong) {
		s.log.Info("request too large", "limit", maxRequestLine)
		// The client reads only after its write completes.
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		discardLine(conn)
		s.writeResponse(conn, Response{Error: "request too large"})
	}
}

// discardLine reads r up to and including the next newline.
func discardLine(r io.Reader) {
	br := bufio.NewReader(r)
	for {
		_, err := br.ReadSlice('\n')
		if err != bufio.ErrBufferFull {
			return
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodLink:
		return s.handleLink(req)
	case MethodMatch:
		return s.handleMatch(req)
	case MethodTitles:
		return Response{ID: req.ID, Result: s.queries.Titles()}
	case MethodBacklinks:
		return s.handleBacklinks(req)
	case MethodReload:
		return s.handleReload(req)
	case MethodHealth:
		return s.handleHealth(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

func (s *Server) handleLink(req Request) Response {
	var params LinkParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid link params"}
	}

	start := time.Now()
	result := s.queries.Link(params)
	result.Elapsed = time.Since(start).String()
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleMatch(req Request) Response {
	var params MatchParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid match params"}
	}

	start := time.Now()
	result := s.queries.Match(params.Text)
	result.Elapsed = time.Since(start).String()
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleBacklinks(req Request) Response {
	var params BacklinksParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid backlinks params"}
	}
	if params.ID == "" && params.Title == "" {
		return Response{ID: req.ID, Error: "backlinks needs an id or a title"}
	}

	result, err := s.queries.Backlinks(params)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleReload(req Request) Response {
	result, err := s.queries.Reload()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleHealth(req Request) Response {
	result := s.queries.Health()
	result.Status = "ok"
	result.Uptime = time.Since(s.started).Round(time.Second).String()
	return Response{ID: req.ID, Result: result}
}

// decodeParams re-marshals the generic params value into dst.
func decodeParams(params interface{}, dst interface{}) error {
	if params == nil {
		return nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error(err, "marshal response", "id", resp.ID)
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
