// Package e2etest starts the web server in-process and talks to it over HTTP.
package e2etest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/myrjola/coachplan/internal/logging"
)

// RunFunc has the signature of the web server's run function.
type RunFunc func(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error

type Server struct {
	url        string
	client     *Client
	db         *sql.DB
	cancel     context.CancelCauseFunc
	serverDone chan struct{}
}

// LogAddrKey is the key used to log the address the server is listening on.
const LogAddrKey = "addr"

// LogDsnKey is the data source name key used to log the SQL DSN.
const LogDsnKey = "sqlDsn"

// StartServer runs the server in a goroutine and returns once /api/healthy answers.
//
// The server must log its listen address under LogAddrKey and its SQLite DSN under LogDsnKey. logSink
// receives the server logs, usually testhelpers.NewWriter. The server is shut down in t.Cleanup.
func StartServer(t *testing.T, logSink io.Writer, lookupEnv func(string) (string, bool), run RunFunc) (*Server, error) {
	var (
		server *Server
		ctx    = t.Context()
	)
	t.Cleanup(func() {
		if server != nil {
			server.Shutdown()
		}
	})
	ctx, cancel := context.WithCancelCause(ctx)
	serverDone := make(chan struct{})

	addrCh := make(chan string, 1)
	dsnCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case LogAddrKey:
				sendLatest(addrCh, a.Value.String())
			case LogDsnKey:
				sendLatest(dsnCh, a.Value.String())
			}
			return a
		},
	})))

	go func() {
		defer close(serverDone)
		if err := run(ctx, logger, lookupEnv); err != nil {
			cancel(err)
		}
	}()

	var addr, dsn string
	for dsn == "" || addr == "" {
		select {
		case <-ctx.Done():
			<-serverDone
			return nil, fmt.Errorf("context cancelled: %w", context.Cause(ctx))
		case addr = <-addrCh:
		case dsn = <-dsnCh:
		}
	}

	serverURL := "http://" + addr
	client, err := NewClient(serverURL)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return nil, fmt.Errorf("wait for ready: %w", err)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	server = &Server{
		url:        serverURL,
		client:     client,
		db:         db,
		cancel:     cancel,
		serverDone: serverDone,
	}
	return server, nil
}

// sendLatest delivers v without blocking the logger when nobody is listening any more.
func sendLatest(ch chan string, v string) {
	select {
	case ch <- v:
	default:
	}
}

// Client returns the default client. Use NewSession for additional users.
func (s *Server) Client() *Client {
	return s.client
}

// NewSession returns a fresh client with its own cookie jar logged in as displayName.
func (s *Server) NewSession(ctx context.Context, displayName string) (*Client, error) {
	client, err := NewClient(s.url)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	if err = client.Login(ctx, displayName); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Server) URL() string {
	return s.url
}

func (s *Server) DB() *sql.DB {
	return s.db
}

func (s *Server) Shutdown() {
	s.cancel(nil)
	<-s.serverDone
	_ = s.db.Close()
}
