package litex

import (
	"log"
	"net/http"
	"net/http/pprof"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	engine     *Engine
	httpServer *http.Server
}

func NewServer(config *Config) (*Server, error) {
	engine, err := NewEngine(config)
	if err != nil {
		return nil, err
	}
	if config.DataFile != "" {
		log.Printf("opened data file: %s\n", config.DataFile)
	}

	return &Server{
		engine:     engine,
		httpServer: &http.Server{Addr: config.Addr(), Handler: NewHandler(engine)},
	}, nil
}

// NewHandler serves sessions over /ws and metrics over /metrics.
func NewHandler(engine *Engine) http.Handler {
	mux := http.NewServeMux()

	// Serve metrics.
	mux.Handle(
		"/metrics",
		promhttp.HandlerFor(engine.Registry(), promhttp.HandlerOpts{}),
	)

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// Serve WebSocket endpoint for sessions.
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(_ *http.Request) bool { return true },
	}
	mux.HandleFunc("/ws", func(resp http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(resp, req, nil)
		if err != nil {
			log.Println(err)
			return
		}
		newConnection(conn, engine).handleFrames()
	})

	return mux
}

func (s *Server) Engine() *Engine {
	return s.engine
}

func (s *Server) ListenAndServe() error {
	log.Println("serving HTTP at", "http://"+s.httpServer.Addr+"/")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Close() error {
	log.Println("closing snapshot store...")
	if err := s.engine.Close(); err != nil {
		return errors.Wrap(err, "closing engine")
	}
	log.Println("closing http server...")
	if err := s.httpServer.Close(); err != nil {
		return errors.Wrap(err, "closing http server")
	}
	log.Println("bye!")
	return nil
}
