package worker

import (
	"net"
	"net/rpc"
	"strconv"

	"chronodl/pkg/reasoner"

	"go.uber.org/zap"
)

// Server listens on a TCP port and serves a Service under the RPC name
// "Worker", one connection per accepted client — mirroring net/rpc's usual
// one-goroutine-per-connection idiom.
type Server struct {
	ID       string
	listener net.Listener
	logger   *zap.Logger
}

// Serve binds port, registers a fresh Service for id/cfg, and starts
// accepting connections in a background goroutine. Callers must call
// Close to release the listener.
func Serve(id string, port int, cfg reasoner.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ln, err := net.Listen("tcp", portAddr(port))
	if err != nil {
		return nil, err
	}

	svc := NewService(id, cfg, logger)
	server := rpc.NewServer()
	if err := server.RegisterName("Worker", svc); err != nil {
		ln.Close()
		return nil, err
	}

	s := &Server{ID: id, listener: ln, logger: logger.Named("rpc-server")}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go server.ServeConn(conn)
		}
	}()

	s.logger.Info("worker listening", zap.String("worker_id", id), zap.String("addr", ln.Addr().String()))
	return s, nil
}

// Addr reports the bound listener address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close stops accepting connections and releases the listener.
func (s *Server) Close() error {
	return s.listener.Close()
}

func portAddr(port int) string {
	if port <= 0 {
		return ":0"
	}
	return ":" + strconv.Itoa(port)
}
