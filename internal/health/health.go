// Package health exposes the tiny HTTP listener that managed hosting
// platforms poll to decide whether the process is alive.
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const responseBody = "Bot is running!"

// Handler answers every request, whatever the path or method, with 200 and a
// fixed body. Platforms like Render refuse to keep a service up unless
// something binds the port and answers their probes.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, responseBody)
	})
}

// Server runs the liveness listener on its own goroutine, independent of the
// chat update loop.
type Server struct {
	port int
	log  zerolog.Logger
}

func NewServer(port int, log zerolog.Logger) *Server {
	return &Server{
		port: port,
		log:  log.With().Str("component", "health").Logger(),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Int("port", s.port).Msg("liveness endpoint listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("liveness endpoint: %w", err)
		}
		return nil
	}
}
