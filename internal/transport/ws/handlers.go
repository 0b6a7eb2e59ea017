package ws

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/tic-tac-toe-duel/internal/domain"
	"go.uber.org/zap"
)

func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(err.Error())
		return
	}
	clientKey := strings.TrimSpace(r.Header.Get(domain.ClientKeyHeader))
	if clientKey == "" {
		clientKey = uuid.NewString()
		s.logger.Info("assigned client key", zap.String("client", clientKey))
	}
	s.logger.Info("new connection", zap.String("client", clientKey), zap.String("remote", r.RemoteAddr))
	client := newClient(conn, clientKey)
	defer client.Close()
	if err := s.hub.Handle(r.Context(), client); err != nil {
		s.logger.Error(err.Error(), zap.String("client", clientKey))
	}
}

func (s *server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	resp := domain.HealthCheckResponse{
		HubStats: s.hub.Stats(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := jsoniter.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.logger.Warn(err.Error())
	}
}
