package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/jhoicas/ventas-sync/internal/domain/source"
	"github.com/jhoicas/ventas-sync/pkg/logger"
)

// ErrCicloEnCurso se devuelve cuando se pide un ciclo mientras otro sigue
// ejecutándose (el disparo manual y el programado comparten el mismo guard).
var ErrCicloEnCurso = errors.New("ya hay un ciclo de sincronización en curso")

// Service une el origen de documentos con el orquestador y garantiza que solo
// corra un ciclo a la vez.
type Service struct {
	source source.RecordSource
	orch   *Orchestrator
	log    *logger.Logger
	mu     gosync.Mutex
}

// NewService construye el servicio de sincronización.
func NewService(src source.RecordSource, orch *Orchestrator, log *logger.Logger) *Service {
	return &Service{source: src, orch: orch, log: log}
}

// RunCycle lee los documentos del origen y ejecuta un ciclo completo. Si otro
// ciclo está en curso devuelve ErrCicloEnCurso sin tocar nada.
func (s *Service) RunCycle(ctx context.Context) (*Report, error) {
	if !s.mu.TryLock() {
		return nil, ErrCicloEnCurso
	}
	defer s.mu.Unlock()

	docs, err := s.source.FetchDocuments()
	if err != nil {
		return nil, fmt.Errorf("leer documentos del origen: %w", err)
	}
	s.log.Info().Int("documentos", len(docs)).Msg("documentos leídos del origen")

	return s.orch.Run(ctx, docs)
}
