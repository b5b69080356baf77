package parser

import (
	"log/slog"
)

// Service orchestrates the specialized parser and the generic fallback.
type Service struct {
	maybank  *MaybankParser
	fallback *FallbackExtractor
	logger   *slog.Logger
}

// NewService creates a parse orchestrator. The keyword table is injected so
// deployments can version it independently of the code.
func NewService(keywords *KeywordMapper, logger *slog.Logger) *Service {
	return &Service{
		maybank:  NewMaybankParser(keywords),
		fallback: NewFallbackExtractor(),
		logger:   logger,
	}
}

// Parse converts statement PDF bytes into transaction rows. The specialized
// parser runs first; the fallback runs when the document is not its format
// or it matched but produced nothing. An internal parser failure is logged,
// never silently discarded, and still falls through to the fallback. An
// empty result is a valid outcome.
func (s *Service) Parse(data []byte) []Row {
	outcome := s.maybank.Parse(data)
	switch outcome.Kind {
	case Matched:
		if len(outcome.Rows) > 0 {
			return outcome.Rows
		}
		s.logger.Debug("specialized parser matched but produced no rows")
	case NotThisFormat:
		s.logger.Debug("document is not a maybank statement")
	case InternalError:
		s.logger.Error("specialized parser failed", slog.Any("error", outcome.Err))
	}

	return s.fallback.Extract(data)
}
