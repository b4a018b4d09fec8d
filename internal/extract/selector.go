package extract

import (
	"fmt"

	"github.com/rs/zerolog"

	"invoiceqc/pkg/models"
)

// Selector chooses between the regional strategies.
//
// In auto mode the strategy whose markers appear in the text runs first
// (European when none match). If it leaves a critical field unknown the
// other strategies run too, and the result with the most critical fields
// wins; ties keep the detected strategy.
type Selector struct {
	mode       string
	strategies []*Strategy
	log        zerolog.Logger
}

// NewSelector creates a selector for mode (auto, de or in).
func NewSelector(mode string, log zerolog.Logger) (*Selector, error) {
	switch mode {
	case "", StrategyAuto:
		mode = StrategyAuto
	case StrategyEuropean, StrategyIndian:
	default:
		return nil, fmt.Errorf("%w: %q (want auto, de or in)", ErrUnknownStrategy, mode)
	}
	return &Selector{
		mode:       mode,
		strategies: []*Strategy{European(log), Indian(log)},
		log:        log,
	}, nil
}

// Extract implements Extractor.
func (s *Selector) Extract(invoiceID, text string) models.Invoice {
	inv, _ := s.ExtractWithStrategy(invoiceID, text)
	return inv
}

// ExtractWithStrategy also returns the name of the strategy that produced
// the record.
func (s *Selector) ExtractWithStrategy(invoiceID, text string) (models.Invoice, string) {
	if s.mode != StrategyAuto {
		st := s.byName(s.mode)
		return st.Extract(invoiceID, text), st.Name
	}

	primary := s.detect(text)
	best := primary.Extract(invoiceID, text)
	bestName := primary.Name
	bestScore := criticalResolved(best)

	for _, st := range s.strategies {
		if bestScore == criticalFieldCount {
			break
		}
		if st == primary {
			continue
		}
		candidate := st.Extract(invoiceID, text)
		if score := criticalResolved(candidate); score > bestScore {
			s.log.Info().
				Str("invoice_id", invoiceID).
				Str("detected", primary.Name).
				Str("chosen", st.Name).
				Int("critical_fields", score).
				Msg("Fallback strategy resolved more critical fields")
			best, bestName, bestScore = candidate, st.Name, score
		}
	}
	return best, bestName
}

const criticalFieldCount = 3

// detect returns the first strategy whose markers occur in text, or the
// default European strategy.
func (s *Selector) detect(text string) *Strategy {
	for _, st := range s.strategies {
		if st.Detects(text) {
			return st
		}
	}
	return s.strategies[0]
}

func (s *Selector) byName(name string) *Strategy {
	for _, st := range s.strategies {
		if st.Name == name {
			return st
		}
	}
	return s.strategies[0]
}
