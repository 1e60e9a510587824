package rpc

import (
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/khanglvm/intent-rank/internal/behavior"
	"github.com/khanglvm/intent-rank/internal/recommend"
	"github.com/khanglvm/intent-rank/internal/textanalysis"
)

type queryParams struct {
	Query string `json:"query"`
}

type recommendParams struct {
	Query    string              `json:"query"`
	Limit    int                 `json:"limit"`
	Products []recommend.Product `json:"products"`
	Stores   []recommend.Store   `json:"stores"`
	NoTrack  bool                `json:"noTrack"`
}

type trackParams struct {
	Kind         string `json:"kind"`
	ID           string `json:"id"`
	DurationMs   int64  `json:"durationMs"`
	Query        string `json:"query"`
	ResultsCount int    `json:"resultsCount"`
	Context      string `json:"context"`
}

type listParams struct {
	Kind  string `json:"kind"`
	Limit int    `json:"limit"`
}

type interestsParams struct {
	// Categories maps product ids to categories for ids the catalog lacks.
	Categories map[string]string `json:"categories"`
}

type idParams struct {
	ID string `json:"id"`
}

func (s *Server) handleAnalyze(raw json.RawMessage) (interface{}, error) {
	var p queryParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return textanalysis.Analyze(p.Query), nil
}

func (s *Server) handleRecommend(raw json.RawMessage) (interface{}, error) {
	var p recommendParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	products, stores := p.Products, p.Stores
	if products == nil && stores == nil {
		if s.deps.Catalog == nil {
			return nil, invalidParams("no candidates: pass products/stores or start the server with a catalog")
		}
		var err error
		products, stores, err = s.deps.Catalog.Candidates(p.Query, 0)
		if err != nil {
			return nil, err
		}
	}

	s.sync()
	res := s.deps.Scorer.Generate(p.Query, products, stores, p.Limit)

	if s.deps.TrackSearches && !p.NoTrack && strings.TrimSpace(p.Query) != "" {
		s.track(behavior.Event{
			Kind:         behavior.EventSearch,
			Query:        p.Query,
			ResultsCount: len(res.Products) + len(res.Stores),
		})
	}
	return res, nil
}

func (s *Server) handleTrack(raw json.RawMessage) (interface{}, error) {
	var p trackParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	kind, err := behavior.ParseEventKind(p.Kind)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	e := behavior.Event{
		Kind:         kind,
		TargetID:     p.ID,
		Duration:     time.Duration(p.DurationMs) * time.Millisecond,
		Query:        p.Query,
		ResultsCount: p.ResultsCount,
		Context:      p.Context,
	}
	if err := e.Validate(); err != nil {
		return nil, invalidParams("%v", err)
	}

	return map[string]interface{}{"tracked": s.track(e)}, nil
}

func (s *Server) handleRead() (interface{}, error) {
	s.sync()
	return s.deps.Store.Read(), nil
}

func parseTarget(kind string) (behavior.TargetType, error) {
	switch strings.ToLower(kind) {
	case "", "product", "products":
		return behavior.TargetProduct, nil
	case "store", "stores":
		return behavior.TargetStore, nil
	default:
		return "", invalidParams("unknown kind %q (want product or store)", kind)
	}
}

func (s *Server) handleMostViewed(raw json.RawMessage) (interface{}, error) {
	p := listParams{Limit: 10}
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	target, err := parseTarget(p.Kind)
	if err != nil {
		return nil, err
	}
	s.sync()
	return s.deps.Store.MostViewed(target, p.Limit), nil
}

func (s *Server) handleRecentSearches(raw json.RawMessage) (interface{}, error) {
	p := listParams{Limit: 10}
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	s.sync()
	return s.deps.Store.RecentSearches(p.Limit), nil
}

func (s *Server) handleInterests(raw json.RawMessage) (interface{}, error) {
	var p interestsParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	explicit := behavior.MapLookup(p.Categories)
	lookup := func(id string) (string, bool) {
		if c, ok := explicit(id); ok {
			return c, true
		}
		if s.deps.Catalog != nil {
			return s.deps.Catalog.CategoryOf(id)
		}
		return "", false
	}

	s.sync()
	return s.deps.Store.InterestCategories(lookup), nil
}

func (s *Server) handleAffinity(raw json.RawMessage) (interface{}, error) {
	var p idParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, invalidParams("id is required")
	}
	s.sync()
	return map[string]interface{}{
		"id":       p.ID,
		"affinity": s.deps.Store.ProductAffinity(p.ID),
	}, nil
}

func (s *Server) handleSummary() (interface{}, error) {
	s.sync()
	return s.deps.Store.AggregatedSummary(), nil
}

func (s *Server) handleClear(searchesOnly bool) (interface{}, error) {
	s.sync()
	if searchesOnly {
		s.deps.Store.ClearSearches()
	} else {
		s.deps.Store.ClearAll()
	}
	return map[string]interface{}{"cleared": true}, nil
}

func (s *Server) handleSessionID() (interface{}, error) {
	return map[string]interface{}{"sessionId": s.deps.Store.SessionID()}, nil
}

// track queues e on the tracker, or records it directly without one.
// It reports false when tracking is switched off.
func (s *Server) track(e behavior.Event) bool {
	if s.deps.Tracker != nil {
		if !s.deps.Tracker.IsEnabled() {
			return false
		}
		s.deps.Tracker.Track(e)
		return true
	}
	if err := s.deps.Store.Record(e); err != nil {
		s.log.Debug().Err(err).Msg("ignored event")
		return false
	}
	return true
}

// sync makes queued events visible to the reads that follow.
func (s *Server) sync() {
	if s.deps.Tracker != nil {
		s.deps.Tracker.Flush()
	}
}
