package discovery

import (
	"context"
	"log/slog"

	"github.com/maltedev/shop-scraper/internal/models"
	"github.com/maltedev/shop-scraper/internal/shopurl"
)

// Service turns raw search hits into classified, unique shop candidates.
type Service struct {
	searcher   Searcher
	classifier *shopurl.Classifier
	logger     *slog.Logger
}

func NewService(searcher Searcher, classifier *shopurl.Classifier) *Service {
	return &Service{
		searcher:   searcher,
		classifier: classifier,
		logger:     slog.Default().With("component", "discovery"),
	}
}

// Discover never fails: a search error is logged and yields no candidates.
func (s *Service) Discover(ctx context.Context, query string, limit int, country string) []models.CandidateURL {
	s.logger.Info("discovering shop URLs", "query", query, "limit", limit, "country", country)

	results, err := s.searcher.Search(ctx, query, limit, country)
	if err != nil {
		s.logger.Error("search failed", "query", query, "error", err)
		return []models.CandidateURL{}
	}

	seen := make(map[string]struct{}, len(results))
	candidates := make([]models.CandidateURL, 0, len(results))
	for _, r := range results {
		if !s.classifier.IsShopURL(r.URL) {
			s.logger.Debug("filtered out non-shop URL", "url", r.URL)
			continue
		}
		if _, dup := seen[r.URL]; dup {
			continue
		}
		seen[r.URL] = struct{}{}

		candidates = append(candidates, models.CandidateURL{
			URL:         r.URL,
			Title:       r.Title,
			Description: r.Description,
			Type:        s.classifier.Classify(r.URL),
			Query:       query,
		})
	}

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	s.logger.Info("discovered unique shop URLs", "count", len(candidates), "raw", len(results))
	return candidates
}
