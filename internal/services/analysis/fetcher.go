package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/findigest/internal/common"
	"github.com/bobmcallan/findigest/internal/models"
)

// companyData is everything fetched for one request.
type companyData struct {
	requestedName string
	symbol        string
	profile       models.CompanyProfile
	income        []models.IncomeStatementYear
	cashFlow      []models.CashFlowYear
	competitors   []models.PeerMetric
}

// resolveTicker maps a company name to the first matching ticker.
// Any failure, including an empty result, is reported as not found.
func (s *Service) resolveTicker(ctx context.Context, company string) (*models.TickerMatch, error) {
	matches, err := s.fmp.SearchTicker(ctx, company, 1, s.exchange)
	if err != nil {
		return nil, wrap(ErrCompanyNotFound, err)
	}
	if len(matches) == 0 || matches[0] == nil || matches[0].Symbol == "" {
		return nil, ErrCompanyNotFound
	}
	return matches[0], nil
}

// fetchCompany loads the profile and statement history. All three are
// required; they depend only on the symbol and are fetched together.
func (s *Service) fetchCompany(ctx context.Context, symbol string) (*companyData, error) {
	data := &companyData{symbol: symbol}
	years := s.config.HistoryYears

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.fmp.GetProfile(gctx, symbol)
		if err != nil {
			return fmt.Errorf("profile fetch failed for %s: %w", symbol, err)
		}
		if profile != nil {
			data.profile = *profile
		}
		return nil
	})
	g.Go(func() error {
		income, err := s.fmp.GetIncomeStatements(gctx, symbol, years)
		if err != nil {
			return fmt.Errorf("income statement fetch failed for %s: %w", symbol, err)
		}
		data.income = income
		return nil
	})
	g.Go(func() error {
		cashFlow, err := s.fmp.GetCashFlowStatements(gctx, symbol, years)
		if err != nil {
			return fmt.Errorf("cash flow fetch failed for %s: %w", symbol, err)
		}
		data.cashFlow = cashFlow
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// fetchPeers screens the industry and loads each peer's profile and latest
// income statement on a bounded pool. Peers missing either are dropped;
// screen order is kept.
func (s *Service) fetchPeers(ctx context.Context, logger *common.Logger, symbol, industry string) []models.PeerMetric {
	competitors := []models.PeerMetric{}

	screened, err := s.fmp.ScreenPeers(ctx, industry, s.config.PeerLimit)
	if err != nil {
		logger.Warn().Err(err).Str("industry", industry).Msg("Peer screen failed, continuing without competitors")
		return competitors
	}

	peers := make([]models.PeerSummary, 0, len(screened))
	for _, p := range screened {
		if p.Symbol != "" && p.Symbol != symbol {
			peers = append(peers, p)
		}
	}

	results := make([]*models.PeerMetric, len(peers))
	g := new(errgroup.Group)
	g.SetLimit(max(s.config.PeerConcurrency, 1))

	for i, peer := range peers {
		g.Go(func() error {
			profile, err := s.fmp.GetProfile(ctx, peer.Symbol)
			if err != nil {
				logger.Warn().Err(err).Str("peer", peer.Symbol).Msg("Peer profile fetch failed, excluding")
				return nil
			}
			if profile == nil {
				logger.Debug().Str("peer", peer.Symbol).Msg("Peer has no profile, excluding")
				return nil
			}
			income, err := s.fmp.GetIncomeStatements(ctx, peer.Symbol, 1)
			if err != nil {
				logger.Warn().Err(err).Str("peer", peer.Symbol).Msg("Peer income fetch failed, excluding")
				return nil
			}
			if len(income) == 0 {
				logger.Debug().Str("peer", peer.Symbol).Msg("Peer has no income statement, excluding")
				return nil
			}
			metric := BuildPeerMetric(peer.Symbol, profile, income[0])
			results[i] = &metric
			return nil
		})
	}
	_ = g.Wait()

	for _, m := range results {
		if m != nil {
			competitors = append(competitors, *m)
		}
	}
	return competitors
}
