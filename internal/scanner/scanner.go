package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/options-edge/internal/liquidity"
	"github.com/yourusername/options-edge/internal/logger"
	"github.com/yourusername/options-edge/internal/metrics"
	"github.com/yourusername/options-edge/internal/models"
	"github.com/yourusername/options-edge/internal/pricing"
	"github.com/yourusername/options-edge/internal/strategy"
)

// Scan scopes used in metrics
const (
	ScopeSymbol   = "symbol"
	ScopeUniverse = "universe"
)

// Config holds scan tuning
type Config struct {
	RiskFreeRate           float64
	VolatilityHistoryLimit int
	AverageVolumeDays      int
}

// DefaultConfig returns the standard scan settings
func DefaultConfig() Config {
	return Config{
		RiskFreeRate:           pricing.DefaultRiskFreeRate,
		VolatilityHistoryLimit: 30,
		AverageVolumeDays:      10,
	}
}

// Scanner runs detectors over contracts and reconciles results with the store
type Scanner struct {
	market      MarketData
	store       OpportunityStore
	registry    *strategy.Registry
	cfg         Config
	log         *logger.ScanLogger
	audit       *logger.AuditLogger
	needsVolume bool
	now         func() time.Time
}

// New creates a scanner
func New(market MarketData, store OpportunityStore, registry *strategy.Registry, cfg Config, log *logrus.Logger) *Scanner {
	if cfg.VolatilityHistoryLimit <= 0 {
		cfg.VolatilityHistoryLimit = DefaultConfig().VolatilityHistoryLimit
	}
	if cfg.AverageVolumeDays <= 0 {
		cfg.AverageVolumeDays = DefaultConfig().AverageVolumeDays
	}

	s := &Scanner{
		market:   market,
		store:    store,
		registry: registry,
		cfg:      cfg,
		log:      logger.NewScanLogger(log),
		audit:    logger.NewAuditLogger(log),
		now:      time.Now,
	}
	for _, d := range registry.Detectors() {
		if v, ok := d.(volumeAware); ok && v.NeedsAverageVolume() {
			s.needsVolume = true
		}
	}
	return s
}

// ScanSymbol scans one symbol. With persist set, candidates are upserted
// without deactivating anything else.
func (s *Scanner) ScanSymbol(ctx context.Context, symbol string, persist bool) ([]*models.Candidate, error) {
	symbol = normalize(symbol)
	if symbol == "" {
		return nil, models.ErrSymbolRequired
	}

	start := time.Now()
	candidates, err := s.scanSymbol(ctx, symbol)
	if err != nil {
		metrics.RecordScan(ScopeSymbol, "skipped", time.Since(start).Seconds())
		return []*models.Candidate{}, err
	}

	if persist {
		if err := s.upsert(ctx, symbol, candidates); err != nil {
			metrics.RecordScan(ScopeSymbol, "persistence_failed", time.Since(start).Seconds())
			return candidates, err
		}
	}
	metrics.RecordScan(ScopeSymbol, "success", time.Since(start).Seconds())
	return candidates, nil
}

// ScanUniverse scans every watched symbol. Symbols whose data cannot be loaded
// are skipped, and only symbols with candidates appear in the result. With
// persist set, all opportunities are deactivated and the accepted candidates
// upserted in one transaction after every symbol has been scanned. A cancelled
// scan returns what it has with ctx.Err() and writes nothing.
func (s *Scanner) ScanUniverse(ctx context.Context, persist bool) (map[string][]*models.Candidate, error) {
	start := time.Now()
	results := make(map[string][]*models.Candidate)

	symbols, err := s.market.ListWatchedSymbols(ctx)
	if err != nil {
		metrics.RecordScan(ScopeUniverse, "failed", time.Since(start).Seconds())
		return results, fmt.Errorf("failed to list watched symbols: %w", err)
	}

	var all []*models.Candidate
	scanned := 0
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			s.log.WithFields(logrus.Fields{
				"scanned": scanned,
				"symbols": len(symbols),
			}).Warn("Universe scan cancelled, skipping persistence")
			metrics.RecordScan(ScopeUniverse, "cancelled", time.Since(start).Seconds())
			return results, err
		}

		symbol = normalize(symbol)
		candidates, err := s.scanSymbol(ctx, symbol)
		if err != nil {
			// scanSymbol already logged the reason
			continue
		}
		scanned++
		if len(candidates) > 0 {
			results[symbol] = candidates
		}
		all = append(all, candidates...)
	}

	if persist {
		if err := s.reconcile(ctx, all); err != nil {
			metrics.RecordScan(ScopeUniverse, "persistence_failed", time.Since(start).Seconds())
			return results, err
		}
		s.refreshActiveGauge(ctx)
	}

	s.log.LogUniverseScan(len(symbols), scanned, len(all), persist, time.Since(start))
	metrics.RecordScan(ScopeUniverse, "success", time.Since(start).Seconds())
	return results, nil
}

// scanSymbol returns the accepted candidates for one symbol ordered by score.
// An error means the symbol was skipped.
func (s *Scanner) scanSymbol(ctx context.Context, symbol string) ([]*models.Candidate, error) {
	start := time.Now()
	now := s.now()

	quote, err := s.market.GetUnderlyingPrice(ctx, symbol)
	if err != nil || quote == nil || quote.Price <= 0 {
		if err == nil {
			err = models.ErrNoUnderlyingPrice
		}
		s.log.LogSkip(symbol, "", "no_underlying_price", err)
		metrics.RecordSymbolSkipped("no_underlying_price")
		return nil, fmt.Errorf("%s: %w", symbol, joinNotFound(err, models.ErrNoUnderlyingPrice))
	}
	underlying := quote.Price

	contracts, err := s.market.ListActiveContracts(ctx, symbol, now)
	if err != nil {
		s.log.LogSkip(symbol, "", "contracts_unavailable", err)
		metrics.RecordSymbolSkipped("contracts_unavailable")
		return nil, fmt.Errorf("failed to list contracts for %s: %w", symbol, err)
	}

	var volRecord *models.VolatilityRecord
	history, err := s.market.GetVolatilityHistory(ctx, symbol, s.cfg.VolatilityHistoryLimit)
	if err != nil {
		s.log.LogSkip(symbol, "", "volatility_unavailable", err)
	} else {
		volRecord = models.LatestVolatility(history)
	}

	candidates := make([]*models.Candidate, 0)
	evaluated := 0
	for _, contract := range contracts {
		if contract == nil || contract.IsExpired(now) {
			continue
		}
		if err := contract.Validate(); err != nil {
			s.log.LogSkip(symbol, contract.ContractSymbol, "invalid_contract", err)
			continue
		}

		snapshot, err := s.market.GetLatestQuote(ctx, contract.ID)
		if err != nil || snapshot == nil {
			if err == nil {
				err = models.ErrNoQuote
			}
			s.log.LogSkip(symbol, contract.ContractSymbol, "no_quote", err)
			continue
		}

		in := strategy.Input{
			Symbol:          symbol,
			Contract:        contract,
			Quote:           s.enrich(snapshot, contract, underlying, now),
			UnderlyingPrice: underlying,
			Volatility:      volRecord,
			RiskFreeRate:    s.cfg.RiskFreeRate,
			Now:             now,
		}
		in.Liquidity = liquidity.Score(in.Quote)
		if s.needsVolume {
			in.AverageVolume = s.averageVolume(ctx, symbol, contract)
		}

		candidates = append(candidates, s.evaluate(in)...)
		evaluated++
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	metrics.RecordContractsEvaluated(evaluated)
	s.log.LogSymbolScan(symbol, underlying, len(contracts), evaluated, len(candidates), time.Since(start))
	return candidates, nil
}

// enrich returns a copy of the quote with spread, Greeks and values filled in
func (s *Scanner) enrich(q *models.QuoteSnapshot, contract *models.ContractSpec, underlying float64, now time.Time) *models.QuoteSnapshot {
	c := q.Clone()
	c.RefreshSpread()
	c.ResolveGreeks(contract, underlying, now, s.cfg.RiskFreeRate)
	c.ResolveValues(contract, underlying)
	return c
}

func (s *Scanner) averageVolume(ctx context.Context, symbol string, contract *models.ContractSpec) float64 {
	avg, err := s.market.GetAverageVolume(ctx, contract.ID, s.cfg.AverageVolumeDays)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"symbol":          symbol,
			"contract_symbol": contract.ContractSymbol,
		}).WithError(err).Debug("Average volume unavailable")
		return 0
	}
	return avg
}

// evaluate runs every registered detector and keeps the accepted candidates
func (s *Scanner) evaluate(in strategy.Input) []*models.Candidate {
	var accepted []*models.Candidate
	for _, d := range s.registry.Detectors() {
		detectorIn := in
		detectorIn.Quote = in.Quote.Clone()

		c, err := runDetector(d, detectorIn)
		if err != nil {
			kind := "error"
			if errors.Is(err, errDetectorPanic) {
				kind = "panic"
			}
			s.log.LogDetectorFailure(d.Name(), in.Contract.ContractSymbol, err)
			metrics.RecordDetectorFailure(d.Name(), kind)
			continue
		}
		if c == nil {
			continue
		}

		ok := s.registry.Accept(c)
		metrics.RecordCandidate(d.Name(), c.OpportunityType, c.Score, ok)
		if !ok {
			continue
		}
		s.log.LogCandidate(in.Symbol, c.ContractSymbol, c.Detector, c.OpportunityType, c.Score)
		accepted = append(accepted, c)
	}
	return accepted
}

var errDetectorPanic = errors.New("detector panic")

// runDetector calls d.Detect and converts a panic into an error
func runDetector(d strategy.Detector, in strategy.Input) (c *models.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			c = nil
			err = fmt.Errorf("%w: %v", errDetectorPanic, r)
		}
	}()
	return d.Detect(in)
}

// upsert writes candidates for a single-symbol scan
func (s *Scanner) upsert(ctx context.Context, symbol string, candidates []*models.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	err := s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, c := range candidates {
			if err := s.store.UpsertOpportunity(ctx, c); err != nil {
				return fmt.Errorf("failed to upsert %s for %s: %w", c.OpportunityType, c.ContractSymbol, err)
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordPersistenceFailure("upsert")
		s.audit.LogUpsert(symbol, 0, len(candidates))
		return fmt.Errorf("failed to persist opportunities for %s: %w", symbol, err)
	}
	s.audit.LogUpsert(symbol, len(candidates), 0)
	return nil
}

// reconcile deactivates every opportunity and repopulates from candidates in
// one transaction
func (s *Scanner) reconcile(ctx context.Context, candidates []*models.Candidate) error {
	var deactivated int64
	upserted := 0
	err := s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.store.DeactivateAllOpportunities(ctx)
		if err != nil {
			metrics.RecordPersistenceFailure("deactivate")
			return fmt.Errorf("failed to deactivate opportunities: %w", err)
		}
		deactivated = n

		for _, c := range candidates {
			if err := s.store.UpsertOpportunity(ctx, c); err != nil {
				metrics.RecordPersistenceFailure("upsert")
				return fmt.Errorf("failed to upsert %s for %s: %w", c.OpportunityType, c.ContractSymbol, err)
			}
			upserted++
		}
		return nil
	})

	if err != nil {
		s.audit.LogReconciliation(deactivated, 0, len(candidates)-upserted, false, s.now())
		return fmt.Errorf("opportunity reconciliation rolled back: %w", err)
	}
	s.audit.LogReconciliation(deactivated, upserted, 0, true, s.now())
	return nil
}

func (s *Scanner) refreshActiveGauge(ctx context.Context) {
	counter, ok := s.store.(ActiveCounter)
	if !ok {
		return
	}
	counts, err := counter.CountActiveBySymbol(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Failed to count active opportunities")
		return
	}
	metrics.UpdateActiveOpportunities(counts)
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// joinNotFound keeps err in the chain and adds target unless already present
func joinNotFound(err, target error) error {
	if errors.Is(err, target) {
		return err
	}
	return fmt.Errorf("%w: %w", target, err)
}
