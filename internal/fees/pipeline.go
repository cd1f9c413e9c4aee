// Package fees turns gas oracle snapshots into slow, average and fast fee
// tiers.
package fees

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Soptq/shapeshift-lib/internal/core/domain"
	"github.com/Soptq/shapeshift-lib/internal/core/errs"
	"github.com/Soptq/shapeshift-lib/internal/infra/gasoracle"
)

// DefaultSource is the aggregate the oracle reports across its feeds.
const DefaultSource = "MEDIAN"

// Oracle returns gas price quotes per source.
type Oracle interface {
	Quotes(ctx context.Context) ([]gasoracle.Quote, error)
}

// Pipeline prices transactions from one oracle source.
type Pipeline struct {
	oracle Oracle
	source string
}

// NewPipeline creates a pipeline reading source, DefaultSource when empty.
func NewPipeline(oracle Oracle, source string) *Pipeline {
	if source == "" {
		source = DefaultSource
	}
	return &Pipeline{oracle: oracle, source: source}
}

// Tiers are gas prices for one snapshot: fast is the oracle's instant
// price, average its fast price and slow its low price.
type Tiers struct {
	Fast    decimal.Decimal
	Average decimal.Decimal
	Slow    decimal.Decimal
}

// Snapshot fetches the oracle once. A missing source or tier fails the whole
// snapshot with FeeDataUnavailable.
func (p *Pipeline) Snapshot(ctx context.Context) (Tiers, error) {
	quotes, err := p.oracle.Quotes(ctx)
	if err != nil {
		return Tiers{}, errs.Normalize("gasOracle", errs.KindFeeDataUnavailable, err)
	}

	for _, q := range quotes {
		if q.Source != p.source {
			continue
		}
		if q.Instant == nil || q.Fast == nil || q.Low == nil {
			return Tiers{}, errs.New(errs.KindFeeDataUnavailable, "%s quote is missing a tier", p.source)
		}
		return Tiers{Fast: *q.Instant, Average: *q.Fast, Slow: *q.Low}, nil
	}

	return Tiers{}, errs.New(errs.KindFeeDataUnavailable, "gas oracle returned no %s source", p.source)
}

// Estimate prices gasLimit at each tier. With sendMax set, each tier also
// carries the balance left after paying its fee, floored at zero.
func (t Tiers) Estimate(gasLimit string, sendMax *decimal.Decimal) (*domain.FeeEstimate, error) {
	limit, err := decimal.NewFromString(gasLimit)
	if err != nil || limit.IsNegative() {
		return nil, errs.New(errs.KindGasEstimationFailed, "invalid gas limit %q", gasLimit)
	}

	tier := func(price decimal.Decimal) domain.FeeTier {
		fee := price.Mul(limit).Ceil()
		ft := domain.FeeTier{
			TxFee: fee.String(),
			ChainSpecific: domain.FeeSpecific{
				GasLimit: limit.String(),
				GasPrice: price.String(),
			},
		}
		if sendMax != nil {
			ft.ChainSpecific.SendMaxValue = decimal.Max(sendMax.Sub(fee), decimal.Zero).String()
		}
		return ft
	}

	return &domain.FeeEstimate{
		Slow:    tier(t.Slow),
		Average: tier(t.Average),
		Fast:    tier(t.Fast),
	}, nil
}

// ParseAmount parses a non-negative integer amount in base units.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return decimal.Zero, fmt.Errorf("amount %q is not a non-negative integer", s)
	}
	return d, nil
}
