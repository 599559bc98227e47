package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RateTable resolves the tax rate for a tenant.
type RateTable struct {
	Default   decimal.Decimal
	PerTenant map[int64]decimal.Decimal
}

func NewRateTable(def decimal.Decimal) RateTable {
	return RateTable{Default: def, PerTenant: make(map[int64]decimal.Decimal)}
}

func (r RateTable) Rate(tenantID int64) decimal.Decimal {
	if rate, ok := r.PerTenant[tenantID]; ok {
		return rate
	}
	return r.Default
}

// ParseTenantRates reads "tenant:rate" pairs separated by commas, e.g.
// "7:0.05,12:0".
func ParseTenantRates(s string) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		tenant, rate, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("tax rate %q: expected tenant:rate", pair)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(tenant), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("tax rate %q: invalid tenant id", pair)
		}
		d, err := ParseRate(rate)
		if err != nil {
			return nil, fmt.Errorf("tax rate %q: %w", pair, err)
		}
		out[id] = d
	}
	return out, nil
}

// ParseRate accepts a fraction between 0 and 1.
func ParseRate(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate: %w", err)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("rate %s out of range [0, 1]", d)
	}
	return d, nil
}
