package booking

import (
	"math"
	"strings"
)

// Pricer maps a service and duration to a credit cost. It is pure.
type Pricer struct {
	rates       map[string]float64
	defaultRate float64
}

func NewPricer(rates map[string]float64, defaultRate float64) *Pricer {
	normalized := make(map[string]float64, len(rates))
	for name, rate := range rates {
		normalized[normalizeService(name)] = rate
	}
	return &Pricer{rates: normalized, defaultRate: defaultRate}
}

func normalizeService(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Rate returns the hourly credit rate for a service.
func (p *Pricer) Rate(serviceName string) float64 {
	if rate, ok := p.rates[normalizeService(serviceName)]; ok {
		return rate
	}
	return p.defaultRate
}

// Cost returns rate × hours rounded to two decimals.
func (p *Pricer) Cost(serviceName string, durationHours float64) float64 {
	if durationHours <= 0 {
		return 0
	}
	return roundCredits(p.Rate(serviceName) * durationHours)
}

func roundCredits(v float64) float64 {
	return math.Round(v*100) / 100
}
