package booking

import (
	"testing"

	"courtside/config"

	"github.com/stretchr/testify/assert"
)

func TestPricerCost(t *testing.T) {
	p := NewPricer(config.DefaultServiceRates, 1.0)

	tests := []struct {
		name    string
		service string
		hours   float64
		want    float64
	}{
		{"private lesson hour", "Private Lesson", 1, 1},
		{"case insensitive", "PRIVATE LESSON", 1.5, 1.5},
		{"semi private", "Semi-Private Lesson", 2, 1.5},
		{"group clinic", "Group Clinic", 1.5, 0.75},
		{"cardio tennis", "cardio tennis", 1, 0.5},
		{"court rental", "Court Rental", 0.5, 0.13},
		{"unknown service uses default", "Ball Machine", 2, 2},
		{"zero duration", "Private Lesson", 0, 0},
		{"negative duration", "Private Lesson", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Cost(tt.service, tt.hours))
		})
	}
}

func TestPricerIsDeterministic(t *testing.T) {
	p := NewPricer(config.DefaultServiceRates, 1.0)
	first := p.Cost("Group Clinic", 1.25)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, p.Cost("Group Clinic", 1.25))
	}
}
