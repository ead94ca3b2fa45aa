// Package loadgen drives concurrent, conflicting exchange transitions
// against a running server and verifies that credits are conserved.
package loadgen

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL        string          // Base URL of the service
	Members        int             // Members seeded for the run
	Exchanges      int             // Exchanges created and raced
	Contenders     int             // Concurrent transitions fired at each exchange
	Workers        int             // Concurrent HTTP workers
	InitialBalance decimal.Decimal // Opening balance of every seeded member
	Timeout        time.Duration   // HTTP request timeout
	Verbose        bool
}

// Defaults.
const (
	DefaultMembers    = 20
	DefaultExchanges  = 200
	DefaultContenders = 4
	DefaultTimeout    = 10 * time.Second
	DefaultWorkers    = 16
)

// DefaultInitialBalance is the opening balance used when none is set.
var DefaultInitialBalance = decimal.NewFromInt(100)

func (c *Config) normalize() {
	if c.Members < 2 {
		c.Members = DefaultMembers
	}
	if c.Exchanges < 1 {
		c.Exchanges = DefaultExchanges
	}
	if c.Contenders < 2 {
		c.Contenders = DefaultContenders
	}
	if c.Workers < 1 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if !c.InitialBalance.IsPositive() {
		c.InitialBalance = DefaultInitialBalance
	}
}

// Stats holds run statistics.
type Stats struct {
	MembersSeeded     int
	ExchangesCreated  int
	Accepted          int
	TransitionsFired  int
	TransitionsWon    int
	TransitionsLost   int // rejected with 409 because another contender won
	TransitionsFailed int
	Completed         int
	Cancelled         int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// Report is the outcome of a run.
type Report struct {
	Stats
	TotalBefore decimal.Decimal
	TotalAfter  decimal.Decimal
	Violations  []string
}

// OK reports whether verification found nothing wrong.
func (r *Report) OK() bool { return len(r.Violations) == 0 }
