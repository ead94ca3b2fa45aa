package loadgen

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/skillswap/internal/domain/model"
	"github.com/okian/skillswap/pkg/logger"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Run seeds members, creates and accepts exchanges, then races completes
// against cancels on every exchange and verifies the resulting ledger.
// A non-nil error means the run could not be carried out; verification
// failures are reported in Report.Violations.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	cfg.normalize()
	log := logger.Get().Named("loadgen")
	c := newClient(cfg.BaseURL, cfg.Timeout)
	report := &Report{Stats: Stats{StartTime: time.Now()}}

	log.Info(ctx, "starting load run",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("members", cfg.Members),
		logger.Int("exchanges", cfg.Exchanges),
		logger.Int("contenders", cfg.Contenders),
		logger.Int("workers", cfg.Workers),
	)

	if _, err := c.do(ctx, http.MethodGet, "/healthz", "", nil, nil); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	members, skills, err := seed(ctx, c, cfg)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	report.MembersSeeded = len(members)
	report.TotalBefore = cfg.InitialBalance.Mul(decimal.NewFromInt(int64(len(members))))

	exchanges, err := createAndAccept(ctx, c, cfg, members, skills)
	if err != nil {
		return nil, err
	}
	report.ExchangesCreated = len(exchanges)
	report.Accepted = len(exchanges)
	log.Info(ctx, "exchanges accepted", logger.Int("count", len(exchanges)))

	wins := race(ctx, c, cfg, exchanges, &report.Stats)
	log.Info(ctx, "contention finished",
		logger.Int("fired", report.TransitionsFired),
		logger.Int("won", report.TransitionsWon),
		logger.Int("lost", report.TransitionsLost),
		logger.Int("failed", report.TransitionsFailed),
	)

	if err := verify(ctx, c, cfg, members, exchanges, wins, report); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	log.Info(ctx, "load run finished",
		logger.Duration("duration", report.Duration),
		logger.Int("completed", report.Completed),
		logger.Int("cancelled", report.Cancelled),
		logger.Int("violations", len(report.Violations)),
	)
	return report, nil
}

// seed creates the members and one skill per member charging one credit
// per hour.
func seed(ctx context.Context, c *client, cfg Config) ([]string, []model.Skill, error) {
	prefix := "lg-" + uuid.NewString()[:8]
	members := lo.Times(cfg.Members, func(i int) string { return prefix + "-" + strconv.Itoa(i) })
	skills := make([]model.Skill, len(members))

	err := parallel(ctx, cfg.Workers, len(members), func(i int) error {
		id := members[i]
		if _, err := c.do(ctx, http.MethodPost, "/members", "", map[string]any{
			"id":             id,
			"name":           "Load member " + strconv.Itoa(i),
			"initialBalance": cfg.InitialBalance,
		}, nil); err != nil {
			return err
		}
		_, err := c.do(ctx, http.MethodPost, "/skills", id, map[string]any{
			"title":      "Odd jobs",
			"hourlyRate": 1,
		}, &skills[i])
		return err
	})
	return members, skills, err
}

// createAndAccept has member i request member i+1's skill and the provider
// accept it.
func createAndAccept(ctx context.Context, c *client, cfg Config, members []string, skills []model.Skill) ([]model.Exchange, error) {
	exchanges := make([]model.Exchange, cfg.Exchanges)
	proposed := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)

	err := parallel(ctx, cfg.Workers, cfg.Exchanges, func(i int) error {
		requester := members[i%len(members)]
		skill := skills[(i+1)%len(skills)]
		var ex model.Exchange
		if _, err := c.do(ctx, http.MethodPost, "/exchanges", requester, map[string]any{
			"skillId":        skill.ID,
			"requestMessage": "load run",
			"proposedDate":   proposed,
			"duration":       1,
		}, &ex); err != nil {
			return fmt.Errorf("create exchange %d: %w", i, err)
		}
		if _, err := c.do(ctx, http.MethodPut, "/exchanges/"+ex.ID, ex.ProviderID, map[string]any{
			"status": model.StatusAccepted,
		}, &exchanges[i]); err != nil {
			return fmt.Errorf("accept exchange %s: %w", ex.ID, err)
		}
		return nil
	})
	return exchanges, err
}

// race fires cfg.Contenders transitions at every exchange at once: the
// provider completing and the requester cancelling. It returns how many
// contenders won per exchange.
func race(ctx context.Context, c *client, cfg Config, exchanges []model.Exchange, stats *Stats) map[string]int {
	var (
		mu                       sync.Mutex
		wins                     = make(map[string]int, len(exchanges))
		fired, won, lost, failed atomic.Int64
	)

	_ = parallel(ctx, cfg.Workers, len(exchanges), func(i int) error {
		ex := exchanges[i]
		var wg sync.WaitGroup
		start := make(chan struct{})
		for k := 0; k < cfg.Contenders; k++ {
			actorID, target := ex.ProviderID, model.StatusCompleted
			if k == 0 {
				actorID, target = ex.RequesterID, model.StatusCancelled
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				fired.Add(1)
				status, err := c.do(ctx, http.MethodPut, "/exchanges/"+ex.ID, actorID, map[string]any{"status": target}, nil)
				switch {
				case err == nil:
					won.Add(1)
					mu.Lock()
					wins[ex.ID]++
					mu.Unlock()
				case status == http.StatusConflict:
					lost.Add(1)
				default:
					failed.Add(1)
					if cfg.Verbose {
						logger.Get().Warn(ctx, "transition failed", logger.String("exchange_id", ex.ID), logger.Error(err))
					}
				}
			}()
		}
		close(start)
		wg.Wait()
		return nil
	})

	stats.TransitionsFired = int(fired.Load())
	stats.TransitionsWon = int(won.Load())
	stats.TransitionsLost = int(lost.Load())
	stats.TransitionsFailed = int(failed.Load())
	return wins
}

// parallel runs fn for 0..n-1 on up to workers goroutines and returns the
// first error.
func parallel(ctx context.Context, workers, n int, fn func(i int) error) error {
	jobs := make(chan int, workers)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := fn(i); err != nil {
					once.Do(func() { firstErr = err })
				}
			}
		}()
	}
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return firstErr
}
