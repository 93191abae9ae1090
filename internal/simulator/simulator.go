package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"ledger-service/internal/api"
	"ledger-service/internal/models"
)

const (
	opDeposit  = "deposit"
	opWithdraw = "withdraw"
	opTransfer = "transfer"
)

// Simulator drives random deposits, withdrawals and transfers against a
// fixed set of accounts from concurrent workers
type Simulator struct {
	ledger *api.LedgerService
	logger *zap.Logger

	workers        int
	accountNumbers []string
	initialBalance decimal.Decimal

	// Totals of committed mutations, used to check conservation
	mutex     sync.Mutex
	outcomes  map[string]int
	deposited decimal.Decimal
	withdrawn decimal.Decimal
	baseline  decimal.Decimal

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
	err      error
}

// Report summarises a finished run
type Report struct {
	Outcomes      map[string]int
	Accounts      int
	Baseline      decimal.Decimal
	Deposited     decimal.Decimal
	Withdrawn     decimal.Decimal
	TotalBalance  decimal.Decimal
	Unreconciled  []string
	ExpectedTotal decimal.Decimal
}

func New(ledger *api.LedgerService, logger *zap.Logger, cfg models.SimulatorConfig) (*Simulator, error) {
	initialBalance, err := decimal.NewFromString(cfg.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid initial balance %q: %w", cfg.InitialBalance, err)
	}
	if cfg.Workers <= 0 || cfg.Accounts < 2 {
		return nil, fmt.Errorf("simulator needs at least one worker and two accounts")
	}

	numbers := make([]string, cfg.Accounts)
	for i := range numbers {
		numbers[i] = fmt.Sprintf("SIM-%04d", i+1)
	}

	return &Simulator{
		ledger:         ledger,
		logger:         logger,
		workers:        cfg.Workers,
		accountNumbers: numbers,
		initialBalance: initialBalance,
		outcomes:       make(map[string]int),
		deposited:      decimal.Zero,
		withdrawn:      decimal.Zero,
		stopChan:       make(chan struct{}),
		doneChan:       make(chan struct{}),
	}, nil
}

// Setup creates the simulated accounts. Accounts left over from an earlier
// run against the same database are reused.
func (s *Simulator) Setup(ctx context.Context) error {
	created := 0
	for _, number := range s.accountNumbers {
		_, err := s.ledger.CreateAccount(ctx, number, api.Amount(s.initialBalance))
		switch {
		case err == nil:
			created++
		case errors.Is(err, models.ErrDuplicateAccount):
			s.logger.Debug("Reusing existing account", zap.String("account_number", number))
		default:
			return fmt.Errorf("failed to create account %s: %w", number, err)
		}
	}

	total, err := s.totalBalance(ctx)
	if err != nil {
		return err
	}
	s.baseline = total

	s.logger.Info("Simulator accounts ready",
		zap.Int("accounts", len(s.accountNumbers)),
		zap.Int("created", created),
		zap.String("total_balance", total.String()))
	return nil
}

// Start launches the workers; they run until Stop is called or ctx is done
func (s *Simulator) Start(ctx context.Context) {
	s.logger.Info("Starting simulator workers", zap.Int("workers", s.workers))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		seed := time.Now().UnixNano() + int64(i)
		g.Go(func() error {
			return s.worker(gctx, rand.New(rand.NewSource(seed)))
		})
	}

	go func() {
		s.err = g.Wait()
		close(s.doneChan)
	}()
}

// Stop signals the workers and waits for in-flight operations to finish
func (s *Simulator) Stop() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.doneChan
	s.logger.Info("Simulator workers stopped")
	return s.err
}

func (s *Simulator) Done() <-chan struct{} {
	return s.doneChan
}

func (s *Simulator) worker(ctx context.Context, r *rand.Rand) error {
	for {
		select {
		case <-s.stopChan:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		if err := s.step(ctx, r); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// step runs one random operation. Business rejections are part of the
// workload; only infrastructure failures are returned.
func (s *Simulator) step(ctx context.Context, r *rand.Rand) error {
	amount := decimal.New(int64(r.Intn(5000)+1), -2)
	number := s.accountNumbers[r.Intn(len(s.accountNumbers))]

	var op string
	var err error
	switch r.Intn(3) {
	case 0:
		op = opDeposit
		_, err = s.ledger.Deposit(ctx, number, api.Amount(amount))
	case 1:
		op = opWithdraw
		_, err = s.ledger.Withdraw(ctx, number, api.Amount(amount))
	default:
		op = opTransfer
		to := s.accountNumbers[r.Intn(len(s.accountNumbers))]
		for to == number {
			to = s.accountNumbers[r.Intn(len(s.accountNumbers))]
		}
		_, err = s.ledger.Transfer(ctx, number, to, api.Amount(amount))
	}

	s.record(op, amount, err)
	if err != nil && !models.IsBusinessError(err) {
		return fmt.Errorf("%s on %s failed: %w", op, number, err)
	}
	return nil
}

func (s *Simulator) record(op string, amount decimal.Decimal, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.outcomes[op+":"+models.KindOf(err)]++
	if err != nil {
		return
	}
	switch op {
	case opDeposit:
		s.deposited = s.deposited.Add(amount)
	case opWithdraw:
		s.withdrawn = s.withdrawn.Add(amount)
	}
}

// Verify checks that money was neither created nor lost and that every
// simulated account reconciles with its ledger history
func (s *Simulator) Verify(ctx context.Context) (*Report, error) {
	total, err := s.totalBalance(ctx)
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	report := &Report{
		Outcomes:  make(map[string]int, len(s.outcomes)),
		Accounts:  len(s.accountNumbers),
		Baseline:  s.baseline,
		Deposited: s.deposited,
		Withdrawn: s.withdrawn,
	}
	for key, count := range s.outcomes {
		report.Outcomes[key] = count
	}
	s.mutex.Unlock()

	report.TotalBalance = total
	report.ExpectedTotal = report.Baseline.Add(report.Deposited).Sub(report.Withdrawn)

	for _, number := range s.accountNumbers {
		if _, err := s.ledger.ReconcileAccount(ctx, number); err != nil {
			report.Unreconciled = append(report.Unreconciled, number)
		}
	}

	if !report.TotalBalance.Equal(report.ExpectedTotal) {
		return report, fmt.Errorf("%w: total balance %s, expected %s",
			models.ErrBalanceMismatch, report.TotalBalance.String(), report.ExpectedTotal.String())
	}
	if len(report.Unreconciled) > 0 {
		return report, fmt.Errorf("%w: %d accounts failed reconciliation",
			models.ErrBalanceMismatch, len(report.Unreconciled))
	}
	return report, nil
}

func (s *Simulator) totalBalance(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, number := range s.accountNumbers {
		account, err := s.ledger.GetAccount(ctx, number)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to read account %s: %w", number, err)
		}
		total = total.Add(account.Balance)
	}
	return total, nil
}
