package harness

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/chain/substrate/client"
	"github.com/cordialsys/icetest/wallet"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

type Assets interface {
	CreateAsset(ctx context.Context, signer client.Signer, assetID uint32, admin string, minBalance icetest.AmountBlockchain, opts client.Options) (*client.Inclusion, error)
	MintAsset(ctx context.Context, signer client.Signer, assetID uint32, beneficiary string, amount icetest.AmountBlockchain, opts client.Options) (*client.Inclusion, error)
	TransferAsset(ctx context.Context, signer client.Signer, assetID uint32, target string, amount icetest.AmountBlockchain, opts client.Options) (*client.Inclusion, error)
	AssetBalance(ctx context.Context, assetID uint32, address string) (icetest.AmountBlockchain, error)
}

type Balances interface {
	Transfer(ctx context.Context, signer client.Signer, to string, amount icetest.AmountBlockchain, opts client.Options) (*client.Inclusion, error)
	GetBalance(ctx context.Context, address string, reserved bool) (icetest.AmountBlockchain, error)
	GetNonce(ctx context.Context, address string) (uint64, error)
}

type FeeOracle interface {
	MaxPriorityFeePerGas(ctx context.Context) (string, *big.Int, error)
	SendTip(ctx context.Context, key *ecdsa.PrivateKey, tip *big.Int) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

type PrimeOracle interface {
	IsPrime(ctx context.Context, n *big.Int) (bool, error)
}

// Env is what a step can act on.
type Env struct {
	Assets   Assets
	Balances Balances
	Fees     FeeOracle
	Primes   PrimeOracle
	Wallets  wallet.Registry
	AssetID  uint32
	EvmKey   *ecdsa.PrivateKey
}

type Step struct {
	Name string
	// Overrides the timeout given to Scenario.Run
	Timeout time.Duration
	Run     func(ctx context.Context, env *Env) error
}

type Scenario struct {
	Name  string
	Steps []Step
}

type StepStatus string

const (
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

type StepResult struct {
	Name     string
	Status   StepStatus
	Err      error
	Duration time.Duration
}

type Result struct {
	Scenario string
	Steps    []StepResult
}

func (r *Result) Failed() bool {
	return r.Err() != nil
}

// Err is the error of the failed step, if any.
func (r *Result) Err() error {
	for _, step := range r.Steps {
		if step.Status == StepFailed {
			return fmt.Errorf("%s/%s: %w", r.Scenario, step.Name, step.Err)
		}
	}
	return nil
}

// Run executes the steps in order, each under its own timeout. After the first
// failure the remaining steps are skipped.
func (s Scenario) Run(ctx context.Context, env *Env, stepTimeout time.Duration) *Result {
	if stepTimeout <= 0 {
		stepTimeout = DefaultStepTimeout
	}
	result := &Result{Scenario: s.Name}
	failed := false
	for _, step := range s.Steps {
		log := logrus.WithFields(logrus.Fields{
			"scenario": s.Name,
			"step":     step.Name,
		})
		if failed {
			result.Steps = append(result.Steps, StepResult{Name: step.Name, Status: StepSkipped})
			log.Info("skipped")
			continue
		}
		timeout := stepTimeout
		if step.Timeout > 0 {
			timeout = step.Timeout
		}
		start := time.Now()
		err := runStep(ctx, env, step, timeout)
		stepResult := StepResult{Name: step.Name, Status: StepPassed, Err: err, Duration: time.Since(start)}
		if err != nil {
			stepResult.Status = StepFailed
			failed = true
			log.WithError(err).Error("failed")
		} else {
			log.WithField("duration", stepResult.Duration).Info("passed")
		}
		result.Steps = append(result.Steps, stepResult)
	}
	return result
}

func runStep(ctx context.Context, env *Env, step Step, timeout time.Duration) (err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return step.Run(ctx, env)
}

var scenarios = map[string]Scenario{}

func register(s Scenario) Scenario {
	scenarios[s.Name] = s
	return s
}

func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func GetScenario(name string) (Scenario, error) {
	s, ok := scenarios[strings.ToLower(name)]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown scenario: %s\noptions: %v", name, ScenarioNames())
	}
	return s, nil
}

// Run executes the named scenarios, or all of them, in order.
func Run(ctx context.Context, env *Env, stepTimeout time.Duration, names ...string) ([]*Result, error) {
	if len(names) == 0 {
		names = ScenarioNames()
	}
	selected := make([]Scenario, len(names))
	for i, name := range names {
		s, err := GetScenario(name)
		if err != nil {
			return nil, err
		}
		selected[i] = s
	}
	results := make([]*Result, len(selected))
	for i, s := range selected {
		results[i] = s.Run(ctx, env, stepTimeout)
	}
	return results, nil
}
