package mempool

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/NethermindEth/invokev3/core"
	"github.com/NethermindEth/invokev3/core/address"
	"github.com/NethermindEth/invokev3/core/felt"
	"github.com/NethermindEth/invokev3/rpc"
	"github.com/NethermindEth/invokev3/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc/pool"
)

var ErrDuplicateTransaction = errors.New("transaction already submitted")

const (
	resultAdmitted  = "admitted"
	resultRejected  = "rejected"
	resultDuplicate = "duplicate"
)

// Result is the outcome of admitting a single transaction. Exactly one of
// Transaction and Err is set.
type Result struct {
	Transaction *core.InvokeTransaction
	Err         error
}

// Admitter hashes, validates and converts batches of submitted transactions
// concurrently.
type Admitter struct {
	chainID   *felt.Felt
	converter rpc.Converter
	onlyQuery bool
	workers   int
	submitted *SubmittedTransactionsCache // nil disables duplicate detection
	log       utils.SimpleLogger

	transactions *prometheus.CounterVec
	batchTime    prometheus.Histogram
}

// NewAdmitter returns an admitter for network. A nil log disables logging.
func NewAdmitter(network utils.Network, log utils.SimpleLogger) *Admitter {
	if utils.IsNil(log) {
		log = utils.NewNopLogger()
	}
	return &Admitter{
		chainID: network.ChainID(),
		workers: runtime.GOMAXPROCS(0),
		log:     log,
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invokev3",
			Subsystem: "admitter",
			Name:      "transactions",
			Help:      "Number of submitted transactions by admission result",
		}, []string{"result"}),
		batchTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "invokev3",
			Subsystem: "admitter",
			Name:      "batch_time",
			Help:      "Time in seconds taken to admit a batch",
		}),
	}
}

// WithWorkers sets the maximum number of transactions processed at the same time
func (a *Admitter) WithWorkers(workers int) *Admitter {
	if workers > 0 {
		a.workers = workers
	}
	return a
}

// WithOnlyQuery marks every admitted transaction as simulation only. Such
// transactions are never recorded as submitted.
func (a *Admitter) WithOnlyQuery(onlyQuery bool) *Admitter {
	a.onlyQuery = onlyQuery
	return a
}

func (a *Admitter) WithAddressValidator(validator address.Validator) *Admitter {
	a.converter.Validator = validator
	return a
}

// WithDuplicateDetection rejects transactions admitted less than ttl ago,
// remembering up to size hashes
func (a *Admitter) WithDuplicateDetection(size int, ttl time.Duration) *Admitter {
	if size <= 0 {
		a.submitted = nil
		return a
	}
	a.submitted = NewSubmittedTransactionsCache(size, ttl)
	return a
}

// WithSubmittedCache shares cache between admitters
func (a *Admitter) WithSubmittedCache(cache *SubmittedTransactionsCache) *Admitter {
	a.submitted = cache
	return a
}

// RegisterMetrics registers the admitter's collectors on reg
func (a *Admitter) RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{a.transactions, a.batchTime} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Admit processes txns concurrently. Results are in the same order as txns and
// a failing transaction does not affect the others. The returned error is only
// set if ctx is cancelled before every transaction was processed.
func (a *Admitter) Admit(ctx context.Context, txns []*rpc.BroadcastedInvokeTransaction) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(txns))

	workerPool := pool.New().WithMaxGoroutines(a.workers).WithContext(ctx)
	for i, txn := range txns {
		i, txn := i, txn
		workerPool.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Err: err}
				return err
			}
			results[i] = a.admit(txn)
			return nil
		})
	}
	err := workerPool.Wait()

	a.batchTime.Observe(time.Since(start).Seconds())
	a.log.Debugw("Admitted batch", "size", len(txns), "took", time.Since(start))
	return results, err
}

func (a *Admitter) admit(txn *rpc.BroadcastedInvokeTransaction) Result {
	if txn == nil {
		return a.reject(nil, errors.New("nil transaction"))
	}

	adapted, err := a.converter.Adapt(txn, a.chainID, a.onlyQuery)
	if err != nil {
		return a.reject(txn.SenderAddress, err)
	}

	if !a.onlyQuery && a.submitted != nil && !a.submitted.AddIfAbsent(adapted.Hash()) {
		a.transactions.WithLabelValues(resultDuplicate).Inc()
		a.log.Debugw("Duplicate transaction", "hash", adapted.Hash())
		return Result{Err: ErrDuplicateTransaction}
	}

	a.transactions.WithLabelValues(resultAdmitted).Inc()
	a.log.Debugw("Admitted transaction", "hash", adapted.Hash(), "sender", &adapted.SenderAddress)
	return Result{Transaction: adapted}
}

func (a *Admitter) reject(sender *felt.Felt, err error) Result {
	a.transactions.WithLabelValues(resultRejected).Inc()
	a.log.Debugw("Rejected transaction", "sender", sender, "err", err)
	return Result{Err: err}
}
