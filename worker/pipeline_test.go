package worker

import (
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tonswap/TON-EVM-Bridge/mongodb"
	"github.com/tonswap/TON-EVM-Bridge/notify"
	"github.com/tonswap/TON-EVM-Bridge/queue"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
)

// ---- fakes ----

type fakeSwapStore struct {
	mu    sync.Mutex
	swaps map[string]*mongodb.MgoSwap
}

func newFakeSwapStore() *fakeSwapStore {
	return &fakeSwapStore{swaps: make(map[string]*mongodb.MgoSwap)}
}

func (s *fakeSwapStore) put(swap *mongodb.MgoSwap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swaps[swap.SwapID] = swap
}

func (s *fakeSwapStore) FindSwap(swapID string) (*mongodb.MgoSwap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	swap, exist := s.swaps[swapID]
	if !exist {
		return nil, mongodb.ErrSwapNotFound
	}
	clone := *swap
	return &clone, nil
}

func (s *fakeSwapStore) UpdateSwapStatus(swapID string, status mongodb.SwapStatus, statusCode int, memo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	swap, exist := s.swaps[swapID]
	if !exist {
		return mongodb.ErrSwapNotFound
	}
	if !swap.Status.CanTransitionTo(status) {
		return mongodb.ErrForbidStatusChange
	}
	swap.Status = status
	swap.StatusCode = statusCode
	swap.Memo = memo
	return nil
}

func (s *fakeSwapStore) UpdateSwapConfirm(swapID string, items *mongodb.ConfirmUpdateItems) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	swap, exist := s.swaps[swapID]
	if !exist {
		return mongodb.ErrSwapNotFound
	}
	if swap.Status != mongodb.SwapPending {
		return mongodb.ErrForbidStatusChange
	}
	swap.Status = mongodb.SwapConfirmed
	swap.Confirmations = 1
	swap.SourceAddress = items.SourceAddress
	swap.SourceTxID = items.SourceTxID
	if items.SourceAmount != "" {
		swap.SourceAmount = items.SourceAmount
	}
	if items.DestAmount != "" {
		swap.DestAmount = items.DestAmount
	}
	if items.Fee != "" {
		swap.Fee = items.Fee
	}
	return nil
}

func (s *fakeSwapStore) UpdateSwapConfirmations(swapID string, confirmations uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	swap, exist := s.swaps[swapID]
	if !exist {
		return mongodb.ErrSwapNotFound
	}
	if swap.Status == mongodb.SwapConfirmed && confirmations > swap.Confirmations {
		swap.Confirmations = confirmations
	}
	return nil
}

func (s *fakeSwapStore) UpdateSwapComplete(swapID, destTxID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	swap, exist := s.swaps[swapID]
	if !exist {
		return mongodb.ErrSwapNotFound
	}
	if swap.Status != mongodb.SwapConfirmed {
		return mongodb.ErrForbidStatusChange
	}
	swap.Status = mongodb.SwapCompleted
	swap.StatusCode = 0
	swap.DestTxID = destTxID
	return nil
}

func (s *fakeSwapStore) UpdateSwapCollect(swapID, collectorTxID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	swap, exist := s.swaps[swapID]
	if !exist {
		return mongodb.ErrSwapNotFound
	}
	if swap.CollectorTxID == "" {
		swap.CollectorTxID = collectorTxID
	}
	return nil
}

type fakeWalletStore struct {
	mu      sync.Mutex
	wallets map[string]*mongodb.MgoWallet
	deltas  map[string]*big.Int
}

func newFakeWalletStore() *fakeWalletStore {
	return &fakeWalletStore{
		wallets: make(map[string]*mongodb.MgoWallet),
		deltas:  make(map[string]*big.Int),
	}
}

func (s *fakeWalletStore) put(wallet *mongodb.MgoWallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[wallet.WalletID] = wallet
}

func (s *fakeWalletStore) FindWallet(walletID string) (*mongodb.MgoWallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wallet, exist := s.wallets[walletID]
	if !exist {
		return nil, mongodb.ErrWalletNotFound
	}
	clone := *wallet
	return &clone, nil
}

func (s *fakeWalletStore) ReleaseWallet(walletID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wallet, exist := s.wallets[walletID]
	if !exist {
		return mongodb.ErrWalletNotFound
	}
	wallet.InUse = false
	return nil
}

func (s *fakeWalletStore) AddWalletBalance(walletID string, delta *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, exist := s.deltas[walletID]
	if !exist {
		old = big.NewInt(0)
	}
	s.deltas[walletID] = new(big.Int).Add(old, delta)
	return nil
}

func (s *fakeWalletStore) delta(walletID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	delta, exist := s.deltas[walletID]
	if !exist {
		return "0"
	}
	return delta.String()
}

type enqueuedJob struct {
	Queue    string
	Type     string
	Payload  SwapJobPayload
	Delay    time.Duration
	Attempts int
}

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []enqueuedJob
	failed   []string
}

func (q *fakeQueue) Enqueue(queueName, jobType string, payload interface{}, opts *queue.Options) (string, error) {
	raw, err := bson.Marshal(payload)
	if err != nil {
		return "", err
	}
	var decoded SwapJobPayload
	if err = bson.Unmarshal(raw, &decoded); err != nil {
		return "", err
	}
	if opts == nil {
		opts = &queue.Options{}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, enqueuedJob{
		Queue:    queueName,
		Type:     jobType,
		Payload:  decoded,
		Delay:    opts.Delay,
		Attempts: opts.Attempts,
	})
	return "fake-job", nil
}

func (q *fakeQueue) Claim(queueName string) (*queue.Job, error) { return nil, nil }
func (q *fakeQueue) Ack(jobID string) error                     { return nil }
func (q *fakeQueue) Retry(jobID string, delay time.Duration, cause error) error {
	return nil
}
func (q *fakeQueue) Fail(jobID string, cause error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed = append(q.failed, jobID)
	return nil
}

func (q *fakeQueue) last(t *testing.T) enqueuedJob {
	t.Helper()
	q.mu.Lock()
	defer q.mu.Unlock()
	require.NotEmpty(t, q.enqueued)
	return q.enqueued[len(q.enqueued)-1]
}

func (q *fakeQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.enqueued)
}

type fakeBridge struct {
	chainConfig *tokens.ChainConfig

	deposits  map[uint64]*tokens.DepositInfo
	depositFn func(height uint64) (*tokens.DepositInfo, error)
	txStatus  *tokens.TxStatus
	statusErr error

	sendTxID string
	sendErr  error
	mintTxID string
	mintErr  error

	sentArgs   []*tokens.TransferArgs
	mintedArgs []*tokens.TransferArgs
}

func newFakeBridge(blockchain string, confirmations uint64, issueByMint bool) *fakeBridge {
	return &fakeBridge{
		chainConfig: &tokens.ChainConfig{
			Blockchain:    blockchain,
			Confirmations: &confirmations,
			IssueByMint:   issueByMint,
			BlockTime:     1,
		},
		deposits: make(map[uint64]*tokens.DepositInfo),
	}
}

func (b *fakeBridge) ChainConfig() *tokens.ChainConfig   { return b.chainConfig }
func (b *fakeBridge) LatestBlockNumber() (uint64, error) { return 1000, nil }
func (b *fakeBridge) ConjugatedAddress(owner, tokenContract string) (string, error) {
	return "", nil
}

func (b *fakeBridge) FindDeposit(address, conjugatedAddress string, blockHeight uint64, tokenContract string) (*tokens.DepositInfo, error) {
	if b.depositFn != nil {
		return b.depositFn(blockHeight)
	}
	deposit, exist := b.deposits[blockHeight]
	if !exist {
		return nil, tokens.ErrDepositNotFound
	}
	return deposit, nil
}

func (b *fakeBridge) SendTransfer(args *tokens.TransferArgs) (string, error) {
	if b.sendErr != nil {
		return "", b.sendErr
	}
	b.sentArgs = append(b.sentArgs, args)
	return b.sendTxID, nil
}

func (b *fakeBridge) Mint(args *tokens.TransferArgs) (string, error) {
	if b.mintErr != nil {
		return "", b.mintErr
	}
	b.mintedArgs = append(b.mintedArgs, args)
	return b.mintTxID, nil
}

func (b *fakeBridge) GetTransactionStatus(txID string) (*tokens.TxStatus, error) {
	if b.statusErr != nil {
		return nil, b.statusErr
	}
	return b.txStatus, nil
}

// ---- test environment ----

type testEnv struct {
	swaps   *fakeSwapStore
	wallets *fakeWalletStore
	jobs    *fakeQueue
	eth     *fakeBridge
	ton     *fakeBridge
	events  <-chan notify.Event
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		swaps:   newFakeSwapStore(),
		wallets: newFakeWalletStore(),
		jobs:    &fakeQueue{},
		eth:     newFakeBridge(tokens.ChainETH, 12, false),
		ton:     newFakeBridge(tokens.ChainTON, 1, true),
	}
	hub := notify.NewNotifier()
	events, unsubscribe := hub.Subscribe("")
	env.events = events

	oldSwapStore, oldWalletStore := swapStore, walletStore
	oldQueue, oldNotifier, oldGetBridge := jobQueue, notifier, getBridge
	swapStore = env.swaps
	walletStore = env.wallets
	jobQueue = env.jobs
	notifier = hub
	getBridge = func(blockchain string) tokens.Bridge {
		switch blockchain {
		case tokens.ChainETH:
			return env.eth
		case tokens.ChainTON:
			return env.ton
		}
		return nil
	}
	t.Cleanup(func() {
		unsubscribe()
		swapStore, walletStore = oldSwapStore, oldWalletStore
		jobQueue, notifier, getBridge = oldQueue, oldNotifier, oldGetBridge
	})

	decimals := uint8(6)
	maxSwap, minSwap := 1000000.0, 10.0
	feeRate, minFee, maxFee := 0.01, 0.0, 0.0
	pair := &tokens.TokenPairConfig{
		PairID: "usdt",
		EthToken: &tokens.TokenConfig{
			Symbol: "USDT", Decimals: &decimals,
			MaximumSwap: &maxSwap, MinimumSwap: &minSwap,
			SwapFeeRate: &feeRate, MinimumSwapFee: &minFee, MaximumSwapFee: &maxFee,
			ContractAddress: "0xusdt",
		},
		TonToken: &tokens.TokenConfig{
			Symbol: "jUSDT", Decimals: &decimals,
			MaximumSwap: &maxSwap, MinimumSwap: &minSwap,
			SwapFeeRate: &feeRate, MinimumSwapFee: &minFee, MaximumSwapFee: &maxFee,
			ContractAddress: "EQjusdt",
		},
	}
	require.NoError(t, tokens.SetTokenPairsConfig([]*tokens.TokenPairConfig{pair}))
	return env
}

func (env *testEnv) addEthToTonSwap(status mongodb.SwapStatus) *mongodb.MgoSwap {
	swap := &mongodb.MgoSwap{
		SwapID:          "swap-1",
		ShortID:         "swap1",
		PairID:          "usdt",
		SrcChain:        tokens.ChainETH,
		DestChain:       tokens.ChainTON,
		SourceWallet:    "src-wallet",
		DestWallet:      "dest-wallet",
		CollectorWallet: "collector-wallet",
		SourceAmount:    "100000000",
		DestAddress:     "EQuser",
		DestAmount:      "99000000",
		Fee:             "1000000",
		Status:          status,
		OrderedAt:       time.Now().Unix(),
		ExpiresAt:       time.Now().Unix() + 3600,
	}
	env.swaps.put(swap)
	env.wallets.put(&mongodb.MgoWallet{
		WalletID: "src-wallet", Blockchain: tokens.ChainETH,
		Type: mongodb.WalletTypeTransferer, Address: "0xsrc", InUse: true,
	})
	env.wallets.put(&mongodb.MgoWallet{
		WalletID: "dest-wallet", Blockchain: tokens.ChainTON,
		Type: mongodb.WalletTypeMinter, Address: "EQminter",
	})
	env.wallets.put(&mongodb.MgoWallet{
		WalletID: "collector-wallet", Blockchain: tokens.ChainETH,
		Type: mongodb.WalletTypeCollector, Address: "0xcollector",
	})
	return swap
}

func (env *testEnv) drainEvents() []notify.Event {
	var events []notify.Event
	for {
		select {
		case event := <-env.events:
			events = append(events, event)
		default:
			return events
		}
	}
}

func makeJob(queueName, jobType string, payload *SwapJobPayload, attempts int) *queue.Job {
	raw, _ := bson.Marshal(payload)
	return &queue.Job{
		ID: "job-1", Queue: queueName, Type: jobType,
		Payload: raw, AttemptsLeft: attempts, Backoff: time.Second,
	}
}

// ---- confirm stage ----

func TestConfirmDepositSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.addEthToTonSwap(mongodb.SwapPending)
	env.eth.deposits[500] = &tokens.DepositInfo{
		TxID: "0xdeadbeef", From: "0xuser", To: "0xsrc",
		Value: big.NewInt(100000000), BlockHeight: 500,
	}

	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500, LivesRemain: 5}
	err := processSwapConfirm(makeJob("eth2ton", JobSwapConfirm, payload, 3), payload)
	require.NoError(t, err)

	swap, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapConfirmed, swap.Status)
	assert.Equal(t, uint64(1), swap.Confirmations)
	assert.Equal(t, "0xdeadbeef", swap.SourceTxID)
	assert.Equal(t, "0xuser", swap.SourceAddress)
	// declared amount matched, stored split stays
	assert.Equal(t, "99000000", swap.DestAmount)

	wallet, _ := env.wallets.FindWallet("src-wallet")
	assert.False(t, wallet.InUse)
	assert.Equal(t, "100000000", env.wallets.delta("src-wallet"))

	next := env.jobs.last(t)
	assert.Equal(t, JobSwapStable, next.Type)
	assert.Equal(t, "eth2ton", next.Queue)

	events := env.drainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, mongodb.SwapConfirmed, events[0].Status)
	assert.Equal(t, uint64(1), events[0].Confirmations)
	assert.Equal(t, uint64(12), events[0].TotalConfirmations)
}

func TestConfirmDepositRecalculated(t *testing.T) {
	env := newTestEnv(t)
	env.addEthToTonSwap(mongodb.SwapPending)
	// declared 100 but only 95 arrived
	env.eth.deposits[500] = &tokens.DepositInfo{
		TxID: "0xcafe", From: "0xuser", To: "0xsrc",
		Value: big.NewInt(95000000), BlockHeight: 500,
	}

	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500, LivesRemain: 5}
	require.NoError(t, processSwapConfirm(makeJob("eth2ton", JobSwapConfirm, payload, 3), payload))

	swap, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapConfirmed, swap.Status)
	assert.Equal(t, "95000000", swap.SourceAmount)
	assert.Equal(t, "94050000", swap.DestAmount)
	assert.Equal(t, "950000", swap.Fee)
}

func TestConfirmDepositRecalcFailure(t *testing.T) {
	env := newTestEnv(t)
	env.addEthToTonSwap(mongodb.SwapPending)
	// the minimum fee swallows the tiny observed amount
	minFee := 10.0
	pair := tokens.GetTokenPairConfig("usdt")
	pair.EthToken.MinimumSwapFee = &minFee
	pair.EthToken.CalcAndStoreValue()
	env.eth.deposits[500] = &tokens.DepositInfo{
		TxID: "0xsmall", From: "0xuser", To: "0xsrc",
		Value: big.NewInt(5000000), BlockHeight: 500,
	}

	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500, LivesRemain: 5}
	require.NoError(t, processSwapConfirm(makeJob("eth2ton", JobSwapConfirm, payload, 3), payload))

	swap, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapFailed, swap.Status)
	assert.Equal(t, tokens.CodeSwapNotRecalculated, swap.StatusCode)
	wallet, _ := env.wallets.FindWallet("src-wallet")
	assert.False(t, wallet.InUse)
}

func TestConfirmDepositScanExpires(t *testing.T) {
	env := newTestEnv(t)
	env.addEthToTonSwap(mongodb.SwapPending)

	// feed every re-enqueued scan back in until the lives run out
	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500, LivesRemain: 5}
	for hops := 0; hops < 10; hops++ {
		before := env.jobs.count()
		require.NoError(t, processSwapConfirm(makeJob("eth2ton", JobSwapConfirm, payload, 3), payload))
		if env.jobs.count() == before {
			break
		}
		next := env.jobs.last(t)
		require.Equal(t, JobSwapConfirm, next.Type)
		payload = &next.Payload
	}

	swap, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapExpired, swap.Status)
	assert.Equal(t, tokens.CodeDepositNotFound, swap.StatusCode)
	// four hops, the fifth miss terminalizes
	assert.Equal(t, 4, env.jobs.count())

	wallet, _ := env.wallets.FindWallet("src-wallet")
	assert.False(t, wallet.InUse)
}

func TestConfirmBlockBeyondTip(t *testing.T) {
	env := newTestEnv(t)
	env.addEthToTonSwap(mongodb.SwapPending)
	env.eth.depositFn = func(height uint64) (*tokens.DepositInfo, error) {
		return nil, tokens.ErrBlockNotFound
	}

	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500, LivesRemain: 5}
	require.NoError(t, processSwapConfirm(makeJob("eth2ton", JobSwapConfirm, payload, 3), payload))

	// re-polled at the same height without spending a life
	next := env.jobs.last(t)
	assert.Equal(t, JobSwapConfirm, next.Type)
	assert.Equal(t, uint64(500), next.Payload.BlockHeight)
	assert.Equal(t, int64(5), next.Payload.LivesRemain)
}

func TestConfirmIsNoOpOnTerminalSwap(t *testing.T) {
	env := newTestEnv(t)
	env.addEthToTonSwap(mongodb.SwapCanceled)

	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500, LivesRemain: 5}
	require.NoError(t, processSwapConfirm(makeJob("eth2ton", JobSwapConfirm, payload, 3), payload))

	assert.Zero(t, env.jobs.count())
	assert.Empty(t, env.drainEvents())
}

func TestConfirmTransientErrorRetries(t *testing.T) {
	env := newTestEnv(t)
	env.addEthToTonSwap(mongodb.SwapPending)
	env.eth.depositFn = func(height uint64) (*tokens.DepositInfo, error) {
		return nil, errors.New("rpc: connection refused")
	}

	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500, LivesRemain: 5}
	handleJob(makeJob("eth2ton", JobSwapConfirm, payload, 3))

	// attempts remain, the job goes back to the queue untouched
	assert.Empty(t, env.jobs.failed)
	swap, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapPending, swap.Status)
	wallet, _ := env.wallets.FindWallet("src-wallet")
	assert.True(t, wallet.InUse)
}

func TestConfirmErrorsExhaustedFailsSwap(t *testing.T) {
	env := newTestEnv(t)
	env.addEthToTonSwap(mongodb.SwapPending)
	env.eth.depositFn = func(height uint64) (*tokens.DepositInfo, error) {
		return nil, errors.New("rpc: connection refused")
	}

	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500, LivesRemain: 5}
	handleJob(makeJob("eth2ton", JobSwapConfirm, payload, 1))

	assert.Equal(t, []string{"job-1"}, env.jobs.failed)
	swap, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapFailed, swap.Status)
	assert.Equal(t, tokens.CodeInternalError, swap.StatusCode)

	// the deposit wallet reservation is not leaked
	wallet, _ := env.wallets.FindWallet("src-wallet")
	assert.False(t, wallet.InUse)

	events := env.drainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, mongodb.SwapFailed, events[0].Status)
	assert.Equal(t, uint64(12), events[0].TotalConfirmations)
}

// ---- stable stage ----

func TestStableBelowTarget(t *testing.T) {
	env := newTestEnv(t)
	swap := env.addEthToTonSwap(mongodb.SwapConfirmed)
	swap.SourceTxID = "0xdeadbeef"
	swap.Confirmations = 1
	env.swaps.put(swap)
	env.eth.txStatus = &tokens.TxStatus{BlockHeight: 500, Confirmations: 5}

	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500}
	require.NoError(t, processSwapStable(makeJob("eth2ton", JobSwapStable, payload, 3), payload))

	got, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, uint64(5), got.Confirmations)
	assert.Equal(t, mongodb.SwapConfirmed, got.Status)

	next := env.jobs.last(t)
	assert.Equal(t, JobSwapStable, next.Type)

	events := env.drainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, uint64(5), events[0].Confirmations)
	assert.Equal(t, uint64(12), events[0].TotalConfirmations)
}

func TestStableReachesTarget(t *testing.T) {
	env := newTestEnv(t)
	swap := env.addEthToTonSwap(mongodb.SwapConfirmed)
	swap.SourceTxID = "0xdeadbeef"
	swap.Confirmations = 5
	env.swaps.put(swap)
	// clamped to the required 12 even though the chain reports more
	env.eth.txStatus = &tokens.TxStatus{BlockHeight: 500, Confirmations: 40}

	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500}
	require.NoError(t, processSwapStable(makeJob("eth2ton", JobSwapStable, payload, 3), payload))

	got, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, uint64(12), got.Confirmations)

	next := env.jobs.last(t)
	assert.Equal(t, JobSwapTransfer, next.Type)
}

func TestStableRevertedDeposit(t *testing.T) {
	env := newTestEnv(t)
	swap := env.addEthToTonSwap(mongodb.SwapConfirmed)
	swap.SourceTxID = "0xdeadbeef"
	env.swaps.put(swap)
	env.eth.txStatus = &tokens.TxStatus{BlockHeight: 500, Confirmations: 3, Failed: true}

	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500}
	require.NoError(t, processSwapStable(makeJob("eth2ton", JobSwapStable, payload, 3), payload))

	got, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapFailed, got.Status)
}

func TestStableVanishedDepositExpires(t *testing.T) {
	env := newTestEnv(t)
	swap := env.addEthToTonSwap(mongodb.SwapConfirmed)
	swap.SourceTxID = "0xdeadbeef"
	swap.Confirmations = 5
	swap.ExpiresAt = time.Now().Unix() - swapGraceSeconds - 10
	env.swaps.put(swap)
	// receipt gone after a reorg, the chain reports nothing forever
	env.eth.txStatus = &tokens.TxStatus{}

	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500}
	require.NoError(t, processSwapStable(makeJob("eth2ton", JobSwapStable, payload, 3), payload))

	got, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapExpired, got.Status)
	assert.Equal(t, tokens.CodeExpiredBeforeTransfer, got.StatusCode)
	assert.Zero(t, env.jobs.count())
}

func TestStableErrorsExhaustedFailsSwap(t *testing.T) {
	env := newTestEnv(t)
	swap := env.addEthToTonSwap(mongodb.SwapConfirmed)
	swap.SourceTxID = "0xdeadbeef"
	swap.Confirmations = 1
	env.swaps.put(swap)
	env.eth.statusErr = errors.New("gateway 502")

	payload := &SwapJobPayload{SwapID: "swap-1", BlockHeight: 500}
	handleJob(makeJob("eth2ton", JobSwapStable, payload, 1))

	assert.Equal(t, []string{"job-1"}, env.jobs.failed)
	got, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapFailed, got.Status)
	assert.Equal(t, tokens.CodeInternalError, got.StatusCode)
}

// ---- transfer stage ----

func TestTransferMintsOnTonDestination(t *testing.T) {
	env := newTestEnv(t)
	swap := env.addEthToTonSwap(mongodb.SwapConfirmed)
	swap.Confirmations = 12
	env.swaps.put(swap)
	env.ton.mintTxID = "tonmint"

	payload := &SwapJobPayload{SwapID: "swap-1"}
	require.NoError(t, processSwapTransfer(makeJob("eth2ton", JobSwapTransfer, payload, 5), payload))

	got, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapCompleted, got.Status)
	assert.Equal(t, "tonmint", got.DestTxID)

	require.Len(t, env.ton.mintedArgs, 1)
	assert.Equal(t, "99000000", env.ton.mintedArgs[0].Value.String())
	assert.Equal(t, "EQuser", env.ton.mintedArgs[0].To)
	// minting issues new supply, no pool balance to debit
	assert.Equal(t, "0", env.wallets.delta("dest-wallet"))

	next := env.jobs.last(t)
	assert.Equal(t, JobSwapCollect, next.Type)
}

func TestTransferSendsOnEthDestination(t *testing.T) {
	env := newTestEnv(t)
	swap := env.addEthToTonSwap(mongodb.SwapConfirmed)
	swap.SrcChain = tokens.ChainTON
	swap.DestChain = tokens.ChainETH
	swap.Confirmations = 1
	swap.DestAddress = "0xuser"
	env.swaps.put(swap)
	env.wallets.put(&mongodb.MgoWallet{
		WalletID: "src-wallet", Blockchain: tokens.ChainTON,
		Type: mongodb.WalletTypeTransferer, Address: "EQsrc", InUse: true,
	})
	env.wallets.put(&mongodb.MgoWallet{
		WalletID: "dest-wallet", Blockchain: tokens.ChainETH,
		Type: mongodb.WalletTypeTransferer, Address: "0xpool",
	})
	env.eth.sendTxID = "0xsent"

	payload := &SwapJobPayload{SwapID: "swap-1"}
	require.NoError(t, processSwapTransfer(makeJob("ton2eth", JobSwapTransfer, payload, 5), payload))

	got, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapCompleted, got.Status)
	assert.Equal(t, "0xsent", got.DestTxID)

	require.Len(t, env.eth.sentArgs, 1)
	assert.Equal(t, "0xpool", env.eth.sentArgs[0].From)
	assert.Equal(t, "-99000000", env.wallets.delta("dest-wallet"))
}

func TestTransferExpiredBeforeSend(t *testing.T) {
	env := newTestEnv(t)
	swap := env.addEthToTonSwap(mongodb.SwapConfirmed)
	swap.Confirmations = 12
	swap.ExpiresAt = time.Now().Unix() - swapGraceSeconds - 10
	env.swaps.put(swap)

	payload := &SwapJobPayload{SwapID: "swap-1"}
	require.NoError(t, processSwapTransfer(makeJob("eth2ton", JobSwapTransfer, payload, 5), payload))

	got, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapExpired, got.Status)
	assert.Equal(t, tokens.CodeExpiredBeforeTransfer, got.StatusCode)
	assert.Empty(t, env.ton.mintedArgs)
}

func TestTransferSendFailureRetriesThenFails(t *testing.T) {
	env := newTestEnv(t)
	swap := env.addEthToTonSwap(mongodb.SwapConfirmed)
	swap.Confirmations = 12
	env.swaps.put(swap)
	env.ton.mintErr = errors.New("gateway down")

	payload := &SwapJobPayload{SwapID: "swap-1"}
	err := processSwapTransfer(makeJob("eth2ton", JobSwapTransfer, payload, 5), payload)
	require.Error(t, err)

	// the queue exhausts attempts, then the outcome mapper runs
	onTransferExhausted(payload, err)
	got, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, mongodb.SwapFailed, got.Status)
	assert.Equal(t, tokens.CodeDestinationSendFailed, got.StatusCode)
}

// ---- collect stage ----

func TestCollectFee(t *testing.T) {
	env := newTestEnv(t)
	env.addEthToTonSwap(mongodb.SwapCompleted)
	env.eth.sendTxID = "0xfee"

	payload := &SwapJobPayload{SwapID: "swap-1"}
	require.NoError(t, processSwapCollect(makeJob("eth2ton", JobSwapCollect, payload, 10), payload))

	got, _ := env.swaps.FindSwap("swap-1")
	assert.Equal(t, "0xfee", got.CollectorTxID)
	assert.Equal(t, mongodb.SwapCompleted, got.Status)

	require.Len(t, env.eth.sentArgs, 1)
	assert.Equal(t, "0xsrc", env.eth.sentArgs[0].From)
	assert.Equal(t, "0xcollector", env.eth.sentArgs[0].To)
	assert.Equal(t, "1000000", env.eth.sentArgs[0].Value.String())
	assert.Equal(t, "-1000000", env.wallets.delta("src-wallet"))
	assert.Equal(t, "1000000", env.wallets.delta("collector-wallet"))
}

func TestCollectIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	swap := env.addEthToTonSwap(mongodb.SwapCompleted)
	swap.CollectorTxID = "0xalready"
	env.swaps.put(swap)

	payload := &SwapJobPayload{SwapID: "swap-1"}
	require.NoError(t, processSwapCollect(makeJob("eth2ton", JobSwapCollect, payload, 10), payload))
	assert.Empty(t, env.eth.sentArgs)
}

func TestCollectZeroFee(t *testing.T) {
	env := newTestEnv(t)
	swap := env.addEthToTonSwap(mongodb.SwapCompleted)
	swap.Fee = "0"
	env.swaps.put(swap)

	payload := &SwapJobPayload{SwapID: "swap-1"}
	require.NoError(t, processSwapCollect(makeJob("eth2ton", JobSwapCollect, payload, 10), payload))
	assert.Empty(t, env.eth.sentArgs)
}
