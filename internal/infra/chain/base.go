package chain

import (
	"context"
	"errors"
	logger "log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"

	"github.com/Soptq/shapeshift-lib/internal/core/caip"
	"github.com/Soptq/shapeshift-lib/internal/core/domain"
	"github.com/Soptq/shapeshift-lib/internal/core/errs"
	"github.com/Soptq/shapeshift-lib/internal/infra/unchained"
	"github.com/Soptq/shapeshift-lib/internal/metrics"
	"github.com/Soptq/shapeshift-lib/internal/subscription"
)

// Capability is one entry of the adapter operation set.
type Capability string

const (
	CapabilityIdentify         Capability = "identify"
	CapabilityQueryAccount     Capability = "query-account"
	CapabilityQueryHistory     Capability = "query-history"
	CapabilityEstimateFee      Capability = "estimate-fee"
	CapabilityGetAddress       Capability = "get-address"
	CapabilitySign             Capability = "sign"
	CapabilitySignAndBroadcast Capability = "sign-and-broadcast"
	CapabilityBroadcast        Capability = "broadcast-raw"
	CapabilitySubscribe        Capability = "subscribe"
)

// Transport is what services a capability.
type Transport string

const (
	TransportHTTP      Transport = "http"
	TransportWebsocket Transport = "websocket"
	TransportWallet    Transport = "wallet"
)

// TransportFor selects the transport that services c.
func TransportFor(c Capability) Transport {
	switch c {
	case CapabilitySubscribe:
		return TransportWebsocket
	case CapabilityGetAddress, CapabilitySign, CapabilitySignAndBroadcast:
		return TransportWallet
	default:
		return TransportHTTP
	}
}

// Operation names a public adapter operation and the kind its unclassified
// failures normalize to.
type Operation struct {
	Name       string
	Capability Capability
	Fallback   errs.Kind
}

var (
	OpGetChainID                  = Operation{"getChainId", CapabilityIdentify, errs.KindProviderUnavailable}
	OpGetAccount                  = Operation{"getAccount", CapabilityQueryAccount, errs.KindProviderUnavailable}
	OpGetTxHistory                = Operation{"getTxHistory", CapabilityQueryHistory, errs.KindProviderUnavailable}
	OpGetFeeData                  = Operation{"getFeeData", CapabilityEstimateFee, errs.KindFeeDataUnavailable}
	OpGetAddress                  = Operation{"getAddress", CapabilityGetAddress, errs.KindWalletUnavailable}
	OpSignTransaction             = Operation{"signTransaction", CapabilitySign, errs.KindSigningFailed}
	OpSignAndBroadcastTransaction = Operation{"signAndBroadcastTransaction", CapabilitySignAndBroadcast, errs.KindBroadcastFailed}
	OpBroadcastTransaction        = Operation{"broadcastTransaction", CapabilityBroadcast, errs.KindBroadcastFailed}
	OpSubscribeTxs                = Operation{"subscribeTxs", CapabilitySubscribe, errs.KindProviderUnavailable}
)

// HTTPProvider is the indexer request/response surface adapters consume.
type HTTPProvider interface {
	GetInfo(ctx context.Context) (*unchained.Info, error)
	GetAccount(ctx context.Context, pubkey string) (*unchained.Account, error)
	GetTxHistory(ctx context.Context, req unchained.TxHistoryRequest) (*unchained.TxHistory, error)
	SendTx(ctx context.Context, hex string) (string, error)
	EstimateGas(ctx context.Context, req unchained.EstimateGasRequest) (string, error)
}

// BaseConfig configures the shared part of an adapter.
type BaseConfig struct {
	Family caip.ChainFamily
	// Name labels metrics and logs, e.g. "ethereum".
	Name string
	// Networks maps the indexer's reported network name to a CAIP2 network.
	Networks map[string]caip.Network
	// BIP44 overrides the family default derivation parameters.
	BIP44 *BIP44Params

	HTTP HTTPProvider
	WS   subscription.Source
}

// Base holds what every concrete adapter shares: derivation defaults,
// provider handles, the cached chain id and the error funnel. It is composed
// into adapters as a named field and adds no operations of its own to
// their method set.
type Base struct {
	family   caip.ChainFamily
	name     string
	networks map[string]caip.Network
	bip44    BIP44Params

	http HTTPProvider
	ws   subscription.Source

	resolver *Resolver
	log      logger.Logger

	subsMu sync.Mutex
	subs   *subscription.Manager
}

// NewBase validates cfg and builds the shared adapter state.
func NewBase(cfg BaseConfig) (*Base, error) {
	if _, ok := caip.SupportedNetworks[cfg.Family]; !ok {
		return nil, errs.New(errs.KindUnsupportedNetwork, "unknown chain family %q", cfg.Family)
	}

	bip44 := DefaultBIP44Params(cfg.Family)
	if cfg.BIP44 != nil {
		bip44 = *cfg.BIP44
	}
	if err := bip44.Validate(); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = string(cfg.Family)
	}

	b := &Base{
		family:   cfg.Family,
		name:     name,
		networks: cfg.Networks,
		bip44:    bip44,
		http:     cfg.HTTP,
		ws:       cfg.WS,
		log:      *logger.Default().With("chain", name),
	}
	b.resolver = NewResolver(b.resolveChainID)
	return b, nil
}

// Family returns the chain family.
func (b *Base) Family() caip.ChainFamily { return b.family }

// Name returns the adapter label.
func (b *Base) Name() string { return b.name }

// Logger returns the adapter scoped logger.
func (b *Base) Logger() *logger.Logger { return &b.log }

// HTTP returns the request/response provider.
func (b *Base) HTTP() HTTPProvider { return b.http }

// Require reports ProviderUnavailable when the transport for c is missing.
// Wallet capabilities are checked against the wallet passed per call.
func (b *Base) Require(c Capability) error {
	switch TransportFor(c) {
	case TransportHTTP:
		if b.http == nil {
			return errs.New(errs.KindProviderUnavailable, "%s: no http provider configured", b.name)
		}
	case TransportWebsocket:
		if b.ws == nil {
			return errs.New(errs.KindProviderUnavailable, "%s: no websocket provider configured", b.name)
		}
	}
	return nil
}

// ChainID returns the cached chain id, resolving it on first use.
func (b *Base) ChainID(ctx context.Context) (caip.ChainID, error) {
	return b.resolver.ChainID(ctx)
}

func (b *Base) resolveChainID(ctx context.Context) (caip.ChainID, error) {
	if err := b.Require(CapabilityIdentify); err != nil {
		return caip.ChainID{}, err
	}

	info, err := b.http.GetInfo(ctx)
	if err != nil {
		return caip.ChainID{}, err
	}

	network, ok := b.networks[info.Network]
	if !ok {
		return caip.ChainID{}, errs.New(errs.KindUnsupportedNetwork,
			"%s: network is not supported: %s", b.name, info.Network)
	}
	caip2, err := caip.EncodeChainID(b.family, network)
	if err != nil {
		return caip.ChainID{}, err
	}

	b.log.Debug("Resolved chain id", "network", info.Network, "caip2", caip2)
	return caip.ChainID{Family: b.family, Network: network}, nil
}

// BIP44 returns override when set, else the adapter default.
func (b *Base) BIP44(override *BIP44Params) BIP44Params {
	if override != nil {
		return *override
	}
	return b.bip44
}

// DerivePath turns BIP44 parameters into the wallet's path list form.
func (b *Base) DerivePath(override *BIP44Params) (accounts.DerivationPath, error) {
	return b.BIP44(override).DerivationPath()
}

// Finish is deferred by every public operation. It normalizes *errp once,
// records metrics and logs the outcome.
func (b *Base) Finish(op Operation, start time.Time, errp *error) {
	elapsed := time.Since(start)
	metrics.AdapterCallsTotal.WithLabelValues(b.name, op.Name).Inc()
	metrics.AdapterLatency.WithLabelValues(b.name, op.Name).Observe(elapsed.Seconds())

	if *errp == nil {
		b.log.Debug("Adapter call", "op", op.Name, "transport", TransportFor(op.Capability), "duration", elapsed)
		return
	}

	*errp = errs.Normalize(op.Name, op.Fallback, *errp)
	kind := errs.KindOf(*errp)
	metrics.AdapterErrorsTotal.WithLabelValues(b.name, op.Name, string(kind)).Inc()
	b.log.Debug("Adapter call failed",
		"op", op.Name,
		"transport", TransportFor(op.Capability),
		"kind", kind,
		"error", *errp,
	)
}

// FetchAccount loads an account and tags it with the chain's native asset.
// Family specific fields are left for the caller to fill from the returned
// raw account.
func (b *Base) FetchAccount(ctx context.Context, pubkey string) (*domain.Account, *unchained.Account, error) {
	if err := b.Require(CapabilityQueryAccount); err != nil {
		return nil, nil, err
	}

	chainID, err := b.ChainID(ctx)
	if err != nil {
		return nil, nil, err
	}

	raw, err := b.http.GetAccount(ctx, pubkey)
	if err != nil {
		if errors.Is(err, unchained.ErrAccountNotFound) {
			return nil, nil, errs.New(errs.KindAccountNotFound, "no account for %s on %s", pubkey, chainID)
		}
		return nil, nil, err
	}

	account := &domain.Account{
		Balance: raw.Balance,
		ChainID: chainID,
		AssetID: caip.NativeAssetID(chainID),
		Pubkey:  raw.Pubkey,
	}
	if account.Pubkey == "" {
		account.Pubkey = pubkey
	}
	return account, raw, nil
}

// FetchTxHistory loads one page of history, keeping provider order.
func (b *Base) FetchTxHistory(ctx context.Context, input TxHistoryInput) (*domain.TxHistory, error) {
	if err := b.Require(CapabilityQueryHistory); err != nil {
		return nil, err
	}

	chainID, err := b.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := b.http.GetTxHistory(ctx, unchained.TxHistoryRequest{
		Pubkey:   input.Pubkey,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		if errors.Is(err, unchained.ErrAccountNotFound) {
			return nil, errs.New(errs.KindAccountNotFound, "no account for %s on %s", input.Pubkey, chainID)
		}
		return nil, err
	}

	native := caip.NativeAssetID(chainID)
	symbol := caip.NativeSymbol[chainID.Network]

	txs := make([]domain.Transaction, 0, len(raw.Transactions))
	for _, tx := range raw.Transactions {
		txs = append(txs, domain.Transaction{
			TxID:          tx.TxID,
			ChainID:       chainID,
			AssetID:       native,
			Symbol:        symbol,
			BlockHash:     tx.BlockHash,
			BlockHeight:   tx.BlockHeight,
			BlockTime:     tx.Timestamp,
			Confirmations: tx.Confirmations,
			Status:        domain.ParseTxStatus(tx.Status),
			From:          tx.From,
			To:            tx.To,
			Value:         tx.Value,
			Fee:           tx.Fee,
		})
	}

	return &domain.TxHistory{
		Page:         raw.Page,
		TotalPages:   raw.TotalPages,
		Transactions: txs,
	}, nil
}

// Broadcast submits rawHex once.
func (b *Base) Broadcast(ctx context.Context, rawHex string) (string, error) {
	if err := b.Require(CapabilityBroadcast); err != nil {
		return "", err
	}
	if rawHex == "" {
		return "", errs.New(errs.KindBroadcastFailed, "empty transaction")
	}

	txid, err := b.http.SendTx(ctx, rawHex)
	if err != nil {
		return "", err
	}
	if txid == "" {
		return "", errs.New(errs.KindBroadcastFailed, "provider returned no transaction id")
	}
	return txid, nil
}

// Subscribe opens a transaction subscription for address.
func (b *Base) Subscribe(
	ctx context.Context,
	address string,
	topic string,
	onMessage func(domain.TxEvent),
	onError func(error),
) (*subscription.Subscription, error) {
	if err := b.Require(CapabilitySubscribe); err != nil {
		return nil, err
	}
	if address == "" {
		return nil, errs.New(errs.KindWalletUnavailable, "no address to subscribe to")
	}

	manager, err := b.subscriptions(ctx)
	if err != nil {
		return nil, err
	}
	return manager.Subscribe(ctx, subscription.Key{Address: address, Topic: topic}, onMessage, onError)
}

// Close stops every subscription opened through b.
func (b *Base) Close() error {
	b.subsMu.Lock()
	manager := b.subs
	b.subsMu.Unlock()
	if manager == nil {
		return nil
	}
	return manager.Close()
}

func (b *Base) subscriptions(ctx context.Context) (*subscription.Manager, error) {
	chainID, err := b.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	if b.subs == nil {
		b.subs = subscription.NewManager(chainID, b.ws)
	}
	return b.subs, nil
}

// SignedTx validates a wallet signature result.
func SignedTx(serialized string) (string, error) {
	if serialized == "" {
		return "", errs.New(errs.KindSigningFailed, "wallet returned no signature")
	}
	return serialized, nil
}

// TxHash validates a combined sign and send result.
func TxHash(hash string) (string, error) {
	if hash == "" {
		return "", errs.New(errs.KindBroadcastFailed, "wallet returned no transaction id")
	}
	return hash, nil
}

// WalletUnavailable reports a wallet lacking capability.
func WalletUnavailable(w any, capability string) error {
	if w == nil {
		return errs.New(errs.KindWalletUnavailable, "no wallet supplied")
	}
	return errs.New(errs.KindWalletUnavailable, "wallet %T does not support %s", w, capability)
}

// UnexpectedTx reports a SignTxInput.Tx of the wrong family.
func UnexpectedTx(tx any, want string) error {
	return errs.New(errs.KindSigningFailed, "unexpected transaction type %T, want %s", tx, want)
}
