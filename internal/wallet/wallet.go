// Package wallet keeps the sandbox transaction ledger: quotes, their
// confirmations and the status of both legs of each transaction.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/xld/xld-go/internal/audit"
	"github.com/xld/xld-go/pkg/xld"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidWallet       = errors.New("invalid wallet address")
	ErrInvalidHash         = errors.New("transaction hash is required")
	ErrTypeMismatch        = errors.New("transaction type does not match route")
	ErrAlreadyConfirmed    = errors.New("transaction already confirmed")
	ErrInvalidStatus       = errors.New("invalid status transition")
)

const (
	firstReference  = 1000
	defaultPageSize = 10
	maxPageSize     = 100
)

// Quote is a priced, unconfirmed transaction
type Quote struct {
	Type              xld.TransactionType
	PaymentSource     xld.PaymentSource
	SourceWallet      string
	DestinationWallet string
	Fiat              map[string]any
	Crypto            xld.TransactionCrypto
	Fees              xld.Fees
	Total             xld.Total
}

// Record is a ledger entry
type Record struct {
	Quote
	Reference int64
	Hash      string
	Confirmed bool
	OnChain   xld.TransactionStatusState
	OffChain  xld.TransactionStatusState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter selects one page of a wallet's history
type Filter struct {
	Page   int
	Size   int
	Type   xld.TransactionType
	Status xld.TransactionStatusState
}

// Page is one page of history, newest first
type Page struct {
	Items       []Record
	CurrentPage int
	TotalCount  int
}

// Service provides ledger functionality
type Service struct {
	audit  *audit.Service
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	next    int64
	records map[int64]*Record
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger used to report audit failures
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a new ledger. auditSvc may be nil.
func New(auditSvc *audit.Service, opts ...Option) *Service {
	s := &Service{
		audit:   auditSvc,
		logger:  zerolog.Nop(),
		now:     time.Now,
		next:    firstReference,
		records: make(map[int64]*Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateQuote stores q under a fresh reference with both legs pending
func (s *Service) CreateQuote(ctx context.Context, q Quote) (Record, error) {
	if strings.TrimSpace(q.SourceWallet) == "" && strings.TrimSpace(q.DestinationWallet) == "" {
		return Record{}, ErrInvalidWallet
	}
	if q.Total.Amount <= 0 || q.Crypto.Amount <= 0 {
		return Record{}, ErrInvalidAmount
	}

	fiat := make(map[string]any, len(q.Fiat))
	for k, v := range q.Fiat {
		fiat[k] = v
	}
	q.Fiat = fiat

	now := s.now().UTC()

	s.mu.Lock()
	s.next++
	rec := &Record{
		Quote:     q,
		Reference: s.next,
		OnChain:   xld.StatusPending,
		OffChain:  xld.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.records[rec.Reference] = rec
	out := *rec
	s.mu.Unlock()

	s.log(ctx, audit.EventQuoteCreated, fmt.Sprintf("Quote %d created", out.Reference), out)
	return out, nil
}

// Confirm records the payment of a quote. Crypto funded quotes need the
// on-chain transaction hash.
func (s *Service) Confirm(ctx context.Context, txType xld.TransactionType, reference int64, hash string) (Record, error) {
	s.mu.Lock()
	rec, ok := s.records[reference]
	if !ok {
		s.mu.Unlock()
		return Record{}, ErrTransactionNotFound
	}
	if rec.Type != txType {
		s.mu.Unlock()
		return Record{}, ErrTypeMismatch
	}
	if rec.Confirmed {
		s.mu.Unlock()
		return Record{}, ErrAlreadyConfirmed
	}
	if rec.PaymentSource == xld.PaymentSourceCrypto && strings.TrimSpace(hash) == "" {
		s.mu.Unlock()
		return Record{}, ErrInvalidHash
	}

	rec.Confirmed = true
	rec.Hash = hash
	rec.OnChain = xld.StatusProcessing
	rec.OffChain = xld.StatusProcessing
	rec.UpdatedAt = s.now().UTC()
	out := *rec
	s.mu.Unlock()

	s.log(ctx, audit.EventPaymentSent, fmt.Sprintf("Payment for %d confirmed", out.Reference), out)
	return out, nil
}

// Settle moves a confirmed transaction's legs forward. Terminal legs do not
// change.
func (s *Service) Settle(ctx context.Context, reference int64, onChain, offChain xld.TransactionStatusState) (Record, error) {
	if !validState(onChain) || !validState(offChain) {
		return Record{}, ErrInvalidStatus
	}

	s.mu.Lock()
	rec, ok := s.records[reference]
	if !ok {
		s.mu.Unlock()
		return Record{}, ErrTransactionNotFound
	}
	if !rec.Confirmed {
		s.mu.Unlock()
		return Record{}, ErrInvalidStatus
	}
	if (rec.OnChain.Terminal() && rec.OnChain != onChain) || (rec.OffChain.Terminal() && rec.OffChain != offChain) {
		s.mu.Unlock()
		return Record{}, ErrInvalidStatus
	}

	rec.OnChain = onChain
	rec.OffChain = offChain
	rec.UpdatedAt = s.now().UTC()
	out := *rec
	s.mu.Unlock()

	s.log(ctx, audit.EventSettled,
		fmt.Sprintf("Transaction %d settled on-chain %s off-chain %s", out.Reference, out.OnChain, out.OffChain), out)
	return out, nil
}

// Get returns a transaction of wallet. A reference owned by another wallet
// is reported as not found.
func (s *Service) Get(ctx context.Context, wallet string, reference int64) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[reference]
	if !ok || !rec.involves(wallet) {
		return Record{}, ErrTransactionNotFound
	}
	return *rec, nil
}

// History returns one page of the transactions involving wallet.
// The status filter matches the off-chain leg, which settles last.
func (s *Service) History(ctx context.Context, wallet string, f Filter) Page {
	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.Size
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	s.mu.RLock()
	var matched []Record
	for _, rec := range s.records {
		if !rec.involves(wallet) {
			continue
		}
		if f.Type != "" && rec.Type != f.Type {
			continue
		}
		if f.Status != "" && rec.OffChain != f.Status {
			continue
		}
		matched = append(matched, *rec)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Reference > matched[j].Reference
	})

	result := Page{CurrentPage: page, TotalCount: len(matched), Items: []Record{}}
	start := (page - 1) * size
	if start >= len(matched) {
		return result
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	result.Items = matched[start:end]
	return result
}

func (r *Record) involves(wallet string) bool {
	return wallet != "" && (strings.EqualFold(r.SourceWallet, wallet) || strings.EqualFold(r.DestinationWallet, wallet))
}

func validState(s xld.TransactionStatusState) bool {
	switch s {
	case xld.StatusPending, xld.StatusProcessing, xld.StatusSuccess, xld.StatusFailed:
		return true
	}
	return false
}

func (s *Service) log(ctx context.Context, eventType, description string, rec Record) {
	if s.audit == nil {
		return
	}
	err := s.audit.Log(ctx, eventType, audit.SeverityInfo, description,
		map[string]interface{}{
			"xld_reference":    rec.Reference,
			"transaction_type": rec.Type,
			"amount":           rec.Total.Amount,
			"currency":         rec.Total.AmountCurrency,
			"on_chain":         rec.OnChain,
			"off_chain":        rec.OffChain,
		},
		audit.WithComponent("sandbox"))
	if err != nil {
		s.logger.Warn().Err(err).
			Str("event", eventType).
			Int64("xld_reference", rec.Reference).
			Msg("audit event not fully recorded")
	}
}
