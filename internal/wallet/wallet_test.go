package wallet

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xld/xld-go/internal/audit"
	"github.com/xld/xld-go/pkg/xld"
)

const (
	testWallet  = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	otherWallet = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

func topupQuote(wallet string) Quote {
	return Quote{
		Type:          xld.TransactionTypeLoad,
		PaymentSource: xld.PaymentSourceCrypto,
		SourceWallet:  wallet,
		Fiat:          map[string]any{"product_id": 42, "currency": "PHP"},
		Crypto:        xld.TransactionCrypto{ChainID: 137, TokenSymbol: "USDT", Amount: 1.8},
		Total:         xld.Total{Amount: 101, AmountCurrency: xld.CurrencyPHP},
	}
}

func setupTestWallet(t *testing.T) (*Service, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return New(audit.New(zerolog.New(&buf))), &buf
}

func TestCreateQuote(t *testing.T) {
	svc, logs := setupTestWallet(t)
	ctx := context.Background()

	t.Run("AssignsIncreasingReferences", func(t *testing.T) {
		a, err := svc.CreateQuote(ctx, topupQuote(testWallet))
		require.NoError(t, err)
		b, err := svc.CreateQuote(ctx, topupQuote(testWallet))
		require.NoError(t, err)

		assert.Greater(t, b.Reference, a.Reference)
		assert.Equal(t, xld.StatusPending, a.OnChain)
		assert.Equal(t, xld.StatusPending, a.OffChain)
		assert.False(t, a.Confirmed)
		assert.Contains(t, logs.String(), audit.EventQuoteCreated)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		q := topupQuote(testWallet)
		q.Total.Amount = 0
		_, err := svc.CreateQuote(ctx, q)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("MissingWallet", func(t *testing.T) {
		_, err := svc.CreateQuote(ctx, topupQuote(" "))
		assert.ErrorIs(t, err, ErrInvalidWallet)
	})

	t.Run("FiatIsCopied", func(t *testing.T) {
		q := topupQuote(testWallet)
		rec, err := svc.CreateQuote(ctx, q)
		require.NoError(t, err)
		q.Fiat["product_id"] = 99

		stored, err := svc.Get(ctx, testWallet, rec.Reference)
		require.NoError(t, err)
		assert.Equal(t, 42, stored.Fiat["product_id"])
	})
}

func TestConfirm(t *testing.T) {
	svc, logs := setupTestWallet(t)
	ctx := context.Background()

	rec, err := svc.CreateQuote(ctx, topupQuote(testWallet))
	require.NoError(t, err)

	t.Run("WrongType", func(t *testing.T) {
		_, err := svc.Confirm(ctx, xld.TransactionTypeBills, rec.Reference, "0xfeed")
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("MissingHash", func(t *testing.T) {
		_, err := svc.Confirm(ctx, xld.TransactionTypeLoad, rec.Reference, "")
		assert.ErrorIs(t, err, ErrInvalidHash)
	})

	t.Run("UnknownReference", func(t *testing.T) {
		_, err := svc.Confirm(ctx, xld.TransactionTypeLoad, 1, "0xfeed")
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		confirmed, err := svc.Confirm(ctx, xld.TransactionTypeLoad, rec.Reference, "0xfeed")
		require.NoError(t, err)
		assert.True(t, confirmed.Confirmed)
		assert.Equal(t, "0xfeed", confirmed.Hash)
		assert.Equal(t, xld.StatusProcessing, confirmed.OnChain)
		assert.Equal(t, xld.StatusProcessing, confirmed.OffChain)
		assert.Contains(t, logs.String(), audit.EventPaymentSent)
	})

	t.Run("Twice", func(t *testing.T) {
		_, err := svc.Confirm(ctx, xld.TransactionTypeLoad, rec.Reference, "0xfeed")
		assert.ErrorIs(t, err, ErrAlreadyConfirmed)
	})

	t.Run("FiatFundedNeedsNoHash", func(t *testing.T) {
		buy, err := svc.CreateQuote(ctx, Quote{
			Type:              xld.TransactionTypeBuy,
			PaymentSource:     xld.PaymentSourceFiat,
			DestinationWallet: testWallet,
			Crypto:            xld.TransactionCrypto{ChainID: 137, TokenSymbol: "USDT", Amount: 8.8},
			Total:             xld.Total{Amount: 505, AmountCurrency: xld.CurrencyPHP},
		})
		require.NoError(t, err)

		confirmed, err := svc.Confirm(ctx, xld.TransactionTypeBuy, buy.Reference, "")
		require.NoError(t, err)
		assert.Equal(t, xld.StatusProcessing, confirmed.OffChain)
		assert.Equal(t, xld.StatusProcessing, confirmed.OnChain)
	})
}

func TestSettle(t *testing.T) {
	svc, _ := setupTestWallet(t)
	ctx := context.Background()

	rec, err := svc.CreateQuote(ctx, topupQuote(testWallet))
	require.NoError(t, err)

	_, err = svc.Settle(ctx, rec.Reference, xld.StatusSuccess, xld.StatusSuccess)
	assert.ErrorIs(t, err, ErrInvalidStatus, "unconfirmed transactions cannot settle")

	_, err = svc.Confirm(ctx, xld.TransactionTypeLoad, rec.Reference, "0xfeed")
	require.NoError(t, err)

	_, err = svc.Settle(ctx, rec.Reference, "DONE", xld.StatusSuccess)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	settled, err := svc.Settle(ctx, rec.Reference, xld.StatusSuccess, xld.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, xld.StatusSuccess, settled.OnChain)

	_, err = svc.Settle(ctx, rec.Reference, xld.StatusFailed, xld.StatusSuccess)
	assert.ErrorIs(t, err, ErrInvalidStatus, "terminal legs are final")

	_, err = svc.Settle(ctx, 1, xld.StatusSuccess, xld.StatusSuccess)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestSettle_Audited(t *testing.T) {
	auditSvc := audit.New(zerolog.Nop())
	svc := New(auditSvc)
	ctx := context.Background()

	rec, err := svc.CreateQuote(ctx, topupQuote(testWallet))
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, xld.TransactionTypeLoad, rec.Reference, "0xfeed")
	require.NoError(t, err)
	assert.Empty(t, auditSvc.GetEvents(&audit.EventFilter{Type: audit.EventSettled}))

	_, err = svc.Settle(ctx, rec.Reference, xld.StatusSuccess, xld.StatusSuccess)
	require.NoError(t, err)

	events := auditSvc.GetEvents(&audit.EventFilter{Type: audit.EventSettled})
	require.Len(t, events, 1)
	assert.Equal(t, "sandbox", events[0].Component)
	assert.JSONEq(t, `{"xld_reference":1001,"transaction_type":"LOAD","amount":101,"currency":"PHP","on_chain":"SUCCESS","off_chain":"SUCCESS"}`,
		string(events[0].Data))

	_, err = svc.Settle(ctx, rec.Reference, xld.StatusFailed, xld.StatusSuccess)
	require.ErrorIs(t, err, ErrInvalidStatus)
	assert.Len(t, auditSvc.GetEvents(&audit.EventFilter{Type: audit.EventSettled}), 1, "rejected settlements are not audited")
}

func TestLog_WarnsOnAuditFailure(t *testing.T) {
	var logs bytes.Buffer
	auditSvc := audit.New(zerolog.Nop())
	svc := New(auditSvc, WithLogger(zerolog.New(&logs)))

	svc.log(context.Background(), audit.EventQuoteCreated, "broken", Record{
		Reference: 1001,
		Quote:     Quote{Total: xld.Total{Amount: math.NaN()}},
	})

	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "audit event not fully recorded")
	events := auditSvc.GetEvents(&audit.EventFilter{Type: audit.EventQuoteCreated})
	require.Len(t, events, 1, "the event is kept without its data")
	assert.Empty(t, events[0].Data)
}

func TestGet(t *testing.T) {
	svc, _ := setupTestWallet(t)
	ctx := context.Background()

	rec, err := svc.CreateQuote(ctx, topupQuote(testWallet))
	require.NoError(t, err)

	got, err := svc.Get(ctx, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", rec.Reference)
	require.NoError(t, err, "wallet comparison ignores case")
	assert.Equal(t, rec.Reference, got.Reference)

	_, err = svc.Get(ctx, otherWallet, rec.Reference)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestHistory(t *testing.T) {
	svc, _ := setupTestWallet(t)
	ctx := context.Background()

	var refs []int64
	for i := 0; i < 5; i++ {
		rec, err := svc.CreateQuote(ctx, topupQuote(testWallet))
		require.NoError(t, err)
		refs = append(refs, rec.Reference)
	}
	bills := topupQuote(testWallet)
	bills.Type = xld.TransactionTypeBills
	billsRec, err := svc.CreateQuote(ctx, bills)
	require.NoError(t, err)
	_, err = svc.CreateQuote(ctx, topupQuote(otherWallet))
	require.NoError(t, err)

	t.Run("NewestFirst", func(t *testing.T) {
		page := svc.History(ctx, testWallet, Filter{})
		assert.Equal(t, 6, page.TotalCount)
		assert.Equal(t, 1, page.CurrentPage)
		require.Len(t, page.Items, 6)
		assert.Equal(t, billsRec.Reference, page.Items[0].Reference)
	})

	t.Run("Paging", func(t *testing.T) {
		page := svc.History(ctx, testWallet, Filter{Page: 2, Size: 4})
		assert.Equal(t, 6, page.TotalCount)
		require.Len(t, page.Items, 2)
		assert.Equal(t, refs[1], page.Items[0].Reference)
		assert.Equal(t, refs[0], page.Items[1].Reference)

		beyond := svc.History(ctx, testWallet, Filter{Page: 9, Size: 4})
		assert.Empty(t, beyond.Items)
		assert.NotNil(t, beyond.Items)
	})

	t.Run("TypeFilter", func(t *testing.T) {
		page := svc.History(ctx, testWallet, Filter{Type: xld.TransactionTypeBills})
		require.Len(t, page.Items, 1)
		assert.Equal(t, billsRec.Reference, page.Items[0].Reference)
	})

	t.Run("StatusFilter", func(t *testing.T) {
		_, err := svc.Confirm(ctx, xld.TransactionTypeLoad, refs[0], "0xfeed")
		require.NoError(t, err)
		_, err = svc.Settle(ctx, refs[0], xld.StatusSuccess, xld.StatusSuccess)
		require.NoError(t, err)

		page := svc.History(ctx, testWallet, Filter{Status: xld.StatusSuccess})
		require.Len(t, page.Items, 1)
		assert.Equal(t, refs[0], page.Items[0].Reference)
	})

	t.Run("UnknownWallet", func(t *testing.T) {
		page := svc.History(ctx, "0x0000000000000000000000000000000000000000", Filter{})
		assert.Zero(t, page.TotalCount)
		assert.Empty(t, page.Items)
	})
}

func TestNew_WithoutAudit(t *testing.T) {
	svc := New(nil)
	_, err := svc.CreateQuote(context.Background(), topupQuote(testWallet))
	assert.NoError(t, err)
}
