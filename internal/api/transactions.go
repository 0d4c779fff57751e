package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/xld/xld-go/internal/wallet"
	"github.com/xld/xld-go/pkg/xld"
)

const redirectBase = "https://sandbox.xld.finance/pay/"

// === Quotes ===

// QuoteBuyToken handles POST /transactions/quote/buy
func (h *Handler) QuoteBuyToken(w http.ResponseWriter, r *http.Request) {
	var req xld.CreateBuyTokenQuoteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if !h.checkWallet(w, req.SourceWalletAddress) {
		return
	}
	if req.Fiat.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "fiat.amount must be positive.")
		return
	}
	chainID, ok := h.checkToken(w, req.Crypto.TokenSymbol, req.Crypto.ChainID)
	if !ok {
		return
	}
	p, err := h.catalog.price(req.Fiat.Amount, req.Fiat.Currency, req.Crypto.TokenSymbol)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Currency not supported.")
		return
	}

	fiat := xld.BuyTokenFiat{
		Type:             req.Fiat.Type,
		Amount:           req.Fiat.Amount,
		Currency:         req.Fiat.Currency,
		ISO:              req.Fiat.ISO,
		AdditionalFields: req.Fiat.AdditionalFields,
	}
	if req.Fiat.Card != nil {
		fiat.Card = &xld.Card{Name: req.Fiat.Card.Name, Number: maskCard(req.Fiat.Card.Number)}
	}

	rec, ok := h.storeQuote(w, r, wallet.Quote{
		Type:              xld.TransactionTypeBuy,
		PaymentSource:     xld.PaymentSourceFiat,
		DestinationWallet: req.SourceWalletAddress,
		Fiat:              map[string]any{"type": fiat.Type, "amount": fiat.Amount, "currency": fiat.Currency, "iso": fiat.ISO},
		Crypto:            xld.TransactionCrypto{ChainID: chainID, TokenSymbol: strings.ToUpper(req.Crypto.TokenSymbol), Amount: p.crypto},
		Fees:              p.fees,
		Total:             p.total,
	})
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, "Quotation created.", xld.BuyTokenQuote{
		DestinationWalletAddress: req.SourceWalletAddress,
		XLDReference:             rec.Reference,
		Callback:                 req.Callback,
		Redirect:                 redirectBase + strconv.FormatInt(rec.Reference, 10),
		PaymentSource:            xld.PaymentSourceFiat,
		TransactionType:          xld.TransactionTypeBuy,
		TransactionDetails: xld.BuyTokenQuoteDetails{
			Fiat:   fiat,
			Crypto: h.quoteCrypto(req.Crypto.ChainID, req.Crypto.TokenSymbol, p.crypto),
			Fees:   p.fees,
			Total:  p.total,
		},
	})
}

// QuotePayBills handles POST /transactions/quote/pay
func (h *Handler) QuotePayBills(w http.ResponseWriter, r *http.Request) {
	var req xld.CreatePayBillsQuoteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if !h.checkWallet(w, req.SourceWalletAddress) {
		return
	}

	amount, _ := req.Fiat["amount"].(float64)
	if amount <= 0 {
		respondError(w, http.StatusBadRequest, "fiat.amount must be positive.")
		return
	}
	code := stringField(req.Fiat, "code")
	biller, found := h.catalog.biller(code)
	if !found {
		respondError(w, http.StatusNotFound, "Biller not found.")
		return
	}
	for _, f := range biller.Fields {
		if f.IsRequired && stringField(req.Fiat, f.FieldName) == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("fiat.%s is required.", f.FieldName))
			return
		}
	}
	chainID, ok := h.checkToken(w, req.Crypto.TokenSymbol, req.Crypto.ChainID)
	if !ok {
		return
	}
	currency := xld.Currency(stringField(req.Fiat, "currency"))
	p, err := h.catalog.price(amount, currency, req.Crypto.TokenSymbol)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Currency not supported.")
		return
	}

	rec, ok := h.storeQuote(w, r, wallet.Quote{
		Type:              xld.TransactionTypeBills,
		PaymentSource:     xld.PaymentSourceCrypto,
		SourceWallet:      req.SourceWalletAddress,
		DestinationWallet: treasuryWallet,
		Fiat:              req.Fiat,
		Crypto:            xld.TransactionCrypto{ChainID: chainID, TokenSymbol: strings.ToUpper(req.Crypto.TokenSymbol), Amount: p.crypto},
		Fees:              p.fees,
		Total:             p.total,
	})
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, "Quotation created.", xld.PayBillsQuote{
		SourceWalletAddress:      req.SourceWalletAddress,
		DestinationWalletAddress: treasuryWallet,
		XLDReference:             rec.Reference,
		FiatReferenceNumber:      fmt.Sprintf("BP-%d", rec.Reference),
		PaymentSource:            xld.PaymentSourceCrypto,
		TransactionType:          xld.TransactionTypeBills,
		TransactionDetails: xld.PayBillsQuoteDetails{
			Fiat: xld.PayBillsFiat{
				Amount:   amount,
				Currency: currency,
				Code:     biller.Code,
				ISO:      stringField(req.Fiat, "iso"),
				Account:  stringField(req.Fiat, "account"),
				Name:     stringField(req.Fiat, "name"),
			},
			Crypto: h.quoteCrypto(req.Crypto.ChainID, req.Crypto.TokenSymbol, p.crypto),
			Fees:   p.fees,
			Total:  p.total,
		},
	})
}

// QuoteTopup handles POST /transactions/quote/topup
func (h *Handler) QuoteTopup(w http.ResponseWriter, r *http.Request) {
	var req xld.CreateTopupQuoteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if !h.checkWallet(w, req.SourceWalletAddress) {
		return
	}
	if strings.TrimSpace(req.Fiat.MobileNumber) == "" {
		respondError(w, http.StatusBadRequest, "fiat.mobile_number is required.")
		return
	}
	product, found := h.catalog.product(req.Fiat.ProductID)
	if !found {
		respondError(w, http.StatusNotFound, "Product not found.")
		return
	}
	chainID, ok := h.checkToken(w, req.Crypto.TokenSymbol, req.Crypto.ChainID)
	if !ok {
		return
	}
	p, err := h.catalog.price(product.Price, product.Currency, req.Crypto.TokenSymbol)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Currency not supported.")
		return
	}

	fiat := xld.TopupFiat{
		ProductID:    product.ID,
		MobileNumber: req.Fiat.MobileNumber,
		Currency:     product.Currency,
		Amount:       product.Amount,
		ISO:          req.Fiat.ISO,
	}
	rec, ok := h.storeQuote(w, r, wallet.Quote{
		Type:              xld.TransactionTypeLoad,
		PaymentSource:     xld.PaymentSourceCrypto,
		SourceWallet:      req.SourceWalletAddress,
		DestinationWallet: treasuryWallet,
		Fiat: map[string]any{
			"product_id": fiat.ProductID, "mobile_number": fiat.MobileNumber,
			"currency": fiat.Currency, "amount": fiat.Amount, "iso": fiat.ISO,
		},
		Crypto: xld.TransactionCrypto{ChainID: chainID, TokenSymbol: strings.ToUpper(req.Crypto.TokenSymbol), Amount: p.crypto},
		Fees:   p.fees,
		Total:  p.total,
	})
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, "Quotation created.", xld.TopupQuote{
		SourceWalletAddress:      req.SourceWalletAddress,
		DestinationWalletAddress: treasuryWallet,
		XLDReference:             rec.Reference,
		PaymentSource:            xld.PaymentSourceCrypto,
		TransactionType:          xld.TransactionTypeLoad,
		TransactionDetails: xld.TopupQuoteDetails{
			Fiat:   fiat,
			Crypto: h.quoteCrypto(req.Crypto.ChainID, req.Crypto.TokenSymbol, p.crypto),
			Fees:   p.fees,
			Total:  p.total,
		},
	})
}

// QuoteTransfer handles POST /transactions/quote/transfer. The payer fixes
// the crypto amount; the recipient receives its fiat value less the fee.
func (h *Handler) QuoteTransfer(w http.ResponseWriter, r *http.Request) {
	var req xld.CreateTransferQuoteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if !h.checkWallet(w, req.SourceWalletAddress) {
		return
	}
	if req.Crypto.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "crypto.amount must be positive.")
		return
	}
	dest, found := h.catalog.destination(stringField(req.Fiat, "code"))
	if !found {
		respondError(w, http.StatusNotFound, "Transfer destination not found.")
		return
	}
	for _, f := range dest.ExtraFields {
		if f.Required && stringField(req.Fiat, f.Field) == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("fiat.%s is required.", f.Field))
			return
		}
	}
	chainID, ok := h.checkToken(w, req.Crypto.TokenSymbol, req.Crypto.ChainID)
	if !ok {
		return
	}
	currency := xld.Currency(stringField(req.Fiat, "currency"))
	rate, err := h.catalog.rate(req.Crypto.TokenSymbol, string(currency))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Currency not supported.")
		return
	}

	gross := round(req.Crypto.Amount*rate, 2)
	fee := round(gross*platformFeePercent/100, 2)
	fees := xld.Fees{
		PlatformFee: xld.PlatformFee{Percentage: platformFeePercent, Amount: fee, AmountCurrency: currency},
		GasFee:      xld.GasFee{AmountCurrency: currency, Waived: true},
	}
	total := xld.Total{Amount: gross, AmountCurrency: currency}

	rec, ok := h.storeQuote(w, r, wallet.Quote{
		Type:              xld.TransactionTypeCash,
		PaymentSource:     xld.PaymentSourceCrypto,
		SourceWallet:      req.SourceWalletAddress,
		DestinationWallet: treasuryWallet,
		Fiat:              req.Fiat,
		Crypto:            xld.TransactionCrypto{ChainID: chainID, TokenSymbol: strings.ToUpper(req.Crypto.TokenSymbol), Amount: req.Crypto.Amount},
		Fees:              fees,
		Total:             total,
	})
	if !ok {
		return
	}

	var address xld.Address
	if extra, ok := req.Fiat["additional_fields"].(map[string]any); ok {
		address = xld.Address{
			AddressLine1: stringField(extra, "address_line_1"),
			AddressLine2: stringField(extra, "address_line_2"),
			Country:      stringField(extra, "country"),
			Province:     stringField(extra, "province"),
			City:         stringField(extra, "city"),
			ZipCode:      stringField(extra, "zip_code"),
		}
	}

	respondJSON(w, http.StatusOK, "Quotation created.", xld.TransferQuote{
		SourceWalletAddress:      req.SourceWalletAddress,
		DestinationWalletAddress: treasuryWallet,
		XLDReference:             rec.Reference,
		PaymentSource:            xld.PaymentSourceCrypto,
		TransactionType:          xld.TransactionTypeCash,
		TransactionDetails: xld.TransferQuoteDetails{
			Fiat: xld.TransferFiat{
				Amount:           round(gross-fee, 2),
				Code:             dest.Code,
				Currency:         currency,
				Account:          stringField(req.Fiat, "account"),
				Name:             stringField(req.Fiat, "name"),
				ISO:              stringField(req.Fiat, "iso"),
				AccountType:      stringField(req.Fiat, "account_type"),
				AdditionalFields: address,
			},
			Crypto: h.quoteCrypto(req.Crypto.ChainID, req.Crypto.TokenSymbol, req.Crypto.Amount),
			Fees:   fees,
			Total:  total,
		},
	})
}

// === Confirmations ===

// confirm returns the handler of POST /transactions/confirm/* for txType
func (h *Handler) confirm(txType xld.TransactionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req xld.ConfirmPaymentRequest
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		if req.XLDReference <= 0 {
			respondError(w, http.StatusBadRequest, "xld_reference is required.")
			return
		}

		rec, err := h.ledger.Confirm(r.Context(), txType, req.XLDReference, req.TransactionHash)
		if err != nil {
			respondLedgerError(w, err)
			return
		}

		source := rec.SourceWallet
		if source == "" {
			source = rec.DestinationWallet
		}
		respondJSON(w, http.StatusOK, "Payment confirmed.", xld.Confirmation{
			XLDReference:        rec.Reference,
			SourceWalletAddress: source,
			TransactionHash:     rec.Hash,
			TransactionType:     rec.Type,
		})
	}
}

// === Wallet ===

// GetTransactionStatus handles GET /transactions/status/{walletAddress}/{reference}
func (h *Handler) GetTransactionStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reference, err := strconv.ParseInt(vars["reference"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid transaction reference.")
		return
	}

	rec, err := h.ledger.Get(r.Context(), vars["walletAddress"], reference)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, "Transaction status retrieved.", xld.TransactionStatus{
		WalletAddress:   vars["walletAddress"],
		TransactionHash: rec.Hash,
		XLDReference:    strconv.FormatInt(rec.Reference, 10),
		TransactionType: rec.Type,
		Status:          xld.SideStatus{OnChain: rec.OnChain, OffChain: rec.OffChain},
	})
}

// GetWalletHistory handles GET /transactions/wallet/{walletAddress}
func (h *Handler) GetWalletHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := wallet.Filter{
		Type:   xld.TransactionType(strings.ToUpper(q.Get("type"))),
		Status: xld.TransactionStatusState(strings.ToUpper(q.Get("status"))),
	}

	var err error
	if filter.Page, err = optionalInt(q.Get("page")); err != nil {
		respondError(w, http.StatusBadRequest, "page must be a positive integer.")
		return
	}
	if filter.Size, err = optionalInt(q.Get("size")); err != nil {
		respondError(w, http.StatusBadRequest, "size must be a positive integer.")
		return
	}
	if filter.Type != "" && !knownType(filter.Type) {
		respondError(w, http.StatusBadRequest, "Invalid transaction type.")
		return
	}
	if filter.Status != "" && h.validate.Var(string(filter.Status), "oneof=PENDING PROCESSING SUCCESS FAILED") != nil {
		respondError(w, http.StatusBadRequest, "Invalid transaction status.")
		return
	}

	page := h.ledger.History(r.Context(), mux.Vars(r)["walletAddress"], filter)
	items := make([]xld.Transaction, 0, len(page.Items))
	for _, rec := range page.Items {
		items = append(items, transactionOf(rec))
	}
	respondJSON(w, http.StatusOK, "Wallet history retrieved.", xld.WalletHistory{
		Items:       items,
		CurrentPage: page.CurrentPage,
		TotalCount:  page.TotalCount,
	})
}

// settleRequest moves a sandbox transaction forward
type settleRequest struct {
	OnChain  xld.TransactionStatusState `json:"on_chain" validate:"required,oneof=PENDING PROCESSING SUCCESS FAILED"`
	OffChain xld.TransactionStatusState `json:"off_chain" validate:"required,oneof=PENDING PROCESSING SUCCESS FAILED"`
}

// SettleTransaction handles POST /sandbox/transactions/{reference}/settle
func (h *Handler) SettleTransaction(w http.ResponseWriter, r *http.Request) {
	reference, err := strconv.ParseInt(mux.Vars(r)["reference"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid transaction reference.")
		return
	}
	var req settleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "on_chain and off_chain must be valid statuses.")
		return
	}

	rec, err := h.ledger.Settle(r.Context(), reference, req.OnChain, req.OffChain)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "Transaction updated.", xld.SideStatus{OnChain: rec.OnChain, OffChain: rec.OffChain})
}

// === Helpers ===

func (h *Handler) storeQuote(w http.ResponseWriter, r *http.Request, q wallet.Quote) (wallet.Record, bool) {
	rec, err := h.ledger.CreateQuote(r.Context(), q)
	if err != nil {
		respondLedgerError(w, err)
		return wallet.Record{}, false
	}
	event := h.logger.Debug().Int64("xld_reference", rec.Reference).Str("transaction_type", string(rec.Type))
	if claims, ok := claimsFrom(r.Context()); ok {
		event = event.Str("merchant_id", claims.MerchantID)
	}
	event.Msg("quote stored")
	return rec, true
}

func (h *Handler) checkWallet(w http.ResponseWriter, address string) bool {
	// eth_addr only checks the hex shape; mixed case must also be a valid
	// EIP-55 checksum.
	if err := h.validate.Var(address, "required,eth_addr"); err != nil || !xld.ValidChecksum(address) {
		respondError(w, http.StatusBadRequest, "source_wallet_address must be a valid wallet address.")
		return false
	}
	return true
}

func (h *Handler) checkToken(w http.ResponseWriter, symbol, chainID string) (int64, bool) {
	id, err := h.catalog.tokenOn(symbol, chainID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Token not supported on chain.")
		return 0, false
	}
	return id, true
}

func (h *Handler) quoteCrypto(chainID, symbol string, amount float64) xld.QuoteCrypto {
	return xld.QuoteCrypto{
		ChainID:     chainID,
		TokenSymbol: strings.ToUpper(symbol),
		Amount:      amount,
		Name:        h.catalog.tokenName(symbol),
	}
}

func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wallet.ErrTransactionNotFound):
		respondError(w, http.StatusNotFound, "Transaction not found.")
	case errors.Is(err, wallet.ErrAlreadyConfirmed):
		respondError(w, http.StatusConflict, "Transaction already confirmed.")
	case errors.Is(err, wallet.ErrTypeMismatch):
		respondError(w, http.StatusBadRequest, "Transaction type does not match this route.")
	case errors.Is(err, wallet.ErrInvalidHash):
		respondError(w, http.StatusBadRequest, "transaction_hash is required.")
	case errors.Is(err, wallet.ErrInvalidStatus):
		respondError(w, http.StatusConflict, "Invalid status transition.")
	case errors.Is(err, wallet.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "Amount must be positive.")
	case errors.Is(err, wallet.ErrInvalidWallet):
		respondError(w, http.StatusBadRequest, "Wallet address is required.")
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

func transactionOf(rec wallet.Record) xld.Transaction {
	return xld.Transaction{
		PaymentSource:            rec.PaymentSource,
		DestinationWalletAddress: rec.DestinationWallet,
		SourceWalletAddress:      rec.SourceWallet,
		XLDReference:             strconv.FormatInt(rec.Reference, 10),
		TransactionType:          rec.Type,
		TransactionHash:          rec.Hash,
		OnChainStatus:            rec.OnChain,
		OffChainStatus:           rec.OffChain,
		TransactionDetails: xld.TransactionDetails{
			Fiat:   rec.Fiat,
			Crypto: rec.Crypto,
			Fees:   rec.Fees,
			Total:  rec.Total,
		},
	}
}

func knownType(t xld.TransactionType) bool {
	switch t {
	case xld.TransactionTypeBuy, xld.TransactionTypeBills, xld.TransactionTypeLoad, xld.TransactionTypeCash:
		return true
	}
	return false
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func maskCard(number string) string {
	digits := strings.ReplaceAll(number, " ", "")
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}
