package xld

import "context"

// CreateBuyTokenQuote prices buying tokens with fiat
func (c *Client) CreateBuyTokenQuote(ctx context.Context, req *CreateBuyTokenQuoteRequest) (*BuyTokenQuote, error) {
	if req != nil && req.TransactionType == "" {
		r := *req
		r.TransactionType = TransactionTypeBuy
		req = &r
	}
	return execute[BuyTokenQuote](ctx, c, routeQuoteBuy, call{body: payloadOf(req)})
}

// CreatePayBillsQuote prices paying a bill with crypto
func (c *Client) CreatePayBillsQuote(ctx context.Context, req *CreatePayBillsQuoteRequest) (*PayBillsQuote, error) {
	if req != nil && req.TransactionType == "" {
		r := *req
		r.TransactionType = TransactionTypeBills
		req = &r
	}
	return execute[PayBillsQuote](ctx, c, routeQuotePay, call{body: payloadOf(req)})
}

// CreateTopupQuote prices a mobile topup paid with crypto
func (c *Client) CreateTopupQuote(ctx context.Context, req *CreateTopupQuoteRequest) (*TopupQuote, error) {
	if req != nil && req.TransactionType == "" {
		r := *req
		r.TransactionType = TransactionTypeLoad
		req = &r
	}
	return execute[TopupQuote](ctx, c, routeQuoteTopup, call{body: payloadOf(req)})
}

// CreateTransferQuote prices a cash transfer paid with crypto
func (c *Client) CreateTransferQuote(ctx context.Context, req *CreateTransferQuoteRequest) (*TransferQuote, error) {
	if req != nil && req.TransactionType == "" {
		r := *req
		r.TransactionType = TransactionTypeCash
		req = &r
	}
	return execute[TransferQuote](ctx, c, routeQuoteTransfer, call{body: payloadOf(req)})
}

// ConfirmBuyTokenPayment submits the payment of a buy token quote
func (c *Client) ConfirmBuyTokenPayment(ctx context.Context, req *ConfirmPaymentRequest) (*BuyTokenConfirmation, error) {
	return execute[BuyTokenConfirmation](ctx, c, routeConfirmBuy, call{body: payloadOf(req)})
}

// ConfirmPayBillsPayment submits the on-chain payment of a pay bills quote
func (c *Client) ConfirmPayBillsPayment(ctx context.Context, req *ConfirmPaymentRequest) (*PayBillsConfirmation, error) {
	return execute[PayBillsConfirmation](ctx, c, routeConfirmPay, call{body: payloadOf(req)})
}

// ConfirmTopupPayment submits the on-chain payment of a topup quote
func (c *Client) ConfirmTopupPayment(ctx context.Context, req *ConfirmPaymentRequest) (*TopupConfirmation, error) {
	return execute[TopupConfirmation](ctx, c, routeConfirmTopup, call{body: payloadOf(req)})
}

// ConfirmTransferPayment submits the on-chain payment of a transfer quote
func (c *Client) ConfirmTransferPayment(ctx context.Context, req *ConfirmPaymentRequest) (*TransferConfirmation, error) {
	return execute[TransferConfirmation](ctx, c, routeConfirmTransfer, call{body: payloadOf(req)})
}

// payloadOf sends an empty JSON object for a nil request, as the API expects
// a body on every POST route.
func payloadOf[T any](req *T) any {
	if req == nil {
		return struct{}{}
	}
	return req
}
