// Package xld provides a client for the XLD payments and wallet API.
//
// The API prices and settles crypto-funded payments (token purchases, bills,
// mobile topups and cash transfers) and serves the reference data needed to
// build them: countries, chains, tokens, billers, operators, products and
// exchange rates.
//
// # Sessions
//
// Every Client reads its environment and token from a Session. Without
// WithSession the process-wide DefaultSession is used. Authenticate stores
// the token; a 401 response or an "incoming token has expired" error clears
// it again.
//
// # Basic Usage
//
//	client, err := xld.NewClient("https://api.example.com",
//	    xld.WithSession(xld.NewSession(xld.EnvProduction)),
//	)
//
//	// Authenticate with the API key pair
//	token, err := client.Authenticate(ctx, xld.Credentials{Public: pub, Secret: sec})
//
//	// Price a mobile topup
//	quote, err := client.CreateTopupQuote(ctx, &xld.CreateTopupQuoteRequest{
//	    SourceWalletAddress: wallet,
//	    Fiat:   xld.TopupFiatRequest{ProductID: 42, ISO: "PH", MobileNumber: "+639171234567", Currency: xld.CurrencyPHP},
//	    Crypto: xld.CryptoSelection{ChainID: "137", TokenSymbol: "USDT"},
//	})
//
//	// Confirm it once the on-chain transfer is sent
//	conf, err := client.ConfirmTopupPayment(ctx, &xld.ConfirmPaymentRequest{
//	    XLDReference:    quote.XLDReference,
//	    TransactionHash: txHash,
//	})
//
// # Error Handling
//
// Failed calls return *APIError carrying the HTTP status and the API message:
//
//	quote, err := client.CreateTopupQuote(ctx, req)
//	if apiErr, ok := xld.AsAPIError(err); ok {
//	    switch apiErr.StatusCode {
//	    case http.StatusUnauthorized:
//	        // Session token is gone; authenticate again
//	    case http.StatusBadRequest:
//	        // Fix the request
//	    }
//	}
//
// Transport failures and context cancellation are returned as produced by
// net/http.
package xld
