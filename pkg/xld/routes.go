package xld

import "net/http"

// route describes one API endpoint.
type route struct {
	name   string
	method string
	path   string
	// auth routes send the session token
	auth bool
	// inspectsExpiry runs CheckTokenExpired on failure
	inspectsExpiry bool
	failure        string
}

const (
	msgConfirmFailed = "Failed to confirm payment."
	msgQuoteFailed   = "Failed to create transaction quotation."
)

var (
	routeAuthenticate = route{name: "authenticate", method: http.MethodPost, path: "/authenticate", failure: "Failed to authenticate."}

	routeConfirmBuy      = authRoute("confirm_buy", http.MethodPost, "/transactions/confirm/buy", msgConfirmFailed)
	routeConfirmPay      = authRoute("confirm_pay", http.MethodPost, "/transactions/confirm/pay", msgConfirmFailed)
	routeConfirmTopup    = authRoute("confirm_topup", http.MethodPost, "/transactions/confirm/topup", msgConfirmFailed)
	routeConfirmTransfer = authRoute("confirm_transfer", http.MethodPost, "/transactions/confirm/transfer", msgConfirmFailed)

	routeQuoteBuy      = authRoute("quote_buy", http.MethodPost, "/transactions/quote/buy", msgQuoteFailed)
	routeQuotePay      = authRoute("quote_pay", http.MethodPost, "/transactions/quote/pay", msgQuoteFailed)
	routeQuoteTopup    = authRoute("quote_topup", http.MethodPost, "/transactions/quote/topup", msgQuoteFailed)
	routeQuoteTransfer = authRoute("quote_transfer", http.MethodPost, "/transactions/quote/transfer", msgQuoteFailed)

	routeBillerCategories = route{name: "biller_categories", method: http.MethodGet, path: "/utilities/categories/{country}", failure: "Failed to retrieve biller categories."}
	routeBillerList       = route{name: "biller_list", method: http.MethodGet, path: "/utilities/categories/{country}/{category}", failure: "Failed to retrieve billers list."}
	routeChainList        = route{name: "chain_list", method: http.MethodGet, path: "/utilities/chains", failure: "Failed to retrieve chain list."}
	routeCountryList      = route{name: "country_list", method: http.MethodGet, path: "/utilities/countries", failure: "Failed to retrieve countries."}
	routeGasEstimate      = route{name: "gas_estimate", method: http.MethodGet, path: "/utilities/gas/{chain}", failure: "Failed to retrieve gas estimate."}
	routeMobileOperators  = route{name: "mobile_operators", method: http.MethodGet, path: "/utilities/operators/mobile/{mobile}", failure: "Failed to retrieve mobile operator list."}
	// The price route carries no token but still inspects failures for expiry.
	routePriceExchange        = route{name: "price_exchange", method: http.MethodGet, path: "/utilities/prices/{from}/{to}", inspectsExpiry: true, failure: "Failed to retrieve price exchange."}
	routeProductByID          = route{name: "product_by_id", method: http.MethodPost, path: "/utilities/operators/product/{product_id}", failure: "Failed to retrieve product."}
	routeProductsByOperator   = route{name: "products_by_operator", method: http.MethodPost, path: "/utilities/operators/{operator}", failure: "Failed to retrieve products."}
	routeTokenList            = route{name: "token_list", method: http.MethodGet, path: "/utilities/tokens", failure: "Failed to retrieve token list."}
	routeTransferDestinations = route{name: "transfer_destinations", method: http.MethodGet, path: "/utilities/destinations/{country}", failure: "Failed to retrieve transfer destination list."}

	routeTransactionStatus = authRoute("transaction_status", http.MethodGet, "/transactions/status/{walletAddress}/{reference}", "Failed to retrieve transaction status.")
	routeWalletHistory     = authRoute("wallet_history", http.MethodGet, "/transactions/wallet/{walletAddress}", "Failed to retrieve wallet history.")
)

func authRoute(name, method, path, failure string) route {
	return route{name: name, method: method, path: path, auth: true, inspectsExpiry: true, failure: failure}
}
