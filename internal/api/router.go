// Package api - Router setup
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xld/xld-go/pkg/xld"
)

// SetupRouter creates and configures the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(NotFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(MethodNotAllowedHandler)

	// Apply global middleware
	r.Use(h.RecoveryMiddleware)
	r.Use(h.LoggingMiddleware)
	r.Use(h.MetricsMiddleware)

	// Operational routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods("GET")

	// API routes require a valid environment header
	api := r.NewRoute().Subrouter()
	api.Use(EnvironmentMiddleware)

	api.HandleFunc("/authenticate", h.Authenticate).Methods("POST")

	// Utilities (public)
	utilities := api.PathPrefix("/utilities").Subrouter()
	utilities.HandleFunc("/countries", h.GetCountries).Methods("GET")
	utilities.HandleFunc("/chains", h.GetChains).Methods("GET")
	utilities.HandleFunc("/tokens", h.GetTokens).Methods("GET")
	utilities.HandleFunc("/gas/{chain}", h.GetGasEstimate).Methods("GET")
	utilities.HandleFunc("/categories/{country}", h.GetBillerCategories).Methods("GET")
	utilities.HandleFunc("/categories/{country}/{category}", h.GetBillers).Methods("GET")
	utilities.HandleFunc("/operators/mobile/{mobile}", h.GetMobileOperators).Methods("GET")
	utilities.HandleFunc("/operators/product/{product_id}", h.GetProduct).Methods("POST")
	utilities.HandleFunc("/operators/{operator}", h.GetOperatorProducts).Methods("POST")
	utilities.HandleFunc("/prices/{from}/{to}", h.GetPriceExchange).Methods("GET")
	utilities.HandleFunc("/destinations/{country}", h.GetTransferDestinations).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("/transactions").Subrouter()
	protected.Use(h.AuthMiddleware)

	protected.HandleFunc("/quote/buy", h.QuoteBuyToken).Methods("POST")
	protected.HandleFunc("/quote/pay", h.QuotePayBills).Methods("POST")
	protected.HandleFunc("/quote/topup", h.QuoteTopup).Methods("POST")
	protected.HandleFunc("/quote/transfer", h.QuoteTransfer).Methods("POST")

	protected.HandleFunc("/confirm/buy", h.confirm(xld.TransactionTypeBuy)).Methods("POST")
	protected.HandleFunc("/confirm/pay", h.confirm(xld.TransactionTypeBills)).Methods("POST")
	protected.HandleFunc("/confirm/topup", h.confirm(xld.TransactionTypeLoad)).Methods("POST")
	protected.HandleFunc("/confirm/transfer", h.confirm(xld.TransactionTypeCash)).Methods("POST")

	protected.HandleFunc("/status/{walletAddress}/{reference}", h.GetTransactionStatus).Methods("GET")
	protected.HandleFunc("/wallet/{walletAddress}", h.GetWalletHistory).Methods("GET")

	// Sandbox controls
	control := api.PathPrefix("/sandbox").Subrouter()
	control.Use(h.AuthMiddleware)
	control.HandleFunc("/transactions/{reference}/settle", h.SettleTransaction).Methods("POST")

	return r
}

// NotFoundHandler handles 404 errors
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Resource not found.")
}

// MethodNotAllowedHandler handles 405 errors
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "Method not allowed.")
}
