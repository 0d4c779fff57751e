package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/xld/xld-go/pkg/xld"
)

// GetCountries handles GET /utilities/countries
func (h *Handler) GetCountries(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, "Countries retrieved.", h.catalog.Countries)
}

// GetChains handles GET /utilities/chains
func (h *Handler) GetChains(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, "Chains retrieved.", h.catalog.Chains)
}

// GetTokens handles GET /utilities/tokens
func (h *Handler) GetTokens(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, "Tokens retrieved.", h.catalog.Tokens)
}

// GetGasEstimate handles GET /utilities/gas/{chain}
func (h *Handler) GetGasEstimate(w http.ResponseWriter, r *http.Request) {
	chain := strings.ToLower(mux.Vars(r)["chain"])
	estimates, ok := h.catalog.Gas[chain]
	if !ok {
		respondError(w, http.StatusNotFound, "Chain not supported.")
		return
	}
	respondJSON(w, http.StatusOK, "Gas estimate retrieved.", estimates)
}

// GetBillerCategories handles GET /utilities/categories/{country}
func (h *Handler) GetBillerCategories(w http.ResponseWriter, r *http.Request) {
	iso := mux.Vars(r)["country"]
	if _, ok := h.catalog.country(iso); !ok {
		respondError(w, http.StatusNotFound, "Country not supported.")
		return
	}
	respondJSON(w, http.StatusOK, "Biller categories retrieved.", h.catalog.categoriesOf(iso))
}

// GetBillers handles GET /utilities/categories/{country}/{category}
func (h *Handler) GetBillers(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	iso, category := vars["country"], vars["category"]
	if _, ok := h.catalog.country(iso); !ok {
		respondError(w, http.StatusNotFound, "Country not supported.")
		return
	}

	found := false
	for _, cat := range h.catalog.categoriesOf(iso) {
		if strings.EqualFold(cat.Code, category) {
			found = true
			break
		}
	}
	if !found {
		respondError(w, http.StatusNotFound, "Biller category not found.")
		return
	}
	respondJSON(w, http.StatusOK, "Billers retrieved.", h.catalog.billersOf(iso, category))
}

// GetMobileOperators handles GET /utilities/operators/mobile/{mobile}
func (h *Handler) GetMobileOperators(w http.ResponseWriter, r *http.Request) {
	operators := h.catalog.operatorsFor(mux.Vars(r)["mobile"])
	if len(operators) == 0 {
		respondError(w, http.StatusNotFound, "Mobile operator not found.")
		return
	}
	respondJSON(w, http.StatusOK, "Mobile operators retrieved.", operators)
}

// GetPriceExchange handles GET /utilities/prices/{from}/{to}
func (h *Handler) GetPriceExchange(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	from, to := strings.ToUpper(vars["from"]), strings.ToUpper(vars["to"])
	rate, err := h.catalog.rate(from, to)
	if err != nil {
		respondError(w, http.StatusNotFound, "Price pair not supported.")
		return
	}
	respondJSON(w, http.StatusOK, "Price retrieved.", xld.PriceExchange{
		Pair: from + "/" + to,
		Rate: round(rate, 6),
	})
}

// GetProduct handles POST /utilities/operators/product/{product_id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["product_id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id.")
		return
	}
	query, ok := h.productQuery(w, r)
	if !ok {
		return
	}

	product, found := h.catalog.product(id)
	if !found {
		respondError(w, http.StatusNotFound, "Product not found.")
		return
	}
	priced, err := h.priceProduct(product, query)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Token not supported on chain.")
		return
	}
	respondJSON(w, http.StatusOK, "Product retrieved.", priced)
}

// GetOperatorProducts handles POST /utilities/operators/{operator}
func (h *Handler) GetOperatorProducts(w http.ResponseWriter, r *http.Request) {
	operator, found := h.catalog.operator(mux.Vars(r)["operator"])
	if !found {
		respondError(w, http.StatusNotFound, "Mobile operator not found.")
		return
	}
	query, ok := h.productQuery(w, r)
	if !ok {
		return
	}

	products := h.catalog.productsOf(operator.Name)
	out := make([]xld.Product, 0, len(products))
	for _, p := range products {
		priced, err := h.priceProduct(p, query)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Token not supported on chain.")
			return
		}
		out = append(out, priced)
	}
	respondJSON(w, http.StatusOK, "Products retrieved.", out)
}

// GetTransferDestinations handles GET /utilities/destinations/{country}
func (h *Handler) GetTransferDestinations(w http.ResponseWriter, r *http.Request) {
	iso := mux.Vars(r)["country"]
	if _, ok := h.catalog.country(iso); !ok {
		respondError(w, http.StatusNotFound, "Country not supported.")
		return
	}
	respondJSON(w, http.StatusOK, "Transfer destinations retrieved.", h.catalog.destinationsOf(iso))
}

func (h *Handler) productQuery(w http.ResponseWriter, r *http.Request) (xld.ProductQuery, bool) {
	var query xld.ProductQuery
	if err := decodeBody(r, &query); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return query, false
	}
	if query.TokenSymbol == "" || query.ChainID == "" {
		respondError(w, http.StatusBadRequest, "token_symbol and chain_id are required.")
		return query, false
	}
	return query, true
}

func (h *Handler) priceProduct(p xld.Product, query xld.ProductQuery) (xld.Product, error) {
	if _, err := h.catalog.tokenOn(query.TokenSymbol, query.ChainID); err != nil {
		return xld.Product{}, err
	}
	rate, err := h.catalog.rate(query.TokenSymbol, string(p.Currency))
	if err != nil {
		return xld.Product{}, err
	}
	p.TokenSymbol = strings.ToUpper(query.TokenSymbol)
	p.TokenPrice = round(p.Price/rate, 6)
	return p, nil
}
