package api

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/xld/xld-go/pkg/xld"
)

var (
	errUnknownPair  = errors.New("price pair not supported")
	errUnknownToken = errors.New("token not supported on chain")
)

// treasuryWallet receives crypto payments in the sandbox
const treasuryWallet = "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB"

// platformFeePercent is charged on the fiat amount of every quote
const platformFeePercent = 1.0

// Catalog is the reference data served by the utility routes
type Catalog struct {
	Countries    []xld.Country
	Chains       []xld.Blockchain
	Tokens       []xld.Token
	Gas          map[string][]xld.GasEstimate
	Categories   []xld.BillerCategory
	Billers      []xld.Biller
	Operators    []operatorFixture
	Products     []xld.Product
	Destinations []xld.TransferDestination
	// Rates holds the fiat price of one token unit: Rates[token][currency]
	Rates map[string]map[xld.Currency]float64
}

type operatorFixture struct {
	Operator xld.MobileOperator
	Prefixes []string
}

func strPtr(s string) *string { return &s }

// DefaultCatalog returns the built-in sandbox fixtures
func DefaultCatalog() *Catalog {
	return &Catalog{
		Countries: []xld.Country{
			{
				Name: "Philippines", ISO: "PH", Currency: xld.CurrencyPHP, Active: true, CountryCode: "+63",
				Icon:   "https://flagcdn.com/ph.svg",
				PayIn:  xld.PayIn{EWallets: true, Cards: true},
				PayOut: xld.PayOut{EWallets: true, Topup: true, BillsPayment: true, Banks: true},
			},
			{
				Name: "Thailand", ISO: "TH", Currency: xld.CurrencyTHB, Active: true, CountryCode: "+66",
				Icon:   "https://flagcdn.com/th.svg",
				PayIn:  xld.PayIn{Cards: true},
				PayOut: xld.PayOut{Topup: true, Banks: true},
			},
		},
		Chains: []xld.Blockchain{
			{ChainType: "evm", RPC: "https://polygon-rpc.com", ChainID: 137, ID: "polygon", Name: "Polygon", Network: "mainnet", CreatedAt: 1700000000},
			{ChainType: "evm", RPC: "https://cloudflare-eth.com", ChainID: 1, ID: "ethereum", Name: "Ethereum", Network: "mainnet", CreatedAt: 1700000000},
		},
		Tokens: []xld.Token{
			{
				IconSrc: "https://cdn.xld.finance/tokens/usdt.svg", CreatedAt: 1700000000, Name: "Tether USD", Symbol: "USDT",
				Chains: []xld.TokenChain{
					{ID: "polygon", Name: "Polygon", ChainID: 137, ContractAddress: "0xc2132D05D31c914a87C6611C10748AEb04B58e8F", ChainType: "evm", HandledDecimals: 2, Decimals: 6},
					{ID: "ethereum", Name: "Ethereum", ChainID: 1, ContractAddress: "0xdAC17F958D2ee523a2206206994597C13D831ec7", ChainType: "evm", HandledDecimals: 2, Decimals: 6},
				},
			},
			{
				IconSrc: "https://cdn.xld.finance/tokens/usdc.svg", CreatedAt: 1700000000, Name: "USD Coin", Symbol: "USDC",
				Chains: []xld.TokenChain{
					{ID: "polygon", Name: "Polygon", ChainID: 137, ContractAddress: "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", ChainType: "evm", HandledDecimals: 2, Decimals: 6},
				},
			},
		},
		Gas: map[string][]xld.GasEstimate{
			"evm": {
				{Network: "polygon", BlockchainStatus: true, PriceToken: "0.0021", PriceUSD: "0.0012"},
				{Network: "ethereum", BlockchainStatus: true, PriceToken: "0.00042", PriceUSD: "1.35"},
			},
		},
		Categories: []xld.BillerCategory{
			{Code: "ELEC", Active: true, Service: "bills", Name: "Electricity", Countries: []string{"PH"}},
			{Code: "WATER", Active: true, Service: "bills", Name: "Water", Countries: []string{"PH"}},
		},
		Billers: []xld.Biller{
			{
				Category: "ELEC", Product: "Meralco", Service: "bills", Country: "PH", Code: "MECOR", IsActive: true,
				Icon: "https://cdn.xld.finance/billers/meralco.svg", PartnerID: []string{"bayad"},
				Fields: []xld.BillerField{
					{FieldName: "account", FieldType: "text", IsRequired: true, Label: "Customer account number", Type: "string", Placeholder: strPtr("10 digits"), Regex: strPtr(`^\d{10}$`)},
					{FieldName: "name", FieldType: "text", IsRequired: true, Label: "Account name", Type: "string"},
				},
			},
			{
				Category: "WATER", Product: "Manila Water", Service: "bills", Country: "PH", Code: "MWCOM", IsActive: true,
				Icon: "https://cdn.xld.finance/billers/manilawater.svg", PartnerID: []string{"bayad"},
				Fields: []xld.BillerField{
					{FieldName: "account", FieldType: "text", IsRequired: true, Label: "Contract account number", Type: "string"},
				},
			},
		},
		Operators: []operatorFixture{
			{Operator: xld.MobileOperator{Country: "PH", ID: 12, Identified: true, Name: "Globe"}, Prefixes: []string{"63917", "63905", "63915"}},
			{Operator: xld.MobileOperator{Country: "PH", ID: 13, Identified: true, Name: "Smart"}, Prefixes: []string{"63918", "63919", "63908"}},
			{Operator: xld.MobileOperator{Country: "TH", ID: 21, Identified: true, Name: "AIS"}, Prefixes: []string{"6681"}},
		},
		Products: []xld.Product{
			{Name: "Globe Load 100", ID: 42, Operator: "Globe", Amount: 100, Currency: xld.CurrencyPHP, Price: 100},
			{Name: "Globe Load 300", ID: 43, Operator: "Globe", Amount: 300, Currency: xld.CurrencyPHP, Price: 300},
			{Name: "Smart Load 100", ID: 52, Operator: "Smart", Amount: 100, Currency: xld.CurrencyPHP, Price: 100},
			{Name: "AIS Refill 100", ID: 71, Operator: "AIS", Amount: 100, Currency: xld.CurrencyTHB, Price: 100},
		},
		Destinations: []xld.TransferDestination{
			{
				Destination: "BDO Unibank", Code: "BDO", Country: "PH", Active: true,
				ExtraFields: []xld.TransferDestinationField{
					{Field: "account", FieldType: "text", Required: true, Type: "string", Label: "Account number"},
					{Field: "name", FieldType: "text", Required: true, Type: "string", Label: "Account name"},
				},
			},
			{
				Destination: "GCash", Code: "GCASH", Country: "PH", Active: true,
				ExtraFields: []xld.TransferDestinationField{
					{Field: "account", FieldType: "text", Required: true, Type: "string", Label: "Mobile number", Placeholder: strPtr("09XXXXXXXXX")},
				},
			},
			{
				Destination: "Kasikornbank", Code: "KBANK", Country: "TH", Active: true,
				ExtraFields: []xld.TransferDestinationField{
					{Field: "account", FieldType: "text", Required: true, Type: "string", Label: "Account number"},
				},
			},
		},
		Rates: map[string]map[xld.Currency]float64{
			"USDT": {xld.CurrencyUSD: 1, xld.CurrencyPHP: 56.2, xld.CurrencyTHB: 35.5},
			"USDC": {xld.CurrencyUSD: 1, xld.CurrencyPHP: 56.15, xld.CurrencyTHB: 35.45},
		},
	}
}

func (c *Catalog) country(iso string) (xld.Country, bool) {
	for _, ct := range c.Countries {
		if strings.EqualFold(ct.ISO, iso) {
			return ct, true
		}
	}
	return xld.Country{}, false
}

func (c *Catalog) categoriesOf(iso string) []xld.BillerCategory {
	out := []xld.BillerCategory{}
	for _, cat := range c.Categories {
		for _, ct := range cat.Countries {
			if strings.EqualFold(ct, iso) {
				out = append(out, cat)
				break
			}
		}
	}
	return out
}

func (c *Catalog) billersOf(iso, category string) []xld.Biller {
	out := []xld.Biller{}
	for _, b := range c.Billers {
		if strings.EqualFold(b.Country, iso) && strings.EqualFold(b.Category, category) {
			out = append(out, b)
		}
	}
	return out
}

func (c *Catalog) biller(code string) (xld.Biller, bool) {
	for _, b := range c.Billers {
		if strings.EqualFold(b.Code, code) {
			return b, true
		}
	}
	return xld.Biller{}, false
}

func (c *Catalog) destinationsOf(iso string) []xld.TransferDestination {
	out := []xld.TransferDestination{}
	for _, d := range c.Destinations {
		if strings.EqualFold(d.Country, iso) {
			out = append(out, d)
		}
	}
	return out
}

func (c *Catalog) destination(code string) (xld.TransferDestination, bool) {
	for _, d := range c.Destinations {
		if strings.EqualFold(d.Code, code) {
			return d, true
		}
	}
	return xld.TransferDestination{}, false
}

// operatorsFor returns the operators whose prefixes match the digits of mobile
func (c *Catalog) operatorsFor(mobile string) []xld.MobileOperator {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, mobile)
	if digits == "" {
		return nil
	}

	var out []xld.MobileOperator
	for _, op := range c.Operators {
		for _, p := range op.Prefixes {
			if strings.HasPrefix(digits, p) {
				out = append(out, op.Operator)
				break
			}
		}
	}
	return out
}

// operator finds an operator by numeric id or name
func (c *Catalog) operator(key string) (xld.MobileOperator, bool) {
	id, idErr := strconv.ParseInt(key, 10, 64)
	for _, op := range c.Operators {
		if (idErr == nil && op.Operator.ID == id) || strings.EqualFold(op.Operator.Name, key) {
			return op.Operator, true
		}
	}
	return xld.MobileOperator{}, false
}

func (c *Catalog) product(id int64) (xld.Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return xld.Product{}, false
}

func (c *Catalog) productsOf(operator string) []xld.Product {
	out := []xld.Product{}
	for _, p := range c.Products {
		if strings.EqualFold(p.Operator, operator) {
			out = append(out, p)
		}
	}
	return out
}

// tokenOn checks that symbol is deployed on chainID
func (c *Catalog) tokenOn(symbol, chainID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chainID), 10, 64)
	if err != nil {
		return 0, errUnknownToken
	}
	for _, t := range c.Tokens {
		if !strings.EqualFold(t.Symbol, symbol) {
			continue
		}
		for _, ch := range t.Chains {
			if ch.ChainID == id {
				return id, nil
			}
		}
	}
	return 0, errUnknownToken
}

// rate returns how many units of to one unit of from is worth. Either side
// may be a token or a fiat currency.
func (c *Catalog) rate(from, to string) (float64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		if _, ok := c.Rates[from]; ok {
			return 1, nil
		}
		if c.isCurrency(from) {
			return 1, nil
		}
		return 0, errUnknownPair
	}

	if prices, ok := c.Rates[from]; ok {
		if r, ok := prices[xld.Currency(to)]; ok {
			return r, nil
		}
		if other, ok := c.Rates[to]; ok {
			return prices[xld.CurrencyUSD] / other[xld.CurrencyUSD], nil
		}
	}
	if prices, ok := c.Rates[to]; ok {
		if r, ok := prices[xld.Currency(from)]; ok && r > 0 {
			return 1 / r, nil
		}
	}
	if c.isCurrency(from) && c.isCurrency(to) {
		usdFrom, errFrom := c.rate("USDT", from)
		usdTo, errTo := c.rate("USDT", to)
		if errFrom == nil && errTo == nil && usdFrom > 0 {
			return usdTo / usdFrom, nil
		}
	}
	return 0, errUnknownPair
}

func (c *Catalog) isCurrency(code string) bool {
	for _, prices := range c.Rates {
		if _, ok := prices[xld.Currency(code)]; ok {
			return true
		}
	}
	return false
}

// pricing is the cost breakdown of a quote
type pricing struct {
	crypto float64
	fees   xld.Fees
	total  xld.Total
}

// price charges the platform fee on top of fiatAmount and converts the total
// into token units.
func (c *Catalog) price(fiatAmount float64, currency xld.Currency, token string) (pricing, error) {
	r, err := c.rate(token, string(currency))
	if err != nil || r <= 0 {
		return pricing{}, errUnknownPair
	}

	fee := round(fiatAmount*platformFeePercent/100, 2)
	total := round(fiatAmount+fee, 2)
	return pricing{
		crypto: round(total/r, 6),
		fees: xld.Fees{
			PlatformFee: xld.PlatformFee{Percentage: platformFeePercent, Amount: fee, AmountCurrency: currency},
			GasFee:      xld.GasFee{Amount: 0, AmountCurrency: currency, Waived: true},
		},
		total: xld.Total{Amount: total, AmountCurrency: currency},
	}, nil
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

func (c *Catalog) tokenName(symbol string) string {
	for _, t := range c.Tokens {
		if strings.EqualFold(t.Symbol, symbol) {
			return t.Name
		}
	}
	return ""
}
