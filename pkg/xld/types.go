package xld

// Currency is a fiat currency code accepted by the API
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyPHP Currency = "PHP"
	CurrencyTHB Currency = "THB"
	CurrencyMYR Currency = "MYR"
	CurrencyVND Currency = "VND"
	CurrencyBDT Currency = "BDT"
	CurrencyIDR Currency = "IDR"
	CurrencyINR Currency = "INR"
)

// PaymentSource identifies which side of a transaction funds it
type PaymentSource string

const (
	PaymentSourceCrypto PaymentSource = "CRYPTO"
	PaymentSourceFiat   PaymentSource = "FIAT"
)

// TransactionType identifies the kind of transaction
type TransactionType string

const (
	TransactionTypeBuy   TransactionType = "BUY"
	TransactionTypeBills TransactionType = "BILLS"
	TransactionTypeLoad  TransactionType = "LOAD"
	TransactionTypeCash  TransactionType = "CASH"
)

// TransactionStatusState is the progress of one side of a transaction
type TransactionStatusState string

const (
	StatusPending    TransactionStatusState = "PENDING"
	StatusProcessing TransactionStatusState = "PROCESSING"
	StatusSuccess    TransactionStatusState = "SUCCESS"
	StatusFailed     TransactionStatusState = "FAILED"
)

// Terminal reports whether no further transition is expected
func (s TransactionStatusState) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Fee and total shapes shared by every quote

// PlatformFee is the platform's share of a quoted transaction
type PlatformFee struct {
	Percentage     float64  `json:"percentage"`
	Amount         float64  `json:"amount"`
	AmountCurrency Currency `json:"amount_currency"`
	Waived         bool     `json:"waived"`
}

// GasFee is the on-chain cost of a quoted transaction
type GasFee struct {
	Amount         float64  `json:"amount"`
	AmountCurrency Currency `json:"amount_currency"`
	Waived         bool     `json:"waived"`
}

// Fees groups the platform and gas fees
type Fees struct {
	PlatformFee PlatformFee `json:"platform_fee"`
	GasFee      GasFee      `json:"gas_fee"`
}

// Total is the amount the payer is charged
type Total struct {
	Amount         float64  `json:"amount"`
	AmountCurrency Currency `json:"amount_currency"`
}

// QuoteCrypto is the crypto side of a quote
type QuoteCrypto struct {
	ChainID     string  `json:"chain_id"`
	TokenSymbol string  `json:"token_symbol"`
	Amount      float64 `json:"amount"`
	Name        string  `json:"name"`
}

// CryptoSelection picks the chain and token paying for a transaction
type CryptoSelection struct {
	ChainID     string `json:"chain_id"`
	TokenSymbol string `json:"token_symbol"`
}

// Address is the postal address attached to bills and transfers
type Address struct {
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	Country      string `json:"country"`
	Province     string `json:"province"`
	City         string `json:"city"`
	ZipCode      string `json:"zip_code"`
}

// Buy token

// Card is the payment card shown back in a buy quote
type Card struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// CardDetails is the payment card submitted with a buy quote request
type CardDetails struct {
	Name     string `json:"name"`
	Number   string `json:"number"`
	ExpMonth string `json:"exp_month"`
	ExpYear  string `json:"exp_year"`
	CVC      string `json:"cvc"`
}

// BuyTokenFiat is the fiat side of a buy token quote
type BuyTokenFiat struct {
	Type             string         `json:"type"`
	Amount           float64        `json:"amount"`
	Currency         Currency       `json:"currency"`
	ISO              string         `json:"iso"`
	AdditionalFields map[string]any `json:"additional_fields,omitempty"`
	Card             *Card          `json:"card,omitempty"`
}

// BuyTokenQuoteDetails is the pricing breakdown of a buy token quote
type BuyTokenQuoteDetails struct {
	Fiat   BuyTokenFiat `json:"fiat"`
	Crypto QuoteCrypto  `json:"crypto"`
	Fees   Fees         `json:"fees"`
	Total  Total        `json:"total"`
}

// BuyTokenQuote is the result of /transactions/quote/buy
type BuyTokenQuote struct {
	SourceWalletAddress      string               `json:"source_wallet_address,omitempty"`
	DestinationWalletAddress string               `json:"destination_wallet_address"`
	XLDReference             int64                `json:"xld_reference"`
	Callback                 string               `json:"callback"`
	Redirect                 string               `json:"redirect"`
	PaymentSource            PaymentSource        `json:"payment_source"`
	TransactionType          TransactionType      `json:"transaction_type"`
	TransactionDetails       BuyTokenQuoteDetails `json:"transaction_details"`
}

// BuyTokenFiatRequest is the fiat side of a buy token quote request
type BuyTokenFiatRequest struct {
	Type             string         `json:"type"`
	Amount           float64        `json:"amount"`
	Currency         Currency       `json:"currency"`
	ISO              string         `json:"iso"`
	Card             *CardDetails   `json:"card,omitempty"`
	AdditionalFields map[string]any `json:"additional_fields,omitempty"`
}

// CreateBuyTokenQuoteRequest is the request body for /transactions/quote/buy
type CreateBuyTokenQuoteRequest struct {
	SourceWalletAddress string              `json:"source_wallet_address"`
	TransactionType     TransactionType     `json:"transaction_type"`
	Callback            string              `json:"callback"`
	Fiat                BuyTokenFiatRequest `json:"fiat"`
	Crypto              CryptoSelection     `json:"crypto"`
}

// Pay bills

// PayBillsFiat is the fiat side of a pay bills quote
type PayBillsFiat struct {
	Amount           float64  `json:"amount"`
	Currency         Currency `json:"currency"`
	Code             string   `json:"code"`
	ISO              string   `json:"iso"`
	Account          string   `json:"account"`
	Name             string   `json:"name"`
	AdditionalFields *Address `json:"additional_fields,omitempty"`
}

// PayBillsQuoteDetails is the pricing breakdown of a pay bills quote
type PayBillsQuoteDetails struct {
	Fiat   PayBillsFiat `json:"fiat"`
	Crypto QuoteCrypto  `json:"crypto"`
	Fees   Fees         `json:"fees"`
	Total  Total        `json:"total"`
}

// PayBillsQuote is the result of /transactions/quote/pay
type PayBillsQuote struct {
	SourceWalletAddress      string               `json:"source_wallet_address"`
	DestinationWalletAddress string               `json:"destination_wallet_address"`
	XLDReference             int64                `json:"xld_reference"`
	FiatReferenceNumber      string               `json:"fiat_reference_number"`
	PaymentSource            PaymentSource        `json:"payment_source"`
	TransactionType          TransactionType      `json:"transaction_type"`
	TransactionDetails       PayBillsQuoteDetails `json:"transaction_details"`
}

// CreatePayBillsQuoteRequest is the request body for /transactions/quote/pay.
// Fiat carries amount, currency, code, iso and the biller's own fields.
type CreatePayBillsQuoteRequest struct {
	SourceWalletAddress string          `json:"source_wallet_address"`
	TransactionType     TransactionType `json:"transaction_type"`
	Fiat                map[string]any  `json:"fiat"`
	Crypto              CryptoSelection `json:"crypto"`
}

// Topup

// TopupFiat is the fiat side of a mobile topup quote
type TopupFiat struct {
	ProductID    int64    `json:"product_id"`
	MobileNumber string   `json:"mobile_number"`
	Currency     Currency `json:"currency"`
	Amount       float64  `json:"amount"`
	ISO          string   `json:"iso"`
}

// TopupQuoteDetails is the pricing breakdown of a topup quote
type TopupQuoteDetails struct {
	Fiat   TopupFiat   `json:"fiat"`
	Crypto QuoteCrypto `json:"crypto"`
	Fees   Fees        `json:"fees"`
	Total  Total       `json:"total"`
}

// TopupQuote is the result of /transactions/quote/topup
type TopupQuote struct {
	SourceWalletAddress      string            `json:"source_wallet_address"`
	DestinationWalletAddress string            `json:"destination_wallet_address"`
	XLDReference             int64             `json:"xld_reference"`
	PaymentSource            PaymentSource     `json:"payment_source"`
	TransactionType          TransactionType   `json:"transaction_type"`
	TransactionDetails       TopupQuoteDetails `json:"transaction_details"`
}

// TopupFiatRequest is the fiat side of a topup quote request
type TopupFiatRequest struct {
	ProductID    int64    `json:"product_id"`
	ISO          string   `json:"iso"`
	MobileNumber string   `json:"mobile_number"`
	Currency     Currency `json:"currency"`
}

// CreateTopupQuoteRequest is the request body for /transactions/quote/topup
type CreateTopupQuoteRequest struct {
	SourceWalletAddress string           `json:"source_wallet_address"`
	TransactionType     TransactionType  `json:"transaction_type"`
	Fiat                TopupFiatRequest `json:"fiat"`
	Crypto              CryptoSelection  `json:"crypto"`
}

// Transfer

// TransferFiat is the fiat side of a cash transfer quote
type TransferFiat struct {
	Amount           float64  `json:"amount"`
	Code             string   `json:"code"`
	Currency         Currency `json:"currency"`
	Account          string   `json:"account"`
	Name             string   `json:"name"`
	ISO              string   `json:"iso"`
	AccountType      string   `json:"account_type"`
	AdditionalFields Address  `json:"additional_fields"`
}

// TransferQuoteDetails is the pricing breakdown of a transfer quote
type TransferQuoteDetails struct {
	Fiat   TransferFiat `json:"fiat"`
	Crypto QuoteCrypto  `json:"crypto"`
	Fees   Fees         `json:"fees"`
	Total  Total        `json:"total"`
}

// TransferQuote is the result of /transactions/quote/transfer
type TransferQuote struct {
	SourceWalletAddress      string               `json:"source_wallet_address"`
	DestinationWalletAddress string               `json:"destination_wallet_address"`
	XLDReference             int64                `json:"xld_reference"`
	PaymentSource            PaymentSource        `json:"payment_source"`
	TransactionType          TransactionType      `json:"transaction_type"`
	TransactionDetails       TransferQuoteDetails `json:"transaction_details"`
}

// TransferCryptoRequest is the crypto side of a transfer quote request
type TransferCryptoRequest struct {
	Amount      float64 `json:"amount"`
	ChainID     string  `json:"chain_id"`
	TokenSymbol string  `json:"token_symbol"`
}

// CreateTransferQuoteRequest is the request body for /transactions/quote/transfer.
// Fiat carries iso, code, currency, account, name, additional_fields and
// any destination-specific extra fields.
type CreateTransferQuoteRequest struct {
	SourceWalletAddress string                `json:"source_wallet_address"`
	TransactionType     TransactionType       `json:"transaction_type"`
	Fiat                map[string]any        `json:"fiat"`
	Crypto              TransferCryptoRequest `json:"crypto"`
}

// Confirmations

// ConfirmPaymentRequest is the request body of every /transactions/confirm route
type ConfirmPaymentRequest struct {
	XLDReference    int64  `json:"xld_reference"`
	TransactionHash string `json:"transaction_hash"`
}

// Confirmation is the server record of a submitted transaction
type Confirmation struct {
	XLDReference        int64           `json:"xld_reference"`
	SourceWalletAddress string          `json:"source_wallet_address"`
	TransactionHash     string          `json:"transaction_hash,omitempty"`
	TransactionType     TransactionType `json:"transaction_type"`
}

// BuyTokenConfirmation is the result of /transactions/confirm/buy
type BuyTokenConfirmation = Confirmation

// PayBillsConfirmation is the result of /transactions/confirm/pay
type PayBillsConfirmation = Confirmation

// TopupConfirmation is the result of /transactions/confirm/topup
type TopupConfirmation = Confirmation

// TransferConfirmation is the result of /transactions/confirm/transfer
type TransferConfirmation = Confirmation

// Wallet

// SideStatus is the on-chain and off-chain progress of a transaction
type SideStatus struct {
	OnChain  TransactionStatusState `json:"on_chain"`
	OffChain TransactionStatusState `json:"off_chain"`
}

// TransactionStatus is the result of /transactions/status/{wallet}/{reference}
type TransactionStatus struct {
	WalletAddress   string          `json:"wallet_address"`
	TransactionHash string          `json:"transaction_hash"`
	XLDReference    string          `json:"xld_reference"`
	TransactionType TransactionType `json:"transaction_type"`
	Status          SideStatus      `json:"status"`
}

// TransactionCrypto is the crypto side of a historical transaction
type TransactionCrypto struct {
	ChainID     int64   `json:"chain_id"`
	TokenSymbol string  `json:"token_symbol"`
	Amount      float64 `json:"amount"`
}

// TransactionDetails is the breakdown of a historical transaction.
// Fiat differs per transaction type and is kept undecoded.
type TransactionDetails struct {
	Fiat   map[string]any    `json:"fiat"`
	Crypto TransactionCrypto `json:"crypto"`
	Fees   Fees              `json:"fees"`
	Total  Total             `json:"total"`
}

// Transaction is one row of a wallet history
type Transaction struct {
	PaymentSource            PaymentSource          `json:"payment_source"`
	DestinationWalletAddress string                 `json:"destination_wallet_address"`
	SourceWalletAddress      string                 `json:"source_wallet_address"`
	XLDReference             string                 `json:"xld_reference"`
	TransactionType          TransactionType        `json:"transaction_type"`
	TransactionHash          string                 `json:"transaction_hash,omitempty"`
	OnChainStatus            TransactionStatusState `json:"on_chain_status"`
	OffChainStatus           TransactionStatusState `json:"off_chain_status"`
	TransactionDetails       TransactionDetails     `json:"transaction_details"`
}

// WalletHistory is one page of a wallet's transactions
type WalletHistory struct {
	Items       []Transaction `json:"items"`
	CurrentPage int           `json:"current_page"`
	TotalCount  int           `json:"total_count"`
}

// Utilities

// BillerCategory is a bills payment category available in a country
type BillerCategory struct {
	Code      string   `json:"code"`
	Active    bool     `json:"active"`
	Service   string   `json:"service"`
	Name      string   `json:"name"`
	Countries []string `json:"countries"`
	Icon      *string  `json:"icon"`
}

// FieldOption is one selectable value of a dynamic form field
type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FieldOptions lists the selectable values of a dynamic form field
type FieldOptions struct {
	Values []FieldOption `json:"values"`
}

// BillerField is a form field required to pay a biller.
// Value is either a plain string or a FieldOption.
type BillerField struct {
	FieldName  string        `json:"field_name"`
	FieldType  string        `json:"field_type"`
	IsRequired bool          `json:"is_required"`
	Label      string        `json:"label"`
	Type       string        `json:"type"`
	Data       *FieldOptions `json:"data,omitempty"`
	// Placeholder is null when the biller has none
	Placeholder *string `json:"placeholder"`
	Regex       *string `json:"regex,omitempty"`
	RegexType   *string `json:"regexType,omitempty"`
	Value       any     `json:"value,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Biller is a payable biller within a category
type Biller struct {
	Category  string        `json:"category"`
	Product   string        `json:"product"`
	Service   string        `json:"service"`
	Country   string        `json:"country"`
	Code      string        `json:"code"`
	IsActive  bool          `json:"is_active"`
	Fields    []BillerField `json:"fields"`
	Icon      string        `json:"icon"`
	PartnerID []string      `json:"partner_id"`
}

// Blockchain is a supported chain
type Blockchain struct {
	ChainType string `json:"chain_type"`
	RPC       string `json:"rpc"`
	ChainID   int64  `json:"chain_id"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Network   string `json:"network"`
	CreatedAt int64  `json:"created_at"`
}

// PayIn lists the funding methods of a country
type PayIn struct {
	EWallets bool `json:"e-wallets"`
	Cards    bool `json:"cards"`
}

// PayOut lists the payout methods of a country
type PayOut struct {
	EWallets     bool `json:"e-wallets"`
	Topup        bool `json:"topup"`
	BillsPayment bool `json:"bills_payment"`
	Banks        bool `json:"banks"`
}

// Country is a supported country
type Country struct {
	Name        string   `json:"name"`
	ISO         string   `json:"iso"`
	Currency    Currency `json:"currency"`
	Active      bool     `json:"active"`
	CountryCode string   `json:"country_code"`
	Icon        string   `json:"icon"`
	PayIn       PayIn    `json:"pay-in"`
	PayOut      PayOut   `json:"pay-out"`
}

// GasEstimate is the current gas price on a network
type GasEstimate struct {
	Network          string `json:"network"`
	BlockchainStatus bool   `json:"blockchain_status"`
	PriceToken       string `json:"price_token"`
	PriceUSD         string `json:"price_usd"`
}

// MobileOperator is an operator serving a mobile number
type MobileOperator struct {
	Country    string  `json:"country"`
	ID         int64   `json:"id"`
	Identified bool    `json:"identified"`
	Name       string  `json:"name"`
	Icon       *string `json:"icon"`
}

// PriceExchange is the rate between two currencies or tokens
type PriceExchange struct {
	Pair string  `json:"pair"`
	Rate float64 `json:"rate"`
}

// Product is a topup product sold by a mobile operator
type Product struct {
	Name        string   `json:"name"`
	ID          int64    `json:"id"`
	Operator    string   `json:"operator"`
	Amount      float64  `json:"amount"`
	Currency    Currency `json:"currency"`
	Price       float64  `json:"price"`
	TokenSymbol string   `json:"token_symbol"`
	TokenPrice  float64  `json:"token_price"`
}

// TokenChain is a deployment of a token on one chain
type TokenChain struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ChainID         int64  `json:"chain_id"`
	ContractAddress string `json:"contract_address"`
	ChainType       string `json:"chain_type"`
	HandledDecimals int    `json:"handled_decimals"`
	Decimals        int    `json:"decimals"`
}

// Token is a supported token
type Token struct {
	IconSrc   string       `json:"icon_src"`
	CreatedAt int64        `json:"created_at"`
	Name      string       `json:"name"`
	Symbol    string       `json:"symbol"`
	Chains    []TokenChain `json:"chains"`
}

// TransferDestinationField is a form field required by a transfer destination
type TransferDestinationField struct {
	Field       string        `json:"field"`
	FieldType   string        `json:"field_type"`
	Required    bool          `json:"required"`
	Type        string        `json:"type"`
	Label       string        `json:"label"`
	Placeholder *string       `json:"placeholder,omitempty"`
	Regex       *string       `json:"regex,omitempty"`
	RegexType   *string       `json:"regexType,omitempty"`
	Data        *FieldOptions `json:"data,omitempty"`
	MaxLength   *int          `json:"max_length,omitempty"`
	MinLength   *int          `json:"min_length,omitempty"`
	Value       any           `json:"value,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// TransferDestination is a bank or e-wallet reachable by cash transfer
type TransferDestination struct {
	Destination string                     `json:"destination"`
	Code        string                     `json:"code"`
	Country     string                     `json:"country"`
	Active      bool                       `json:"active"`
	ExtraFields []TransferDestinationField `json:"extra_fields"`
	Icon        *string                    `json:"icon"`
}

// ProductQuery selects the token used to price products
type ProductQuery struct {
	TokenSymbol string `json:"token_symbol"`
	ChainID     string `json:"chain_id"`
}

// Credentials are the API key pair exchanged for a session token
type Credentials struct {
	Public string `json:"public" validate:"required"`
	Secret string `json:"secret" validate:"required"`
}

// WalletHistoryQuery filters /transactions/wallet/{wallet}
type WalletHistoryQuery struct {
	WalletAddress string
	Page          int
	Size          int
	Type          TransactionType
	Status        TransactionStatusState
}
