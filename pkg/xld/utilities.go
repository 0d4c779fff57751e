package xld

import "context"

// DefaultGasChain is the chain family used when GetGasEstimate is given none
const DefaultGasChain = "evm"

// GetBillerCategories lists the bills payment categories of a country
func (c *Client) GetBillerCategories(ctx context.Context, country string) ([]BillerCategory, error) {
	return list[BillerCategory](ctx, c, routeBillerCategories, call{
		pathParams: map[string]string{"country": country},
	})
}

// GetBillerList lists the billers of a category in a country
func (c *Client) GetBillerList(ctx context.Context, country, category string) ([]Biller, error) {
	return list[Biller](ctx, c, routeBillerList, call{
		pathParams: map[string]string{"country": country, "category": category},
	})
}

// GetChainList lists the supported blockchains
func (c *Client) GetChainList(ctx context.Context) ([]Blockchain, error) {
	return list[Blockchain](ctx, c, routeChainList, call{})
}

// GetCountryList lists the supported countries
func (c *Client) GetCountryList(ctx context.Context) ([]Country, error) {
	return list[Country](ctx, c, routeCountryList, call{})
}

// GetGasEstimate returns gas prices for a chain family, "evm" when chain is empty
func (c *Client) GetGasEstimate(ctx context.Context, chain string) ([]GasEstimate, error) {
	if chain == "" {
		chain = DefaultGasChain
	}
	return list[GasEstimate](ctx, c, routeGasEstimate, call{
		pathParams: map[string]string{"chain": chain},
	})
}

// GetMobileOperatorList identifies the operators serving a mobile number
func (c *Client) GetMobileOperatorList(ctx context.Context, mobile string) ([]MobileOperator, error) {
	return list[MobileOperator](ctx, c, routeMobileOperators, call{
		pathParams: map[string]string{"mobile": mobile},
	})
}

// GetPriceExchange returns the rate from one currency or token to another
func (c *Client) GetPriceExchange(ctx context.Context, from, to string) (*PriceExchange, error) {
	return execute[PriceExchange](ctx, c, routePriceExchange, call{
		pathParams: map[string]string{"from": from, "to": to},
	})
}

// GetProductByID returns one topup product priced in the given token
func (c *Client) GetProductByID(ctx context.Context, productID string, query ProductQuery) (*Product, error) {
	return execute[Product](ctx, c, routeProductByID, call{
		pathParams: map[string]string{"product_id": productID},
		body:       query,
	})
}

// GetProductsByOperator lists an operator's topup products priced in the given token
func (c *Client) GetProductsByOperator(ctx context.Context, operator string, query ProductQuery) ([]Product, error) {
	return list[Product](ctx, c, routeProductsByOperator, call{
		pathParams: map[string]string{"operator": operator},
		body:       query,
	})
}

// GetTokenList lists the supported tokens and their deployments
func (c *Client) GetTokenList(ctx context.Context) ([]Token, error) {
	return list[Token](ctx, c, routeTokenList, call{})
}

// GetTransferDestinationList lists the banks and e-wallets of a country
func (c *Client) GetTransferDestinationList(ctx context.Context, country string) ([]TransferDestination, error) {
	return list[TransferDestination](ctx, c, routeTransferDestinations, call{
		pathParams: map[string]string{"country": country},
	})
}

// list is execute for routes whose data is a JSON array. An empty array is a
// successful result.
func list[T any](ctx context.Context, c *Client, rt route, in call) ([]T, error) {
	items, err := execute[[]T](ctx, c, rt, in)
	if err != nil {
		return nil, err
	}
	return *items, nil
}
