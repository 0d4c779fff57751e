package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xld/xld-go/pkg/xld"
)

func table(w io.Writer, header string, rows func(tw *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	tw.Flush()
}

func newCmdAuth(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Exchange the configured API keys for a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.authedClient(cmd.Context())
			if err != nil {
				return err
			}
			token, _ := client.Session().Token()
			result := map[string]interface{}{"token": token}
			if exp, ok := client.Session().TokenExpiry(); ok {
				result["expires_at"] = exp
			}
			return a.print(result, func(w io.Writer) {
				fmt.Fprintln(w, "Authenticated.")
				if exp, ok := client.Session().TokenExpiry(); ok {
					fmt.Fprintf(w, "Token expires at %s\n", exp.Format("2006-01-02 15:04:05 MST"))
				}
			})
		},
	}
}

func newCmdCountries(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List supported countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			countries, err := client.GetCountryList(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(countries, func(w io.Writer) {
				table(w, "ISO\tNAME\tCURRENCY\tCODE\tACTIVE", func(tw *tabwriter.Writer) {
					for _, c := range countries {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", c.ISO, c.Name, c.Currency, c.CountryCode, c.Active)
					}
				})
			})
		},
	}
}

func newCmdChains(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List supported blockchains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			chains, err := client.GetChainList(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(chains, func(w io.Writer) {
				table(w, "CHAIN ID\tNAME\tTYPE\tNETWORK", func(tw *tabwriter.Writer) {
					for _, c := range chains {
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ChainID, c.Name, c.ChainType, c.Network)
					}
				})
			})
		},
	}
}

func newCmdTokens(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "List supported tokens and their chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			tokens, err := client.GetTokenList(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(tokens, func(w io.Writer) {
				table(w, "SYMBOL\tNAME\tCHAIN ID\tCONTRACT", func(tw *tabwriter.Writer) {
					for _, t := range tokens {
						for _, c := range t.Chains {
							fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", t.Symbol, t.Name, c.ChainID, c.ContractAddress)
						}
					}
				})
			})
		},
	}
}

func newCmdGas(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gas [chain]",
		Short: "Show gas estimates for a chain family",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			chain := ""
			if len(args) == 1 {
				chain = args[0]
			}
			estimates, err := client.GetGasEstimate(cmd.Context(), chain)
			if err != nil {
				return err
			}
			return a.print(estimates, func(w io.Writer) {
				table(w, "NETWORK\tUP\tPRICE (TOKEN)\tPRICE (USD)", func(tw *tabwriter.Writer) {
					for _, e := range estimates {
						fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", e.Network, e.BlockchainStatus, e.PriceToken, e.PriceUSD)
					}
				})
			})
		},
	}
}

func newCmdCategories(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories <country>",
		Short: "List bills payment categories of a country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			categories, err := client.GetBillerCategories(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(categories, func(w io.Writer) {
				table(w, "CODE\tNAME\tSERVICE\tACTIVE", func(tw *tabwriter.Writer) {
					for _, c := range categories {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", c.Code, c.Name, c.Service, c.Active)
					}
				})
			})
		},
	}
}

func newCmdBillers(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "billers <country> <category>",
		Short: "List the billers of a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			billers, err := client.GetBillerList(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.print(billers, func(w io.Writer) {
				table(w, "CODE\tPRODUCT\tREQUIRED FIELDS", func(tw *tabwriter.Writer) {
					for _, b := range billers {
						var fields []string
						for _, f := range b.Fields {
							if f.IsRequired {
								fields = append(fields, f.FieldName)
							}
						}
						fmt.Fprintf(tw, "%s\t%s\t%v\n", b.Code, b.Product, fields)
					}
				})
			})
		},
	}
}

func newCmdOperators(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "operators <mobile>",
		Short: "Identify the operators serving a mobile number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			operators, err := client.GetMobileOperatorList(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(operators, func(w io.Writer) {
				table(w, "ID\tNAME\tCOUNTRY", func(tw *tabwriter.Writer) {
					for _, o := range operators {
						fmt.Fprintf(tw, "%d\t%s\t%s\n", o.ID, o.Name, o.Country)
					}
				})
			})
		},
	}
}

// productFlags select the token products are priced in
type productFlags struct {
	token string
	chain string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.token, "token", "USDT", "Token symbol to price products in")
	cmd.Flags().StringVar(&f.chain, "chain", "137", "Chain id of the token")
}

func (f *productFlags) query() xld.ProductQuery {
	return xld.ProductQuery{TokenSymbol: f.token, ChainID: f.chain}
}

func printProducts(w io.Writer, products []xld.Product) {
	table(w, "ID\tNAME\tOPERATOR\tAMOUNT\tPRICE\tTOKEN PRICE", func(tw *tabwriter.Writer) {
		for _, p := range products {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f %s\t%.2f\t%.6f %s\n",
				p.ID, p.Name, p.Operator, p.Amount, p.Currency, p.Price, p.TokenPrice, p.TokenSymbol)
		}
	})
}

func newCmdProducts(a *app) *cobra.Command {
	f := &productFlags{}
	cmd := &cobra.Command{
		Use:   "products <operator>",
		Short: "List the topup products of an operator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			products, err := client.GetProductsByOperator(cmd.Context(), args[0], f.query())
			if err != nil {
				return err
			}
			return a.print(products, func(w io.Writer) { printProducts(w, products) })
		},
	}
	f.register(cmd)
	return cmd
}

func newCmdProduct(a *app) *cobra.Command {
	f := &productFlags{}
	cmd := &cobra.Command{
		Use:   "product <id>",
		Short: "Show one topup product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			product, err := client.GetProductByID(cmd.Context(), args[0], f.query())
			if err != nil {
				return err
			}
			return a.print(product, func(w io.Writer) { printProducts(w, []xld.Product{*product}) })
		},
	}
	f.register(cmd)
	return cmd
}

func newCmdDestinations(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "destinations <country>",
		Short: "List the cash transfer destinations of a country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			destinations, err := client.GetTransferDestinationList(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(destinations, func(w io.Writer) {
				table(w, "CODE\tDESTINATION\tCOUNTRY\tACTIVE", func(tw *tabwriter.Writer) {
					for _, d := range destinations {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", d.Code, d.Destination, d.Country, d.Active)
					}
				})
			})
		},
	}
}

func newCmdPrice(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "price <from> <to>",
		Short: "Show the exchange rate between two currencies or tokens",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			price, err := client.GetPriceExchange(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.print(price, func(w io.Writer) {
				fmt.Fprintf(w, "%s %g\n", price.Pair, price.Rate)
			})
		},
	}
}
