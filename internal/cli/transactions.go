package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/xld/xld-go/pkg/xld"
)

// quoteSummary is the human view shared by every quote type
type quoteSummary struct {
	reference int64
	txType    xld.TransactionType
	source    xld.PaymentSource
	total     xld.Total
	crypto    xld.QuoteCrypto
	extra     string
}

func printQuote(w io.Writer, q quoteSummary) {
	fmt.Fprintf(w, "Quote %d (%s, paid in %s)\n", q.reference, q.txType, q.source)
	fmt.Fprintf(w, "  Total:  %.2f %s\n", q.total.Amount, q.total.AmountCurrency)
	fmt.Fprintf(w, "  Crypto: %.6f %s on chain %s\n", q.crypto.Amount, q.crypto.TokenSymbol, q.crypto.ChainID)
	if q.extra != "" {
		fmt.Fprintf(w, "  %s\n", q.extra)
	}
}

// quoteCommand decodes the payload into Req, creates the quote and prints it
func quoteCommand[Req any, Resp any](
	a *app, use, short string,
	create func(*xld.Client, context.Context, *Req) (*Resp, error),
	summarize func(*Resp) quoteSummary,
) *cobra.Command {
	var payload string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req Req
			if err := readPayload(cmd, payload, &req); err != nil {
				return err
			}
			client, err := a.authedClient(cmd.Context())
			if err != nil {
				return err
			}
			quote, err := create(client, cmd.Context(), &req)
			if err != nil {
				return err
			}
			return a.print(quote, func(w io.Writer) { printQuote(w, summarize(quote)) })
		},
	}
	cmd.Flags().StringVar(&payload, "payload", "", "Quote request as JSON, @file or - for stdin")
	return cmd
}

func newCmdQuote(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Create transaction quotations",
	}
	cmd.AddCommand(
		quoteCommand(a, "buy", "Quote a token purchase paid in fiat",
			(*xld.Client).CreateBuyTokenQuote,
			func(q *xld.BuyTokenQuote) quoteSummary {
				return quoteSummary{
					reference: q.XLDReference, txType: q.TransactionType, source: q.PaymentSource,
					total: q.TransactionDetails.Total, crypto: q.TransactionDetails.Crypto,
					extra: "Pay at: " + q.Redirect,
				}
			}),
		quoteCommand(a, "pay", "Quote a bills payment paid in crypto",
			(*xld.Client).CreatePayBillsQuote,
			func(q *xld.PayBillsQuote) quoteSummary {
				return quoteSummary{
					reference: q.XLDReference, txType: q.TransactionType, source: q.PaymentSource,
					total: q.TransactionDetails.Total, crypto: q.TransactionDetails.Crypto,
					extra: "Send to: " + q.DestinationWalletAddress,
				}
			}),
		quoteCommand(a, "topup", "Quote a mobile topup paid in crypto",
			(*xld.Client).CreateTopupQuote,
			func(q *xld.TopupQuote) quoteSummary {
				return quoteSummary{
					reference: q.XLDReference, txType: q.TransactionType, source: q.PaymentSource,
					total: q.TransactionDetails.Total, crypto: q.TransactionDetails.Crypto,
					extra: "Send to: " + q.DestinationWalletAddress,
				}
			}),
		quoteCommand(a, "transfer", "Quote a cash transfer paid in crypto",
			(*xld.Client).CreateTransferQuote,
			func(q *xld.TransferQuote) quoteSummary {
				fiat := q.TransactionDetails.Fiat
				return quoteSummary{
					reference: q.XLDReference, txType: q.TransactionType, source: q.PaymentSource,
					total: q.TransactionDetails.Total, crypto: q.TransactionDetails.Crypto,
					extra: fmt.Sprintf("Recipient gets: %.2f %s", fiat.Amount, fiat.Currency),
				}
			}),
	)
	return cmd
}

type confirmFunc func(*xld.Client, context.Context, *xld.ConfirmPaymentRequest) (*xld.Confirmation, error)

var confirmations = map[string]confirmFunc{
	"buy":      (*xld.Client).ConfirmBuyTokenPayment,
	"pay":      (*xld.Client).ConfirmPayBillsPayment,
	"topup":    (*xld.Client).ConfirmTopupPayment,
	"transfer": (*xld.Client).ConfirmTransferPayment,
}

func newCmdConfirm(a *app) *cobra.Command {
	var (
		reference int64
		hash      string
	)
	cmd := &cobra.Command{
		Use:       "confirm <buy|pay|topup|transfer>",
		Short:     "Confirm the payment of a quote",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"buy", "pay", "topup", "transfer"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if reference <= 0 {
				return fmt.Errorf("--reference is required")
			}
			client, err := a.authedClient(cmd.Context())
			if err != nil {
				return err
			}
			confirm := confirmations[args[0]]
			conf, err := confirm(client, cmd.Context(), &xld.ConfirmPaymentRequest{
				XLDReference:    reference,
				TransactionHash: hash,
			})
			if err != nil {
				return err
			}
			return a.print(conf, func(w io.Writer) {
				fmt.Fprintf(w, "Payment for %d confirmed (%s)\n", conf.XLDReference, conf.TransactionType)
				if conf.TransactionHash != "" {
					fmt.Fprintf(w, "  Hash: %s\n", conf.TransactionHash)
				}
			})
		},
	}
	cmd.Flags().Int64Var(&reference, "reference", 0, "XLD reference of the quote")
	cmd.Flags().StringVar(&hash, "hash", "", "On-chain transaction hash of a crypto payment")
	return cmd
}

func newCmdStatus(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <wallet> <reference>",
		Short: "Show the status of a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid reference %q: %w", args[1], err)
			}
			client, err := a.authedClient(cmd.Context())
			if err != nil {
				return err
			}
			status, err := client.GetTransactionStatus(cmd.Context(), args[0], reference)
			if err != nil {
				return err
			}
			return a.print(status, func(w io.Writer) {
				fmt.Fprintf(w, "Transaction %s (%s)\n", status.XLDReference, status.TransactionType)
				fmt.Fprintf(w, "  On-chain:  %s\n", status.Status.OnChain)
				fmt.Fprintf(w, "  Off-chain: %s\n", status.Status.OffChain)
			})
		},
	}
}

// historyFlags filter a wallet history
type historyFlags struct {
	page   int
	size   int
	txType string
	status string
}

func (f *historyFlags) query(wallet string) (xld.WalletHistoryQuery, error) {
	q := xld.WalletHistoryQuery{
		WalletAddress: wallet,
		Page:          f.page,
		Size:          f.size,
		Type:          xld.TransactionType(strings.ToUpper(f.txType)),
		Status:        xld.TransactionStatusState(strings.ToUpper(f.status)),
	}
	v := validator.New()
	if err := v.Var(string(q.Type), "omitempty,oneof=BUY BILLS LOAD CASH"); err != nil {
		return q, fmt.Errorf("invalid --type %q", f.txType)
	}
	if err := v.Var(string(q.Status), "omitempty,oneof=PENDING PROCESSING SUCCESS FAILED"); err != nil {
		return q, fmt.Errorf("invalid --status %q", f.status)
	}
	if f.page < 0 || f.size < 0 {
		return q, fmt.Errorf("--page and --size must not be negative")
	}
	return q, nil
}

func newCmdHistory(a *app) *cobra.Command {
	f := &historyFlags{}
	cmd := &cobra.Command{
		Use:   "history <wallet>",
		Short: "List the transactions of a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := f.query(args[0])
			if err != nil {
				return err
			}
			client, err := a.authedClient(cmd.Context())
			if err != nil {
				return err
			}
			history, err := client.GetWalletHistory(cmd.Context(), query)
			if err != nil {
				return err
			}
			return a.print(history, func(w io.Writer) {
				fmt.Fprintf(w, "Page %d, %d transactions\n", history.CurrentPage, history.TotalCount)
				table(w, "REFERENCE\tTYPE\tON-CHAIN\tOFF-CHAIN\tTOTAL", func(tw *tabwriter.Writer) {
					for _, tx := range history.Items {
						total := tx.TransactionDetails.Total
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f %s\n",
							tx.XLDReference, tx.TransactionType, tx.OnChainStatus, tx.OffChainStatus, total.Amount, total.AmountCurrency)
					}
				})
			})
		},
	}
	cmd.Flags().IntVar(&f.page, "page", 0, "Page number, from 1")
	cmd.Flags().IntVar(&f.size, "size", 0, "Page size")
	cmd.Flags().StringVar(&f.txType, "type", "", "Only BUY, BILLS, LOAD or CASH transactions")
	cmd.Flags().StringVar(&f.status, "status", "", "Only transactions whose off-chain status matches")
	return cmd
}
