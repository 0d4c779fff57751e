package xld

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// GetTransactionStatus returns the on-chain and off-chain status of one
// transaction of a wallet
func (c *Client) GetTransactionStatus(ctx context.Context, walletAddress string, reference int64) (*TransactionStatus, error) {
	return execute[TransactionStatus](ctx, c, routeTransactionStatus, call{
		pathParams: map[string]string{
			"walletAddress": walletAddress,
			"reference":     strconv.FormatInt(reference, 10),
		},
	})
}

// GetWalletHistory returns one page of a wallet's transactions
func (c *Client) GetWalletHistory(ctx context.Context, query WalletHistoryQuery) (*WalletHistory, error) {
	return execute[WalletHistory](ctx, c, routeWalletHistory, call{
		pathParams: map[string]string{"walletAddress": query.WalletAddress},
		rawQuery:   query.encode(),
	})
}

// encode emits page, size, type and status in that order. Unset filters are
// sent with empty values.
func (q WalletHistoryQuery) encode() string {
	page, size := "", ""
	if q.Page > 0 {
		page = strconv.Itoa(q.Page)
	}
	if q.Size > 0 {
		size = strconv.Itoa(q.Size)
	}

	pairs := [][2]string{
		{"page", page},
		{"size", size},
		{"type", string(q.Type)},
		{"status", string(q.Status)},
	}

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p[1]))
	}
	return b.String()
}
