package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xld/xld-go/internal/config"
	"github.com/xld/xld-go/internal/sandbox"
	"github.com/xld/xld-go/pkg/xld"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPublic = "pk_cli"
	testSecret = "sk_cli"
	testWallet = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		config.EnvEnvironment, config.EnvBaseURL, config.EnvHTTPTimeout, config.EnvExpiryPreflight,
		config.EnvPublicKey, config.EnvSecretKey, config.EnvLogLevel, config.EnvLogFormat,
		config.EnvSandboxAddr, config.EnvSandboxSecret, config.EnvSandboxTokenTTL,
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

// startSandbox serves a sandbox and points the configuration at it
func startSandbox(t *testing.T) string {
	t.Helper()
	clearEnv(t)

	s, err := sandbox.New(sandbox.Config{
		JWTSecret: "cli-test-secret",
		TokenTTL:  time.Hour,
		HashCost:  bcrypt.MinCost,
		Merchants: []xld.Credentials{{Public: testPublic, Secret: testSecret}},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	t.Setenv(config.EnvBaseURL, srv.URL)
	t.Setenv(config.EnvPublicKey, testPublic)
	t.Setenv(config.EnvSecretKey, testSecret)
	t.Setenv(config.EnvLogLevel, "disabled")
	return srv.URL
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewCmdRoot(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	clearEnv(t)

	out, _, err := run(t, "version", "-o", "json")

	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"`+Version+`"}`, out)
}

func TestUnsupportedOutput(t *testing.T) {
	clearEnv(t)

	_, _, err := run(t, "version", "-o", "yaml")

	assert.ErrorIs(t, err, ErrUnsupportedOutput)
}

func TestInvalidEnvironmentFlag(t *testing.T) {
	clearEnv(t)

	_, _, err := run(t, "countries", "--env", "staging")

	var cfgErr *xld.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "staging", cfgErr.Value)
}

func TestMissingBaseURL(t *testing.T) {
	clearEnv(t)

	_, _, err := run(t, "countries")

	var cfgErr *xld.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.EnvBaseURL, cfgErr.Field)
}

func TestCountries(t *testing.T) {
	startSandbox(t)

	out, _, err := run(t, "countries", "-o", "json")

	require.NoError(t, err)
	var countries []xld.Country
	require.NoError(t, json.Unmarshal([]byte(out), &countries))
	assert.Len(t, countries, 2)
}

func TestCountries_HumanOutput(t *testing.T) {
	startSandbox(t)

	out, _, err := run(t, "countries")

	require.NoError(t, err)
	assert.Contains(t, out, "ISO")
	assert.Contains(t, out, "Philippines")
}

func TestBaseURLFlagOverridesConfig(t *testing.T) {
	url := startSandbox(t)
	t.Setenv(config.EnvBaseURL, "http://127.0.0.1:1")

	out, _, err := run(t, "chains", "-o", "json", "--base-url", url)

	require.NoError(t, err)
	assert.Contains(t, out, "Polygon")
}

func TestLookups(t *testing.T) {
	startSandbox(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "tokens", args: []string{"tokens"}, want: "USDT"},
		{name: "gas default chain", args: []string{"gas"}, want: "polygon"},
		{name: "categories", args: []string{"categories", "PH"}, want: "ELEC"},
		{name: "billers", args: []string{"billers", "PH", "ELEC"}, want: "MECOR"},
		{name: "operators", args: []string{"operators", "639171234567"}, want: "Globe"},
		{name: "products", args: []string{"products", "Globe"}, want: "Globe Load 300"},
		{name: "product", args: []string{"product", "52", "--token", "USDC"}, want: "Smart Load 100"},
		{name: "destinations", args: []string{"destinations", "TH"}, want: "KBANK"},
		{name: "price", args: []string{"price", "USDT", "PHP"}, want: "USDT/PHP 56.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestLookup_APIError(t *testing.T) {
	startSandbox(t)

	_, _, err := run(t, "categories", "XX")

	apiErr, ok := xld.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "Country not supported.", apiErr.Message)
}

func TestAuth(t *testing.T) {
	startSandbox(t)

	out, _, err := run(t, "auth", "-o", "json")

	require.NoError(t, err)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotEmpty(t, result["token"])
	assert.NotEmpty(t, result["expires_at"])
}

func TestAuth_MissingCredentials(t *testing.T) {
	startSandbox(t)
	os.Unsetenv(config.EnvSecretKey)

	_, _, err := run(t, "auth")

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvSecretKey)
}

func TestAuth_RejectedKeys(t *testing.T) {
	startSandbox(t)
	t.Setenv(config.EnvSecretKey, "wrong")

	_, _, err := run(t, "auth")

	apiErr, ok := xld.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestTransactionFlow(t *testing.T) {
	startSandbox(t)

	payload := `{
		"source_wallet_address": "` + testWallet + `",
		"fiat": {"amount": 1500, "currency": "PHP", "code": "MWCOM", "iso": "PH", "account": "778899"},
		"crypto": {"chain_id": "137", "token_symbol": "USDT"}
	}`
	out, _, err := run(t, "quote", "pay", "-o", "json", "--payload", payload)
	require.NoError(t, err)
	var quote xld.PayBillsQuote
	require.NoError(t, json.Unmarshal([]byte(out), &quote))
	assert.Equal(t, xld.TransactionTypeBills, quote.TransactionType)
	ref := strconv.FormatInt(quote.XLDReference, 10)

	out, _, err = run(t, "confirm", "pay", "--reference", ref, "--hash", "0xabc123")
	require.NoError(t, err)
	assert.Contains(t, out, "Payment for "+ref+" confirmed")

	out, _, err = run(t, "status", testWallet, ref, "-o", "json")
	require.NoError(t, err)
	var status xld.TransactionStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, xld.StatusProcessing, status.Status.OnChain)

	out, _, err = run(t, "history", testWallet, "--type", "bills")
	require.NoError(t, err)
	assert.Contains(t, out, ref)
	assert.Contains(t, out, "PROCESSING")
}

func TestQuote_PayloadFromFile(t *testing.T) {
	startSandbox(t)
	path := filepath.Join(t.TempDir(), "topup.json")
	payload := `{"source_wallet_address":"` + testWallet + `","fiat":{"product_id":42,"iso":"PH","mobile_number":"639171234567"},"crypto":{"chain_id":"137","token_symbol":"USDT"}}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	out, _, err := run(t, "quote", "topup", "--payload", "@"+path)

	require.NoError(t, err)
	assert.Contains(t, out, "(LOAD, paid in CRYPTO)")
	assert.Contains(t, out, "101.00 PHP")
}

func TestQuote_PayloadErrors(t *testing.T) {
	startSandbox(t)

	_, _, err := run(t, "quote", "buy")
	assert.EqualError(t, err, "--payload is required")

	_, _, err = run(t, "quote", "buy", "--payload", "{not json")
	assert.ErrorContains(t, err, "decoding payload")

	_, _, err = run(t, "quote", "buy", "--payload", "@/does/not/exist.json")
	assert.ErrorContains(t, err, "reading payload file")
}

func TestConfirm_Validation(t *testing.T) {
	startSandbox(t)

	_, _, err := run(t, "confirm", "swap", "--reference", "1")
	assert.Error(t, err)

	_, _, err = run(t, "confirm", "buy")
	assert.EqualError(t, err, "--reference is required")
}

func TestHistory_InvalidFilters(t *testing.T) {
	clearEnv(t)

	_, _, err := run(t, "history", testWallet, "--type", "swap")
	assert.ErrorContains(t, err, "invalid --type")

	_, _, err = run(t, "history", testWallet, "--status", "done")
	assert.ErrorContains(t, err, "invalid --status")
}

func TestMetricsFlag(t *testing.T) {
	startSandbox(t)

	_, errOut, err := run(t, "countries", "--metrics")

	require.NoError(t, err)
	assert.Contains(t, errOut, `xld_client_requests_total{route="country_list",status="200"} 1`)
	assert.Contains(t, errOut, `xld_client_request_duration_seconds{route="country_list"} count=1`)
}

func TestReadPayload_Stdin(t *testing.T) {
	cmd := NewCmdRoot(&bytes.Buffer{}, &bytes.Buffer{})
	cmd.SetIn(strings.NewReader(`{"xld_reference": 7, "transaction_hash": "0x1"}`))

	var req xld.ConfirmPaymentRequest
	require.NoError(t, readPayload(cmd, "-", &req))

	assert.Equal(t, xld.ConfirmPaymentRequest{XLDReference: 7, TransactionHash: "0x1"}, req)
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, OutputJSON, xld.NewAPIError("Failed to confirm payment.", 500))
	assert.JSONEq(t, `{"error":"Failed to confirm payment.","status_code":500}`, buf.String())

	buf.Reset()
	printError(&buf, OutputJSON, errors.New("boom"))
	assert.JSONEq(t, `{"error":"boom"}`, buf.String())

	buf.Reset()
	printError(&buf, OutputHuman, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}
