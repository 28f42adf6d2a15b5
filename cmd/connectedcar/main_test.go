package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-connectedcar/arsc/arsctest"
	"github.com/jrsteele09/go-connectedcar/auth"
	"github.com/jrsteele09/go-connectedcar/certs/certstest"
	"github.com/jrsteele09/go-connectedcar/internal/config"
	"github.com/jrsteele09/go-connectedcar/internal/errors"
	"github.com/jrsteele09/go-connectedcar/sessions"
	"github.com/stretchr/testify/require"
)

func writePackage(t *testing.T, dir string) string {
	t.Helper()
	files := map[string][]byte{
		"res/raw-fr-rFR/parameters.json": []byte(`{"cvsClientId":"client-id","cvsSecret":"client-secret"}`),
		"res/raw-nl-rNL/parameters.json": []byte(`{"cvsClientId":"client-id","cvsSecret":"client-secret"}`),
		"assets/MWPMYMA1.pfx":            certstest.LegacyPFX,
		"resources.arsc": arsctest.NewPackage("com.psa.mym.myopel").
			String("HOST_BRANDID_PROD", "https://id-dcr.opel.com").
			String("HOST_PSA_API_PROD", "https://api.groupe-psa.com").
			String("nologin_siteCode", "OP_FR_ESP").
			Bytes(),
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	path := filepath.Join(dir, "myopel.apk")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

type testCLI struct {
	dir     string
	session string
	cars    string
}

func newTestCLI(t *testing.T) *testCLI {
	dir := t.TempDir()
	return &testCLI{
		dir:     dir,
		session: filepath.Join(dir, "config.yaml"),
		cars:    filepath.Join(dir, "cars.yaml"),
	}
}

func (c *testCLI) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := newApp(config.New())
	a.authOptions = []auth.ServiceOption{auth.WithHTTPClient(http.DefaultClient)}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append(args, "--session", c.session, "--cars", c.cars))
	err := root.Execute()
	return out.String(), err
}

func (c *testCLI) loadState(t *testing.T) *sessions.State {
	t.Helper()
	state, err := sessions.NewFileRepo(c.session).Load()
	require.NoError(t, err)
	return state
}

func (c *testCLI) saveState(t *testing.T, state *sessions.State) {
	t.Helper()
	require.NoError(t, sessions.NewFileRepo(c.session).Save(state))
}

func TestLocalesCommand(t *testing.T) {
	cli := newTestCLI(t)
	apkPath := writePackage(t, cli.dir)

	out, err := cli.run(t, "locales", "--apk", apkPath)
	require.NoError(t, err)
	require.Equal(t, "fr-FR\nnl-NL\n", out)

	_, err = os.Stat(cli.session)
	require.True(t, os.IsNotExist(err), "locales leaves the session alone")

	_, err = cli.run(t, "locales")
	require.Equal(t, ExitCodeInput, getExitCode(err))
}

func TestExtractCommand(t *testing.T) {
	cli := newTestCLI(t)
	apkPath := writePackage(t, cli.dir)

	out, err := cli.run(t, "extract", "--apk", apkPath, "--locale", "nl-NL")
	require.NoError(t, err)
	require.Equal(t, "com.psa.mym.myopel OP_NL_ESP (clientsB2COpel)\n", out)

	state := cli.loadState(t)
	require.Equal(t, "client-id", state.API.ClientID)
	require.Equal(t, "clientsB2COpel", state.API.Realm)
	require.Equal(t, "OP_NL_ESP", state.SiteCode)
	require.Equal(t, "OP", state.BrandCode)
	require.Equal(t, "nl-NL", state.Culture)
	require.True(t, strings.HasPrefix(state.Cert, "-----BEGIN CERTIFICATE-----"))

	t.Run("missing locale lists the choices", func(t *testing.T) {
		_, err := cli.run(t, "extract", "--apk", apkPath)
		require.Equal(t, ExitCodeInput, getExitCode(err))
		require.Contains(t, err.Error(), "fr-FR, nl-NL")
	})

	t.Run("unknown locale", func(t *testing.T) {
		_, err := cli.run(t, "extract", "--apk", apkPath, "--locale", "de-DE")
		require.ErrorIs(t, err, errors.ErrSelection)
		require.Equal(t, ExitCodeInput, getExitCode(err))
	})
}

func TestTokenAndVehiclesCommands(t *testing.T) {
	cli := newTestCLI(t)
	_, err := cli.run(t, "extract", "--apk", writePackage(t, cli.dir), "--locale", "fr-FR")
	require.NoError(t, err)

	var tokenRequests, listRequests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			tokenRequests.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "access-1", "refresh_token": "refresh-1", "token_type": "Bearer", "expires_in": 3600,
			})
		case "/connectedcar/v4/user/vehicles":
			listRequests.Add(1)
			if r.Header.Get("Authorization") != "Bearer access-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = fmt.Fprint(w, `{"total":1,"_embedded":{"vehicles":[{"id":"veh-1","vin":"W0L000000000001","brand":"Opel"}]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	state := cli.loadState(t)
	state.API.OAuthURL = server.URL + "/token"
	state.API.APIHost = server.URL
	state.SetOperator("a@example.com", "secret")
	cli.saveState(t, state)

	out, err := cli.run(t, "token")
	require.NoError(t, err)
	require.Contains(t, out, `"token_type": "Bearer"`)
	require.NotContains(t, out, "access-1")
	require.Equal(t, "refresh-1", cli.loadState(t).API.RefreshToken)

	out, err = cli.run(t, "vehicles")
	require.NoError(t, err)
	require.Contains(t, out, "W0L000000000001")
	_, err = cli.run(t, "vehicles")
	require.NoError(t, err)

	require.Equal(t, int32(1), tokenRequests.Load(), "cached token is reused across runs")
	require.Equal(t, int32(1), listRequests.Load(), "vehicle list is served from the cache")

	t.Run("status needs one selector", func(t *testing.T) {
		_, err := cli.run(t, "status")
		require.Equal(t, ExitCodeInput, getExitCode(err))
	})
}

func TestCommandsRequireExtract(t *testing.T) {
	cli := newTestCLI(t)
	for _, args := range [][]string{{"login", "--email", "a@example.com", "--password", "x"}, {"token"}, {"vehicles"}} {
		_, err := cli.run(t, args...)
		require.Equal(t, ExitCodeInput, getExitCode(err), args[0])
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitCodeSuccess},
		{"plain", fmt.Errorf("boom"), ExitCodeError},
		{"usage", usageErr("bad flag"), ExitCodeInput},
		{"no operator", fmt.Errorf("[Bootstrap]: %w", auth.NoOperatorErr), ExitCodeInput},
		{"selection", errors.New(errors.KindSelection, "apk.Extract", "unknown locale"), ExitCodeInput},
		{"authentication", errors.New(errors.KindAuthentication, "auth.RequestTicket", "rejected").WithReason(errors.ReasonRejected), ExitCodeAuthFailed},
		{"crypto", errors.New(errors.KindCrypto, "certs.Extract", "bad").WithReason(errors.ReasonWrongPassphrase), ExitCodePackage},
		{"brand", errors.New(errors.KindBrandLookup, "apk.Extract", "unknown"), ExitCodePackage},
		{"network", errors.Wrap(errors.KindNetwork, "auth.EnsureValidToken", fmt.Errorf("dial tcp")), ExitCodeNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}
