package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbook/medbook-ui/config"
)

func cliContext(t *testing.T, backendURL string) (*commandContext, *bytes.Buffer) {
	t.Helper()
	cfg := config.AppConfig{
		Backend: config.BackendConfig{BaseURL: backendURL},
		Auth: config.AuthConfig{
			Mode: config.AuthModeMock,
			Mock: config.MockAuthConfig{
				Users:      []string{"pat@example.com:secret:PATIENT"},
				SigningKey: "cli-test-key",
			},
		},
		Session: config.SessionConfig{
			Store: config.SessionStoreFile,
			File:  filepath.Join(t.TempDir(), "session.json"),
		},
	}
	cfg.Sanitize()

	out := &bytes.Buffer{}
	return &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: cfg,
		In:     strings.NewReader(""),
		Out:    out,
	}, out
}

func TestCLI_LoginWhoamiLogout(t *testing.T) {
	cmdCtx, out := cliContext(t, "")

	require.NoError(t, runStatus(cmdCtx, nil))
	assert.Equal(t, "Not signed in\n", out.String())

	out.Reset()
	require.NoError(t, runLogin(cmdCtx, []string{"-email", "pat@example.com", "-password", "secret"}))
	assert.Equal(t, "Signed in as pat (PATIENT)\n", out.String())

	out.Reset()
	require.NoError(t, runWhoami(cmdCtx, nil))
	assert.Contains(t, out.String(), "Email:")
	assert.Contains(t, out.String(), "pat@example.com")
	assert.Contains(t, out.String(), "authenticated")

	out.Reset()
	require.NoError(t, runLogout(cmdCtx, nil))
	assert.Equal(t, "Signed out\n", out.String())

	out.Reset()
	require.Error(t, runWhoami(cmdCtx, nil))
}

func TestCLI_LoginReadsPasswordFromInput(t *testing.T) {
	cmdCtx, out := cliContext(t, "")
	cmdCtx.In = strings.NewReader("secret\n")

	require.NoError(t, runLogin(cmdCtx, []string{"-email", "pat@example.com"}))
	assert.Contains(t, out.String(), "Password: ")
	assert.Contains(t, out.String(), "Signed in as pat")
}

func TestCLI_LoginFailureMessage(t *testing.T) {
	cmdCtx, _ := cliContext(t, "")

	err := runLogin(cmdCtx, []string{"-email", "pat@example.com", "-password", "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password.", err.Error())
}

func TestCLI_LoginRequiresEmail(t *testing.T) {
	cmdCtx, _ := cliContext(t, "")
	require.Error(t, runLogin(cmdCtx, []string{"-password", "x"}))
}

func TestCLI_Doctors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/doctors/speciality/cardiology", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":2,"firstName":"Greg","lastName":"House","speciality":"cardiology"}]`)
	}))
	t.Cleanup(srv.Close)
	cmdCtx, out := cliContext(t, srv.URL)

	require.NoError(t, runDoctors(cmdCtx, []string{"-speciality", "cardiology"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "SPECIALITY")
	assert.Contains(t, lines[1], "Greg House")
}

func TestPrintUsageListsCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))
	for name := range commands() {
		assert.Contains(t, buf.String(), name)
	}
}
