package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anoesj/directus-typescript-gen/config"
	"github.com/Anoesj/directus-typescript-gen/directus"
)

const testSpec = `{"openapi":"3.0.1","info":{"title":"Dynamic API Specification","version":"10.8.3"},"paths":{},"components":{"schemas":{"ItemsPosts":{"type":"object","properties":{"id":{"type":"integer"}},"x-collection":"posts"},"Users":{"type":"object","properties":{"id":{"type":"string"}},"x-collection":"directus_users"},"Query":{"type":"object"}}}}`

const testCollections = "export type AppCollections = {\n" +
	"  posts: components[\"schemas\"][\"ItemsPosts\"];\n" +
	"};\n\n" +
	"export type DirectusCollections = {\n" +
	"  directus_users: components[\"schemas\"][\"Users\"];\n" +
	"  undefined: components[\"schemas\"][\"Query\"];\n" +
	"};\n\n" +
	"export type Collections = DirectusCollections & AppCollections;\n"

// executeCommand runs a command and returns output and error.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

// fakeDirectus serves the login and spec endpoints and counts every request.
type fakeDirectus struct {
	*httptest.Server
	requests atomic.Int32
	token    string
}

func newFakeDirectus(t *testing.T) *fakeDirectus {
	t.Helper()
	f := &fakeDirectus{token: "test-token"}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"errors":[{"message":"Invalid user credentials.","extensions":{"code":"INVALID_CREDENTIALS"}}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":{"access_token":"` + f.token + `","expires":900000}}`))
		case "/server/specs/oas":
			if r.Header.Get("Authorization") != "Bearer "+f.token {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			_, _ = w.Write([]byte(testSpec))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func TestRootCommand_Help(t *testing.T) {
	output, err := executeCommand(NewRootCommand(), "--help")
	require.NoError(t, err)

	for _, flag := range []string{
		"--host", "--email", "--password", "--outFile", "--specOutFile", "--inFile",
		"--appTypeName", "--directusTypeName", "--allTypeName",
		"--missingCollection", "--validate", "--logLevel", "--config",
	} {
		assert.Contains(t, output, flag)
	}
}

func TestRootCommand_Version(t *testing.T) {
	output, err := executeCommand(NewRootCommand(), "--version")
	require.NoError(t, err)
	assert.Contains(t, output, Version)
}

func TestRootCommand_MissingOutFileMakesNoRequests(t *testing.T) {
	srv := newFakeDirectus(t)

	_, err := executeCommand(NewRootCommand(),
		"--host", srv.URL, "--email", "admin@example.com", "--password", "secret",
	)
	require.Error(t, err)

	var verrs config.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, err.Error(), "outFile")
	assert.Equal(t, int32(0), srv.requests.Load())
}

func TestRootCommand_MissingCredentials(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "directus.d.ts")

	_, err := executeCommand(NewRootCommand(), "--outFile", outFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host")
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "password")
	assert.NoFileExists(t, outFile)
}

func TestRootCommand_Generate(t *testing.T) {
	srv := newFakeDirectus(t)
	dir := t.TempDir()
	outFile := filepath.Join(dir, "types", "directus.d.ts")
	specFile := filepath.Join(dir, "spec.json")

	_, err := executeCommand(NewRootCommand(),
		"--host", srv.URL,
		"--email", "admin@example.com",
		"--password", "secret",
		"--outFile", outFile,
		"--specOutFile", specFile,
	)
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.requests.Load())

	out, err := os.ReadFile(outFile)
	require.NoError(t, err)
	content := string(out)
	assert.True(t, strings.HasPrefix(content, "/**\n"))
	assert.Contains(t, content, "export interface components {")
	assert.True(t, strings.HasSuffix(content, "}\n\n"+testCollections), content)

	spec, err := os.ReadFile(specFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(spec), "{\n  \"openapi\": \"3.0.1\",\n"))
	assert.JSONEq(t, testSpec, string(spec))
}

func TestRootCommand_TypeNames(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name: "typeName alias",
			args: []string{"--typeName", "MyCollections"},
			expected: []string{
				"export type MyCollections = {\n",
				"export type Collections = DirectusCollections & MyCollections;\n",
			},
		},
		{
			name: "all names",
			args: []string{"--appTypeName", "App", "--directusTypeName", "System", "--allTypeName", "Schema"},
			expected: []string{
				"export type App = {\n",
				"export type System = {\n",
				"export type Schema = System & App;\n",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newFakeDirectus(t)
			outFile := filepath.Join(t.TempDir(), "directus.d.ts")

			args := append([]string{
				"--host", srv.URL, "--email", "admin@example.com", "--password", "secret", "--outFile", outFile,
			}, tc.args...)
			_, err := executeCommand(NewRootCommand(), args...)
			require.NoError(t, err)

			out, err := os.ReadFile(outFile)
			require.NoError(t, err)
			for _, want := range tc.expected {
				assert.Contains(t, string(out), want)
			}
		})
	}
}

func TestRootCommand_InFile(t *testing.T) {
	dir := t.TempDir()
	inFile := filepath.Join(dir, "spec.json")
	outFile := filepath.Join(dir, "directus.d.ts")
	require.NoError(t, os.WriteFile(inFile, []byte(testSpec), 0o644))

	_, err := executeCommand(NewRootCommand(), "--inFile", inFile, "--outFile", outFile)
	require.NoError(t, err)

	out, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), testCollections))
}

func TestRootCommand_Environment(t *testing.T) {
	srv := newFakeDirectus(t)
	outFile := filepath.Join(t.TempDir(), "directus.d.ts")

	t.Setenv("DIRECTUS_HOST", srv.URL)
	t.Setenv("DIRECTUS_EMAIL", "admin@example.com")
	t.Setenv("DIRECTUS_PASSWORD", "secret")
	t.Setenv("DIRECTUS_OUTFILE", outFile)

	_, err := executeCommand(NewRootCommand())
	require.NoError(t, err)
	assert.FileExists(t, outFile)
}

func TestRootCommand_ConfigFile(t *testing.T) {
	srv := newFakeDirectus(t)
	dir := t.TempDir()
	outFile := filepath.Join(dir, "directus.d.ts")
	cfgFile := filepath.Join(dir, "directus-typescript-gen.yaml")
	cfg := "host: " + srv.URL + "\nemail: admin@example.com\npassword: secret\nallTypeName: Everything\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfg), 0o644))

	_, err := executeCommand(NewRootCommand(), "--config", cfgFile, "--outFile", outFile)
	require.NoError(t, err)

	out, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(out), "export type Everything = DirectusCollections & AppCollections;\n")
}

func TestRootCommand_LoginFailure(t *testing.T) {
	srv := newFakeDirectus(t)
	outFile := filepath.Join(t.TempDir(), "directus.d.ts")

	_, err := executeCommand(NewRootCommand(),
		"--host", srv.URL, "--email", "admin@example.com", "--password", "wrong", "--outFile", outFile,
	)
	require.Error(t, err)

	var apiErr *directus.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, int32(1), srv.requests.Load())
	assert.NoFileExists(t, outFile)
}

func TestRootCommand_MissingCollectionPolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  string
		wantErr bool
		check   func(t *testing.T, content string)
	}{
		{
			name:   "skip",
			policy: "skip",
			check: func(t *testing.T, content string) {
				assert.NotContains(t, content, "undefined: components")
				assert.Contains(t, content, "  directus_users: components[\"schemas\"][\"Users\"];\n")
			},
		},
		{
			name:    "error",
			policy:  "error",
			wantErr: true,
		},
		{
			name:    "unknown policy",
			policy:  "ignore",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			inFile := filepath.Join(dir, "spec.json")
			outFile := filepath.Join(dir, "directus.d.ts")
			require.NoError(t, os.WriteFile(inFile, []byte(testSpec), 0o644))

			_, err := executeCommand(NewRootCommand(),
				"--inFile", inFile, "--outFile", outFile, "--missingCollection", tc.policy,
			)
			if tc.wantErr {
				assert.Error(t, err)
				assert.NoFileExists(t, outFile)
				return
			}
			require.NoError(t, err)

			out, err := os.ReadFile(outFile)
			require.NoError(t, err)
			tc.check(t, string(out))
		})
	}
}

func TestRootCommand_RejectsArguments(t *testing.T) {
	_, err := executeCommand(NewRootCommand(), "extra")
	assert.Error(t, err)
}

func TestNormalizeFlagName(t *testing.T) {
	assert.Equal(t, "appTypeName", string(normalizeFlagName(nil, "typeName")))
	assert.Equal(t, "host", string(normalizeFlagName(nil, "host")))
}
