package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ksysoev/issue-fetcher/pkg/github"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapGetenv(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestRealMain_Success(t *testing.T) {
	setEnv(t, validEnv())

	server, _ := pagedAPI(t, twoIssues, "")
	output := filepath.Join(t.TempDir(), "out.json")

	var stdout, stderr bytes.Buffer

	code := realMain(t.Context(), []string{"--output", output}, &stdout, &stderr, mapGetenv(nil), github.WithBaseURL(server.URL))

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr.String())
	assert.Contains(t, stdout.String(), "Successfully fetched 2 open issues")
	assert.FileExists(t, output)
}

func TestRealMain_MissingConfigExitsWithOne(t *testing.T) {
	env := validEnv()
	delete(env, "OWNER")
	setEnv(t, env)

	server, requests := pagedAPI(t, twoIssues, "")
	output := filepath.Join(t.TempDir(), "out.json")

	var stdout, stderr bytes.Buffer

	code := realMain(t.Context(), []string{"--output", output}, &stdout, &stderr, mapGetenv(nil), github.WithBaseURL(server.URL))

	assert.Equal(t, 1, code)
	assert.Equal(t, int32(0), requests.Load())
	assert.NoFileExists(t, output)
	assert.Contains(t, stderr.String(), "Error: missing required environment variables")
	assert.NotContains(t, stderr.String(), "::error::")
}

func TestRealMain_FetchErrorExitsWithOne(t *testing.T) {
	setEnv(t, validEnv())

	server, _ := pagedAPI(t, twoIssues, "2")
	output := filepath.Join(t.TempDir(), "out.json")

	var stdout, stderr bytes.Buffer

	code := realMain(t.Context(), []string{"--output", output}, &stdout, &stderr, mapGetenv(nil), github.WithBaseURL(server.URL))

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "502 Bad Gateway")

	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}

func TestRealMain_ErrorAnnotationInActions(t *testing.T) {
	setEnv(t, map[string]string{})

	var stdout, stderr bytes.Buffer

	code := realMain(t.Context(), []string{}, &stdout, &stderr, mapGetenv(map[string]string{"GITHUB_ACTIONS": "true"}))

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "::error::Error: missing required environment variables")
}

func TestBindFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("owner", "", "")

	v := viper.New()

	require.NoError(t, bindFlags(v, flags, "owner"))
	require.NoError(t, flags.Set("owner", "octo"))
	assert.Equal(t, "octo", v.GetString("owner"))

	err := bindFlags(v, flags, "owner", "unknown")
	assert.ErrorContains(t, err, "unknown")
}
