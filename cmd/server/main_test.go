package main

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFailsWhenPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TWEETS_ENV_FILE", "")
	os.Unsetenv("TWEETS_ENV_FILE")
	t.Setenv("PORT", strconv.Itoa(ln.Addr().(*net.TCPAddr).Port))
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "tweets.db"))
	t.Setenv("LOG_LEVEL", "error")

	err = run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
}
