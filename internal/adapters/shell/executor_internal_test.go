package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEnvironment(t *testing.T) {
	sysEnv := []string{"PATH=/usr/bin", "HOME=/home/dev", "MALFORMED"}
	extra := map[string]string{"NODE_ENV": "test", "HOME": "/tmp/home"}

	got := resolveEnvironment(sysEnv, extra)

	assert.Equal(t, []string{
		"HOME=/tmp/home",
		"NODE_ENV=test",
		"PATH=/usr/bin",
	}, got)
}

func TestLogWriter_NilLogger(t *testing.T) {
	w := &logWriter{}

	n, err := w.Write([]byte("dropped\npartial"))
	assert.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.NoError(t, w.Close())
	assert.Empty(t, w.buf)
}
