package logger

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_ChainKeepsFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Configure("debug", &buf))
	t.Cleanup(func() { _ = Configure("panic", io.Discard) })
	GetLogger().SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

	var e *Entry = GetLogger().WithError(errors.New("boom")).WithField("at", "test").WithFields(Fields{"n": 3})
	e.Debug("chained")

	out := buf.String()
	assert.Contains(t, out, "chained")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "at=test")
	assert.Contains(t, out, "n=3")
}

func TestEnabled(t *testing.T) {
	t.Cleanup(func() { _ = Configure("panic", io.Discard) })

	require.NoError(t, Configure("info", io.Discard))
	assert.False(t, GetLogger().Enabled())
	require.NoError(t, Configure("info", &bytes.Buffer{}))
	assert.True(t, GetLogger().Enabled())
}

func TestConfigure_RejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Configure("loud", nil))
}
