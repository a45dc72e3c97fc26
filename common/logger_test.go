package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog(t *testing.T) {
	SetLogLevel(Debug)
	Debugf("this is a test")
	assert.True(t, DebugEnabled())
	assert.True(t, InfoEnabled())
	SetLogLevel(Info)
	assert.False(t, DebugEnabled())
	assert.True(t, InfoEnabled())
	Debugf("this is a test, no debug")
	Infof("this is a test, info")
	SetLogLevel("")
	assert.False(t, DebugEnabled())
	assert.True(t, InfoEnabled())
	Logf(Warn, "The is a test, warn")
	SetLogLevel(Error)
	assert.False(t, DebugEnabled())
	assert.False(t, InfoEnabled())
	assert.True(t, ErrorEnabled())
	Errorf("this is a test, error")
	SetLogLevel(Info)
}

func TestZapLoggerWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLoggerWithWriter(&LogConfig{Env: EnvProduction, NoCaller: true}, &buf)
	l.Debugf("hidden %d", 1)
	l.Infof("views %d", 2)
	l.Sync()
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "views 2")

	buf.Reset()
	l.SetLevel(Warn)
	l.Infof("info")
	l.Warnf("warn")
	l.Sync()
	assert.NotContains(t, buf.String(), "info")
	assert.Contains(t, buf.String(), "warn")
}
