package logging

import (
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, GetLevel("debug"))
	assert.Equal(t, log.WarnLevel, GetLevel("WARN"))
	assert.Equal(t, log.TraceLevel, GetLevel(" trace "))
	assert.Equal(t, log.InfoLevel, GetLevel("nonsense"))
	assert.Equal(t, log.InfoLevel, GetLevel(""))
}

func TestSentryHook(t *testing.T) {
	hook := NewSentryHook([]log.Level{log.ErrorLevel})
	assert.Equal(t, []log.Level{log.ErrorLevel}, hook.Levels())

	entry := log.WithField("err", errors.New("boom"))
	entry.Level = log.ErrorLevel
	entry.Message = "remote store down"
	// no client bound to the hub, capture is a no-op
	assert.NoError(t, hook.Fire(entry))
}
