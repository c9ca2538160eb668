package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace/internal/logger"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	assert.Equal(t, Entry{}, r.Last())

	Success(&r, "saved")
	Error(&r, "failed")
	Info(nil, "dropped")

	assert.Equal(t, []Entry{{LevelSuccess, "saved"}, {LevelError, "failed"}}, r.Entries())
	assert.Equal(t, Entry{LevelError, "failed"}, r.Last())

	r.Reset()
	assert.Empty(t, r.Entries())
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "notify-test", false)
	t.Cleanup(func() { logger.Init("marketplace", false) })

	Error(Log{}, "shop rejected")
	assert.Contains(t, buf.String(), "shop rejected")
}
