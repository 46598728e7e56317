package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscan/internal/logger"
)

func TestConfigure_JSONCarriesComponent(t *testing.T) {
	l := logger.New()
	require.NoError(t, l.Configure("debug", "json", "stdout", 0))

	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.WithComponent("ingest.Scheduler").WithField("chunk", 1).WithError(errors.New("boom")).Warn("chunk failed")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ingest.Scheduler", line["component"])
	assert.Equal(t, "chunk failed", line["message"])
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "boom", line["error"])
	assert.EqualValues(t, 1, line["chunk"])
}

func TestConfigure_Level(t *testing.T) {
	l := logger.New()
	require.NoError(t, l.Configure("WARN", "text", "stderr", 0))
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
}

func TestConfigure_Invalid(t *testing.T) {
	l := logger.New()
	assert.Error(t, l.Configure("loud", "text", "stdout", 0))
	assert.Error(t, l.Configure("info", "xml", "stdout", 0))
}

func TestConfigure_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folioscan.log")
	l := logger.New()
	require.NoError(t, l.Configure("info", "text", path, 3))
	l.WithComponent("test").Info("written")
}
