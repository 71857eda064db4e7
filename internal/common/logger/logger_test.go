// internal/common/logger/logger_test.go
package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewZapAdapter(zap.New(core)), logs
}

func TestLoggerEmitsFields(t *testing.T) {
	log, logs := newObservedLogger()

	log.Info("budget set", map[string]interface{}{"userId": "u1", "category": "food"})

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "budget set", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "u1", fields["userId"])
	assert.Equal(t, "food", fields["category"])
}

func TestWithAccumulatesContext(t *testing.T) {
	log, logs := newObservedLogger()

	child := log.With(map[string]interface{}{"component": "dialogue"})
	child.Warn("dispatch failed", map[string]interface{}{"intent": "ADD_EXPENSE"})

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "dialogue", fields["component"])
	assert.Equal(t, "ADD_EXPENSE", fields["intent"])
}

func TestWithErrorAttachesError(t *testing.T) {
	log, logs := newObservedLogger()

	log.WithError(errors.New("boom")).Error("save failed", nil)

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestNewRespectsLevel(t *testing.T) {
	l := New("error", "json")
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.ErrorLevel))
}
