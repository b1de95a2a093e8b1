package libevents

import (
	"github.com/stretchr/testify/mock"
)

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) WithField(string, any) Logger {
	return m
}

func (m *mockLogger) record(method string, args ...any) {
	m.MethodCalled(method, args...)
}

func (m *mockLogger) recordf(method string, format string, args []any) {
	m.MethodCalled(method, append([]any{format}, args...)...)
}

func (m *mockLogger) Debug(args ...any) { m.record("Debug", args...) }

func (m *mockLogger) Debugf(format string, args ...any) { m.recordf("Debugf", format, args) }

func (m *mockLogger) Debugln(args ...any) { m.record("Debugln", args...) }

func (m *mockLogger) Info(args ...any) { m.record("Info", args...) }

func (m *mockLogger) Infof(format string, args ...any) { m.recordf("Infof", format, args) }

func (m *mockLogger) Infoln(args ...any) { m.record("Infoln", args...) }

func (m *mockLogger) Warn(args ...any) { m.record("Warn", args...) }

func (m *mockLogger) Warnf(format string, args ...any) { m.recordf("Warnf", format, args) }

func (m *mockLogger) Warnln(args ...any) { m.record("Warnln", args...) }

func (m *mockLogger) Error(args ...any) { m.record("Error", args...) }

func (m *mockLogger) Errorf(format string, args ...any) { m.recordf("Errorf", format, args) }

func (m *mockLogger) Errorln(args ...any) { m.record("Errorln", args...) }
