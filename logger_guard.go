package libevents

// guardedLogger swallows panics raised by the wrapped sink. Logging is best-effort for the dispatcher.
type guardedLogger struct {
	inner Logger
}

func guardLogger(l Logger) Logger {
	if g, ok := l.(guardedLogger); ok {
		return g
	}
	return guardedLogger{inner: l}
}

func swallow() {
	_ = recover()
}

func (g guardedLogger) WithField(key string, value any) (l Logger) {
	l = g
	defer swallow()
	return guardLogger(g.inner.WithField(key, value))
}

func (g guardedLogger) Debug(args ...any) {
	defer swallow()
	g.inner.Debug(args...)
}

func (g guardedLogger) Debugf(format string, args ...any) {
	defer swallow()
	g.inner.Debugf(format, args...)
}

func (g guardedLogger) Debugln(args ...any) {
	defer swallow()
	g.inner.Debugln(args...)
}

func (g guardedLogger) Info(args ...any) {
	defer swallow()
	g.inner.Info(args...)
}

func (g guardedLogger) Infof(format string, args ...any) {
	defer swallow()
	g.inner.Infof(format, args...)
}

func (g guardedLogger) Infoln(args ...any) {
	defer swallow()
	g.inner.Infoln(args...)
}

func (g guardedLogger) Warn(args ...any) {
	defer swallow()
	g.inner.Warn(args...)
}

func (g guardedLogger) Warnf(format string, args ...any) {
	defer swallow()
	g.inner.Warnf(format, args...)
}

func (g guardedLogger) Warnln(args ...any) {
	defer swallow()
	g.inner.Warnln(args...)
}

func (g guardedLogger) Error(args ...any) {
	defer swallow()
	g.inner.Error(args...)
}

func (g guardedLogger) Errorf(format string, args ...any) {
	defer swallow()
	g.inner.Errorf(format, args...)
}

func (g guardedLogger) Errorln(args ...any) {
	defer swallow()
	g.inner.Errorln(args...)
}
