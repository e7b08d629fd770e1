package pipeline

import (
	"github.com/rs/zerolog"
)

// LogListener writes every call to a zerolog logger. Byte progress is
// logged at trace level only.
type LogListener struct {
	Logger zerolog.Logger
}

// Init implements Listener.
func (l LogListener) Init(threads int) {
	l.Logger.Info().Int("threads", threads).Msg("pipeline starting")
}

// ReportAllFinished implements Listener.
func (l LogListener) ReportAllFinished() {
	l.Logger.Info().Msg("pipeline finished")
}

// ReportBytesProgressed implements Listener.
func (l LogListener) ReportBytesProgressed(thread int, delta int64) {
	l.Logger.Trace().Int("thread", thread).Int64("delta", delta).Msg("progress")
}

// ReportFailure implements Listener.
func (l LogListener) ReportFailure(thread int, item, message string, cause error) {
	l.Logger.Error().Int("thread", thread).Str("item", item).Err(cause).Msg(message)
}

// ReportFinish implements Listener.
func (l LogListener) ReportFinish(thread int, item string) {
	l.Logger.Debug().Int("thread", thread).Str("item", item).Msg("finished")
}

// ReportSkip implements Listener.
func (l LogListener) ReportSkip(thread int, item, reason string) {
	l.Logger.Info().Int("thread", thread).Str("item", item).Str("reason", reason).Msg("skipped")
}

// ReportStart implements Listener.
func (l LogListener) ReportStart(thread int, item string, size int64) {
	l.Logger.Debug().Int("thread", thread).Str("item", item).Int64("size", size).Msg("started")
}

// ReportTotalItems implements Listener.
func (l LogListener) ReportTotalItems(n int) {
	l.Logger.Info().Int("items", n).Msg("items discovered")
}
