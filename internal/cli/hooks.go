package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks reports pipeline and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnExpandComplete(_ context.Context, parties, cards int, d time.Duration, err error) {
	h.logger.Debug("expand", "parties", parties, "cards", cards, "duration", d, "err", err)
}

func (h logHooks) OnLayoutComplete(_ context.Context, cols, rows int, rotated bool, d time.Duration, err error) {
	h.logger.Debug("layout", "columns", cols, "rows", rows, "rotated", rotated, "duration", d, "err", err)
}

func (h logHooks) OnSheetRendered(_ context.Context, side string, index, items int, d time.Duration) {
	h.logger.Debug("sheet", "side", side, "index", index+1, "cards", items, "duration", d)
}

func (h logHooks) OnAssembleComplete(_ context.Context, sheets, unresolved int, d time.Duration, err error) {
	h.logger.Debug("assemble", "sheets", sheets, "unresolved", unresolved, "duration", d, "err", err)
}

func (h logHooks) OnExportComplete(_ context.Context, format string, bytes int, d time.Duration, err error) {
	h.logger.Debug("export", "formats", format, "bytes", bytes, "duration", d, "err", err)
}

func (h logHooks) OnCacheHit(_ context.Context, kind string) {
	h.logger.Debug("cache hit", "kind", kind)
}

func (h logHooks) OnCacheMiss(_ context.Context, kind string) {
	h.logger.Debug("cache miss", "kind", kind)
}

func (h logHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.logger.Debug("cache set", "kind", kind, "bytes", size)
}

// OnRequest is a no-op; responses carry the full picture.
func (h logHooks) OnRequest(context.Context, string, string) {}

func (h logHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("request", "method", method, "route", route, "status", status, "duration", d)
}
