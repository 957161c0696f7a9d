package simplecms

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink.
// Useful for production when you don't need event handling or for testing.
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// PageCreated does nothing and returns nil
func (n *NoopEventSink) PageCreated(ctx context.Context, page *Page) error {
	return nil
}

// PagePublished does nothing and returns nil
func (n *NoopEventSink) PagePublished(ctx context.Context, page *Page, language string) error {
	return nil
}

// PluginAdded does nothing and returns nil
func (n *NoopEventSink) PluginAdded(ctx context.Context, plugin *Plugin) error {
	return nil
}

// PluginsCopied does nothing and returns nil
func (n *NoopEventSink) PluginsCopied(ctx context.Context, pageID uuid.UUID, targetLanguage string, count int) error {
	return nil
}

// LoggingEventSink is an event sink that logs events but takes no other
// action. Useful for development and debugging.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates a new logging event sink
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

// PageCreated logs the page creation event
func (l *LoggingEventSink) PageCreated(ctx context.Context, page *Page) error {
	l.logger.InfoContext(ctx, "page created",
		"page_id", page.ID,
		"site_id", page.SiteID,
		"template", page.TemplateName,
		"created_by", page.CreatedBy)
	return nil
}

// PagePublished logs the page publication event
func (l *LoggingEventSink) PagePublished(ctx context.Context, page *Page, language string) error {
	l.logger.InfoContext(ctx, "page published",
		"page_id", page.ID,
		"language", language,
		"changed_by", page.ChangedBy)
	return nil
}

// PluginAdded logs the plugin placement event
func (l *LoggingEventSink) PluginAdded(ctx context.Context, plugin *Plugin) error {
	l.logger.InfoContext(ctx, "plugin added",
		"plugin_id", plugin.ID,
		"placeholder_id", plugin.PlaceholderID,
		"plugin_type", plugin.PluginType,
		"language", plugin.Language,
		"position", plugin.Position)
	return nil
}

// PluginsCopied logs the language copy event
func (l *LoggingEventSink) PluginsCopied(ctx context.Context, pageID uuid.UUID, targetLanguage string, count int) error {
	l.logger.InfoContext(ctx, "plugins copied",
		"page_id", pageID,
		"target_language", targetLanguage,
		"count", count)
	return nil
}

// NoopLocaleActivator ignores locale activation. It is the default for
// services that do not render localized output.
type NoopLocaleActivator struct{}

// Activate does nothing
func (NoopLocaleActivator) Activate(ctx context.Context, language string) {}

// LocaleActivatorFunc adapts a function to the LocaleActivator interface.
type LocaleActivatorFunc func(ctx context.Context, language string)

// Activate calls the wrapped function
func (f LocaleActivatorFunc) Activate(ctx context.Context, language string) {
	f(ctx, language)
}
