package config

import (
	"fmt"

	"github.com/tendant/simple-cms/pkg/simplecms/apphooks"
	"github.com/tendant/simple-cms/pkg/simplecms/menus"
	"github.com/tendant/simple-cms/pkg/simplecms/plugins"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithApplySchema enables creating missing cms tables on startup
func WithApplySchema(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.ApplySchema = enabled
		return nil
	}
}

// WithCurrentSite sets the site used when a request does not name one.
// The id must be a UUID; it is parsed when the service is built.
func WithCurrentSite(siteID string) Option {
	return func(c *ServerConfig) error {
		c.CurrentSiteID = siteID
		return nil
	}
}

// WithPermissions enables or disables permission checking
func WithPermissions(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.PermissionsEnabled = enabled
		return nil
	}
}

// WithEventLogging enables or disables event logging
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}

// WithRevisions enables or disables revision snapshots
func WithRevisions(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableRevisions = enabled
		return nil
	}
}

// WithAdminAPI enables or disables the admin API endpoints
func WithAdminAPI(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableAdminAPI = enabled
		return nil
	}
}

// WithTemplate declares a page template. Declaring a name again replaces
// the previous entry.
func WithTemplate(name, body string, slots ...string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			return fmt.Errorf("template name cannot be empty")
		}
		c.Templates = upsertTemplate(c.Templates, TemplateConfig{
			Name:  name,
			Body:  body,
			Slots: slots,
		})
		return nil
	}
}

// WithApphook declares an application available for page binding. A
// non-empty appName marks the apphook as namespaced.
func WithApphook(name, appName string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			return fmt.Errorf("apphook name cannot be empty")
		}
		c.Apphooks = append(c.Apphooks, apphooks.Apphook{Name: name, AppName: appName})
		return nil
	}
}

// WithPluginType declares a plugin type. Fields, when given, restrict the
// data a placed plugin may carry.
func WithPluginType(name string, fields ...plugins.Field) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			return fmt.Errorf("plugin type name cannot be empty")
		}
		c.PluginTypes = append(c.PluginTypes, plugins.Descriptor{Name: name, Fields: fields})
		return nil
	}
}

// WithMenuExtender declares a navigation extender
func WithMenuExtender(name string, enabled bool) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			return fmt.Errorf("menu extender name cannot be empty")
		}
		c.MenuExtenders = append(c.MenuExtenders, menus.Extender{Name: name, Enabled: enabled})
		return nil
	}
}

// WithDefaults is a convenience option that applies sensible defaults
// This is useful as a base before applying more specific options
func WithDefaults() Option {
	return func(c *ServerConfig) error {
		*c = defaults()
		return nil
	}
}

func upsertTemplate(configs []TemplateConfig, t TemplateConfig) []TemplateConfig {
	for i := range configs {
		if configs[i].Name == t.Name {
			configs[i] = t
			return configs
		}
	}
	return append(configs, t)
}
