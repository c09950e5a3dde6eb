package driven

// ConfigStore provides access to application configuration. Keys are
// dot-separated (e.g. "feed.url", "sync.retention_months"); implementations
// handle persistence and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value; empty when the key is absent
	// or holds a different type.
	GetString(key string) string

	// GetInt retrieves an integer value; zero when the key is absent or
	// holds a different type.
	GetInt(key string) int

	// GetBool retrieves a boolean value; false when the key is absent or
	// holds a different type.
	GetBool(key string) bool

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
