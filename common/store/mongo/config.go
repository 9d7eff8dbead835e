package mongo

type ClientConfig struct {
	URI      string `kdl:"uri"`
	Username string `kdl:"username"`
	Password string `kdl:"password"`
}

type Config struct {
	ClientConfig
	Database   string `kdl:"database"`
	Collection string `kdl:"collection"`
}

const (
	DefaultDatabase   = "dict-attack"
	DefaultCollection = "runs"
)

// Enabled reports whether a MongoDB URI is configured.
func (c *Config) Enabled() bool {
	return c != nil && c.URI != ""
}

func (c *Config) databaseName() string {
	if c.Database == "" {
		return DefaultDatabase
	}
	return c.Database
}

func (c *Config) collectionName() string {
	if c.Collection == "" {
		return DefaultCollection
	}
	return c.Collection
}
