package cfg

import "time"

type Cfg struct {
	// Content configuration
	BooksDir    string
	DBPath      string // Empty serves captures straight from the book content directories
	DefaultView string

	// Application configuration
	Port         string
	BaseUrl      string
	SyncInterval int
	WorkerCount  int
	APIAccessKey string

	// Application metadata
	Timezone string
	Location *time.Location
	Debug    bool
	Version  string
}

// UsesIndex reports whether captures are served from the SQLite index.
func (c *Cfg) UsesIndex() bool {
	return c.DBPath != ""
}

func (c *Cfg) SyncPeriod() time.Duration {
	return time.Duration(c.SyncInterval) * time.Second
}
