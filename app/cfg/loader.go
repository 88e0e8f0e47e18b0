package cfg

import (
	"cmp"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Content configuration
	BooksDir    string `long:"books-dir" env:"BOOKS_DIR" default:"./books" description:"Directory containing book configuration files"`
	DBPath      string `long:"db-path" env:"DB_PATH" description:"SQLite capture index path (optional, pages are read from disk when unset)"`
	DefaultView string `long:"default-view" env:"DEFAULT_VIEW" default:"content" description:"Site default view; other views are linked with ?view="`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for feed links (e.g., https://www.example.com)"`
	SyncInterval int    `long:"sync-interval" env:"SYNC_INTERVAL" default:"300" description:"Capture index sync interval in seconds"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for index syncs"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for feed dates (e.g., UTC, Europe/Berlin)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments, or the process arguments when args is nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.SyncInterval < 1 {
		return nil, fmt.Errorf("sync interval must be at least one second, got %d", raw.SyncInterval)
	}

	cfg := &Cfg{
		BooksDir:     raw.BooksDir,
		DBPath:       raw.DBPath,
		DefaultView:  raw.DefaultView,
		Port:         raw.Port,
		BaseUrl:      raw.BaseUrl,
		SyncInterval: raw.SyncInterval,
		WorkerCount:  raw.WorkerCount,
		APIAccessKey: raw.APIAccessKey,
		Timezone:     raw.Timezone,
		Location:     time.UTC,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if loc, err := loadLocation(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using UTC: %v\n", cfg.Timezone, err)
	} else {
		cfg.Location = loc
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func loadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(timezone)
}
