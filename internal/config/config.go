// Package config loads the daemon configuration from a YAML file and
// validates it against an embedded CUE schema before handing typed
// values to the rest of the program.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

// Defaults applied to omitted database and polling settings.
const (
	DefaultDatabasePath   = "chatrelic.db"
	DefaultMaxConnections = 5
	DefaultLogTable       = "bot_log"
	DefaultTablePrefix    = "message"
	DefaultPollInterval   = 60 * time.Second
)

//go:embed schema.cue
var schemaSource string

// Config is the fully decoded daemon configuration.
type Config struct {
	Bot      Bot      `yaml:"bot"`
	Database Database `yaml:"database"`
	Debug    Debug    `yaml:"debug"`
	Rooms    []Room   `yaml:"rooms"`
}

// Bot identifies the archiving account.
type Bot struct {
	ID      int64 `yaml:"id"`
	AdminID int64 `yaml:"admin_id"`
}

// Database holds SQLite settings. Empty fields take the package
// defaults when the config is loaded.
type Database struct {
	Path             string `yaml:"path"`
	MaxConnections   int    `yaml:"max_connections"`
	LogTableName     string `yaml:"log_table_name"`
	GroupTablePrefix string `yaml:"group_table_prefix"`
}

// Debug configures the optional debug HTTP listener. An empty Listen
// disables it.
type Debug struct {
	Listen string `yaml:"listen"`
}

// Room configures one archived channel. KnownMembers maps decimal
// sender ids (quoted in YAML) to display names used when the channel
// roster cannot be queried.
type Room struct {
	ID           int64             `yaml:"id"`
	KnownMembers map[string]string `yaml:"known_members"`
	Live         *Live             `yaml:"live"`
}

// Live configures presence watching for a room's live stream.
type Live struct {
	RoomID         string   `yaml:"room_id"`
	OnlineMessage  string   `yaml:"online_message"`
	OfflineMessage string   `yaml:"offline_message"`
	PollInterval   Duration `yaml:"poll_interval"`
}

// Duration decodes YAML strings in time.ParseDuration syntax, such as
// "90s" or "2m30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads the YAML file at path, validates it, and returns the
// decoded configuration with defaults applied. CHATRELIC_DB, when set,
// overrides the database path for development shells.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if dbPath := os.Getenv("CHATRELIC_DB"); dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return cfg, nil
}

// Parse validates data against the embedded schema and decodes it.
// Schema validation runs first so errors carry YAML positions; the Go
// decode then runs strict to catch anything the schema cannot express.
func Parse(data []byte) (*Config, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func validate(data []byte) error {
	if data == nil {
		// Extract reads from disk when src is nil.
		data = []byte{}
	}
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	file, err := cueyaml.Extract("config.yaml", data)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("read config document: %w", err)
	}
	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validate config: %w", flatten(err))
	}
	return nil
}

// flatten joins every CUE error into one message so a bad config
// reports all problems in a single run.
func flatten(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) <= 1 {
		return err
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = DefaultMaxConnections
	}
	if c.Database.LogTableName == "" {
		c.Database.LogTableName = DefaultLogTable
	}
	if c.Database.GroupTablePrefix == "" {
		c.Database.GroupTablePrefix = DefaultTablePrefix
	}
	for _, room := range c.Rooms {
		if room.Live != nil && room.Live.PollInterval == 0 {
			room.Live.PollInterval = Duration(DefaultPollInterval)
		}
	}
}

// Roster converts the per-room known_members tables into a lookup of
// channel id to sender id to display name.
func (c *Config) Roster() (map[int64]map[int64]string, error) {
	roster := make(map[int64]map[int64]string, len(c.Rooms))
	for _, room := range c.Rooms {
		if len(room.KnownMembers) == 0 {
			continue
		}
		members := make(map[int64]string, len(room.KnownMembers))
		for key, name := range room.KnownMembers {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("room %d: member key %q is not a sender id", room.ID, key)
			}
			members[id] = name
		}
		roster[room.ID] = members
	}
	return roster, nil
}
