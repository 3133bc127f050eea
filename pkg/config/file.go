package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Names of the settings a File can provide. They match the command line
// flag names so that a flag given explicitly wins over the file.
const (
	KeyHost        = "host"
	KeyFamily      = "family"
	KeyReadTimeout = "read-timeout"
	KeyVerbose     = "verbose"
	KeyLogFile     = "log"
	KeyBacklog     = "backlog"
	KeyMaxConns    = "max-conns"
	KeySlotTimeout = "slot-timeout"
)

// File is the on-disk configuration. Zero values mean "not set".
type File struct {
	Host        string        `yaml:"host"`
	Family      string        `yaml:"family"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	Verbose     bool          `yaml:"verbose"`
	LogFile     string        `yaml:"log_file"`
	Backlog     int           `yaml:"backlog"`
	MaxConns    int           `yaml:"max_conns"`
	SlotTimeout time.Duration `yaml:"slot_timeout"`
}

// LoadFile reads a YAML configuration file. Unknown keys are an error; an
// empty file sets nothing.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return &f, nil
}

// IsSet reports whether a setting was given on the command line.
type IsSet func(key string) bool

// ApplyShared copies the values set in f into c unless isSet says the
// command line already provided them.
func (f *File) ApplyShared(c *Shared, isSet IsSet) error {
	if f == nil {
		return nil
	}

	if f.Host != "" && !isSet(KeyHost) {
		c.Host = f.Host
	}
	if f.Family != "" && !isSet(KeyFamily) {
		fam, err := ParseFamily(f.Family)
		if err != nil {
			return err
		}
		c.Family = fam
	}
	if f.ReadTimeout != 0 && !isSet(KeyReadTimeout) {
		c.ReadTimeout = f.ReadTimeout
	}
	if f.Verbose && !isSet(KeyVerbose) {
		c.Verbose = true
	}
	if f.LogFile != "" && !isSet(KeyLogFile) {
		c.LogFile = f.LogFile
	}

	return nil
}

// ApplyListen is ApplyShared for the listen settings.
func (f *File) ApplyListen(c *Listen, isSet IsSet) {
	if f == nil {
		return
	}

	if f.Backlog != 0 && !isSet(KeyBacklog) {
		c.Backlog = f.Backlog
	}
	if f.MaxConns != 0 && !isSet(KeyMaxConns) {
		c.MaxConns = f.MaxConns
	}
	if f.SlotTimeout != 0 && !isSet(KeySlotTimeout) {
		c.SlotTimeout = f.SlotTimeout
	}
}
