package config

import (
	"errors"
	"os"
	"path/filepath"

	vfs "github.com/mwantia/rtvfs"
	"github.com/mwantia/rtvfs/backend/lfs"
	"github.com/mwantia/rtvfs/backend/ramfs"
	"github.com/mwantia/rtvfs/data"
	"github.com/mwantia/rtvfs/flash"
	"github.com/mwantia/rtvfs/log"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const ConfigFileName = "rtvfs.yaml"

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
	JSON  bool   `yaml:"json"`
}

// FlashConfig describes the simulated flash chip. Without an image the
// flash only lives in memory.
type FlashConfig struct {
	Image      string      `yaml:"image,omitempty"`
	Size       uint32      `yaml:"size"`
	Partitions flash.Table `yaml:"partitions"`
}

type RAMConfig struct {
	Size      int64 `yaml:"size"`
	BlockSize int64 `yaml:"block_size"`
}

type TTYConfig struct {
	Units int  `yaml:"units"`
	CRLF  bool `yaml:"crlf"`
}

type ROMConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

type Config struct {
	Log            LogConfig        `yaml:"log"`
	Flash          FlashConfig      `yaml:"flash"`
	LFS            lfs.Geometry     `yaml:"lfs"`
	RAM            RAMConfig        `yaml:"ramfs"`
	TTY            TTYConfig        `yaml:"tty"`
	ROM            ROMConfig        `yaml:"romfs"`
	Mounts         []vfs.MountPoint `yaml:"mounts"`
	MaxDescriptors int              `yaml:"max_descriptors"`
}

// Default returns the configuration used when no file is given: 4 MiB of
// in-memory flash with a 1 MiB filesystem partition.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Flash: FlashConfig{
			Size: 0x400000,
			Partitions: flash.Table{
				{Type: flash.TypeApp, Subtype: 0x00, Label: "factory", Address: 0x10000, Size: 0x2f0000},
				{Type: flash.TypeData, Subtype: flash.SubtypeLFS, Label: "filesys", Address: 0x300000, Size: 0x100000},
			},
		},
		LFS: lfs.DefaultGeometry(),
		RAM: RAMConfig{
			Size:      ramfs.DefaultSize,
			BlockSize: ramfs.DefaultBlockSize,
		},
		TTY: TTYConfig{
			Units: 3,
			CRLF:  true,
		},
		MaxDescriptors: 64,
	}
}

// Load reads configPath, or ConfigFileName inside of it when configPath is a
// directory. Keys missing from the file keep their default.
func Load(configPath string) (*Config, error) {
	if info, err := os.Stat(configPath); err == nil && info.IsDir() {
		configPath = filepath.Join(configPath, ConfigFileName)
	}

	buf, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no backend could be created with.
func (c *Config) Validate() error {
	if _, err := log.Parse(c.Log.Level); err != nil {
		return err
	}
	if c.Flash.Size == 0 || c.Flash.Size%flash.SectorSize != 0 {
		return data.EINVAL
	}
	for _, p := range c.Flash.Partitions {
		if uint64(p.Address)+uint64(p.Size) > uint64(c.Flash.Size) {
			return data.EINVAL
		}
	}
	if c.RAM.BlockSize <= 0 || c.RAM.Size < c.RAM.BlockSize {
		return data.EINVAL
	}
	if c.TTY.Units <= 0 || c.MaxDescriptors <= 0 {
		return data.EINVAL
	}
	return nil
}

func (c *Config) LogLevel() log.LogLevel {
	level, _ := log.Parse(c.Log.Level)
	return level
}

// MountTable builds the mount table from the configured rows, falling back
// to the default table when none are given.
func (c *Config) MountTable() (*vfs.MountTable, error) {
	if len(c.Mounts) == 0 {
		return vfs.DefaultMountTable(), nil
	}

	rows := make([]vfs.MountPoint, len(c.Mounts))
	for i, row := range c.Mounts {
		row.Mounted = false
		rows[i] = row
	}
	return vfs.NewMountTable(rows...)
}
