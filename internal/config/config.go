package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mazrean/blobbackup/internal/pkg/json"
	mylog "github.com/mazrean/blobbackup/internal/pkg/log"
)

const (
	DefaultSettingsFile = "appsettings.json"

	BackendAzure = "azure"
	BackendS3    = "s3"
	BackendDisk  = "disk"

	defaultS3Endpoint = "s3.amazonaws.com"
)

var (
	ErrSourceNotFound   = errors.New("source directory does not exist")
	ErrSettingsNotFound = errors.New("app settings does not exist")
	ErrInvalidSettings  = errors.New("invalid settings")
)

// Flags are the command line arguments. Flags left empty fall back to the settings file.
type Flags struct {
	Version          kong.VersionFlag `kong:"short='v',help='Show version and exit.'"`
	Source           string           `kong:"arg,name='source-directory',help='Local directory to back up.'"`
	BlobDir          string           `kong:"arg,name='blob-storage-directory',help='Directory (object name prefix) inside the container.'"`
	SettingsFile     string           `kong:"arg,optional,name='config-file',default='appsettings.json',help='JSON settings file.'"`
	LogLevel         string           `kong:"short='l',optional,help='Log level: debug, info, warn, error or silent. Defaults to debug with VerboseLogging, info otherwise.',env='BLOBBACKUP_LOG_LEVEL'"`
	DryRun           bool             `kong:"short='n',help='Only log the deletions, uploads and tier changes a run would make.',env='BLOBBACKUP_DRY_RUN'"`
	Backend          string           `kong:"optional,help='Storage backend: azure, s3 or disk. Overrides Backend in the settings file.',env='BLOBBACKUP_BACKEND'"`
	AccessTier       string           `kong:"optional,help='Access tier applied to every object. Overrides AccessTier in the settings file.',env='BLOBBACKUP_ACCESS_TIER'"`
	ConnectionString string           `kong:"optional,help='Azure storage connection string. Overrides StorageAccountConnectionString.',env='BLOBBACKUP_CONNECTION_STRING,AZURE_STORAGE_CONNECTION_STRING'"`
}

// Settings mirrors the JSON settings file.
type Settings struct {
	StorageAccountConnectionString string       `json:"StorageAccountConnectionString"`
	ContainerName                  string       `json:"ContainerName"`
	AccessTier                     string       `json:"AccessTier"`
	VerboseLogging                 bool         `json:"VerboseLogging"`
	Backend                        string       `json:"Backend"`
	S3                             S3Settings   `json:"S3"`
	Disk                           DiskSettings `json:"Disk"`
}

type S3Settings struct {
	Endpoint        string `json:"Endpoint"`
	Region          string `json:"Region"`
	AccessKey       string `json:"AccessKey"`
	SecretAccessKey string `json:"SecretAccessKey"`
	DisableSSL      bool   `json:"DisableSSL"`
	UsePathStyle    bool   `json:"UsePathStyle"`
}

type DiskSettings struct {
	// Dir holds one subdirectory per container.
	Dir string `json:"Dir"`
}

// Config is the validated configuration of one run.
type Config struct {
	Source   string
	BlobDir  string
	DryRun   bool
	LogLevel mylog.Level
	Settings
}

type Version struct {
	Version  string
	Revision string
}

// NewParser builds the kong parser for cli, which must embed Flags.
func NewParser(cli any, version Version) (*kong.Kong, error) {
	parser, err := kong.New(cli,
		kong.Name("blobbackup"),
		kong.Description("Back up a local directory to Azure Blob Storage (or an S3 bucket) and apply an access tier to every object"),
		kong.Vars{"version": fmt.Sprintf("%s (%s)", version.Version, version.Revision)},
		kong.UsageOnError(),
	)
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}

	return parser, nil
}

// Load checks the source directory, reads the settings file and applies the flag overrides.
func Load(flags *Flags) (*Config, error) {
	info, err := os.Stat(flags.Source)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, flags.Source)
	}

	settingsFile := flags.SettingsFile
	if settingsFile == "" {
		settingsFile = DefaultSettingsFile
	}
	settings, err := ReadSettings(settingsFile)
	if err != nil {
		return nil, err
	}

	if flags.Backend != "" {
		settings.Backend = flags.Backend
	}
	if flags.AccessTier != "" {
		settings.AccessTier = flags.AccessTier
	}
	if flags.ConnectionString != "" {
		settings.StorageAccountConnectionString = flags.ConnectionString
	}

	if err := settings.validate(); err != nil {
		return nil, err
	}

	level := mylog.Info
	if settings.VerboseLogging {
		level = mylog.Debug
	}
	if flags.LogLevel != "" {
		level, err = mylog.ParseLevel(flags.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
	}

	return &Config{
		Source:   flags.Source,
		BlobDir:  flags.BlobDir,
		DryRun:   flags.DryRun,
		LogLevel: level,
		Settings: *settings,
	}, nil
}

// ReadSettings decodes the JSON settings file at path.
func ReadSettings(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSettingsNotFound, path)
		}
		return nil, fmt.Errorf("open settings: %w", err)
	}
	defer f.Close()

	settings := &Settings{}
	if err := json.NewDecoder(f).Decode(settings); err != nil {
		return nil, fmt.Errorf("decode settings %s: %w", path, err)
	}

	return settings, nil
}

func (s *Settings) validate() error {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.Backend == "" {
		s.Backend = BackendAzure
	}

	if s.ContainerName == "" {
		return fmt.Errorf("%w: ContainerName is required", ErrInvalidSettings)
	}
	if s.AccessTier == "" {
		return fmt.Errorf("%w: AccessTier is required", ErrInvalidSettings)
	}

	switch s.Backend {
	case BackendAzure:
		if s.StorageAccountConnectionString == "" {
			return fmt.Errorf("%w: StorageAccountConnectionString is required for the azure backend", ErrInvalidSettings)
		}
	case BackendS3:
		if s.S3.Endpoint == "" {
			s.S3.Endpoint = defaultS3Endpoint
		}
	case BackendDisk:
		if s.Disk.Dir == "" {
			return fmt.Errorf("%w: Disk.Dir is required for the disk backend", ErrInvalidSettings)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidSettings, s.Backend)
	}

	return nil
}
