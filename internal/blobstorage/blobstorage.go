// Package blobstorage stores tails files. Blobs are content addressed:
// a finished blob is named after the hex SHA-256 of its contents and is
// verified against that name when it is opened.
package blobstorage

import (
	"log/slog"
	"path/filepath"

	"indy/internal/command"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/validation"
)

// TypeDefault is the only built-in blob storage type.
const TypeDefault = "default"

// WriterConfig configures a tails writer. Locations default to
// <base_dir>/<hex hash>; uri_pattern overrides them, with "{hash}" replaced
// by the hex hash.
type WriterConfig struct {
	BaseDir    string `json:"base_dir"`
	URIPattern string `json:"uri_pattern"`
}

// ReaderConfig configures a tails reader.
type ReaderConfig struct {
	BaseDir string `json:"base_dir"`
}

// Service owns the writer and reader configurations opened by callers.
type Service struct {
	defaultDir string
	writers    command.Table[command.BlobWriterHandle, WriterConfig]
	readers    command.Table[command.BlobReaderHandle, ReaderConfig]
	logger     *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a blob storage service. defaultDir is used when a
// config does not name a base_dir.
func NewService(defaultDir string, opts ...Option) *Service {
	s := &Service{defaultDir: defaultDir, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultDir returns the tails directory under an indy client root.
func DefaultDir(root string) string {
	return filepath.Join(root, "tails")
}

func checkType(typ string) error {
	if typ != TypeDefault {
		return dErrors.Newf(dErrors.CodeInvalidStructure, "unknown blob storage type %q", typ)
	}
	return nil
}

func decodeConfig(raw string, v any) error {
	if raw == "" {
		return nil
	}
	if err := validation.DecodeJSON(raw, v); err != nil {
		return err
	}
	return nil
}

// OpenWriter registers a writer configuration.
func (s *Service) OpenWriter(typ, configJSON string) (command.BlobWriterHandle, error) {
	if err := checkType(typ); err != nil {
		return command.BlobWriterHandle(command.InvalidHandle), err
	}
	var cfg WriterConfig
	if err := decodeConfig(configJSON, &cfg); err != nil {
		return command.BlobWriterHandle(command.InvalidHandle), err
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = s.defaultDir
	}
	return s.writers.Insert(cfg), nil
}

// OpenReader registers a reader configuration.
func (s *Service) OpenReader(typ, configJSON string) (command.BlobReaderHandle, error) {
	if err := checkType(typ); err != nil {
		return command.BlobReaderHandle(command.InvalidHandle), err
	}
	var cfg ReaderConfig
	if err := decodeConfig(configJSON, &cfg); err != nil {
		return command.BlobReaderHandle(command.InvalidHandle), err
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = s.defaultDir
	}
	return s.readers.Insert(cfg), nil
}

// CreateBlob starts a new blob under the writer configuration h.
func (s *Service) CreateBlob(h command.BlobWriterHandle) (*Writer, error) {
	cfg, ok := s.writers.Get(h)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "unknown blob writer handle %d", h)
	}
	return newWriter(cfg)
}

// OpenBlob opens the blob with the given hash through the reader
// configuration h. An explicit location wins over the configured base dir.
func (s *Service) OpenBlob(h command.BlobReaderHandle, location, hash string) (*Blob, error) {
	cfg, ok := s.readers.Get(h)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "unknown blob reader handle %d", h)
	}
	return openBlob(cfg, location, hash)
}
