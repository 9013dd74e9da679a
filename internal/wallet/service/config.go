package service

import (
	"encoding/json"

	"indy/internal/wallet/encryption"
	"indy/internal/wallet/storage"
	"indy/pkg/validation"
)

// Config identifies a wallet and the backend holding it.
type Config struct {
	ID            string          `json:"id" validate:"required,notblank"`
	StorageType   string          `json:"storage_type,omitempty"`
	StorageConfig json.RawMessage `json:"storage_config,omitempty"`
}

// Credentials unlock a wallet.
type Credentials struct {
	Key                   string          `json:"key" validate:"required"`
	KeyDerivationMethod   string          `json:"key_derivation_method,omitempty"`
	Rekey                 *string         `json:"rekey,omitempty"`
	RekeyDerivationMethod string          `json:"rekey_derivation_method,omitempty"`
	StorageCredentials    json.RawMessage `json:"storage_credentials,omitempty"`
}

// ExportConfig names the backup file and its passphrase.
type ExportConfig struct {
	Path                string `json:"path" validate:"required,notblank"`
	Key                 string `json:"key" validate:"required"`
	KeyDerivationMethod string `json:"key_derivation_method,omitempty"`
}

// ImportConfig names the backup file to restore. The key derivation
// method is read from the file header.
type ImportConfig struct {
	Path string `json:"path" validate:"required,notblank"`
	Key  string `json:"key" validate:"required"`
}

// KeyConfig is the input of GenerateKey.
type KeyConfig struct {
	Seed string `json:"seed,omitempty"`
}

// ParseConfig decodes and validates a wallet config.
func ParseConfig(raw string) (Config, error) {
	var c Config
	if err := validation.DecodeJSON(raw, &c); err != nil {
		return c, err
	}
	if c.StorageType == "" {
		c.StorageType = storage.TypeDefault
	}
	return c, nil
}

// ParseCredentials decodes and validates wallet credentials.
func ParseCredentials(raw string) (Credentials, error) {
	var c Credentials
	if err := validation.DecodeJSON(raw, &c); err != nil {
		return c, err
	}
	if _, err := encryption.ParseMethod(c.KeyDerivationMethod); err != nil {
		return c, err
	}
	if _, err := encryption.ParseMethod(c.RekeyDerivationMethod); err != nil {
		return c, err
	}
	return c, nil
}

// ParseExportConfig decodes and validates an export config.
func ParseExportConfig(raw string) (ExportConfig, error) {
	var c ExportConfig
	if err := validation.DecodeJSON(raw, &c); err != nil {
		return c, err
	}
	_, err := encryption.ParseMethod(c.KeyDerivationMethod)
	return c, err
}

// ParseImportConfig decodes and validates an import config.
func ParseImportConfig(raw string) (ImportConfig, error) {
	var c ImportConfig
	err := validation.DecodeJSON(raw, &c)
	return c, err
}

func (c Config) storageConfig() string {
	return rawString(c.StorageConfig)
}

func (c Credentials) storageCredentials() string {
	return rawString(c.StorageCredentials)
}

func (c Credentials) method() encryption.KeyDerivationMethod {
	m, _ := encryption.ParseMethod(c.KeyDerivationMethod)
	return m
}

func (c Credentials) rekeyMethod() encryption.KeyDerivationMethod {
	m, _ := encryption.ParseMethod(c.RekeyDerivationMethod)
	return m
}

func rawString(r json.RawMessage) string {
	if len(r) == 0 || string(r) == "null" {
		return ""
	}
	return string(r)
}

// walletKey identifies a wallet across handles.
func (c Config) walletKey() string {
	return c.StorageType + "\x00" + c.ID + "\x00" + c.storageConfig()
}
