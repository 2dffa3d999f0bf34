package storage

import "github.com/harvestcms/internal/config"

// FromConfig builds the storage backend selected by cfg.
func FromConfig(cfg config.AppConfig) (Storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMinio {
		return NewMinioStorage(
			cfg.Storage.Endpoint,
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			cfg.Storage.UseSSL,
			cfg.Storage.PublicURL,
		)
	}
	return NewLocalStorage(cfg.UploadDir, cfg.UploadURLPath), nil
}
