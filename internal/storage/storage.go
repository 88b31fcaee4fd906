package storage

import (
	"fmt"

	"github.com/bunca/bakery-service/config"
)

// New builds the storage backend selected by the storage config section
func New(cfg config.StorageConfig) (Storage, error) {
	switch StorageType(cfg.Type) {
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.BasePath)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}
