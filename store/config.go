package store

import (
	"encoding/base64"
	"fmt"

	"github.com/gobeaver/intakekit"
)

// FromConfig builds the staging store an environment config describes: the
// named backend, sealed with AES-256-GCM when encryption is enabled. The
// size cap applies as the memory store's total budget and as the directory
// store's per-blob cap. An empty backend name disables staging and returns
// a nil Store.
func FromConfig(cfg *intakekit.Config) (Store, error) {
	var st Store
	switch cfg.StoreBackend {
	case "":
		return nil, nil
	case "memory":
		st = NewMemory(MemoryConfig{MaxBytes: cfg.StoreMaxBytes})
	case "dir":
		d, err := NewDir(cfg.StoreDir, DirConfig{MaxBlobBytes: cfg.StoreMaxBytes})
		if err != nil {
			return nil, err
		}
		st = d
	default:
		return nil, fmt.Errorf("unknown staging backend %q", cfg.StoreBackend)
	}

	if !cfg.EncryptionEnabled {
		return st, nil
	}

	key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("%w: decode encryption key: %v", ErrInvalidKey, err)
	}
	enc, err := NewEncrypted(st, key)
	if err != nil {
		st.Close()
		return nil, err
	}
	return enc, nil
}
