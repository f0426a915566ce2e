package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the local disk and, when S3_BUCKET is set, the s3 disk.
func Connect(ctx context.Context) {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDisk = config.StorageDefault()
	disks["local"] = NewLocal(config.StorageLocalRoot(), config.StorageURL())

	if config.StorageS3Bucket() != "" {
		d, err := newS3Disk(ctx)
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			disks["s3"] = d
		}
	}

	if _, ok := disks[defaultDisk]; !ok {
		logger.Warn("storage: default disk not configured, using local", "disk", defaultDisk)
		defaultDisk = "local"
	}
}

// Use returns the named disk.
func Use(name string) (Disk, error) {
	managerMu.RLock()
	defer managerMu.RUnlock()
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the STORAGE_DISK disk, booting a local one on first use.
func Default() Disk {
	managerMu.RLock()
	d, ok := disks[defaultDisk]
	managerMu.RUnlock()
	if ok {
		return d
	}

	managerMu.Lock()
	defer managerMu.Unlock()
	if d, ok := disks[defaultDisk]; ok {
		return d
	}
	d = NewLocal(config.StorageLocalRoot(), config.StorageURL())
	disks["local"] = d
	defaultDisk = "local"
	return d
}

// RegisterDisk plugs in a Disk under name; makeDefault switches to it.
func RegisterDisk(name string, d Disk, makeDefault bool) {
	managerMu.Lock()
	disks[name] = d
	if makeDefault {
		defaultDisk = name
	}
	managerMu.Unlock()
}
