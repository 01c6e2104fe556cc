package snapshot

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vireo-dev/vireo/pkg/protocol"
)

const diskExt = ".snap"

// DiskStore stores snapshots on the local filesystem, one file per
// snapshot.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a DiskStore rooted at dir, creating the
// directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

// Save implements Store. The file is written to a temp name and
// renamed so readers never see a partial snapshot.
func (s *DiskStore) Save(ctx context.Context, name string, frame *protocol.OpsFrame) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(protocol.EncodeOps(frame)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(name))
}

// Load implements Store.
func (s *DiskStore) Load(ctx context.Context, name string) (*protocol.OpsFrame, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return protocol.DecodeOps(data)
}

// List implements Store.
func (s *DiskStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), diskExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), diskExt))
	}
	return names, nil
}

// Delete implements Store.
func (s *DiskStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *DiskStore) path(name string) string {
	return filepath.Join(s.dir, name+diskExt)
}
