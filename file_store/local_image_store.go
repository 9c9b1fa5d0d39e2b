package file_store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LocalImageStore writes images into a folder on local disk, used in
// development where images are served by the web server itself.
type LocalImageStore struct {
	folderName string
	urlPrefix  string
}

func NewLocalImageStore(folderName string, urlPrefix string) (*LocalImageStore, error) {
	if err := os.MkdirAll(folderName, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "fail to create image folder")
	}
	return &LocalImageStore{folderName: folderName, urlPrefix: urlPrefix}, nil
}

func (s *LocalImageStore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errors.Errorf("invalid image name %q", name)
	}
	return filepath.Join(s.folderName, name), nil
}

func (s *LocalImageStore) Save(ctx context.Context, name string, content io.Reader) error {
	localPath, err := s.path(name)
	if err != nil {
		return err
	}
	file, err := os.Create(localPath)
	if err != nil {
		return errors.Wrap(err, "fail to create image file")
	}
	defer file.Close()

	if _, err = io.Copy(file, content); err != nil {
		os.Remove(localPath)
		return errors.Wrap(err, "fail to write image file")
	}
	return nil
}

func (s *LocalImageStore) Exists(ctx context.Context, name string) (bool, error) {
	localPath, err := s.path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(localPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (s *LocalImageStore) Delete(ctx context.Context, name string) error {
	localPath, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "fail to delete image file")
	}
	return nil
}

func (s *LocalImageStore) UrlFor(name string) string {
	return strings.TrimSuffix(s.urlPrefix, "/") + "/" + name
}

func (s *LocalImageStore) Folder() string {
	return s.folderName
}
