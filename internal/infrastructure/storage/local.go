package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/xiebiao/playchat/internal/domain/member"
	apperrors "github.com/xiebiao/playchat/pkg/errors"
)

const tmpPrefix = ".upload-"

// LocalStore 本地目录文件存储
// 写入先落临时文件再rename，读取方不会看到写了一半的文件
type LocalStore struct {
	dir string
}

var _ member.FileStore = (*LocalStore)(nil)

// NewLocalStore 创建本地存储，目录不存在时自动创建
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Driver() string {
	return "local"
}

// Put 保存文件，同名文件会被覆盖
func (s *LocalStore) Put(ctx context.Context, name string, content io.Reader, size int64, contentType string) error {
	if !validName(name) {
		return apperrors.ErrStorageError.WithCause(fmt.Errorf("非法文件名: %q", name))
	}

	tmp, err := os.CreateTemp(s.dir, tmpPrefix+"*")
	if err != nil {
		return apperrors.ErrStorageError.WithCause(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		return apperrors.ErrStorageError.WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.ErrStorageError.WithCause(err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return apperrors.ErrStorageError.WithCause(err)
	}
	return nil
}

// Get 打开文件，内容类型按文件头识别
func (s *LocalStore) Get(ctx context.Context, name string) (*member.File, error) {
	if !validName(name) || strings.HasPrefix(name, tmpPrefix) {
		return nil, member.ErrImageNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, member.ErrImageNotFound
		}
		return nil, apperrors.ErrStorageError.WithCause(err)
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		if err == nil {
			return nil, member.ErrImageNotFound
		}
		return nil, apperrors.ErrStorageError.WithCause(err)
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, apperrors.ErrStorageError.WithCause(err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, apperrors.ErrStorageError.WithCause(err)
	}

	return &member.File{
		FileInfo: member.FileInfo{
			Name:        name,
			Size:        info.Size(),
			ContentType: mtype.String(),
			ModTime:     info.ModTime(),
		},
		Content: f,
	}, nil
}

// Remove 删除文件，文件不存在不算错误
func (s *LocalStore) Remove(ctx context.Context, name string) error {
	if !validName(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.ErrStorageError.WithCause(err)
	}
	return nil
}

// List 列出目录下的所有文件（不含子目录和未完成的临时文件）
func (s *LocalStore) List(ctx context.Context) ([]member.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperrors.ErrStorageError.WithCause(err)
	}

	files := make([]member.FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tmpPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// 列目录和取信息之间文件被删除
			continue
		}
		files = append(files, member.FileInfo{
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}
