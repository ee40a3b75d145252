package member

import (
	"context"
	"io"
	"time"
)

// Upload 上传的头像文件
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// IsEmpty 空文件视为"清除头像"
func (u *Upload) IsEmpty() bool {
	return u == nil || u.Size == 0
}

// FileInfo 已存储文件的元信息
type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
	ModTime     time.Time
}

// File 打开的已存储文件，调用方负责Close
type File struct {
	FileInfo
	Content io.ReadCloser
}

// FileStore 头像文件存储
// name是存储文件名（不含目录），实现方必须拒绝包含路径分隔符的name
type FileStore interface {
	Put(ctx context.Context, name string, content io.Reader, size int64, contentType string) error
	Get(ctx context.Context, name string) (*File, error) // 不存在时返回ErrImageNotFound
	Remove(ctx context.Context, name string) error       // 不存在时不报错
	List(ctx context.Context) ([]FileInfo, error)
	Driver() string
}

// ProcessedImage 解码并重新编码后的图片
type ProcessedImage struct {
	Data        []byte
	Ext         string // 带点，如 .png
	ContentType string
	Width       int
	Height      int
}

// ImageProcessor 校验上传内容确实是图片，并统一尺寸
type ImageProcessor interface {
	Process(content io.Reader) (*ProcessedImage, error)
}
