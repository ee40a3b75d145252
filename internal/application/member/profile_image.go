package member

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/xiebiao/playchat/internal/domain/member"
	"github.com/xiebiao/playchat/internal/infrastructure/config"
	"github.com/xiebiao/playchat/pkg/metrics"
)

// ProfileImageService 头像存储与访问
// 存储文件名为随机UUID加规范化后的扩展名，与上传时的文件名无关
type ProfileImageService struct {
	store      member.FileStore
	processor  member.ImageProcessor
	urlPrefix  string
	defaultURL string
	maxSize    int64
}

// NewProfileImageService 创建头像服务
func NewProfileImageService(store member.FileStore, processor member.ImageProcessor, cfg *config.Config) *ProfileImageService {
	return &ProfileImageService{
		store:      store,
		processor:  processor,
		urlPrefix:  cfg.ProfileImageURLPrefix(),
		defaultURL: cfg.DefaultImageURL(),
		maxSize:    cfg.Storage.MaxUploadSize,
	}
}

// DefaultURL 默认头像地址
func (s *ProfileImageService) DefaultURL() string {
	return s.defaultURL
}

// Store 校验、规范化并保存头像，返回存储文件名和访问地址
func (s *ProfileImageService) Store(ctx context.Context, upload *member.Upload) (string, string, error) {
	if upload.Size > s.maxSize {
		return "", "", member.ErrImageTooLarge
	}

	// Size来自multipart头，实际读取时再限制一次
	data, err := io.ReadAll(io.LimitReader(upload.Content, s.maxSize+1))
	if err != nil {
		return "", "", member.ErrInvalidImage.WithCause(err)
	}
	if int64(len(data)) > s.maxSize {
		return "", "", member.ErrImageTooLarge
	}

	img, err := s.processor.Process(bytes.NewReader(data))
	if err != nil {
		return "", "", err
	}

	name := uuid.NewString() + img.Ext
	if err := s.store.Put(ctx, name, bytes.NewReader(img.Data), int64(len(img.Data)), img.ContentType); err != nil {
		return "", "", err
	}
	metrics.RecordImageStored(s.store.Driver())

	return name, s.urlPrefix + name, nil
}

// Remove 删除已存储的头像
func (s *ProfileImageService) Remove(ctx context.Context, name string) error {
	return s.store.Remove(ctx, name)
}

// Open 打开头像文件，调用方负责关闭Content
func (s *ProfileImageService) Open(ctx context.Context, name string) (*member.File, error) {
	return s.store.Get(ctx, name)
}

// List 所有已存储的头像
func (s *ProfileImageService) List(ctx context.Context) ([]member.FileInfo, error) {
	return s.store.List(ctx)
}

// StoredName 从头像地址解析存储文件名，默认头像和外部地址返回false
// 只看路径，不比较scheme和host：backend_url变更后旧地址仍能对应到已存储的文件
func (s *ProfileImageService) StoredName(imageURL string) (string, bool) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", false
	}
	_, name, ok := strings.Cut(u.Path, config.ProfileImagePath)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
