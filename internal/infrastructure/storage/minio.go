package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/xiebiao/playchat/internal/domain/member"
	"github.com/xiebiao/playchat/internal/infrastructure/config"
	"github.com/xiebiao/playchat/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/playchat/pkg/errors"
)

const minioNoSuchKey = "NoSuchKey"

// MinIOStore 对象存储
// 所有调用经过熔断器，MinIO不可用时快速失败，不拖住请求
type MinIOStore struct {
	client *minio.Client
	bucket string
	cb     *circuitbreaker.CircuitBreaker
}

var _ member.FileStore = (*MinIOStore)(nil)

// NewMinIOStore 创建MinIO存储，bucket不存在时自动创建
func NewMinIOStore(ctx context.Context, cfg config.MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化MinIO客户端失败: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("连接MinIO失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建bucket失败: %w", err)
		}
		slog.Info("已创建MinIO bucket", "bucket", cfg.Bucket)
	}

	slog.Info("MinIO连接成功", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &MinIOStore{
		client: client,
		bucket: cfg.Bucket,
		cb:     newStorageBreaker("minio"),
	}, nil
}

// newStorageBreaker 对象不存在是正常的业务结果，不计入失败
func newStorageBreaker(name string) *circuitbreaker.CircuitBreaker {
	cb := circuitbreaker.NewCircuitBreaker(name, circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, member.ErrImageNotFound)
		},
	})
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		slog.Warn("存储熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
	})
	return cb
}

func (s *MinIOStore) Driver() string {
	return "minio"
}

func (s *MinIOStore) Put(ctx context.Context, name string, content io.Reader, size int64, contentType string) error {
	if !validName(name) {
		return apperrors.ErrStorageError.WithCause(fmt.Errorf("非法文件名: %q", name))
	}
	return s.execute(func() error {
		_, err := s.client.PutObject(ctx, s.bucket, name, content, size, minio.PutObjectOptions{
			ContentType: contentType,
		})
		return err
	})
}

// Get GetObject不会立即发请求，先Stat确认对象存在
func (s *MinIOStore) Get(ctx context.Context, name string) (*member.File, error) {
	if !validName(name) {
		return nil, member.ErrImageNotFound
	}

	var file *member.File
	err := s.execute(func() error {
		obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
		if err != nil {
			return translateMinIOError(err)
		}
		info, err := obj.Stat()
		if err != nil {
			obj.Close()
			return translateMinIOError(err)
		}
		file = &member.File{
			FileInfo: member.FileInfo{
				Name:        name,
				Size:        info.Size,
				ContentType: info.ContentType,
				ModTime:     info.LastModified,
			},
			Content: obj,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Remove 对象不存在时MinIO同样返回成功
func (s *MinIOStore) Remove(ctx context.Context, name string) error {
	if !validName(name) {
		return nil
	}
	return s.execute(func() error {
		return s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
	})
}

func (s *MinIOStore) List(ctx context.Context) ([]member.FileInfo, error) {
	var files []member.FileInfo
	err := s.execute(func() error {
		for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
			if obj.Err != nil {
				return obj.Err
			}
			files = append(files, member.FileInfo{
				Name:        obj.Key,
				Size:        obj.Size,
				ContentType: obj.ContentType,
				ModTime:     obj.LastModified,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// execute 熔断器包装，非业务错误统一转换为ErrStorageError
func (s *MinIOStore) execute(fn func() error) error {
	err := s.cb.Execute(fn)
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	return apperrors.ErrStorageError.WithCause(err)
}

func translateMinIOError(err error) error {
	if minio.ToErrorResponse(err).Code == minioNoSuchKey {
		return member.ErrImageNotFound
	}
	return err
}
