package storage

import (
	"bytes"
	"context"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/playchat/internal/domain/member"
	"github.com/xiebiao/playchat/internal/infrastructure/config"
	apperrors "github.com/xiebiao/playchat/pkg/errors"
)

func encodeImage(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.png", true},
		{"3f2b-uuid.jpg", true},
		{"", false},
		{".", false},
		{"..", false},
		{"../secret", false},
		{"a..b.png", false},
		{"dir/a.png", false},
		{`dir\a.png`, false},
		{"/etc/passwd", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validName(tt.name), tt.name)
	}
}

func TestLocalStore_PutGetRemove(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	assert.Equal(t, "local", store.Driver())

	data := encodeImage(t, 4, 4, imaging.PNG)
	require.NoError(t, store.Put(ctx, "avatar.png", bytes.NewReader(data), int64(len(data)), "image/png"))

	f, err := store.Get(ctx, "avatar.png")
	require.NoError(t, err)
	got, err := io.ReadAll(f.Content)
	require.NoError(t, err)
	require.NoError(t, f.Content.Close())

	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, int64(len(data)), f.Size)

	files, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "avatar.png", files[0].Name)

	require.NoError(t, store.Remove(ctx, "avatar.png"))
	require.NoError(t, store.Remove(ctx, "avatar.png"), "重复删除不报错")

	_, err = store.Get(ctx, "avatar.png")
	assert.ErrorIs(t, err, member.ErrImageNotFound)
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("secret"), 0o644))

	store, err := NewLocalStore(filepath.Join(root, "uploads"))
	require.NoError(t, err)

	for _, name := range []string{"../secret.txt", "..", "a/b.png", ""} {
		_, err := store.Get(ctx, name)
		assert.ErrorIs(t, err, member.ErrImageNotFound, name)
	}

	err = store.Put(ctx, "../escape.png", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, apperrors.ErrStorageError)
	_, statErr := os.Stat(filepath.Join(root, "escape.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLocalStore_ListSkipsTempFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, tmpPrefix+"123"), []byte("partial"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kept.png"), []byte("x"), 0o644))

	files, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "kept.png", files[0].Name)
}

func TestImageNormalizer_Process(t *testing.T) {
	n := NewImageNormalizer(64, 0)

	t.Run("png保持格式", func(t *testing.T) {
		out, err := n.Process(bytes.NewReader(encodeImage(t, 10, 20, imaging.PNG)))
		require.NoError(t, err)
		assert.Equal(t, ".png", out.Ext)
		assert.Equal(t, "image/png", out.ContentType)
		assert.Equal(t, 10, out.Width)
		assert.Equal(t, 20, out.Height)
	})

	t.Run("jpeg超过最长边等比缩小", func(t *testing.T) {
		out, err := n.Process(bytes.NewReader(encodeImage(t, 256, 128, imaging.JPEG)))
		require.NoError(t, err)
		assert.Equal(t, ".jpg", out.Ext)
		assert.Equal(t, 64, out.Width)
		assert.Equal(t, 32, out.Height)

		decoded, err := imaging.Decode(bytes.NewReader(out.Data))
		require.NoError(t, err)
		assert.Equal(t, 64, decoded.Bounds().Dx())
	})

	t.Run("bmp转为png", func(t *testing.T) {
		out, err := n.Process(bytes.NewReader(encodeImage(t, 8, 8, imaging.BMP)))
		require.NoError(t, err)
		assert.Equal(t, "image/png", out.ContentType)
	})

	t.Run("非图片", func(t *testing.T) {
		_, err := n.Process(strings.NewReader("definitely not an image"))
		assert.ErrorIs(t, err, member.ErrInvalidImage)
	})

	t.Run("文件头是png但内容损坏", func(t *testing.T) {
		data := encodeImage(t, 8, 8, imaging.PNG)
		_, err := n.Process(bytes.NewReader(data[:40]))
		assert.ErrorIs(t, err, member.ErrInvalidImage)
	})
}

func TestImageNormalizer_NoLimit(t *testing.T) {
	out, err := NewImageNormalizer(0, 0).Process(bytes.NewReader(encodeImage(t, 300, 200, imaging.PNG)))
	require.NoError(t, err)
	assert.Equal(t, 300, out.Width)
}

func TestImageNormalizer_PixelLimit(t *testing.T) {
	n := NewImageNormalizer(0, 100)

	out, err := n.Process(bytes.NewReader(encodeImage(t, 10, 10, imaging.PNG)))
	require.NoError(t, err)
	assert.Equal(t, 10, out.Width)

	// 文件很小，但宽×高超过上限，解码前就应拒绝
	_, err = n.Process(bytes.NewReader(encodeImage(t, 20, 10, imaging.PNG)))
	assert.ErrorIs(t, err, member.ErrImageTooManyPixels)

	_, err = n.Process(bytes.NewReader(encodeImage(t, 101, 1, imaging.GIF)))
	assert.ErrorIs(t, err, member.ErrImageTooManyPixels)
}

func TestNewFileStore(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = config.StorageDriverLocal
	cfg.Storage.UploadDir = t.TempDir()

	store, err := NewFileStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "local", store.Driver())

	cfg.Storage.Driver = "ftp"
	_, err = NewFileStore(context.Background(), cfg)
	assert.Error(t, err)
}

// 需要真实MinIO，设置PLAYCHAT_TEST_MINIO_ENDPOINT后运行
func TestMinIOStore_Integration(t *testing.T) {
	endpoint := os.Getenv("PLAYCHAT_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("PLAYCHAT_TEST_MINIO_ENDPOINT未设置，跳过MinIO集成测试")
	}
	ctx := context.Background()
	store, err := NewMinIOStore(ctx, config.MinIOConfig{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("PLAYCHAT_TEST_MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("PLAYCHAT_TEST_MINIO_SECRET_KEY"),
		Bucket:    "playchat-test",
	})
	require.NoError(t, err)

	data := encodeImage(t, 4, 4, imaging.PNG)
	require.NoError(t, store.Put(ctx, "it.png", bytes.NewReader(data), int64(len(data)), "image/png"))
	t.Cleanup(func() { _ = store.Remove(ctx, "it.png") })

	f, err := store.Get(ctx, "it.png")
	require.NoError(t, err)
	defer f.Content.Close()
	assert.Equal(t, "image/png", f.ContentType)

	_, err = store.Get(ctx, "missing.png")
	assert.ErrorIs(t, err, member.ErrImageNotFound)
}
