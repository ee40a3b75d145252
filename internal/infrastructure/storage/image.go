package storage

import (
	"bytes"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"github.com/xiebiao/playchat/internal/domain/member"
	apperrors "github.com/xiebiao/playchat/pkg/errors"
)

// imageFormat 支持的上传格式及重新编码使用的格式
// bmp和tiff体积大，统一转为png
type imageFormat struct {
	format      imaging.Format
	ext         string
	contentType string
}

var supportedImages = map[string]imageFormat{
	"image/png":  {imaging.PNG, ".png", "image/png"},
	"image/jpeg": {imaging.JPEG, ".jpg", "image/jpeg"},
	"image/gif":  {imaging.GIF, ".gif", "image/gif"},
	"image/bmp":  {imaging.PNG, ".png", "image/png"},
	"image/tiff": {imaging.PNG, ".png", "image/png"},
}

// ImageNormalizer 头像规范化
// 1. 按文件头识别格式，不信任文件名和Content-Type
// 2. 按EXIF方向摆正
// 3. 解码前读取图片头，宽×高超过maxPixels直接拒绝（压缩率极高的小文件解码后可能占用数GB内存）
// 4. 最长边超过maxDimension时等比缩小
type ImageNormalizer struct {
	maxDimension int
	maxPixels    int
}

var _ member.ImageProcessor = (*ImageNormalizer)(nil)

// NewImageNormalizer maxDimension<=0表示不缩放，maxPixels<=0表示不限制像素数
func NewImageNormalizer(maxDimension, maxPixels int) *ImageNormalizer {
	return &ImageNormalizer{maxDimension: maxDimension, maxPixels: maxPixels}
}

func (n *ImageNormalizer) Process(content io.Reader) (*member.ProcessedImage, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, apperrors.ErrBadRequest.WithCause(err)
	}

	mtype := mimetype.Detect(data)
	target, ok := lookupFormat(mtype)
	if !ok {
		return nil, member.ErrInvalidImage
	}

	if err := n.checkPixels(data); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, member.ErrInvalidImage.WithCause(err)
	}
	img = n.fit(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, target.format, imaging.JPEGQuality(90)); err != nil {
		return nil, apperrors.Wrap(err, "图片编码失败")
	}

	bounds := img.Bounds()
	return &member.ProcessedImage{
		Data:        buf.Bytes(),
		Ext:         target.ext,
		ContentType: target.contentType,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

// checkPixels 只解析图片头，不分配像素缓冲
func (n *ImageNormalizer) checkPixels(data []byte) error {
	if n.maxPixels <= 0 {
		return nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return member.ErrInvalidImage.WithCause(err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(n.maxPixels) {
		return member.ErrImageTooManyPixels
	}
	return nil
}

func (n *ImageNormalizer) fit(img image.Image) image.Image {
	if n.maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= n.maxDimension && b.Dy() <= n.maxDimension {
		return img
	}
	return imaging.Fit(img, n.maxDimension, n.maxDimension, imaging.Lanczos)
}

func lookupFormat(mtype *mimetype.MIME) (imageFormat, bool) {
	for m := mtype; m != nil; m = m.Parent() {
		if f, ok := supportedImages[m.String()]; ok {
			return f, true
		}
	}
	return imageFormat{}, false
}
