// Package minio 提供对象存储访问层实现
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"short-director-api/internal/config"
	"short-director-api/pkg/metrics"
)

var tracer = otel.Tracer("minio")

// Client MinIO 客户端
type Client struct {
	mc     *minio.Client
	config *config.MinioConfig
}

// NewClient 创建 MinIO 客户端并确保 Bucket 存在
func NewClient(cfg *config.MinioConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Client{
		mc:     mc,
		config: cfg,
	}, nil
}

// Upload 上传数据流，返回对象键与可访问 URL
func (c *Client) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	ctx, span := tracer.Start(ctx, "minio.Upload",
		trace.WithAttributes(attribute.String("storage.object_key", objectKey)))
	defer span.End()

	if contentType == "" {
		contentType = contentTypeForKey(objectKey)
	}

	info, err := c.mc.PutObject(ctx, c.config.Bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	span.SetAttributes(attribute.Int64("storage.size_bytes", info.Size))
	metrics.AssetBytesStored.WithLabelValues(modalityForContentType(contentType)).Add(float64(info.Size))

	return c.URLFor(ctx, objectKey)
}

// URLFor 返回对象的访问 URL，配置公共地址时直接拼接，否则生成预签名 URL
func (c *Client) URLFor(ctx context.Context, objectKey string) (string, error) {
	if c.config.PublicURL != "" {
		return fmt.Sprintf("%s/%s/%s",
			strings.TrimSuffix(c.config.PublicURL, "/"), c.config.Bucket, objectKey), nil
	}

	expiry := c.config.PresignExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	presigned, err := c.mc.PresignedGetObject(ctx, c.config.Bucket, objectKey, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object url: %w", err)
	}
	return presigned.String(), nil
}

// Remove 删除对象
func (c *Client) Remove(ctx context.Context, objectKey string) error {
	ctx, span := tracer.Start(ctx, "minio.Remove",
		trace.WithAttributes(attribute.String("storage.object_key", objectKey)))
	defer span.End()

	if err := c.mc.RemoveObject(ctx, c.config.Bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

// HealthCheck 健康检查
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "minio.HealthCheck")
	defer span.End()

	if _, err := c.mc.BucketExists(ctx, c.config.Bucket); err != nil {
		span.RecordError(err)
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// contentTypeForKey 根据扩展名推断 Content-Type
func contentTypeForKey(objectKey string) string {
	switch path.Ext(objectKey) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	}
	return "application/octet-stream"
}

// modalityForContentType 按 Content-Type 归类模态
func modalityForContentType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	case strings.HasPrefix(contentType, "audio/"):
		return "audio"
	}
	return "other"
}
