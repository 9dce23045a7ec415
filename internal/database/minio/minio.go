// Package minio archives generated fraud reports in an S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"fraud-assessment-service/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	pdfContentType = "application/pdf"
	reportPrefix   = "reports"
	connectTimeout = 10 * time.Second
)

// ReportArchive uploads report PDFs and hands out time-limited download links.
type ReportArchive struct {
	client  *minio.Client
	bucket  string
	region  string
	linkTTL time.Duration
	now     func() time.Time
}

// parseEndpoint strips the scheme from the configured URL. An explicit
// MINIO_SECURE wins over the scheme.
func parseEndpoint(rawURL, secureFlag string) (string, bool) {
	secure := strings.HasPrefix(rawURL, "https://")
	endpoint := strings.TrimPrefix(rawURL, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimSuffix(endpoint, "/")

	if secureFlag != "" {
		parsed, err := strconv.ParseBool(secureFlag)
		if err != nil {
			slog.Warn("invalid MinIO secure flag, using URL scheme", "value", secureFlag, "error", err)
		} else {
			secure = parsed
		}
	}
	return endpoint, secure
}

// NewReportArchive connects, checks the server answers and creates the report
// bucket when it is missing.
func NewReportArchive(cfg config.MinioConfig) (*ReportArchive, error) {
	endpoint, secure := parseEndpoint(cfg.MinioURL, cfg.MinioSecure)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: secure,
		Region: cfg.MinioLocation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	a := &ReportArchive{
		client:  client,
		bucket:  cfg.ReportBucket,
		region:  cfg.MinioLocation,
		linkTTL: cfg.PresignExpiry,
		now:     time.Now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}
	slog.Info("report archive ready", "endpoint", endpoint, "secure", secure, "bucket", a.bucket)
	return a, nil
}

func (a *ReportArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to reach report bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
		return fmt.Errorf("failed to create report bucket %s: %w", a.bucket, err)
	}
	slog.Info("created report bucket", "bucket", a.bucket)
	return nil
}

// objectKey files reports by day: reports/2024/03/07/<file>.
func (a *ReportArchive) objectKey(fileName string) string {
	return path.Join(reportPrefix, a.now().UTC().Format("2006/01/02"), fileName)
}

// ArchiveReport uploads the PDF at filePath and returns a presigned link that
// downloads it under its original file name.
func (a *ReportArchive) ArchiveReport(ctx context.Context, fileName, filePath string) (string, error) {
	key := a.objectKey(fileName)
	info, err := a.client.FPutObject(ctx, a.bucket, key, filePath, minio.PutObjectOptions{
		ContentType:  pdfContentType,
		UserMetadata: map[string]string{"report-file": fileName},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", fileName, err)
	}
	slog.Info("report archived", "bucket", a.bucket, "object", key, "size", info.Size)

	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	link, err := a.client.PresignedGetObject(ctx, a.bucket, key, a.linkTTL, params)
	if err != nil {
		return "", fmt.Errorf("failed to presign report %s: %w", key, err)
	}
	return link.String(), nil
}
