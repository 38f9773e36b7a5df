package vfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ZoeBambery/cyberduck/internal/config"
	"github.com/ZoeBambery/cyberduck/internal/logging"
)

const s3Timeout = 30 * time.Second

// S3FS implements FileSystem on top of one S3 bucket. Object keys are
// exposed as absolute paths; common prefixes act as directories.
type S3FS struct {
	client *s3.Client
	bucket string
}

// NewS3FS creates an S3 client for the bucket named in the server config.
func NewS3FS(ctx context.Context, cfg config.ServerConfig) (*S3FS, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("server %s: no bucket configured", cfg.Name)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.User != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.User, cfg.Password, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := s3Endpoint(cfg)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	fsys := &S3FS{client: client, bucket: cfg.Bucket}

	hctx, cancel := context.WithTimeout(ctx, s3Timeout)
	defer cancel()
	if _, err := client.HeadBucket(hctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, fmt.Errorf("bucket %s: %w", cfg.Bucket, err)
	}

	logging.Debug("S3 bucket ready", logging.String("bucket", cfg.Bucket), logging.String("endpoint", endpoint))
	return fsys, nil
}

// s3Endpoint builds a custom endpoint URL for MinIO-style servers.
// An empty Host means AWS itself.
func s3Endpoint(cfg config.ServerConfig) string {
	if cfg.Host == "" {
		return ""
	}
	if strings.Contains(cfg.Host, "://") {
		return cfg.Host
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	if cfg.Port != 0 {
		return fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)
	}
	return scheme + "://" + cfg.Host
}

// objectKey maps "/a/b" to "a/b".
func objectKey(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// copySource builds the URL-encoded "bucket/key" CopyObject expects.
// Slashes between segments stay literal.
func copySource(bucket, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return bucket + "/" + strings.Join(parts, "/")
}

// dirPrefix maps "/a/b" to "a/b/" and "/" to "".
func dirPrefix(p string) string {
	key := objectKey(p)
	if key == "" {
		return ""
	}
	return key + "/"
}

func (s *S3FS) ReadDir(dirPath string) ([]DirEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	prefix := dirPrefix(dirPath)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var entries []DirEntry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dirPath, err)
		}
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name == "" {
				continue
			}
			entries = append(entries, DirEntry{Name: name, Mode: os.ModeDir | 0755, IsDir: true})
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			// Directory marker objects
			if name == "" || strings.HasSuffix(name, "/") {
				continue
			}
			entries = append(entries, DirEntry{
				Name:    name,
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
				Mode:    0644,
			})
		}
	}
	return entries, nil
}

func (s *S3FS) Stat(filePath string) (FileInfo, error) {
	key := objectKey(filePath)
	if key == "" {
		return FileInfo{Name: "/", Mode: os.ModeDir | 0755, IsDir: true}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return FileInfo{
			Name:    path.Base(key),
			Size:    aws.ToInt64(head.ContentLength),
			ModTime: aws.ToTime(head.LastModified),
			Mode:    0644,
		}, nil
	}
	if !isS3NotFound(err) {
		return FileInfo{}, fmt.Errorf("head %s: %w", filePath, err)
	}

	// No object: it is a directory if anything lives below it.
	list, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(key + "/"),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return FileInfo{}, fmt.Errorf("list %s: %w", filePath, err)
	}
	if len(list.Contents) == 0 {
		return FileInfo{}, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
	}
	return FileInfo{Name: path.Base(key), Mode: os.ModeDir | 0755, IsDir: true}, nil
}

func (s *S3FS) Open(filePath string) (io.ReadCloser, error) {
	return s.OpenAt(filePath, 0)
}

func (s *S3FS) OpenAt(filePath string, offset int64) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(filePath)),
	}
	if offset > 0 {
		input.Range = aws.String(fmt.Sprintf("bytes=%d-", offset))
	}
	out, err := s.client.GetObject(context.Background(), input)
	if err != nil {
		if isS3NotFound(err) {
			return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrNotExist}
		}
		return nil, fmt.Errorf("get object %s: %w", filePath, err)
	}
	return out.Body, nil
}

// s3WriteCloser spools to a temp file so PutObject gets a seekable body
// with a known length.
type s3WriteCloser struct {
	*os.File
	fs  *S3FS
	key string
}

func (w *s3WriteCloser) Close() error {
	defer os.Remove(w.File.Name())
	defer w.File.Close()

	size, err := w.File.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.File.Seek(0, io.SeekStart); err != nil {
		return err
	}

	_, err = w.fs.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:        aws.String(w.fs.bucket),
		Key:           aws.String(w.key),
		Body:          w.File,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", w.key, err)
	}
	logging.Debug("S3 put object", logging.String("key", w.key), logging.Int64("size", size))
	return nil
}

func (s *S3FS) Create(filePath string, _ fs.FileMode) (io.WriteCloser, error) {
	tmp, err := os.CreateTemp("", "cyberduck-s3-*")
	if err != nil {
		return nil, err
	}
	return &s3WriteCloser{File: tmp, fs: s, key: objectKey(filePath)}, nil
}

// Append is not possible on S3 objects.
func (s *S3FS) Append(string) (io.WriteCloser, error) {
	return nil, ErrNotSupported
}

// MkdirAll writes a directory marker so empty directories stay visible.
func (s *S3FS) MkdirAll(dirPath string, _ fs.FileMode) error {
	prefix := dirPrefix(dirPath)
	if prefix == "" {
		return nil
	}
	_, err := s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(prefix),
		Body:          strings.NewReader(""),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		return fmt.Errorf("mkdir %s: %w", dirPath, err)
	}
	return nil
}

func (s *S3FS) Remove(filePath string) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(filePath)),
	})
	return err
}

// Rename copies then deletes; S3 has no server-side move.
func (s *S3FS) Rename(oldpath, newpath string) error {
	src := objectKey(oldpath)
	_, err := s.client.CopyObject(context.Background(), &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(objectKey(newpath)),
		CopySource: aws.String(copySource(s.bucket, src)),
	})
	if err != nil {
		return fmt.Errorf("copy %s -> %s: %w", oldpath, newpath, err)
	}
	return s.Remove(oldpath)
}

func (s *S3FS) Join(elem ...string) string {
	return path.Join(elem...)
}

func (s *S3FS) Dir(p string) string {
	return path.Dir(p)
}

func (s *S3FS) Base(p string) string {
	return path.Base(p)
}

func (s *S3FS) IsLocal() bool {
	return false
}

func (s *S3FS) TimestampSupported() bool {
	return true
}

func (s *S3FS) ResumeSupported() bool {
	return false
}

// Close is a no-op; the SDK client holds no connection state.
func (s *S3FS) Close() error {
	return nil
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	return errors.As(err, &nf)
}
