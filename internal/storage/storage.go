// Package storage uploads media files to a bucketed object store and
// reports what the store holds.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Buckets used by the admin panel.
const (
	BucketHeroes          = "heroes"
	BucketProjects        = "projects"
	BucketNews            = "news"
	BucketTeam            = "team"
	BucketNewsAttachments = "news_attachments"
)

// MediaBuckets are the buckets summed on the dashboard.
var MediaBuckets = []string{BucketProjects, BucketNews, BucketTeam, BucketNewsAttachments, BucketHeroes}

var (
	ErrInvalidBucket = errors.New("invalid bucket name")
	ErrInvalidName   = errors.New("invalid object name")
	ErrEmptyFile     = errors.New("file is empty")
)

var bucketPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,62}$`)

// Object describes a stored file.
type Object struct {
	Name string
	Size int64
}

// Storage is the object store collaborator: upload returns a public URL.
type Storage interface {
	Upload(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) (string, error)
	List(ctx context.Context, bucket string) ([]Object, error)
}

// File is an uploaded file read from a request.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// Stored describes a successfully uploaded file.
type Stored struct {
	URL         string
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// NewObjectName builds a unique object name keeping the original extension.
func NewObjectName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return fmt.Sprintf("%s-%s%s", now.Format("20060102"), uuid.NewString(), ext)
}

func validate(bucket, name string) error {
	if !bucketPattern.MatchString(bucket) {
		return ErrInvalidBucket
	}
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

// UploadImage checks that f decodes as an image and stores it in bucket.
func UploadImage(ctx context.Context, s Storage, bucket string, f File) (Stored, error) {
	info, err := InspectImage(f.Body)
	if err != nil {
		return Stored{}, err
	}
	f.ContentType = info.ContentType()
	return upload(ctx, s, bucket, f)
}

// UploadDocument stores an arbitrary attachment in bucket.
func UploadDocument(ctx context.Context, s Storage, bucket string, f File) (Stored, error) {
	if f.ContentType == "" {
		f.ContentType = "application/octet-stream"
	}
	return upload(ctx, s, bucket, f)
}

func upload(ctx context.Context, s Storage, bucket string, f File) (Stored, error) {
	if f.Body == nil || f.Size <= 0 {
		return Stored{}, ErrEmptyFile
	}
	name := NewObjectName(f.Name, time.Now())
	url, err := s.Upload(ctx, bucket, name, f.Body, f.Size, f.ContentType)
	if err != nil {
		return Stored{}, fmt.Errorf("upload %s/%s: %w", bucket, name, err)
	}
	return Stored{
		URL:         url,
		Path:        name,
		Name:        filepath.Base(f.Name),
		ContentType: f.ContentType,
		Size:        f.Size,
	}, nil
}

// Usage totals the files held in a set of buckets.
type Usage struct {
	TotalFiles int
	TotalSize  int64
}

// SizeMB returns TotalSize in megabytes.
func (u Usage) SizeMB() float64 {
	return float64(u.TotalSize) / (1024 * 1024)
}

// Stats sums files across buckets. Buckets that fail to list are skipped and
// their errors returned joined alongside the partial total.
func Stats(ctx context.Context, s Storage, buckets []string) (Usage, error) {
	var (
		usage Usage
		errs  []error
	)
	for _, bucket := range buckets {
		objects, err := s.List(ctx, bucket)
		if err != nil {
			errs = append(errs, fmt.Errorf("list %s: %w", bucket, err))
			continue
		}
		usage.TotalFiles += len(objects)
		for _, obj := range objects {
			usage.TotalSize += obj.Size
		}
	}
	return usage, errors.Join(errs...)
}
