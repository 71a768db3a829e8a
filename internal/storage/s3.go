package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/mazrean/blobbackup/internal/metrics"
	myhttp "github.com/mazrean/blobbackup/internal/pkg/http"
	"github.com/mazrean/blobbackup/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	s3StorageClassHeader  = "X-Amz-Storage-Class"
	s3DefaultStorageClass = "STANDARD"
	s3CodeNoSuchKey       = "NoSuchKey"

	// s3MaxCopySize is the largest object a single CopyObject request accepts.
	s3MaxCopySize = 5 << 30
)

// s3StorageClasses are the storage classes accepted as access tiers.
var s3StorageClasses = []Tier{
	s3DefaultStorageClass,
	"REDUCED_REDUNDANCY",
	"STANDARD_IA",
	"ONEZONE_IA",
	"INTELLIGENT_TIERING",
	"GLACIER",
	"GLACIER_IR",
	"DEEP_ARCHIVE",
	"OUTPOSTS",
	"EXPRESS_ONEZONE",
}

var _ Storage = (*S3)(nil)
var s3LatencyGauge = metrics.NewGauge("s3_latency")

// S3 stores objects in an S3-compatible bucket using MinIO Go Client SDK.
// Access tiers map to S3 storage classes.
type S3 struct {
	logger log.Logger
	client *minio.Client
	bucket string
}

// NewS3 initializes a new S3 storage.
// endpoint: S3 endpoint host
// accessKey, secretKey: static credentials (the shared AWS credentials file is used when empty)
// bucket: the bucket playing the role of the container
// useSSL: whether to use SSL
// usePathStyle: whether to force path style
func NewS3(
	logger log.Logger,
	endpoint, region, accessKey, secretKey, bucket string,
	useSSL, usePathStyle bool,
) (*S3, error) {
	var creds *credentials.Credentials
	if accessKey != "" && secretKey != "" {
		creds = credentials.NewStaticV4(accessKey, secretKey, "")
	} else {
		creds = credentials.NewFileAWSCredentials("", "")
	}

	bucketLookupType := minio.BucketLookupDNS
	if usePathStyle {
		bucketLookupType = minio.BucketLookupPath
	}
	client, err := minio.New(endpoint, &minio.Options{
		Region:       region,
		Creds:        creds,
		Secure:       useSSL,
		BucketLookup: bucketLookupType,
		Transport:    myhttp.NewTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("initialize S3 client: %w", err)
	}

	logger.Infof("S3 storage initialized with bucket %q", bucket)

	return &S3{
		logger: logger,
		client: client,
		bucket: bucket,
	}, nil
}

func (s *S3) List(ctx context.Context, prefix string, fn func(Object) error) error {
	// cancelling stops the listing goroutine when fn returns early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var err error
	s3LatencyGauge.Stopwatch(func() {
		for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		}) {
			if info.Err != nil {
				err = fmt.Errorf("list objects: %w", info.Err)
				return
			}

			if err = fn(Object{Name: info.Key, Size: sizePtr(info.Size)}); err != nil {
				return
			}
		}
	}, "list_objects")

	return err
}

func (s *S3) DeleteIfExists(ctx context.Context, name string) (bool, error) {
	exists, err := s.exists(ctx, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	s3LatencyGauge.Stopwatch(func() {
		err = s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
	}, "remove_object")
	if err != nil {
		return false, fmt.Errorf("remove object: %w", err)
	}

	return true, nil
}

func (s *S3) exists(ctx context.Context, name string) (bool, error) {
	var err error
	s3LatencyGauge.Stopwatch(func() {
		_, err = s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	}, "stat_object")
	if err != nil {
		if minio.ToErrorResponse(err).Code == s3CodeNoSuchKey {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}

	return true, nil
}

func (s *S3) Upload(ctx context.Context, name string, r io.Reader, size int64, tier Tier) error {
	contentType, body, err := detectContentType(r)
	if err != nil {
		return err
	}

	s3LatencyGauge.Stopwatch(func() {
		_, err = s.client.PutObject(ctx, s.bucket, name, body, size, minio.PutObjectOptions{
			ContentType:  contentType,
			StorageClass: string(tier),
		})
	}, "put_object")
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}

	return nil
}

type s3TierChange uint8

const (
	s3TierUnchanged s3TierChange = iota
	s3TierCopy
	s3TierCompose
)

// planTierChange picks how an object reaches tier. A single server-side copy
// is limited to s3MaxCopySize, larger objects are copied part by part.
func planTierChange(info minio.ObjectInfo, tier Tier) s3TierChange {
	current := info.StorageClass
	if current == "" {
		current = s3DefaultStorageClass
	}

	switch {
	case current == string(tier):
		return s3TierUnchanged
	case info.Size > s3MaxCopySize:
		return s3TierCompose
	default:
		return s3TierCopy
	}
}

// SetTier rewrites the object in place with the new storage class.
// Objects uploaded with the same tier are left untouched.
func (s *S3) SetTier(ctx context.Context, name string, tier Tier) error {
	var (
		info minio.ObjectInfo
		err  error
	)
	s3LatencyGauge.Stopwatch(func() {
		info, err = s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	}, "stat_object")
	if err != nil {
		return fmt.Errorf("stat object: %w", err)
	}

	change := planTierChange(info, tier)
	if change == s3TierUnchanged {
		s.logger.Debugf("storage class of %s is already %s", name, tier)
		return nil
	}

	metadata := make(map[string]string, len(info.UserMetadata)+2)
	for k, v := range info.UserMetadata {
		metadata[k] = v
	}
	if info.ContentType != "" {
		metadata["Content-Type"] = info.ContentType
	}
	metadata[s3StorageClassHeader] = string(tier)

	dst := minio.CopyDestOptions{
		Bucket:          s.bucket,
		Object:          name,
		UserMetadata:    metadata,
		ReplaceMetadata: true,
	}
	src := minio.CopySrcOptions{
		Bucket: s.bucket,
		Object: name,
	}

	switch change {
	case s3TierCompose:
		s3LatencyGauge.Stopwatch(func() {
			_, err = s.client.ComposeObject(ctx, dst, src)
		}, "compose_object")
		if err != nil {
			return fmt.Errorf("compose object: %w", err)
		}
	default:
		s3LatencyGauge.Stopwatch(func() {
			_, err = s.client.CopyObject(ctx, dst, src)
		}, "copy_object")
		if err != nil {
			return fmt.Errorf("copy object: %w", err)
		}
	}

	s.logger.Debugf("storage class of %s set to %s", name, tier)

	return nil
}

func (s *S3) ParseTier(name string) (Tier, error) {
	return matchTier(name, s3StorageClasses)
}

func (s *S3) Close(context.Context) error {
	return nil
}
