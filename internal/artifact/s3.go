package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds construction parameters for the S3 driver.
type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string // optional key prefix inside the bucket
	Endpoint        string // optional; custom endpoint (e.g. MinIO)
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string // optional
	PathStyle       bool
}

// s3API is the subset of *s3.Client used by S3.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3 stores artifacts in a single bucket.
type S3 struct {
	client s3API
	bucket string
	prefix string
}

// NewS3 creates an S3 store from cfg using the default AWS credential chain
// unless static keys are supplied.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3WithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3WithClient(client s3API, bucket, prefix string) *S3 {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3) Driver() Driver { return DriverS3 }

func (s *S3) objectKey(key string) string { return s.prefix + key }

func (s *S3) Put(ctx context.Context, key string, body []byte, contentType string) (Artifact, error) {
	if err := ValidateKey(key); err != nil {
		return Artifact{}, err
	}
	if contentType == "" {
		contentType = ContentType(key)
	}
	sum := etag(body)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"sha256": sum},
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("s3 put %s: %w", key, err)
	}
	return Artifact{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(body)),
		ETag:        sum,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

func (s *S3) Get(ctx context.Context, key string) (Artifact, []byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return Artifact{}, nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return Artifact{}, nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()
	body, err := io.ReadAll(out.Body)
	if err != nil {
		return Artifact{}, nil, fmt.Errorf("s3 read %s: %w", key, err)
	}
	a := Artifact{
		Key:         key,
		ContentType: aws.ToString(out.ContentType),
		Size:        int64(len(body)),
		ETag:        etag(body),
		UpdatedAt:   aws.ToTime(out.LastModified),
	}
	if a.ContentType == "" {
		a.ContentType = ContentType(key)
	}
	return a, body, nil
}

func (s *S3) List(ctx context.Context, prefix string) ([]Artifact, error) {
	var out []Artifact
	var token *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.objectKey(prefix)),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			key := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			out = append(out, Artifact{
				Key:         key,
				ContentType: ContentType(key),
				Size:        aws.ToInt64(obj.Size),
				ETag:        strings.Trim(aws.ToString(obj.ETag), `"`),
				UpdatedAt:   aws.ToTime(obj.LastModified),
			})
		}
		if aws.ToBool(page.IsTruncated) && page.NextContinuationToken != nil {
			token = page.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
