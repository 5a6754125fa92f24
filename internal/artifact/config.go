package artifact

import (
	"context"
	"errors"
	"flag"
	"fmt"
)

// Config selects and configures the artifact backend.
type Config struct {
	Driver        string
	BuildDir      string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3Prefix      string
	S3PathStyle   bool
	S3AccessKeyID string
	S3SecretKey   string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Driver, "artifact-driver", string(DriverFilesystem), "where rendered outputs are written: fs|s3|memory")
	fs.StringVar(&c.BuildDir, "build-dir", "_build", "output directory for the fs artifact driver")
	fs.StringVar(&c.S3Bucket, "s3-bucket", "", "bucket for the s3 artifact driver")
	fs.StringVar(&c.S3Region, "s3-region", "us-east-1", "region for the s3 artifact driver")
	fs.StringVar(&c.S3Endpoint, "s3-endpoint", "", "custom S3 endpoint (MinIO)")
	fs.StringVar(&c.S3Prefix, "s3-prefix", "", "key prefix inside the bucket")
	fs.BoolVar(&c.S3PathStyle, "s3-path-style", false, "use path-style S3 addressing")
	fs.StringVar(&c.S3AccessKeyID, "s3-access-key-id", "", "static S3 access key (default credential chain when empty)")
	fs.StringVar(&c.S3SecretKey, "s3-secret-access-key", "", "static S3 secret key")
}

// Validate checks the selected driver has what it needs.
func (c *Config) Validate() error {
	var errs []error
	switch Driver(c.Driver) {
	case DriverFilesystem:
		if c.BuildDir == "" {
			errs = append(errs, errors.New("BUILD_DIR is required for the fs artifact driver"))
		}
	case DriverS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 artifact driver"))
		}
		if c.S3AccessKeyID != "" && c.S3SecretKey == "" {
			errs = append(errs, errors.New("S3_SECRET_ACCESS_KEY is required when S3_ACCESS_KEY_ID is set"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("invalid ARTIFACT_DRIVER %q (must be fs|s3|memory)", c.Driver))
	}
	return errors.Join(errs...)
}

// Open constructs the configured Store.
func Open(ctx context.Context, c Config) (Store, error) {
	switch Driver(c.Driver) {
	case DriverFilesystem, "":
		return NewFilesystem(c.BuildDir)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Region:          c.S3Region,
			Bucket:          c.S3Bucket,
			Prefix:          c.S3Prefix,
			Endpoint:        c.S3Endpoint,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretKey,
			PathStyle:       c.S3PathStyle,
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown artifact driver %s", c.Driver)
	}
}
