package artifact

import (
	"context"
	"flag"
	"testing"
)

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()
	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Driver != "fs" || c.BuildDir != "_build" {
		t.Errorf("defaults = %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Driver: "memory"}, false},
		{"fs without dir", Config{Driver: "fs"}, true},
		{"s3 without bucket", Config{Driver: "s3"}, true},
		{"s3 key without secret", Config{Driver: "s3", S3Bucket: "b", S3AccessKeyID: "k"}, true},
		{"s3 ok", Config{Driver: "s3", S3Bucket: "b"}, false},
		{"unknown", Config{Driver: "ftp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpen_Drivers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: "memory"})
	if err != nil || s.Driver() != DriverMemory {
		t.Fatalf("Open memory = %v, %v", s, err)
	}
	s, err = Open(ctx, Config{Driver: "fs", BuildDir: t.TempDir()})
	if err != nil || s.Driver() != DriverFilesystem {
		t.Fatalf("Open fs = %v, %v", s, err)
	}
	if _, err := Open(ctx, Config{Driver: "ftp"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
