package parquet

import (
	"fmt"

	"github.com/datazip-inc/olake-hubspot/utils"
	pqgo "github.com/parquet-go/parquet-go"
)

type Config struct {
	Path      string `json:"local_path,omitempty" validate:"required"` // Local file path (for local file system usage)
	Bucket    string `json:"s3_bucket,omitempty"`
	Region    string `json:"s3_region,omitempty" validate:"required_with=Bucket"`
	AccessKey string `json:"s3_access_key,omitempty"`
	SecretKey string `json:"s3_secret_key,omitempty" validate:"required_with=AccessKey"`
	Prefix    string `json:"s3_path,omitempty"`
	// S3 endpoint for custom S3-compatible services (like MinIO)
	S3Endpoint string `json:"s3_endpoint,omitempty"`

	// Compression codec: snappy (default), gzip, zstd, none
	Compression string `json:"compression,omitempty"`
	// Normalization writes one typed column per schema field instead of a raw JSON data column
	Normalization bool `json:"normalization,omitempty"`
}

func (c *Config) Validate() error {
	if c.Compression == "" {
		c.Compression = "snappy"
	}
	if _, err := c.codec(); err != nil {
		return err
	}
	return utils.Validate(c)
}

func (c *Config) codec() (pqgo.WriterOption, error) {
	switch c.Compression {
	case "snappy", "":
		return pqgo.Compression(&pqgo.Snappy), nil
	case "gzip":
		return pqgo.Compression(&pqgo.Gzip), nil
	case "zstd":
		return pqgo.Compression(&pqgo.Zstd), nil
	case "none", "uncompressed":
		return pqgo.Compression(&pqgo.Uncompressed), nil
	default:
		return nil, fmt.Errorf("invalid compression codec: %s. Valid options are: snappy, gzip, zstd, none", c.Compression)
	}
}

func (c *Config) s3Enabled() bool {
	return c.Bucket != ""
}
