package parquet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/destination"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/datazip-inc/olake-hubspot/utils/typeutils"
	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	pqgo "github.com/parquet-go/parquet-go"
)

// rawRow is the denormalized layout: record data kept as a JSON document.
type rawRow struct {
	Data           string    `parquet:"data,json"`
	OlakeID        string    `parquet:"_olake_id"`
	OpType         string    `parquet:"_op_type"`
	OlakeTimestamp time.Time `parquet:"_olake_timestamp,timestamp(millisecond)"`
}

type rowWriter interface {
	Close() error
}

// Parquet writes one file per writer thread under
// local_path/namespace/stream/<timestamp>.parquet and uploads it to S3 on close.
type Parquet struct {
	options     *destination.Options
	config      *Config
	stream      types.StreamInterface
	basePath    string
	fileName    string
	file        *os.File
	rawWriter   *pqgo.GenericWriter[rawRow]
	normWriter  *pqgo.GenericWriter[any]
	recordCount int
	s3Client    *s3.Client
}

func (p *Parquet) GetConfigRef() destination.Config {
	p.config = &Config{}
	return p.config
}

func (p *Parquet) Spec() any {
	return Config{}
}

func (p *Parquet) Type() string {
	return string(types.Parquet)
}

// setup s3 client if a bucket is configured
func (p *Parquet) initS3Client(ctx context.Context) error {
	if !p.config.s3Enabled() || p.s3Client != nil {
		return nil
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(p.config.Region)}
	if p.config.AccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(p.config.AccessKey, p.config.SecretKey, "")),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %s", err)
	}

	p.s3Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if p.config.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(p.config.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return nil
}

// Check validates the local path and S3 access if applicable.
func (p *Parquet) Check(ctx context.Context) error {
	if err := os.MkdirAll(p.config.Path, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create local path: %s", err)
	}

	if err := p.initS3Client(ctx); err != nil {
		return err
	}
	if p.s3Client != nil {
		if _, err := p.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.config.Bucket)}); err != nil {
			return fmt.Errorf("failed to access s3 bucket[%s]: %s", p.config.Bucket, err)
		}
	}
	return nil
}

// Setup creates the parquet file of this writer thread.
func (p *Parquet) Setup(ctx context.Context, stream types.StreamInterface, options *destination.Options) error {
	p.options = options
	p.stream = stream
	p.basePath = filepath.Join(stream.GetStream().DestinationDatabase, stream.GetStream().DestinationTable)

	if err := p.initS3Client(ctx); err != nil {
		return fmt.Errorf("failed to setup S3 client: %s", err)
	}

	directoryPath := filepath.Join(p.config.Path, p.basePath)
	if err := os.MkdirAll(directoryPath, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directories[%s]: %s", directoryPath, err)
	}

	p.fileName = utils.TimestampedFileName(constants.ParquetFileExt)
	file, err := os.Create(filepath.Join(directoryPath, p.fileName))
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %s", err)
	}
	p.file = file

	codec, err := p.config.codec()
	if err != nil {
		return err
	}

	if p.config.Normalization {
		p.normWriter = pqgo.NewGenericWriter[any](file, stream.Schema().ToParquet(), codec)
	} else {
		p.rawWriter = pqgo.NewGenericWriter[rawRow](file, codec)
	}
	return nil
}

func (p *Parquet) Write(_ context.Context, records []types.RawRecord) error {
	if p.config.Normalization {
		rows := make([]any, 0, len(records))
		for _, record := range records {
			rows = append(rows, p.normalize(record))
		}
		if _, err := p.normWriter.Write(rows); err != nil {
			return fmt.Errorf("failed to write normalized rows: %s", err)
		}
	} else {
		rows := make([]rawRow, 0, len(records))
		for _, record := range records {
			data, err := json.Marshal(record.Data)
			if err != nil {
				return fmt.Errorf("failed to marshal record data: %s", err)
			}
			rows = append(rows, rawRow{
				Data:           string(data),
				OlakeID:        record.OlakeID,
				OpType:         record.OpType,
				OlakeTimestamp: record.OlakeTimestamp,
			})
		}
		if _, err := p.rawWriter.Write(rows); err != nil {
			return fmt.Errorf("failed to write rows: %s", err)
		}
	}

	p.recordCount += len(records)
	return nil
}

// normalize shapes a record to the stream schema's column types.
func (p *Parquet) normalize(record types.RawRecord) map[string]any {
	row := make(map[string]any)
	for _, column := range p.stream.Schema().Columns() {
		value, found := record.Data[column]
		if !found || value == nil {
			continue
		}
		typ, _ := p.stream.Schema().GetType(column)
		if converted, ok := convertValue(typ, value); ok {
			row[column] = converted
		}
	}
	row[constants.OlakeID] = record.OlakeID
	row[constants.OpType] = record.OpType
	row[constants.OlakeTimestamp] = record.OlakeTimestamp
	return row
}

func convertValue(typ types.DataType, value any) (any, bool) {
	switch typ {
	case types.String:
		if str, ok := value.(string); ok {
			return str, true
		}
		return fmt.Sprintf("%v", value), true
	case types.Int64:
		switch v := value.(type) {
		case int64:
			return v, true
		case int:
			return int64(v), true
		case float64:
			return int64(v), true
		}
	case types.Float64:
		switch v := value.(type) {
		case float64:
			return v, true
		case int64:
			return float64(v), true
		case int:
			return float64(v), true
		}
	case types.Bool:
		if v, ok := value.(bool); ok {
			return v, true
		}
	case types.Timestamp:
		if ts, err := typeutils.ParseTimestamp(value); err == nil {
			return ts, true
		}
	default:
		if data, err := json.Marshal(value); err == nil {
			return string(data), true
		}
	}
	logger.Debugf("dropping value of unexpected type %T for column type %s", value, typ)
	return nil, false
}

// Close finalizes the file, removes it when empty and uploads it when S3 is configured.
func (p *Parquet) Close(ctx context.Context) error {
	if p.file == nil {
		return nil
	}

	var writer rowWriter = p.rawWriter
	if p.config.Normalization {
		writer = p.normWriter
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %s", err)
	}

	localPath := p.file.Name()
	if err := p.file.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file: %s", err)
	}
	p.file = nil

	if p.recordCount == 0 {
		logger.Debugf("removing parquet file %s; no records written", localPath)
		return os.Remove(localPath)
	}

	if p.s3Client != nil {
		if err := p.upload(ctx, localPath); err != nil {
			return err
		}
	}

	logger.Infof("Written %d records of stream[%s] to %s", p.recordCount, p.stream.ID(), localPath)
	return nil
}

func (p *Parquet) objectKey(parts ...string) string {
	return filepath.ToSlash(filepath.Join(append([]string{p.config.Prefix}, parts...)...))
}

func (p *Parquet) upload(ctx context.Context, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open parquet file for upload: %s", err)
	}
	defer file.Close()

	key := p.objectKey(p.basePath, p.fileName)
	_, err = p.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.config.Bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %s", err)
	}
	logger.Infof("Uploaded file: s3://%s/%s", p.config.Bucket, key)
	return nil
}

// DropStreams deletes local and remote files of the given streams.
func (p *Parquet) DropStreams(ctx context.Context, streams []types.StreamInterface) error {
	if err := p.initS3Client(ctx); err != nil {
		return err
	}

	return utils.ForEach(streams, func(stream types.StreamInterface) error {
		path := filepath.Join(stream.GetStream().DestinationDatabase, stream.GetStream().DestinationTable)
		if err := os.RemoveAll(filepath.Join(p.config.Path, path)); err != nil {
			return fmt.Errorf("failed to drop local files of stream[%s]: %s", stream.ID(), err)
		}
		if p.s3Client == nil {
			return nil
		}
		return p.dropObjects(ctx, p.objectKey(path)+"/")
	})
}

func (p *Parquet) dropObjects(ctx context.Context, prefix string) error {
	paginator := s3.NewListObjectsV2Paginator(p.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.config.Bucket),
		Prefix: aws.String(prefix),
	})

	var errs error
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list objects under %s: %s", prefix, err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, object := range page.Contents {
			objects = append(objects, s3types.ObjectIdentifier{Key: object.Key})
		}
		_, err = p.s3Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(p.config.Bucket),
			Delete: &s3types.Delete{Objects: objects},
		})
		if err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if errs != nil {
		return fmt.Errorf("failed to delete objects under %s: %s", prefix, errs)
	}
	logger.Infof("Dropped s3://%s/%s", p.config.Bucket, prefix)
	return nil
}

func init() {
	destination.RegisteredWriters[types.Parquet] = func() destination.Writer {
		return new(Parquet)
	}
}
