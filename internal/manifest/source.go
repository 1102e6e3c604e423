package manifest

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cenkalti/backoff/v4"

	"github.com/vango-dev/navcore/internal/errors"
)

// S3Scheme prefixes manifest sources stored in S3.
const S3Scheme = "s3://"

// DefaultMaxElapsed bounds retries of remote fetches.
const DefaultMaxElapsed = 30 * time.Second

// ObjectGetter is the subset of the S3 client used to fetch manifests.
// *s3.Client satisfies it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadOptions configures Load.
type LoadOptions struct {
	// S3 fetches s3:// sources. Required for them.
	S3 ObjectGetter

	// MaxElapsed bounds the total retry time for remote fetches.
	// Default: DefaultMaxElapsed.
	MaxElapsed time.Duration

	// RetryInterval is the first retry delay. Default: the backoff
	// package's initial interval.
	RetryInterval time.Duration

	// Logger receives retry notices. Default: slog.Default().
	Logger *slog.Logger
}

// Load reads and parses the manifest at source.
func Load(ctx context.Context, source string, opts LoadOptions) (*Manifest, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxElapsed <= 0 {
		opts.MaxElapsed = DefaultMaxElapsed
	}

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, S3Scheme) {
		data, err = fetchS3(ctx, source, opts)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, errors.New(errors.CodeManifestUnloaded).WithDetail(source).Wrap(err)
	}

	m, err := Parse(data)
	if err != nil {
		var ne *errors.NavError
		if stderrors.As(err, &ne) && ne.Detail == "" {
			ne.Detail = source
		}
		return nil, err
	}
	return m, nil
}

// SplitS3 splits an s3://bucket/key source.
func SplitS3(source string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(source, S3Scheme)
	if !ok {
		return "", "", fmt.Errorf("not an s3 source: %q", source)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 source needs a bucket and a key: %q", source)
	}
	return bucket, key, nil
}

func fetchS3(ctx context.Context, source string, opts LoadOptions) ([]byte, error) {
	if opts.S3 == nil {
		return nil, fmt.Errorf("no s3 client configured")
	}
	bucket, key, err := SplitS3(source)
	if err != nil {
		return nil, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = opts.MaxElapsed
	if opts.RetryInterval > 0 {
		policy.InitialInterval = opts.RetryInterval
	}

	var data []byte
	op := func() error {
		out, err := opts.S3.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var missing *types.NoSuchKey
			var noBucket *types.NoSuchBucket
			if stderrors.As(err, &missing) || stderrors.As(err, &noBucket) {
				return backoff.Permanent(err)
			}
			return err
		}
		defer out.Body.Close()
		data, err = io.ReadAll(out.Body)
		return err
	}
	notify := func(err error, wait time.Duration) {
		opts.Logger.Warn("manifest fetch failed, retrying",
			"source", source, "error", err, "wait", wait)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, err
	}
	return data, nil
}
