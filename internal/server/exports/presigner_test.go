package exports

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/statusboard/internal/common"
	sc "github.com/dmitrijs2005/statusboard/internal/server/config"
	"github.com/dmitrijs2005/statusboard/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func testConfig() *sc.Config {
	return &sc.Config{
		S3Region:                "us-east-1",
		S3RootUser:              "minioadmin",
		S3RootPassword:          "minioadmin",
		S3BaseEndpoint:          "http://127.0.0.1:9000",
		S3Bucket:                "statusboard-exports",
		PresignValidityDuration: 15 * time.Minute,
	}
}

func TestStorageKey(t *testing.T) {
	key, err := StorageKey(fixedNow, "../../etc/statusboard 2024.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "exports/2024/06/15/"), key)
	assert.True(t, strings.HasSuffix(key, "-statusboard_2024.csv"), key)
	assert.NotContains(t, key, "..")

	_, err = StorageKey(fixedNow, "")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestPresignExport_SignsPathStyleURL(t *testing.T) {
	p := NewPresigner(testConfig(), timex.Fixed(fixedNow))

	url, key, err := p.PresignExport(context.Background(), "report.csv")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://127.0.0.1:9000/statusboard-exports/exports/2024/06/15/"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=900")
	assert.True(t, strings.HasSuffix(key, "-report.csv"))
}

func TestPresignExport_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	calls := 0
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		calls++
		return aws.Config{}, errors.New("no creds")
	}

	p := NewPresigner(testConfig(), timex.Fixed(fixedNow))
	_, _, err := p.PresignExport(context.Background(), "a.csv")
	assert.ErrorContains(t, err, "no creds")
	_, _, err = p.PresignExport(context.Background(), "b.csv")
	assert.ErrorContains(t, err, "no creds")
	assert.Equal(t, 1, calls, "client is built once")
}

func TestPresignExport_PresignError(t *testing.T) {
	orig := presignPutObject
	t.Cleanup(func() { presignPutObject = orig })

	var gotBucket, gotType string
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotBucket, gotType = aws.ToString(in.Bucket), aws.ToString(in.ContentType)
		return nil, errors.New("sign failed")
	}

	p := NewPresigner(testConfig(), timex.Fixed(fixedNow))
	_, _, err := p.PresignExport(context.Background(), "a.csv")
	assert.ErrorContains(t, err, "sign failed")
	assert.Equal(t, "statusboard-exports", gotBucket)
	assert.Equal(t, "text/csv", gotType)
}
