package schedule

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	sink := &FileSink{Dir: dir}

	loc, err := sink.Put(context.Background(), "../escape.csv", "text/csv", []byte("a,b\n"))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "escape.csv"); loc != want {
		t.Errorf("location = %q, want %q", loc, want)
	}
	data, err := os.ReadFile(loc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a,b\n" {
		t.Errorf("file = %q", data)
	}
}

type MockUploader struct {
	Input *s3.PutObjectInput
	Body  []byte
	Err   error
}

func (m *MockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	m.Input = input
	m.Body, _ = io.ReadAll(input.Body)
	if m.Err != nil {
		return nil, m.Err
	}
	return &manager.UploadOutput{}, nil
}

func TestS3Sink(t *testing.T) {
	up := &MockUploader{}
	sink := &S3Sink{Uploader: up, Bucket: "contractor-reports", Prefix: "reports/"}

	loc, err := sink.Put(context.Background(), "hours.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []byte("xlsx"))
	if err != nil {
		t.Fatal(err)
	}
	if loc != "s3://contractor-reports/reports/hours.xlsx" {
		t.Errorf("location = %q", loc)
	}
	if aws.ToString(up.Input.Key) != "reports/hours.xlsx" || aws.ToString(up.Input.Bucket) != "contractor-reports" {
		t.Errorf("input = %+v", up.Input)
	}
	if string(up.Body) != "xlsx" {
		t.Errorf("body = %q", up.Body)
	}

	up.Err = errors.New("access denied")
	if _, err := sink.Put(context.Background(), "hours.xlsx", "x", nil); !errors.Is(err, up.Err) {
		t.Errorf("err = %v", err)
	}
}
