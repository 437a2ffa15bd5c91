package storage_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bankmetrics/internal/port"
	"bankmetrics/internal/storage"
	"bankmetrics/mocks"
)

func uploadOf(key string, body string) interface{} {
	return mock.MatchedBy(func(in port.UploadInput) bool {
		if in.Key != key || in.Bucket != "results" || in.ContentType != "application/json" {
			return false
		}
		if seeker, ok := in.Body.(io.Seeker); ok {
			_, _ = seeker.Seek(0, io.SeekStart)
		}
		b, err := io.ReadAll(in.Body)
		return err == nil && string(b) == body && in.Size == int64(len(body))
	})
}

func TestResultPublisher_Publish(t *testing.T) {
	store := new(mocks.MockObjectStorage)
	pub := storage.NewResultPublisher(store, "results", "/bank-metrics/", 0)
	store.On("Upload", mock.Anything, uploadOf("bank-metrics/Q12025/consolidated_results.json", `{"banks":{}}`)).
		Return(&port.UploadOutput{Location: "https://results.s3/x"}, nil)

	uri, err := pub.Publish(context.Background(), "Q12025", []byte(`{"banks":{}}`))

	require.NoError(t, err)
	assert.Equal(t, "s3://results/bank-metrics/Q12025/consolidated_results.json", uri)
	store.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResultPublisher_Publish_Presigned(t *testing.T) {
	store := new(mocks.MockObjectStorage)
	pub := storage.NewResultPublisher(store, "results", "", 3600)
	store.On("Upload", mock.Anything, uploadOf("Q12025/consolidated_results.json", "{}")).Return(&port.UploadOutput{}, nil)
	store.On("GetPresignedURL", mock.Anything, "results", "Q12025/consolidated_results.json", int64(3600)).
		Return("https://signed.example/Q12025", nil)

	uri, err := pub.Publish(context.Background(), "Q12025", []byte("{}"))

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/Q12025", uri)
}

func TestResultPublisher_Publish_UploadError(t *testing.T) {
	store := new(mocks.MockObjectStorage)
	pub := storage.NewResultPublisher(store, "results", "p", 0)
	store.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := pub.Publish(context.Background(), "Q12025", []byte("{}"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
