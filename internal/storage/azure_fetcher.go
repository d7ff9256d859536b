package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzurePhotoFetcher resolves azblob://container/blob references against an
// Azure storage account.
type AzurePhotoFetcher struct {
	client *azblob.Client
}

// NewAzurePhotoFetcher creates a shared-key authenticated blob fetcher.
func NewAzurePhotoFetcher(accountName, accountKey string) (*AzurePhotoFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &AzurePhotoFetcher{client: client}, nil
}

// FetchPhoto downloads the blob named by an azblob://container/path reference.
func (s *AzurePhotoFetcher) FetchPhoto(ctx context.Context, ref string) ([]byte, error) {
	containerName, blobName, err := splitBlobRef(ref)
	if err != nil {
		return nil, err
	}

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	return io.ReadAll(retryReader)
}

func splitBlobRef(ref string) (container, blob string, err error) {
	rest, ok := strings.CutPrefix(ref, "azblob://")
	if !ok {
		return "", "", fmt.Errorf("invalid blob reference: %s", ref)
	}
	container, blob, ok = strings.Cut(rest, "/")
	if !ok || container == "" || blob == "" {
		return "", "", fmt.Errorf("invalid blob reference: %s", ref)
	}
	return container, blob, nil
}
