package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/sirupsen/logrus"
)

// BlobArchiver keeps raw scan snapshots in Azure Blob Storage. The relational
// store holds only the derived records; the snapshots make a scan replayable.
type BlobArchiver struct {
	client        *azblob.Client
	containerName string
}

// Ensure BlobArchiver implements Archiver
var _ Archiver = (*BlobArchiver)(nil)

// NewBlobArchiver creates a blob client using managed identity.
func NewBlobArchiver(accountName, containerName string) (*BlobArchiver, error) {
	if accountName == "" {
		return nil, fmt.Errorf("storage account name is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	client, err := azblob.NewClient(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}

	archiver := &BlobArchiver{
		client:        client,
		containerName: containerName,
	}

	if err := archiver.ensureContainer(); err != nil {
		return nil, fmt.Errorf("failed to ensure container exists: %w", err)
	}

	return archiver, nil
}

func (a *BlobArchiver) ensureContainer() error {
	ctx := context.Background()

	_, err := a.client.CreateContainer(ctx, a.containerName, nil)
	if err != nil {
		if !strings.Contains(err.Error(), "ContainerAlreadyExists") {
			return fmt.Errorf("failed to create container: %w", err)
		}
		logrus.Debugf("Container %s already exists", a.containerName)
	} else {
		logrus.Infof("Created container %s", a.containerName)
	}

	return nil
}

// Store uploads a snapshot blob.
func (a *BlobArchiver) Store(filename string, data []byte) error {
	ctx := context.Background()

	_, err := a.client.UploadBuffer(ctx, a.containerName, filename, data, &azblob.UploadBufferOptions{
		BlockSize:   int64(1024 * 1024),
		Concurrency: 3,
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", filename, err)
	}

	logrus.Debugf("Archived %s", filename)
	return nil
}

// Retrieve downloads a snapshot blob.
func (a *BlobArchiver) Retrieve(filename string) ([]byte, error) {
	ctx := context.Background()

	response, err := a.client.DownloadStream(ctx, a.containerName, filename, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s: %w", filename, err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob content: %w", err)
	}

	return data, nil
}

// List returns blob names under the given prefix.
func (a *BlobArchiver) List(prefix string) ([]string, error) {
	ctx := context.Background()

	var blobNames []string
	pager := a.client.NewListBlobsFlatPager(a.containerName, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs: %w", err)
		}

		for _, blob := range page.Segment.BlobItems {
			if blob.Name != nil {
				blobNames = append(blobNames, *blob.Name)
			}
		}
	}

	return blobNames, nil
}

// Delete removes a snapshot blob.
func (a *BlobArchiver) Delete(filename string) error {
	ctx := context.Background()

	_, err := a.client.DeleteBlob(ctx, a.containerName, filename, nil)
	if err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", filename, err)
	}

	return nil
}
