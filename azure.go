package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureClient serves keys from a single blob container
type AzureClient struct {
	client    *azblob.Client
	container string
}

// NewAzureClient creates a container-bound client from a connection string
func NewAzureClient(connectionString, container string) (*AzureClient, error) {
	if connectionString == "" || container == "" {
		return nil, fmt.Errorf("azure_connection_string and azure_container must be set for the azure backend")
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &AzureClient{client: client, container: container}, nil
}

// ListKeys lists every blob in the container
func (c *AzureClient) ListKeys(ctx context.Context) ([]KeyEntry, error) {
	pager := c.client.NewListBlobsFlatPager(c.container, nil)

	var keys []KeyEntry
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs: %w", err)
		}

		for _, item := range page.Segment.BlobItems {
			if item.Name == nil || strings.HasSuffix(*item.Name, "/") {
				continue
			}

			entry := KeyEntry{Name: *item.Name}
			if props := item.Properties; props != nil {
				if props.ContentLength != nil {
					entry.Size = *props.ContentLength
				}
				if props.LastModified != nil {
					entry.LastModified = props.LastModified.In(time.UTC)
				}
			}
			keys = append(keys, entry)
		}
	}

	return keys, nil
}

// Open streams one blob
func (c *AzureClient) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	resp, err := c.client.DownloadStream(ctx, c.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, 0, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, 0, fmt.Errorf("failed to download blob: %w", err)
	}

	var size int64
	if resp.ContentLength != nil {
		size = *resp.ContentLength
	}
	return resp.Body, size, nil
}
