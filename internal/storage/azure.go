package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/mazrean/blobbackup/internal/metrics"
	myhttp "github.com/mazrean/blobbackup/internal/pkg/http"
	"github.com/mazrean/blobbackup/log"
)

var _ Storage = (*Azure)(nil)
var latencyGauge = metrics.NewGauge("azure_blob_storage_latency")

// Azure stores objects as block blobs in an Azure Blob Storage container.
type Azure struct {
	logger log.Logger
	client *container.Client
}

func NewAzure(logger log.Logger, connectionString, containerName string) (*Azure, error) {
	client, err := container.NewClientFromConnectionString(connectionString, containerName, &container.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: myhttp.NewClient(),
			Retry: policy.RetryOptions{
				MaxRetries: 3,
				RetryDelay: 1 * time.Second,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create container client: %w", err)
	}

	logger.Infof("azure blob storage initialized with container %q", containerName)

	return &Azure{
		logger: logger,
		client: client,
	}, nil
}

func (a *Azure) List(ctx context.Context, prefix string, fn func(Object) error) error {
	opts := &container.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = to.Ptr(prefix)
	}

	pager := a.client.NewListBlobsFlatPager(opts)
	for pager.More() {
		var (
			page container.ListBlobsFlatResponse
			err  error
		)
		latencyGauge.Stopwatch(func() {
			page, err = pager.NextPage(ctx)
		}, "list_blobs_flat")
		if err != nil {
			return fmt.Errorf("list blobs: %w", err)
		}
		if page.Segment == nil {
			continue
		}

		for _, item := range page.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}

			obj := Object{Name: *item.Name}
			if item.Properties != nil {
				obj.Size = item.Properties.ContentLength
			}
			if err := fn(obj); err != nil {
				return err
			}
		}
	}

	return nil
}

func (a *Azure) DeleteIfExists(ctx context.Context, name string) (bool, error) {
	var err error
	latencyGauge.Stopwatch(func() {
		_, err = a.client.NewBlockBlobClient(name).Delete(ctx, &blob.DeleteOptions{
			DeleteSnapshots: to.Ptr(blob.DeleteSnapshotsOptionTypeInclude),
		})
	}, "delete")
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("delete blob: %w", err)
	}

	return true, nil
}

func (a *Azure) Upload(ctx context.Context, name string, r io.Reader, _ int64, tier Tier) error {
	contentType, body, err := detectContentType(r)
	if err != nil {
		return err
	}

	latencyGauge.Stopwatch(func() {
		_, err = a.client.NewBlockBlobClient(name).UploadStream(ctx, body, &blockblob.UploadStreamOptions{
			AccessTier:  uploadAccessTier(tier),
			HTTPHeaders: &blob.HTTPHeaders{
				BlobContentType: to.Ptr(contentType),
			},
		})
	}, "upload_stream")
	if err != nil {
		return fmt.Errorf("upload stream: %w", err)
	}

	return nil
}

// uploadAccessTier leaves the account default in place when no tier is given.
func uploadAccessTier(tier Tier) *blob.AccessTier {
	if tier == "" {
		return nil
	}
	return to.Ptr(blob.AccessTier(tier))
}

func (a *Azure) SetTier(ctx context.Context, name string, tier Tier) error {
	var (
		res blob.SetTierResponse
		err error
	)
	latencyGauge.Stopwatch(func() {
		res, err = a.client.NewBlockBlobClient(name).SetTier(ctx, blob.AccessTier(tier), nil)
	}, "set_tier")
	if err != nil {
		return fmt.Errorf("set tier: %w", err)
	}

	var requestID string
	if res.RequestID != nil {
		requestID = *res.RequestID
	}
	a.logger.Debugf("access tier of %s set to %s (request %s)", name, tier, requestID)

	return nil
}

func (a *Azure) ParseTier(name string) (Tier, error) {
	possible := blob.PossibleAccessTierValues()
	tiers := make([]Tier, 0, len(possible))
	for _, tier := range possible {
		tiers = append(tiers, Tier(tier))
	}

	return matchTier(name, tiers)
}

func (a *Azure) Close(context.Context) error {
	return nil
}
