package datastore

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"cloud.google.com/go/datastore"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
)

const ProviderKey = "datastore"

const (
	kindPartition = "DsPartition"
	kindMapping   = "DsGroupMapping"
	kindActivity  = "DsSyncActivity"
)

type Provider struct {
	client    dataStoreClient
	ProjectID string `json:"projectId"`
}

func FromJson(data []byte) (*Provider, error) {
	p := &Provider{}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) Connect() error {
	if p.client != nil {
		return nil
	}
	var err error
	p.client, err = datastore.NewClient(context.Background(), p.ProjectID,
		option.WithGRPCDialOption(grpc.WithReturnConnectionError()),
		option.WithGRPCDialOption(grpc.WithTimeout(time.Second*5)),
		option.WithGRPCDialOption(grpc.WithDisableRetry()))
	return err
}

func (p *Provider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

type dataStoreClient interface {
	io.Closer
	Get(ctx context.Context, key *datastore.Key, dst interface{}) (err error)
	Put(ctx context.Context, key *datastore.Key, src interface{}) (*datastore.Key, error)
	GetAll(ctx context.Context, q *datastore.Query, dst interface{}) (keys []*datastore.Key, err error)
	Delete(ctx context.Context, key *datastore.Key) error
}

func partitionKey(partition string) *datastore.Key {
	return datastore.NameKey(kindPartition, partition, nil)
}
