package tencent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cdn "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/cdn/v20180606"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"

	"cert-rotator/internal/provider"
)

// fakeCDNAPI cdnAPI 的测试替身
type fakeCDNAPI struct {
	lastRequest *cdn.DescribeDomainsConfigRequest
	response    *cdn.DescribeDomainsConfigResponse
	err         error
}

func (f *fakeCDNAPI) DescribeDomainsConfigWithContext(ctx context.Context, request *cdn.DescribeDomainsConfigRequest) (*cdn.DescribeDomainsConfigResponse, error) {
	f.lastRequest = request
	return f.response, f.err
}

func cdnDomain(name, certID string) *cdn.DetailDomain {
	d := &cdn.DetailDomain{Domain: common.StringPtr(name)}
	if certID != "" {
		d.Https = &cdn.Https{
			CertInfo: &cdn.ServerCert{CertId: common.StringPtr(certID)},
		}
	}
	return d
}

func TestCdnQueryBindings(t *testing.T) {
	api := &fakeCDNAPI{
		response: &cdn.DescribeDomainsConfigResponse{
			Response: &cdn.DescribeDomainsConfigResponseParams{
				Domains: []*cdn.DetailDomain{
					cdnDomain("cdn1.example.com", "old-1"),
					cdnDomain("cdn2.example.com", ""),
				},
			},
		},
	}
	querier := &CdnQuerier{client: api}

	bindings, err := querier.QueryBindings(context.Background(), []string{"cdn1.example.com", "cdn2.example.com"})
	require.NoError(t, err)
	assert.Equal(t, []provider.CdnBinding{
		{Domain: "cdn1.example.com", CertID: "old-1"},
		{Domain: "cdn2.example.com", CertID: ""},
	}, bindings)

	// 单次批量查询，按域名过滤
	require.NotNil(t, api.lastRequest)
	require.Len(t, api.lastRequest.Filters, 1)
	assert.Equal(t, "domain", *api.lastRequest.Filters[0].Name)
	require.Len(t, api.lastRequest.Filters[0].Value, 2)
	assert.Equal(t, "cdn1.example.com", *api.lastRequest.Filters[0].Value[0])
}

func TestCdnQueryBindingsRemoteError(t *testing.T) {
	querier := &CdnQuerier{client: &fakeCDNAPI{err: errors.New("remote unavailable")}}

	_, err := querier.QueryBindings(context.Background(), []string{"cdn1.example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "查询CDN域名配置失败")
}
