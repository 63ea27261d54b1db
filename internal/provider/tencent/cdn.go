package tencent

import (
	"context"
	"fmt"
	"log"

	cdn "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/cdn/v20180606"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"

	"cert-rotator/internal/provider"
)

// cdnQueryLimit 单次查询的页大小
// 按域名过滤的单页查询，不做分页循环（已知限制，域名数不应超过该值）
const cdnQueryLimit = 1000

// cdnAPI CDN服务调用接口，测试时注入模拟实现
type cdnAPI interface {
	DescribeDomainsConfigWithContext(ctx context.Context, request *cdn.DescribeDomainsConfigRequest) (*cdn.DescribeDomainsConfigResponse, error)
}

// CdnQuerier 腾讯云CDN证书绑定查询
type CdnQuerier struct {
	client cdnAPI
}

// NewCdnQuerier 创建CDN绑定查询客户端
func NewCdnQuerier(cc *ClientConfig) (*CdnQuerier, error) {
	client, err := cdn.NewClient(cc.Credential, cc.Region, newProfile(cdnEndpoint))
	if err != nil {
		return nil, fmt.Errorf("创建CDN客户端失败: %w", err)
	}

	return &CdnQuerier{client: client}, nil
}

// QueryBindings 查询指定CDN域名当前HTTPS配置绑定的证书
func (q *CdnQuerier) QueryBindings(ctx context.Context, domains []string) ([]provider.CdnBinding, error) {
	log.Printf("[CDN] 查询 %d 个域名的证书绑定...", len(domains))

	request := cdn.NewDescribeDomainsConfigRequest()
	request.Offset = common.Int64Ptr(0)
	request.Limit = common.Int64Ptr(cdnQueryLimit)
	request.Filters = []*cdn.DomainFilter{
		{
			Name:  common.StringPtr("domain"),
			Value: common.StringPtrs(domains),
		},
	}

	response, err := q.client.DescribeDomainsConfigWithContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("查询CDN域名配置失败: %w", err)
	}
	log.Printf("[CDN] 查询响应: %s", response.ToJsonString())

	var bindings []provider.CdnBinding
	if response.Response == nil {
		return bindings, nil
	}

	for _, d := range response.Response.Domains {
		if d == nil || d.Domain == nil {
			continue
		}

		binding := provider.CdnBinding{Domain: *d.Domain}
		if d.Https != nil && d.Https.CertInfo != nil && d.Https.CertInfo.CertId != nil {
			binding.CertID = *d.Https.CertInfo.CertId
		}
		bindings = append(bindings, binding)

		if binding.CertID == "" {
			log.Printf("[CDN] 域名 %s 未绑定证书", binding.Domain)
		} else {
			log.Printf("[CDN] 域名 %s 当前证书: %s", binding.Domain, binding.CertID)
		}
	}

	return bindings, nil
}
