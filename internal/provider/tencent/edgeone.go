package tencent

import (
	"context"
	"fmt"
	"log"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	teo "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/teo/v20220901"

	"cert-rotator/internal/domain"
)

// teoQueryLimit 单次查询的页大小，按域名过滤的单页查询
const teoQueryLimit = 200

// teoAPI EdgeOne服务调用接口，测试时注入模拟实现
type teoAPI interface {
	DescribeAccelerationDomainsWithContext(ctx context.Context, request *teo.DescribeAccelerationDomainsRequest) (*teo.DescribeAccelerationDomainsResponse, error)
}

// EdgeQuerier 腾讯云EdgeOne证书绑定查询
type EdgeQuerier struct {
	client teoAPI
}

// NewEdgeQuerier 创建EdgeOne绑定查询客户端
func NewEdgeQuerier(cc *ClientConfig) (*EdgeQuerier, error) {
	client, err := teo.NewClient(cc.Credential, cc.Region, newProfile(teoEndpoint))
	if err != nil {
		return nil, fmt.Errorf("创建EdgeOne客户端失败: %w", err)
	}

	return &EdgeQuerier{client: client}, nil
}

// QueryBindings 查询各站点加速域名绑定的证书ID集合
// 跨站点合并去重；站点ID为空或域名列表为空的条目跳过，不发起查询
func (q *EdgeQuerier) QueryBindings(ctx context.Context, zones []domain.EdgeZone) ([]string, error) {
	seen := make(map[string]bool)
	var certIDs []string

	for _, zone := range zones {
		if zone.ZoneID == "" || len(zone.Domains) == 0 {
			continue
		}

		ids, err := q.queryZone(ctx, zone)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			certIDs = append(certIDs, id)
		}
	}

	return certIDs, nil
}

// queryZone 查询单个站点下指定加速域名绑定的证书ID
func (q *EdgeQuerier) queryZone(ctx context.Context, zone domain.EdgeZone) ([]string, error) {
	log.Printf("[EdgeOne] 查询站点 %s 下 %d 个域名的证书绑定...", zone.ZoneID, len(zone.Domains))

	request := teo.NewDescribeAccelerationDomainsRequest()
	request.ZoneId = common.StringPtr(zone.ZoneID)
	request.Offset = common.Int64Ptr(0)
	request.Limit = common.Int64Ptr(teoQueryLimit)
	request.Filters = []*teo.AdvancedFilter{
		{
			Name:   common.StringPtr("domain-name"),
			Values: common.StringPtrs(zone.Domains),
		},
	}

	response, err := q.client.DescribeAccelerationDomainsWithContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("查询站点 %s 加速域名失败: %w", zone.ZoneID, err)
	}
	log.Printf("[EdgeOne] 查询响应: %s", response.ToJsonString())

	requested := make(map[string]bool, len(zone.Domains))
	for _, d := range zone.Domains {
		requested[d] = true
	}

	var certIDs []string
	if response.Response == nil {
		return certIDs, nil
	}

	for _, ad := range response.Response.AccelerationDomains {
		if ad == nil || ad.DomainName == nil || !requested[*ad.DomainName] {
			continue
		}
		if ad.Certificate == nil {
			continue
		}
		for _, cert := range ad.Certificate.List {
			if cert == nil || cert.CertId == nil || *cert.CertId == "" {
				continue
			}
			certIDs = append(certIDs, *cert.CertId)
			log.Printf("[EdgeOne] 域名 %s 绑定证书: %s", *ad.DomainName, *cert.CertId)
		}
	}

	return certIDs, nil
}
