package core

import (
	"fmt"

	"cert-rotator/internal/config"
	"cert-rotator/internal/provider"
	"cert-rotator/internal/provider/tencent"
)

// Factory 客户端工厂
// 基于进程启动时构造的同一份云配置创建各服务客户端
type Factory struct {
	clientConfig *tencent.ClientConfig

	// 缓存已创建的客户端实例
	certStore   provider.CertStore
	cdnQuerier  provider.CdnQuerier
	edgeQuerier provider.EdgeQuerier
}

// NewFactory 创建工厂
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		clientConfig: tencent.NewClientConfig(&cfg.Tencent),
	}
}

// GetCertStore 获取证书库客户端
func (f *Factory) GetCertStore() (provider.CertStore, error) {
	if f.certStore != nil {
		return f.certStore, nil
	}

	store, err := tencent.NewCertStore(f.clientConfig)
	if err != nil {
		return nil, fmt.Errorf("创建证书库客户端失败: %w", err)
	}

	f.certStore = store
	return store, nil
}

// GetCdnQuerier 获取CDN绑定查询客户端
func (f *Factory) GetCdnQuerier() (provider.CdnQuerier, error) {
	if f.cdnQuerier != nil {
		return f.cdnQuerier, nil
	}

	querier, err := tencent.NewCdnQuerier(f.clientConfig)
	if err != nil {
		return nil, fmt.Errorf("创建CDN查询客户端失败: %w", err)
	}

	f.cdnQuerier = querier
	return querier, nil
}

// GetEdgeQuerier 获取EdgeOne绑定查询客户端
func (f *Factory) GetEdgeQuerier() (provider.EdgeQuerier, error) {
	if f.edgeQuerier != nil {
		return f.edgeQuerier, nil
	}

	querier, err := tencent.NewEdgeQuerier(f.clientConfig)
	if err != nil {
		return nil, fmt.Errorf("创建EdgeOne查询客户端失败: %w", err)
	}

	f.edgeQuerier = querier
	return querier, nil
}
