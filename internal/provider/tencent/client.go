package tencent

import (
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"

	"cert-rotator/internal/config"
)

// 各服务的API端点
const (
	sslEndpoint = "ssl.tencentcloudapi.com"
	cdnEndpoint = "cdn.tencentcloudapi.com"
	teoEndpoint = "teo.tencentcloudapi.com"
)

// ClientConfig 腾讯云客户端共享配置
// 进程启动时构造一次，显式传入各服务客户端的构造函数，不依赖任何全局状态
type ClientConfig struct {
	Credential *common.Credential
	Region     string
}

// NewClientConfig 根据凭证配置构造共享客户端配置
func NewClientConfig(cfg *config.TencentConfig) *ClientConfig {
	region := cfg.Region
	if region == "" {
		region = "ap-guangzhou"
	}

	return &ClientConfig{
		Credential: common.NewCredential(cfg.SecretID, cfg.SecretKey),
		Region:     region,
	}
}

// newProfile 构造指定端点的客户端Profile
func newProfile(endpoint string) *profile.ClientProfile {
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = endpoint
	return cpf
}
