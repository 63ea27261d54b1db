package provider

import (
	"context"

	"cert-rotator/internal/domain"
)

// CertStore 证书库操作接口
type CertStore interface {
	// Upload 上传证书和私钥，返回证书ID
	Upload(ctx context.Context, certPEM, keyPEM string) (certID string, err error)

	// Rebind 将旧证书的资源绑定切换到新证书，并轮询部署完成
	Rebind(ctx context.Context, oldCertID, newCertID string) (Outcome, error)

	// Delete 批量删除证书，并轮询删除任务全部落定
	Delete(ctx context.Context, certIDs []string) (Outcome, error)
}

// CdnQuerier CDN证书绑定查询接口
type CdnQuerier interface {
	// QueryBindings 查询指定CDN域名当前绑定的证书
	QueryBindings(ctx context.Context, domains []string) ([]CdnBinding, error)
}

// EdgeQuerier EdgeOne证书绑定查询接口
type EdgeQuerier interface {
	// QueryBindings 查询各站点加速域名绑定的证书ID集合（跨站点合并去重）
	QueryBindings(ctx context.Context, zones []domain.EdgeZone) ([]string, error)
}
