package provider

// Certificate 证书内容
type Certificate struct {
	Certificate string // 证书链 (PEM格式)
	PrivateKey  string // 私钥 (PEM格式)
}

// CdnBinding CDN域名与证书绑定的查询快照
type CdnBinding struct {
	Domain string // CDN域名
	CertID string // HTTPS配置绑定的证书ID，未绑定时为空
}

// Outcome 轮询类操作的结果
// 超时不是错误：远端任务最终一致，预算耗尽后记录日志并继续
type Outcome int

const (
	OutcomeSettled  Outcome = iota // 远端任务已全部落定
	OutcomeTimedOut                // 轮询预算耗尽，任务仍未落定
)

// String 返回结果的文字表示
func (o Outcome) String() string {
	switch o {
	case OutcomeSettled:
		return "settled"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}
