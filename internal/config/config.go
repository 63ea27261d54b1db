package config

// Config 配置结构
type Config struct {
	// 腾讯云凭证配置
	Tencent TencentConfig `yaml:"tencent"`

	// 新证书文件路径
	CertFile string `yaml:"cert_file"` // 证书链文件 (PEM)
	KeyFile  string `yaml:"key_file"`  // 私钥文件 (PEM)

	// 域名清单文本，多行；zone- 开头的行表示EdgeOne站点及其域名，
	// 其他行的域名归入CDN
	Domains string `yaml:"domains"`

	// 切换超时的旧证书是否仍然删除，缺省为 true
	DeleteOnTimeout *bool `yaml:"delete_on_timeout,omitempty"`

	// 轮换成功后执行的命令
	PostCommand string `yaml:"post_command,omitempty"`

	// Webhook 通知配置
	Webhook *WebhookConfig `yaml:"webhook,omitempty"`
}

// TencentConfig 腾讯云凭证配置
type TencentConfig struct {
	SecretID  string `yaml:"secret_id"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
}

// WebhookConfig Webhook 通知配置
type WebhookConfig struct {
	Enabled      bool              `yaml:"enabled"`                 // 是否启用
	URL          string            `yaml:"url"`                     // Webhook URL
	Headers      map[string]string `yaml:"headers,omitempty"`       // 自定义请求头
	Events       []string          `yaml:"events,omitempty"`        // 订阅的事件类型
	Timeout      int               `yaml:"timeout,omitempty"`       // 请求超时时间（秒），默认30
	Retries      int               `yaml:"retries,omitempty"`       // 重试次数，默认3
	BodyTemplate string            `yaml:"body_template,omitempty"` // 请求体模板（JSON格式）
}

// ShouldDeleteOnTimeout 切换超时的旧证书是否仍然删除
func (c *Config) ShouldDeleteOnTimeout() bool {
	if c.DeleteOnTimeout == nil {
		return true
	}
	return *c.DeleteOnTimeout
}
