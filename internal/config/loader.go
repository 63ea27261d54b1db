package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load 加载配置文件并应用环境变量覆盖
// 配置文件允许不存在，全部输入可由环境变量提供（流水线场景）
func Load(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	applyEnv(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyEnv 环境变量覆盖文件配置
func applyEnv(config *Config) {
	if v := os.Getenv("TENCENT_SECRET_ID"); v != "" {
		config.Tencent.SecretID = v
	}
	if v := os.Getenv("TENCENT_SECRET_KEY"); v != "" {
		config.Tencent.SecretKey = v
	}
	if v := os.Getenv("TENCENT_REGION"); v != "" {
		config.Tencent.Region = v
	}
	if v := os.Getenv("CERT_FILE"); v != "" {
		config.CertFile = v
	}
	if v := os.Getenv("KEY_FILE"); v != "" {
		config.KeyFile = v
	}
	if v := os.Getenv("DOMAIN_LIST"); v != "" {
		config.Domains = v
	}
}

// validate 验证必填配置
func validate(config *Config) error {
	if config.Tencent.SecretID == "" || config.Tencent.SecretKey == "" {
		return fmt.Errorf("腾讯云凭证不完整，请配置 tencent.secret_id / tencent.secret_key 或环境变量 TENCENT_SECRET_ID / TENCENT_SECRET_KEY")
	}
	if config.CertFile == "" {
		return fmt.Errorf("未配置证书文件路径 (cert_file 或环境变量 CERT_FILE)")
	}
	if config.KeyFile == "" {
		return fmt.Errorf("未配置私钥文件路径 (key_file 或环境变量 KEY_FILE)")
	}
	if strings.TrimSpace(config.Domains) == "" {
		return fmt.Errorf("未配置域名清单 (domains 或环境变量 DOMAIN_LIST)")
	}
	return nil
}
