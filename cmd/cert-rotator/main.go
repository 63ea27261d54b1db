package main

import (
	"fmt"
	"log"
	"os"

	"cert-rotator/internal/config"
	"cert-rotator/internal/core"
	"cert-rotator/internal/daemon"
)

func printUsage() {
	fmt.Println(`腾讯云CDN/EdgeOne证书轮换工具

用法:
  cert-rotator [config.yaml]

流程:
  1. 上传新证书到SSL证书管理
  2. 查询CDN域名与EdgeOne站点当前绑定的旧证书
  3. 将每个旧证书的绑定切换到新证书（逐个确认部署完成）
  4. 等待60秒生效后批量删除旧证书

配置（文件或环境变量，环境变量优先）:
  tencent.secret_id  / TENCENT_SECRET_ID    腾讯云 SecretId
  tencent.secret_key / TENCENT_SECRET_KEY   腾讯云 SecretKey
  tencent.region     / TENCENT_REGION       地域，默认 ap-guangzhou
  cert_file          / CERT_FILE            新证书链文件路径 (PEM)
  key_file           / KEY_FILE             新证书私钥路径 (PEM)
  domains            / DOMAIN_LIST          域名清单，每行若干域名；
                                            zone- 开头的行表示EdgeOne站点及其域名

域名清单示例:
  cdn1.example.com cdn2.example.com
  zone-2f8a1b3c9d7e edge1.example.com edge2.example.com

可选配置:
  delete_on_timeout   切换超时的旧证书是否仍然删除，默认 true
  post_command        轮换成功后执行的命令，可用 ${NEW_CERT_ID}、
                      ${OLD_CERT_IDS}、${DELETED_CERT_IDS} 变量
  webhook             轮换结果 Webhook 通知`)
}

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		if os.Args[1] == "-h" || os.Args[1] == "--help" {
			printUsage()
			return
		}
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	manager, err := core.NewManager(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	// 信号处理
	sigHandler := daemon.NewSignalHandler()
	sigHandler.Start()

	if err := manager.Run(sigHandler.Context()); err != nil {
		log.Fatalf("运行出错: %v", err)
	}
}
