package storage

import (
	"fmt"
	"log"
	"os"

	"cert-rotator/internal/provider"
)

// LoadCertificate 从文件读取证书链和私钥内容
func LoadCertificate(certPath, keyPath string) (*provider.Certificate, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("读取证书文件失败: %w", err)
	}
	if len(certPEM) == 0 {
		return nil, fmt.Errorf("证书文件为空: %s", certPath)
	}

	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("读取私钥文件失败: %w", err)
	}
	if len(keyPEM) == 0 {
		return nil, fmt.Errorf("私钥文件为空: %s", keyPath)
	}

	log.Printf("  - 证书文件: %s (%d 字节)", certPath, len(certPEM))
	log.Printf("  - 私钥文件: %s (%d 字节)", keyPath, len(keyPEM))

	return &provider.Certificate{
		Certificate: string(certPEM),
		PrivateKey:  string(keyPEM),
	}, nil
}
