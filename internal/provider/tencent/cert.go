package tencent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	ssl "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/ssl/v20191205"

	"cert-rotator/internal/provider"
)

// 轮询预算：固定1秒间隔，最多60次，限定单次等待在1分钟左右
const (
	PollInterval = time.Second
	PollAttempts = 60
)

// rebindResourceTypes 切换绑定时覆盖的资源类型
var rebindResourceTypes = []string{"cdn", "teo"}

// deleteTaskStatusDeleting 删除任务"删除中"状态码，只有该状态视为未落定
const deleteTaskStatusDeleting = 0

// deleteTaskStatusText 删除任务状态码说明表
var deleteTaskStatusText = map[uint64]string{
	0: "删除中",
	1: "删除成功",
	2: "删除失败：证书存在关联的云资源",
	3: "删除失败：证书不属于当前账号",
	4: "删除失败：证书状态不支持删除",
	5: "删除失败：内部错误",
}

// sslAPI SSL服务调用接口，测试时注入模拟实现
type sslAPI interface {
	UploadCertificateWithContext(ctx context.Context, request *ssl.UploadCertificateRequest) (*ssl.UploadCertificateResponse, error)
	UpdateCertificateInstanceWithContext(ctx context.Context, request *ssl.UpdateCertificateInstanceRequest) (*ssl.UpdateCertificateInstanceResponse, error)
	DeleteCertificatesWithContext(ctx context.Context, request *ssl.DeleteCertificatesRequest) (*ssl.DeleteCertificatesResponse, error)
	DescribeDeleteCertificatesTaskResultWithContext(ctx context.Context, request *ssl.DescribeDeleteCertificatesTaskResultRequest) (*ssl.DescribeDeleteCertificatesTaskResultResponse, error)
}

// CertStore 腾讯云证书库客户端
type CertStore struct {
	client       sslAPI
	pollInterval time.Duration
	pollAttempts int
}

// NewCertStore 创建证书库客户端
func NewCertStore(cc *ClientConfig) (*CertStore, error) {
	client, err := ssl.NewClient(cc.Credential, cc.Region, newProfile(sslEndpoint))
	if err != nil {
		return nil, fmt.Errorf("创建SSL客户端失败: %w", err)
	}

	return &CertStore{
		client:       client,
		pollInterval: PollInterval,
		pollAttempts: PollAttempts,
	}, nil
}

// Upload 上传证书和私钥，返回证书ID
func (s *CertStore) Upload(ctx context.Context, certPEM, keyPEM string) (string, error) {
	log.Printf("[SSL] 开始上传新证书...")

	request := ssl.NewUploadCertificateRequest()
	request.CertificatePublicKey = common.StringPtr(certPEM)
	request.CertificatePrivateKey = common.StringPtr(keyPEM)
	request.CertificateType = common.StringPtr("SVR")

	response, err := s.client.UploadCertificateWithContext(ctx, request)
	if err != nil {
		return "", fmt.Errorf("上传证书失败: %w", err)
	}
	log.Printf("[SSL] 上传响应: %s", response.ToJsonString())

	if response.Response == nil || response.Response.CertificateId == nil || *response.Response.CertificateId == "" {
		return "", fmt.Errorf("上传证书成功但未返回证书ID")
	}

	certID := *response.Response.CertificateId
	log.Printf("[SSL] 证书上传成功，CertificateId: %s", certID)
	return certID, nil
}

// Rebind 将旧证书的资源绑定切换到新证书
// UpdateCertificateInstance 接口可重入，重复发起同一请求即为轮询，
// 响应中出现非零 DeployRecordId 表示部署完成
func (s *CertStore) Rebind(ctx context.Context, oldCertID, newCertID string) (provider.Outcome, error) {
	log.Printf("[SSL] 开始切换证书绑定: %s -> %s", oldCertID, newCertID)

	request := ssl.NewUpdateCertificateInstanceRequest()
	request.OldCertificateId = common.StringPtr(oldCertID)
	request.CertificateId = common.StringPtr(newCertID)
	request.ResourceTypes = common.StringPtrs(rebindResourceTypes)
	request.ExpiringNotificationSwitch = common.Uint64Ptr(1)

	for attempt := 1; attempt <= s.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return provider.OutcomeTimedOut, ctx.Err()
		default:
		}

		response, err := s.client.UpdateCertificateInstanceWithContext(ctx, request)
		if err != nil {
			return provider.OutcomeTimedOut, fmt.Errorf("切换证书绑定失败: %w", err)
		}
		log.Printf("[SSL] 切换响应 (第 %d/%d 次): %s", attempt, s.pollAttempts, response.ToJsonString())

		if response.Response != nil && response.Response.DeployRecordId != nil && *response.Response.DeployRecordId != 0 {
			log.Printf("[SSL] 证书绑定切换完成: %s -> %s, DeployRecordId: %d",
				oldCertID, newCertID, *response.Response.DeployRecordId)
			return provider.OutcomeSettled, nil
		}

		if attempt < s.pollAttempts {
			time.Sleep(s.pollInterval)
		}
	}

	log.Printf("[SSL] 错误: 切换证书绑定超时 (%s -> %s)，已达最大轮询次数 %d",
		oldCertID, newCertID, s.pollAttempts)
	return provider.OutcomeTimedOut, nil
}

// Delete 批量删除证书并等待删除任务全部落定
func (s *CertStore) Delete(ctx context.Context, certIDs []string) (provider.Outcome, error) {
	log.Printf("[SSL] 开始删除旧证书: %v", certIDs)

	request := ssl.NewDeleteCertificatesRequest()
	request.CertificateIds = common.StringPtrs(certIDs)
	request.IsSync = common.BoolPtr(true)

	response, err := s.client.DeleteCertificatesWithContext(ctx, request)
	if err != nil {
		return provider.OutcomeTimedOut, fmt.Errorf("提交删除请求失败: %w", err)
	}
	log.Printf("[SSL] 删除响应: %s", response.ToJsonString())

	var taskIDs []string
	if response.Response != nil {
		for _, task := range response.Response.CertTaskIds {
			if task != nil && task.TaskId != nil && *task.TaskId != "" {
				taskIDs = append(taskIDs, *task.TaskId)
			}
		}
	}
	if len(taskIDs) == 0 {
		log.Printf("[SSL] 删除请求未返回任务ID，视为已完成")
		return provider.OutcomeSettled, nil
	}

	return s.waitDeleteTasks(ctx, taskIDs)
}

// waitDeleteTasks 轮询删除任务直至全部落定
// 状态不为"删除中"即视为落定；失败状态仅记录日志，不中断等待
func (s *CertStore) waitDeleteTasks(ctx context.Context, taskIDs []string) (provider.Outcome, error) {
	request := ssl.NewDescribeDeleteCertificatesTaskResultRequest()
	request.TaskIds = common.StringPtrs(taskIDs)

	for attempt := 1; attempt <= s.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return provider.OutcomeTimedOut, ctx.Err()
		default:
		}

		response, err := s.client.DescribeDeleteCertificatesTaskResultWithContext(ctx, request)
		if err != nil {
			return provider.OutcomeTimedOut, fmt.Errorf("查询删除任务状态失败: %w", err)
		}
		log.Printf("[SSL] 删除任务状态 (第 %d/%d 次): %s", attempt, s.pollAttempts, response.ToJsonString())

		if allDeleteTasksSettled(response) {
			log.Printf("[SSL] 全部删除任务已落定")
			return provider.OutcomeSettled, nil
		}

		if attempt < s.pollAttempts {
			time.Sleep(s.pollInterval)
		}
	}

	log.Printf("[SSL] 错误: 等待删除任务落定超时，已达最大轮询次数 %d", s.pollAttempts)
	return provider.OutcomeTimedOut, nil
}

// allDeleteTasksSettled 检查删除任务是否全部落定，并逐任务记录状态
func allDeleteTasksSettled(response *ssl.DescribeDeleteCertificatesTaskResultResponse) bool {
	if response.Response == nil || len(response.Response.DeleteTaskResult) == 0 {
		return false
	}

	settled := true
	for _, result := range response.Response.DeleteTaskResult {
		if result == nil || result.Status == nil {
			settled = false
			continue
		}

		status := *result.Status
		text := DeleteTaskStatusText(status)
		if result.Error != nil && *result.Error != "" {
			text += " (" + *result.Error + ")"
		}
		log.Printf("[SSL] 删除任务 %s (证书 %s): %s", strValue(result.TaskId), strValue(result.CertId), text)

		if status == deleteTaskStatusDeleting {
			settled = false
		}
	}
	return settled
}

// DeleteTaskStatusText 删除任务状态码的文字说明
func DeleteTaskStatusText(status uint64) string {
	if text, ok := deleteTaskStatusText[status]; ok {
		return text
	}
	return fmt.Sprintf("未知状态(%d)", status)
}

// strValue 解引用字符串指针，nil返回空串
func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
