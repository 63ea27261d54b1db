package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"cert-rotator/internal/config"
	domainpkg "cert-rotator/internal/domain"
	"cert-rotator/internal/notification"
	"cert-rotator/internal/provider"
	"cert-rotator/internal/storage"
)

// Phase 轮换阶段
type Phase string

const (
	PhaseUploading   Phase = "uploading"   // 上传新证书
	PhaseDiscovering Phase = "discovering" // 查询旧证书绑定
	PhaseRotating    Phase = "rotating"    // 切换绑定
	PhaseDelaying    Phase = "delaying"    // 等待变更生效
	PhaseDeleting    Phase = "deleting"    // 删除旧证书
	PhaseDone        Phase = "done"        // 完成
	PhaseFailed      Phase = "failed"      // 失败，终态
)

// DeleteDelay 绑定切换完成到删除旧证书之间的固定等待时间
const DeleteDelay = 60 * time.Second

// Manager 证书轮换管理器
// 单次运行完成一整轮轮换，阶段严格串行推进，任一阶段的致命错误终止后续阶段
type Manager struct {
	config      *config.Config
	certStore   provider.CertStore
	cdnQuerier  provider.CdnQuerier
	edgeQuerier provider.EdgeQuerier
	notifier    *notification.WebhookNotifier
	executor    *Executor
	deleteDelay time.Duration

	phase Phase
}

// NewManager 创建轮换管理器
func NewManager(cfg *config.Config) (*Manager, error) {
	factory := NewFactory(cfg)

	certStore, err := factory.GetCertStore()
	if err != nil {
		return nil, err
	}
	cdnQuerier, err := factory.GetCdnQuerier()
	if err != nil {
		return nil, err
	}
	edgeQuerier, err := factory.GetEdgeQuerier()
	if err != nil {
		return nil, err
	}

	return &Manager{
		config:      cfg,
		certStore:   certStore,
		cdnQuerier:  cdnQuerier,
		edgeQuerier: edgeQuerier,
		notifier:    notification.NewWebhookNotifier(cfg.Webhook),
		executor:    NewExecutor(),
		deleteDelay: DeleteDelay,
		phase:       PhaseUploading,
	}, nil
}

// Phase 当前阶段
func (m *Manager) Phase() Phase {
	return m.phase
}

// setPhase 推进阶段并记录
func (m *Manager) setPhase(phase Phase) {
	m.phase = phase
	log.Printf("========== 阶段: %s ==========", phase)
}

// Run 执行一次完整的证书轮换
func (m *Manager) Run(ctx context.Context) error {
	targets := domainpkg.Parse(m.config.Domains)

	log.Println("========== 开始证书轮换 ==========")
	log.Printf("CDN域名 (%d 个): %v", len(targets.CDNDomains), targets.CDNDomains)
	for _, zone := range targets.EdgeZones {
		log.Printf("EdgeOne站点 %s (%d 个域名): %v", zone.ZoneID, len(zone.Domains), zone.Domains)
	}

	newCertID, err := m.rotate(ctx, targets)
	if err != nil {
		failedPhase := m.phase
		m.phase = PhaseFailed
		log.Printf("证书轮换失败 (阶段: %s): %v", failedPhase, err)
		m.notifier.NotifyRotationFailed(ctx, newCertID, string(failedPhase), err.Error())
		return err
	}

	log.Println("========== 证书轮换完成 ==========")
	return nil
}

// rotate 按阶段推进轮换，返回新证书ID供失败通知使用
func (m *Manager) rotate(ctx context.Context, targets domainpkg.Targets) (string, error) {
	// 1. 读取并上传新证书
	m.setPhase(PhaseUploading)
	cert, err := storage.LoadCertificate(m.config.CertFile, m.config.KeyFile)
	if err != nil {
		return "", err
	}

	newCertID, err := m.certStore.Upload(ctx, cert.Certificate, cert.PrivateKey)
	if err != nil {
		return "", err
	}

	// 2. 查询当前绑定的旧证书
	m.setPhase(PhaseDiscovering)
	oldCertIDs, err := m.discover(ctx, targets, newCertID)
	if err != nil {
		return newCertID, err
	}

	// 没有需要轮换的绑定是合法的成功结果
	if len(oldCertIDs) == 0 {
		log.Printf("未发现需要轮换的旧证书绑定，轮换结束")
		m.setPhase(PhaseDone)
		m.notifier.NotifyRotationCompleted(ctx, newCertID, nil, nil)
		return newCertID, nil
	}
	log.Printf("共发现 %d 个旧证书待轮换: %v", len(oldCertIDs), oldCertIDs)

	// 3. 逐个切换绑定，串行执行以控制API速率并保持日志顺序
	m.setPhase(PhaseRotating)
	settled, timedOut, err := m.rebindAll(ctx, oldCertIDs, newCertID)
	if err != nil {
		return newCertID, err
	}

	// 4. 等待变更在边缘节点生效
	m.setPhase(PhaseDelaying)
	log.Printf("等待 %v 后删除旧证书...", m.deleteDelay)
	select {
	case <-ctx.Done():
		return newCertID, ctx.Err()
	case <-time.After(m.deleteDelay):
	}

	// 5. 删除旧证书
	m.setPhase(PhaseDeleting)
	toDelete := settled
	if m.config.ShouldDeleteOnTimeout() {
		toDelete = oldCertIDs
	} else if len(timedOut) > 0 {
		log.Printf("以下证书切换超时，按配置跳过删除: %v", timedOut)
	}

	if len(toDelete) > 0 {
		outcome, err := m.certStore.Delete(ctx, toDelete)
		if err != nil {
			return newCertID, err
		}
		if outcome == provider.OutcomeTimedOut {
			log.Printf("错误: 删除任务未在预算内全部落定，请到控制台确认删除结果")
		}
	} else {
		log.Printf("没有可删除的旧证书，跳过删除")
	}

	m.setPhase(PhaseDone)
	m.notifier.NotifyRotationCompleted(ctx, newCertID, settled, timedOut)
	m.runPostCommand(newCertID, oldCertIDs, toDelete)

	return newCertID, nil
}

// discover 查询CDN与EdgeOne当前绑定的证书，合并去重并排除新证书自身
// 新证书ID出现在查询结果中（对已是最新证书的域名重复执行轮换）必须排除，
// 证书不能切换到它自己
func (m *Manager) discover(ctx context.Context, targets domainpkg.Targets, newCertID string) ([]string, error) {
	seen := make(map[string]bool)
	var oldCertIDs []string

	add := func(certID string) {
		if certID == "" || certID == newCertID || seen[certID] {
			return
		}
		seen[certID] = true
		oldCertIDs = append(oldCertIDs, certID)
	}

	if len(targets.CDNDomains) > 0 {
		bindings, err := m.cdnQuerier.QueryBindings(ctx, targets.CDNDomains)
		if err != nil {
			return nil, fmt.Errorf("CDN绑定查询失败: %w", err)
		}
		for _, binding := range bindings {
			add(binding.CertID)
		}
	} else {
		log.Printf("无CDN域名，跳过CDN绑定查询")
	}

	if targets.HasEdgeDomains() {
		certIDs, err := m.edgeQuerier.QueryBindings(ctx, targets.EdgeZones)
		if err != nil {
			return nil, fmt.Errorf("EdgeOne绑定查询失败: %w", err)
		}
		for _, certID := range certIDs {
			add(certID)
		}
	} else {
		log.Printf("无EdgeOne站点域名，跳过EdgeOne绑定查询")
	}

	return oldCertIDs, nil
}

// rebindAll 串行切换每个旧证书的绑定，返回已确认与超时的证书ID
func (m *Manager) rebindAll(ctx context.Context, oldCertIDs []string, newCertID string) (settled, timedOut []string, err error) {
	for _, oldCertID := range oldCertIDs {
		outcome, rebindErr := m.certStore.Rebind(ctx, oldCertID, newCertID)
		if rebindErr != nil {
			return nil, nil, fmt.Errorf("切换证书 %s 的绑定失败: %w", oldCertID, rebindErr)
		}

		if outcome == provider.OutcomeTimedOut {
			timedOut = append(timedOut, oldCertID)
			m.notifier.NotifyRebindTimeout(ctx, oldCertID, newCertID)
			continue
		}
		settled = append(settled, oldCertID)
	}

	if len(timedOut) > 0 {
		log.Printf("切换确认: %d 个完成, %d 个超时 (%v)", len(settled), len(timedOut), timedOut)
	}
	return settled, timedOut, nil
}

// runPostCommand 执行轮换后置命令，失败仅记录日志
func (m *Manager) runPostCommand(newCertID string, oldCertIDs, deletedCertIDs []string) {
	if m.config.PostCommand == "" {
		return
	}

	vars := m.executor.BuildVars(newCertID, oldCertIDs, deletedCertIDs)
	if err := m.executor.RunPostCommand(m.config.PostCommand, vars); err != nil {
		log.Printf("执行后置命令失败: %v", err)
	}
}
