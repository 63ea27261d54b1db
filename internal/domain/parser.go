package domain

import "strings"

// ZonePrefix EdgeOne站点ID前缀
// 域名清单中以该前缀开头的行首token视为站点ID，该行其余token为站点下的域名
const ZonePrefix = "zone-"

// EdgeZone EdgeOne站点条目
type EdgeZone struct {
	ZoneID  string   // 站点ID
	Domains []string // 站点下的加速域名（去重，保持首次出现顺序）
}

// Targets 解析后的轮换目标
type Targets struct {
	CDNDomains []string   // CDN域名（去重，保持首次出现顺序）
	EdgeZones  []EdgeZone // EdgeOne站点及其域名
}

// IsEmpty 是否没有任何目标
func (t *Targets) IsEmpty() bool {
	return len(t.CDNDomains) == 0 && len(t.EdgeZones) == 0
}

// HasEdgeDomains 是否存在至少一个带域名的站点
func (t *Targets) HasEdgeDomains() bool {
	for _, zone := range t.EdgeZones {
		if len(zone.Domains) > 0 {
			return true
		}
	}
	return false
}

// Format 将目标重新序列化为域名清单文本
// 满足 Parse(t.Format()) 与原目标等价
func (t *Targets) Format() string {
	var lines []string
	if len(t.CDNDomains) > 0 {
		lines = append(lines, strings.Join(t.CDNDomains, " "))
	}
	for _, zone := range t.EdgeZones {
		if len(zone.Domains) == 0 {
			lines = append(lines, zone.ZoneID)
			continue
		}
		lines = append(lines, zone.ZoneID+" "+strings.Join(zone.Domains, " "))
	}
	return strings.Join(lines, "\n")
}

// Parse 解析域名清单文本
// 按行拆分，行内按空白拆分为token；zone- 开头的行首token为EdgeOne站点ID，
// 该行其余token归入该站点的域名集合（同一站点多行累加）；其他行的token
// 全部归入CDN域名列表。空行、空输入产生空结果，解析永不失败。
func Parse(text string) Targets {
	var targets Targets
	cdnSeen := make(map[string]bool)
	zoneIndex := make(map[string]int)
	zoneSeen := make(map[string]map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if strings.HasPrefix(fields[0], ZonePrefix) {
			zoneID := fields[0]
			idx, ok := zoneIndex[zoneID]
			if !ok {
				idx = len(targets.EdgeZones)
				zoneIndex[zoneID] = idx
				zoneSeen[zoneID] = make(map[string]bool)
				targets.EdgeZones = append(targets.EdgeZones, EdgeZone{ZoneID: zoneID})
			}
			for _, d := range fields[1:] {
				if zoneSeen[zoneID][d] {
					continue
				}
				zoneSeen[zoneID][d] = true
				targets.EdgeZones[idx].Domains = append(targets.EdgeZones[idx].Domains, d)
			}
			continue
		}

		for _, d := range fields {
			if cdnSeen[d] {
				continue
			}
			cdnSeen[d] = true
			targets.CDNDomains = append(targets.CDNDomains, d)
		}
	}

	return targets
}
