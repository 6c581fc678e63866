package model

// Category 由职务文本推导出的人员类别
type Category string

const (
	CategoryTeamLeader       Category = "TeamLeader"
	CategoryAssistTechnician Category = "AssistTechnician"
	CategoryUnassigned       Category = "Unassigned"
)

// Categories 全部类别，按展示顺序
var Categories = []Category{CategoryTeamLeader, CategoryAssistTechnician, CategoryUnassigned}

// StaffRecord 名册中的一名人员（一行）
type StaffRecord struct {
	SerialNumber string   `json:"serial_number"` // 规范化后的编号
	Rank         string   `json:"rank"`
	Name         string   `json:"name"`
	Unit         string   `json:"unit"`
	Contact      string   `json:"contact"`
	LeaderBadge  string   `json:"leader_badge"`
	RoleLabel    string   `json:"role_label"`
	Category     Category `json:"category"` // 派生字段，不落表
	Row          int      `json:"row"`      // 工作表中的行号（从 1 开始，含表头），仅用于排查
}

// StaffColumns 名册的规范列顺序，追加写入时严格按此顺序
var StaffColumns = []string{"SN", "Rank", "Name", "Unit", "Contact", "LeaderBadge"}

// Values 按 StaffColumns 顺序输出单元格
func (s *StaffRecord) Values() []string {
	return []string{s.SerialNumber, s.Rank, s.Name, s.Unit, s.Contact, s.LeaderBadge}
}
