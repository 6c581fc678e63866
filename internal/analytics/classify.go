package analytics

import (
	"strings"

	"github.com/amjey/staff-tracker/internal/model"
)

// roleCategories 职务文本 → 类别，区分大小写，输入先去空白
var roleCategories = map[string]model.Category{
	"Assist.Technician":   model.CategoryAssistTechnician,
	"Driver":              model.CategoryAssistTechnician,
	"Master in Fireworks": model.CategoryTeamLeader,
	"Pro in Fireworks":    model.CategoryTeamLeader,
	"Team Leader":         model.CategoryTeamLeader,
}

// Classify 按固定映射表推导类别，未知职务归入 Unassigned
func Classify(roleLabel string) model.Category {
	if c, ok := roleCategories[strings.TrimSpace(roleLabel)]; ok {
		return c
	}
	return model.CategoryUnassigned
}

// ClassifyAll 为每条人员记录填充 Category
func ClassifyAll(staff []model.StaffRecord) {
	for i := range staff {
		staff[i].Category = Classify(staff[i].RoleLabel)
	}
}

// CategoryCounts 各类别人数，结果总是包含全部三个类别
func CategoryCounts(staff []model.StaffRecord) map[model.Category]int {
	counts := make(map[model.Category]int, len(model.Categories))
	for _, c := range model.Categories {
		counts[c] = 0
	}
	for _, s := range staff {
		counts[Classify(s.RoleLabel)]++
	}
	return counts
}
