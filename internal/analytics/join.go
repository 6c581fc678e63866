package analytics

import (
	"github.com/amjey/staff-tracker/internal/model"
	"github.com/amjey/staff-tracker/internal/normalize"
)

// Attendee 活动记录左连接人员信息后的一行
type Attendee struct {
	model.EventRecord
	StaffName string `json:"staff_name"`
	StaffRank string `json:"staff_rank"`
	Contact   string `json:"contact"`
	Matched   bool   `json:"matched"` // false 表示编号在名册中不存在，人员字段留空
}

// JoinLocation 把一组活动记录与名册左连接（JoinPolicy），保持活动记录原顺序
func JoinLocation(events []model.EventRecord, staff []model.StaffRecord) []Attendee {
	idx := IndexStaff(staff)
	out := make([]Attendee, 0, len(events))
	for _, e := range events {
		a := Attendee{EventRecord: e}
		if s, ok := idx[normalize.Canonical(e.SerialNumber)]; ok {
			a.StaffName = s.Name
			a.StaffRank = s.Rank
			a.Contact = s.Contact
			a.Matched = true
		}
		out = append(out, a)
	}
	return out
}
