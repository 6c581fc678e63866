package model

import "strconv"

// DefaultEventGroup 分组为空时归入的分组
const DefaultEventGroup = "Other"

// EventGroups 登记表单提供的分组选项
var EventGroups = []string{"New Year", "Eid Celebrations", "National Day", DefaultEventGroup}

// EventRecord 一条（人员, 活动）出勤记录
type EventRecord struct {
	SerialNumber    string `json:"serial_number"`
	EventName       string `json:"event_name"`
	Location        string `json:"location"`
	Date            string `json:"date"`
	DurationMinutes int    `json:"duration_minutes"`
	Group           string `json:"group"`
	Row             int    `json:"row"`
}

// EventColumns 活动日志的规范列顺序（6 列版本）
var EventColumns = []string{"SN", "EventName", "Location", "Date", "Duration", "Group"}

// Values 按 EventColumns 顺序输出单元格
func (e *EventRecord) Values() []string {
	return []string{
		e.SerialNumber,
		e.EventName,
		e.Location,
		e.Date,
		strconv.Itoa(e.DurationMinutes),
		e.Group,
	}
}
