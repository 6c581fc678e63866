// Package analytics 名册与活动日志上的纯函数：分类、计数、关联与排行。
package analytics

// 口径常量：各视图只读这些常量，不各自推导。
const (
	// ClassifierPolicy 职务分类采用固定映射表，不使用 "driver" 子串启发式
	ClassifierPolicy = "fixed-set"

	// UniqueEventKey 去重活动的判定键：活动名称 + 地点（去空白、忽略大小写）
	UniqueEventKey = "event_name+location"

	// JoinPolicy 活动关联人员采用左连接：名册中找不到的编号保留为空白人员信息
	JoinPolicy = "left"
)
