package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/amjey/staff-tracker/internal/dto"
)

// summaryCmd 输出看板汇总
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "查看名册与活动汇总",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		result, err := svc.Dashboard.Summary(cmd.Context())
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), result)
		return nil
	},
}

var (
	leaderboardBy  string
	leaderboardTop int
)

// leaderboardCmd 输出出勤排行
var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "按活动次数或累计分钟数排行",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		result, err := svc.Dashboard.Leaderboard(cmd.Context(), leaderboardBy, leaderboardTop)
		if err != nil {
			return err
		}
		printLeaderboard(cmd.OutOrStdout(), result)
		return nil
	},
}

// historyCmd 输出个人档案与出勤历史
var historyCmd = &cobra.Command{
	Use:   "history <sn>",
	Short: "查看某人的活动历史",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := svc.Dashboard.Profile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), result)
		return nil
	},
}

var staffReq dto.StaffRequest

// addStaffCmd 向名册追加一行
var addStaffCmd = &cobra.Command{
	Use:   "add-staff",
	Short: "登记人员",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rec, err := svc.Roster.AppendStaff(cmd.Context(), &staffReq)
		if err != nil {
			return describe(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已登记 %s %s（%s）\n", rec.SerialNumber, rec.Name, rec.Category)
		return nil
	},
}

var eventReq dto.EventRequest

// addEventCmd 向活动记录追加一行
var addEventCmd = &cobra.Command{
	Use:   "add-event",
	Short: "登记一次活动出勤",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rec, err := svc.Event.AppendEvent(cmd.Context(), &eventReq)
		if err != nil {
			return describe(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已登记 %[4]s 于 %[3]s 在 %[2]s 参加 %[1]s（%[5]d 分钟，%[6]s）\n",
			rec.EventName, rec.Location, rec.Date, rec.SerialNumber, rec.DurationMinutes, rec.Group)
		return nil
	},
}

var (
	exportOut string
	exportBy  string
	exportTop int
)

// exportCmd 导出报表文件
var exportCmd = &cobra.Command{
	Use:       "export roster|leaderboard|calendar",
	Short:     "导出名册、排行榜或活动日历",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"roster", "leaderboard", "calendar"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			data     []byte
			filename string
		)
		switch args[0] {
		case "roster":
			buf, name, err := svc.Export.ExportRoster(ctx)
			if err != nil {
				return err
			}
			data, filename = buf.Bytes(), name
		case "leaderboard":
			buf, name, err := svc.Export.ExportLeaderboard(ctx, exportBy, exportTop)
			if err != nil {
				return err
			}
			data, filename = buf.Bytes(), name
		case "calendar":
			buf, name, err := svc.Export.ExportCalendar(ctx)
			if err != nil {
				return err
			}
			data, filename = buf.Bytes(), name
		}

		out := exportOut
		if out == "" {
			out = filename
		} else if info, err := os.Stat(out); err == nil && info.IsDir() {
			out = filepath.Join(out, filename)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("写入导出文件失败: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已写入 %s（%d 字节）\n", out, len(data))
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().StringVar(&leaderboardBy, "by", "count", "排行指标：count（次数）或 duration（分钟）")
	leaderboardCmd.Flags().IntVar(&leaderboardTop, "top", 0, "显示条数（0 为配置默认值，负数为全部）")

	addStaffCmd.Flags().StringVar(&staffReq.SerialNumber, "sn", "", "编号")
	addStaffCmd.Flags().StringVar(&staffReq.Rank, "rank", "", "职级或角色")
	addStaffCmd.Flags().StringVar(&staffReq.Name, "name", "", "姓名")
	addStaffCmd.Flags().StringVar(&staffReq.Unit, "unit", "", "所属单位")
	addStaffCmd.Flags().StringVar(&staffReq.Contact, "contact", "", "联系电话")
	addStaffCmd.Flags().StringVar(&staffReq.LeaderBadge, "badge", "", "队长徽章")
	addStaffCmd.MarkFlagRequired("sn")
	addStaffCmd.MarkFlagRequired("name")

	addEventCmd.Flags().StringVar(&eventReq.SerialNumber, "sn", "", "参加人员编号")
	addEventCmd.Flags().StringVar(&eventReq.EventName, "event", "", "活动名称")
	addEventCmd.Flags().StringVar(&eventReq.Location, "location", "", "活动地点")
	addEventCmd.Flags().StringVar(&eventReq.Date, "date", "", "活动日期 YYYY-MM-DD（默认今天）")
	addEventCmd.Flags().IntVar(&eventReq.DurationMinutes, "duration", 0, "时长（分钟）")
	addEventCmd.Flags().StringVar(&eventReq.Group, "group", "", "活动分组（默认 Other）")
	addEventCmd.MarkFlagRequired("sn")
	addEventCmd.MarkFlagRequired("event")
	addEventCmd.MarkFlagRequired("duration")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "输出文件或目录（默认在当前目录按生成的文件名保存）")
	exportCmd.Flags().StringVar(&exportBy, "by", "count", "导出排行榜时使用的指标")
	exportCmd.Flags().IntVar(&exportTop, "top", 0, "导出排行榜时的条数")
}
