package store

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsAPI 通过服务账号授权访问表格 API，支持读取、追加、按主键修改与删除
type SheetsAPI struct {
	srv           *sheets.Service
	spreadsheetID string
}

// NewSheetsAPI 使用服务账号密钥文件创建 API 会话
func NewSheetsAPI(ctx context.Context, spreadsheetID, credentialsFile string) (*SheetsAPI, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("创建表格 API 会话失败: %w", err)
	}
	return &SheetsAPI{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// quoteSheet A1 表示法中的工作表名需要单引号包裹
func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

// ListRows 读取整张工作表的显示值
func (s *SheetsAPI) ListRows(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, quoteSheet(sheet)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		row := make([]string, len(r))
		for i, v := range r {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendRow 以 RAW 方式追加一行，避免 API 把编号解析成数字
func (s *SheetsAPI) AppendRow(ctx context.Context, sheet string, values []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(values)}}
	_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, quoteSheet(sheet), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// UpdateRow 重新读取工作表定位主键所在行后整行覆盖
func (s *SheetsAPI) UpdateRow(ctx context.Context, sheet string, key RowKey, values []string) error {
	rows, err := s.ListRows(ctx, sheet)
	if err != nil {
		return err
	}
	idx, err := findRow(rows, key)
	if err != nil {
		return err
	}

	padded := mergeRow(rows[idx], values)

	rng := fmt.Sprintf("%s!A%d", quoteSheet(sheet), idx+1)
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(padded)}}
	_, err = s.srv.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// DeleteRow 重新读取工作表定位主键所在行后删除整行
func (s *SheetsAPI) DeleteRow(ctx context.Context, sheet string, key RowKey) error {
	rows, err := s.ListRows(ctx, sheet)
	if err != nil {
		return err
	}
	idx, err := findRow(rows, key)
	if err != nil {
		return err
	}

	sheetID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(idx),
					EndIndex:   int64(idx + 1),
				},
			},
		}},
	}
	_, err = s.srv.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	return err
}

func (s *SheetsAPI) sheetID(ctx context.Context, sheet string) (int64, error) {
	ss, err := s.srv.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return 0, err
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheet {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("工作表 %q 不存在", sheet)
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
