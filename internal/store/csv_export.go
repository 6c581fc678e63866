package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const csvMaxBodySize = 20 * 1024 * 1024 // 20MB

// CSVExport 通过匿名 CSV 导出地址读取工作表。
// 只读，且可能滞后于通过 API 写入的数据。
type CSVExport struct {
	baseURL string
	client  *http.Client
}

// NewCSVExport 创建 CSV 导出读取器
func NewCSVExport(baseURL string, timeout time.Duration) *CSVExport {
	return &CSVExport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// ListRows GET <base>/export?format=csv&sheet=<name>
func (c *CSVExport) ListRows(ctx context.Context, sheet string) ([][]string, error) {
	u := c.baseURL + "/export?format=csv&sheet=" + url.QueryEscape(sheet)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("构造导出请求失败: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 CSV 导出失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("请求 CSV 导出失败: HTTP %d", resp.StatusCode)
	}

	r := csv.NewReader(io.LimitReader(resp.Body, csvMaxBodySize))
	r.FieldsPerRecord = -1 // 容忍参差行
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析 CSV 失败: %w", err)
	}
	return rows, nil
}
