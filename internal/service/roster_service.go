package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/amjey/staff-tracker/config"
	"github.com/amjey/staff-tracker/internal/analytics"
	"github.com/amjey/staff-tracker/internal/dto"
	"github.com/amjey/staff-tracker/internal/model"
	"github.com/amjey/staff-tracker/internal/normalize"
	"github.com/amjey/staff-tracker/internal/store"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

// ── 名册模块业务错误 ──

var (
	ErrImportUnreadable  = errors.New("无法读取上传的表格文件")
	ErrImportUnsupported = errors.New("仅支持 .xlsx 与 .xls 文件")
	// ErrDuplicateSerial 编号是名册主键，已被占用时拒绝登记或改号
	ErrDuplicateSerial = errors.New("该编号已在名册中")
)

const (
	importMaxFileSize = 5 * 1024 * 1024 // 5MB
	importMaxRows     = 100000
)

// RosterService 名册写入业务接口
type RosterService interface {
	// AppendStaff 登记新人员，编号已在名册中时返回 ErrDuplicateSerial
	AppendStaff(ctx context.Context, req *dto.StaffRequest) (*model.StaffRecord, error)
	// UpdateStaff 按编号在写入时刻定位行并整行覆盖；req 中的编号可与 serialNumber 不同（改号）
	UpdateStaff(ctx context.Context, serialNumber string, req *dto.StaffRequest) (*model.StaffRecord, error)
	DeleteStaff(ctx context.Context, serialNumber string) error
	// ImportStaff 从 .xlsx / .xls 批量登记，已在名册中的编号跳过，逐行尽力写入
	ImportStaff(ctx context.Context, filename string, r io.Reader) (*dto.ImportResult, error)
}

type rosterService struct {
	gw       *store.Gateway
	sheet    string
	validate *validator.Validate
	logger   *zap.Logger
}

// NewRosterService 创建 RosterService 实例
func NewRosterService(cfg *config.Config, gw *store.Gateway, logger *zap.Logger) RosterService {
	return &rosterService{
		gw:       gw,
		sheet:    cfg.Store.StaffSheet,
		validate: newValidator(),
		logger:   logger,
	}
}

// ────────────────────── Append ──────────────────────

func (s *rosterService) AppendStaff(ctx context.Context, req *dto.StaffRequest) (*model.StaffRecord, error) {
	rec, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	registered, err := s.registered(ctx)
	if err != nil {
		return nil, err
	}
	if _, taken := registered[rec.SerialNumber]; taken {
		return nil, ErrDuplicateSerial
	}

	if err := s.gw.Append(ctx, s.sheet, rec.Values()); err != nil {
		return nil, err
	}

	s.logger.Info("登记人员", zap.String("serial_number", rec.SerialNumber))
	return rec, nil
}

// ────────────────────── Update / Delete ──────────────────────

func (s *rosterService) UpdateStaff(ctx context.Context, serialNumber string, req *dto.StaffRequest) (*model.StaffRecord, error) {
	key := normalize.Canonical(serialNumber)
	if normalize.IsDegenerate(key) {
		return nil, ErrStaffNotFound
	}
	if strings.TrimSpace(req.SerialNumber) == "" {
		req.SerialNumber = key
	}

	rec, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	// 改号时新编号不能落在其他人员上，否则之后按编号定位会命中错误的行
	if rec.SerialNumber != key {
		registered, err := s.registered(ctx)
		if err != nil {
			return nil, err
		}
		if _, taken := registered[rec.SerialNumber]; taken {
			return nil, ErrDuplicateSerial
		}
	}

	if err := s.gw.Update(ctx, s.sheet, staffRowKey(key), rec.Values()); err != nil {
		if errors.Is(err, apperrors.ErrRowNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}

	s.logger.Info("修改人员",
		zap.String("serial_number", key),
		zap.String("new_serial_number", rec.SerialNumber),
	)
	return rec, nil
}

func (s *rosterService) DeleteStaff(ctx context.Context, serialNumber string) error {
	key := normalize.Canonical(serialNumber)
	if normalize.IsDegenerate(key) {
		return ErrStaffNotFound
	}

	if err := s.gw.Delete(ctx, s.sheet, staffRowKey(key)); err != nil {
		if errors.Is(err, apperrors.ErrRowNotFound) {
			return ErrStaffNotFound
		}
		return err
	}

	s.logger.Info("删除人员", zap.String("serial_number", key))
	return nil
}

// ────────────────────── Import ──────────────────────

func (s *rosterService) ImportStaff(ctx context.Context, filename string, r io.Reader) (*dto.ImportResult, error) {
	rows, err := readUploadedSheet(r, filename)
	if err != nil {
		return nil, err
	}

	incoming, _, err := normalize.Staff(rows, normalize.StaffSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}

	registered, err := s.registered(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResult{Skipped: []string{}, Failures: []dto.ImportFailure{}}
	for _, in := range incoming {
		req := &dto.StaffRequest{
			SerialNumber: in.SerialNumber,
			Rank:         in.Rank,
			Name:         in.Name,
			Unit:         in.Unit,
			Contact:      in.Contact,
			LeaderBadge:  in.LeaderBadge,
		}
		rec, err := s.prepare(req)
		if err != nil {
			failure := dto.ImportFailure{Row: in.Row, Reason: err.Error()}
			var ve *apperrors.ValidationError
			if errors.As(err, &ve) {
				failure.Fields = ve.Fields
			}
			result.Failures = append(result.Failures, failure)
			continue
		}

		if _, ok := registered[rec.SerialNumber]; ok {
			result.Skipped = append(result.Skipped, rec.SerialNumber)
			continue
		}

		if err := s.gw.Append(ctx, s.sheet, rec.Values()); err != nil {
			// 后端已拒绝写入，剩余行不再尝试
			result.Failures = append(result.Failures, dto.ImportFailure{Row: in.Row, Reason: err.Error()})
			s.logger.Error("批量导入中断", zap.Int("row", in.Row), zap.Error(err))
			break
		}
		registered[rec.SerialNumber] = rec
		result.Imported++
	}

	s.logger.Info("批量导入人员",
		zap.String("filename", filename),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failures)),
	)
	return result, nil
}

// ── 内部辅助方法 ──

// registered 当前名册按规范编号建立的索引，登记、改号与批量导入共用这一套判重口径。
// 名册读不到时无法确认编号是否被占用，直接返回错误，不做写入。
func (s *rosterService) registered(ctx context.Context) (map[string]*model.StaffRecord, error) {
	current, err := s.gw.Fetch(ctx, s.sheet)
	if err != nil {
		return nil, err
	}
	existing, _, err := normalize.Staff(current, normalize.StaffSchema)
	if err != nil {
		return nil, &apperrors.FetchError{Sheet: s.sheet, Err: err}
	}
	return analytics.IndexStaff(existing), nil
}

// prepare 去空白、校验并构造将写入的人员记录
func (s *rosterService) prepare(req *dto.StaffRequest) (*model.StaffRecord, error) {
	req.SerialNumber = strings.TrimSpace(req.SerialNumber)
	req.Rank = strings.TrimSpace(req.Rank)
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	req.Contact = strings.TrimSpace(req.Contact)
	req.LeaderBadge = strings.TrimSpace(req.LeaderBadge)

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	rec := &model.StaffRecord{
		SerialNumber: normalize.Canonical(req.SerialNumber),
		Rank:         req.Rank,
		Name:         req.Name,
		Unit:         req.Unit,
		Contact:      normalize.Contact(req.Contact),
		LeaderBadge:  req.LeaderBadge,
		RoleLabel:    req.Rank,
	}
	rec.Category = analytics.Classify(rec.RoleLabel)
	return rec, nil
}

func staffRowKey(key string) store.RowKey {
	return store.RowKey{Schema: normalize.StaffSchema, Field: normalize.FieldSN, Value: key}
}

// readUploadedSheet 读取上传文件的第一张工作表
func readUploadedSheet(r io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(io.LimitReader(r, importMaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}
	if len(data) > importMaxFileSize {
		return nil, fmt.Errorf("%w: 文件超过 5MB", ErrImportUnreadable)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
		}
		if wb.NumSheets() == 0 {
			return nil, fmt.Errorf("%w: 没有工作表", ErrImportUnreadable)
		}
		return wb.ReadAllCells(importMaxRows), nil

	case ".xlsx":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
		}
		defer f.Close()

		name := f.GetSheetName(0)
		if name == "" {
			return nil, fmt.Errorf("%w: 没有工作表", ErrImportUnreadable)
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
		}
		return rows, nil

	default:
		return nil, ErrImportUnsupported
	}
}
