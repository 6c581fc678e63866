package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/amjey/staff-tracker/config"
	"github.com/amjey/staff-tracker/internal/dto"
	"github.com/amjey/staff-tracker/internal/model"
	"github.com/amjey/staff-tracker/internal/normalize"
	"github.com/amjey/staff-tracker/internal/store"
)

const dateLayout = "2006-01-02"

// EventService 活动日志写入业务接口（只追加，不提供修改与删除）
type EventService interface {
	AppendEvent(ctx context.Context, req *dto.EventRequest) (*model.EventRecord, error)
}

type eventService struct {
	gw       *store.Gateway
	sheet    string
	loc      *time.Location
	now      func() time.Time
	validate *validator.Validate
	logger   *zap.Logger
}

// NewEventService 创建 EventService 实例
func NewEventService(cfg *config.Config, gw *store.Gateway, logger *zap.Logger) EventService {
	return &eventService{
		gw:       gw,
		sheet:    cfg.Store.EventSheet,
		loc:      cfg.App.Location(),
		now:      time.Now,
		validate: newValidator(),
		logger:   logger,
	}
}

func (s *eventService) AppendEvent(ctx context.Context, req *dto.EventRequest) (*model.EventRecord, error) {
	req.SerialNumber = strings.TrimSpace(req.SerialNumber)
	req.EventName = strings.TrimSpace(req.EventName)
	req.Location = strings.TrimSpace(req.Location)
	req.Date = strings.TrimSpace(req.Date)
	req.Group = strings.TrimSpace(req.Group)

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	rec := &model.EventRecord{
		SerialNumber:    normalize.Canonical(req.SerialNumber),
		EventName:       req.EventName,
		Location:        req.Location,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Group:           canonicalGroup(req.Group),
	}
	if rec.Date == "" {
		rec.Date = s.now().In(s.loc).Format(dateLayout)
	}

	if err := s.gw.Append(ctx, s.sheet, rec.Values()); err != nil {
		return nil, err
	}

	s.logger.Info("登记出勤",
		zap.String("serial_number", rec.SerialNumber),
		zap.String("event_name", rec.EventName),
		zap.String("group", rec.Group),
	)
	return rec, nil
}

// canonicalGroup 空分组归入 Other，其余统一为表单选项的写法
func canonicalGroup(group string) string {
	for _, g := range model.EventGroups {
		if strings.EqualFold(group, g) {
			return g
		}
	}
	return model.DefaultEventGroup
}
