package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amjey/staff-tracker/internal/service"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
	"github.com/amjey/staff-tracker/pkg/response"
)

// 业务错误码（20xxx: 名册与活动）
const (
	codeValidation    = 20001
	codeStaffNotFound = 20002
	codeWriteFailed   = 20003
	codeFetchFailed   = 20004
	codeReadOnly      = 20005
	codeInvalidMetric = 20006
	codeImportFile    = 20007
	codeDuplicateSN   = 20008
)

// handleServiceError 把 Service 层错误映射为统一响应。
// 存储边界错误一律包装后返回，不把底层传输错误原样暴露给调用方。
func handleServiceError(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		response.ErrorWithDetails(c, http.StatusBadRequest, codeValidation, "字段校验失败", ve.Fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrStaffNotFound):
		response.NotFound(c, codeStaffNotFound, "名册中不存在该编号")
		return
	case errors.Is(err, service.ErrDuplicateSerial):
		response.Error(c, http.StatusConflict, codeDuplicateSN, "该编号已在名册中")
		return
	case errors.Is(err, service.ErrInvalidLeaderboardMetric):
		response.BadRequest(c, codeInvalidMetric, "排行指标只能是 count 或 duration")
		return
	case errors.Is(err, service.ErrImportUnsupported):
		response.BadRequest(c, codeImportFile, "仅支持 .xlsx 与 .xls 文件")
		return
	case errors.Is(err, service.ErrImportUnreadable):
		response.ErrorWithDetails(c, http.StatusBadRequest, codeImportFile, "无法读取上传的表格文件", err.Error())
		return
	case errors.Is(err, apperrors.ErrReadOnlyStore):
		response.Error(c, http.StatusServiceUnavailable, codeReadOnly, "当前表格驱动只读，不支持写入")
		return
	}

	var we *apperrors.WriteError
	if errors.As(err, &we) {
		response.ErrorWithDetails(c, http.StatusBadGateway, codeWriteFailed, "表格后端拒绝写入", we.Sheet)
		return
	}

	var fe *apperrors.FetchError
	if errors.As(err, &fe) {
		response.ErrorWithDetails(c, http.StatusBadGateway, codeFetchFailed, "读取表格失败", fe.Sheet)
		return
	}

	response.InternalError(c)
}
