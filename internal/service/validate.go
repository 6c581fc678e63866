package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/amjey/staff-tracker/internal/model"
	"github.com/amjey/staff-tracker/internal/normalize"
	apperrors "github.com/amjey/staff-tracker/pkg/errors"
)

// newValidator 创建写入前使用的校验器，字段名取 json 标签
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// serial: 规范化后不能是退化主键（空串或 nan）
	_ = v.RegisterValidation("serial", func(fl validator.FieldLevel) bool {
		return !normalize.IsDegenerate(normalize.Canonical(fl.Field().String()))
	})

	// event_group: 只接受登记表单提供的分组
	_ = v.RegisterValidation("event_group", func(fl validator.FieldLevel) bool {
		g := fl.Field().String()
		for _, allowed := range model.EventGroups {
			if strings.EqualFold(g, allowed) {
				return true
			}
		}
		return false
	})

	return v
}

// validateStruct 校验请求体，失败时返回列出全部出错字段的 *ValidationError
func validateStruct(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &apperrors.ValidationError{Fields: make([]apperrors.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, apperrors.FieldError{
			Field:  fe.Field(),
			Reason: reasonFor(fe),
		})
	}
	return out
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "serial":
		return "编号无效（不能为空或 nan）"
	case "min":
		return "不能小于 " + fe.Param()
	case "max":
		return "超出上限 " + fe.Param()
	case "datetime":
		return "日期格式应为 YYYY-MM-DD"
	case "event_group":
		return "分组应为 " + strings.Join(model.EventGroups, " / ") + " 之一"
	default:
		return "校验未通过 (" + fe.Tag() + ")"
	}
}
