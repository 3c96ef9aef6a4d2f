package ingest

import (
	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRecord 检查一条记录的必填字段是否齐全、邮箱格式是否正确，
// 校验失败只影响这一行，返回 ValidationError
func ValidateRecord(record Record) error {
	for _, required := range RequiredColumns {
		if record[required] == "" {
			return &domain.ValidationError{Field: required}
		}
	}

	if err := validate.Var(record["email"], "email"); err != nil {
		return &domain.ValidationError{Field: "email"}
	}

	return nil
}
