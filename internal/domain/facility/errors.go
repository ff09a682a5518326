package facility

import (
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

var (
	// ErrFacilityNotFound 机构不存在
	ErrFacilityNotFound = apperrors.New(apperrors.ErrCodeFacilityNotFound, "机构不存在")

	// ErrNameDuplicate 机构名称重复
	ErrNameDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "机构名称已存在")
)
