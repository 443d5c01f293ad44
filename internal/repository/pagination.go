package repository

import "gorm.io/gorm"

// applyPagination 统一应用分页，page 从 1 开始，非法页码按首页处理。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
