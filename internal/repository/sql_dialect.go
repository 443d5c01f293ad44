package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 返回数据库方言名称，缺省按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	if name := strings.ToLower(strings.TrimSpace(db.Dialector.Name())); name != "" {
		return name
	}
	return "sqlite"
}

// buildLikeCondition 为多列模糊搜索构建 OR 条件，返回条件串与参数个数。
// postgres 使用 ILIKE 实现大小写不敏感匹配。
func buildLikeCondition(db *gorm.DB, columns []string) (string, int) {
	return buildLikeConditionByDialect(dbDialectName(db), columns)
}

func buildLikeConditionByDialect(dialect string, columns []string) (string, int) {
	operator := likeOperatorByDialect(dialect)
	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		trimmed := strings.TrimSpace(column)
		if trimmed == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", trimmed, operator))
	}
	return strings.Join(parts, " OR "), len(parts)
}

func likeOperatorByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// repeatLikeArgs 按参数个数重复同一个 LIKE 实参。
func repeatLikeArgs(like string, count int) []interface{} {
	args := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		args = append(args, like)
	}
	return args
}
