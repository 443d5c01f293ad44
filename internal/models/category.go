package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// JSON 结构化字段类型，用于收货地址等半结构化内容
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return nil
	}
}

// StringArray 字符串数组字段类型，用于商品图片与标签
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return nil
	}
}

// Category 商品分类
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`              // 主键
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`  // 唯一标识
	Name      string         `gorm:"not null" json:"name"`              // 分类名称
	Icon      string         `gorm:"type:varchar(500)" json:"icon"`     // 图标路径
	SortOrder int            `gorm:"default:0;index" json:"sort_order"` // 排序权重，越大越靠前
	CreatedAt time.Time      `gorm:"index" json:"created_at"`           // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                    // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
