package dto

// PageQuery 列表接口公共分页参数，页码从 1 开始
type PageQuery struct {
	Page     int `query:"page" json:"page" validate:"gte=0"`
	PageSize int `query:"page_size" json:"page_size" validate:"gte=0,lte=200"`
}

// Meta 放在响应 meta 中，缺省值与仓储层分页一致
func (q PageQuery) Meta(total int64) map[string]interface{} {
	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	return map[string]interface{}{
		"page":      page,
		"page_size": size,
		"total":     total,
	}
}
