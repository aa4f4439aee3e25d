package calculator

import (
	"math"

	"nutriplan/internal/model"
)

// ValidateSelectionItem 校验菜单项份数：必须为非负有限数
func ValidateSelectionItem(item model.SelectionItem) error {
	q := item.Quantity
	if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
		return &model.InvalidQuantityError{FoodName: item.FoodName, Quantity: q}
	}
	return nil
}
