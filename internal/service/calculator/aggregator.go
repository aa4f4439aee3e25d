package calculator

import (
	"nutriplan/internal/model"
)

// Aggregate 按份数加权累加菜单营养素
// 食物缺省的营养素按 0 计；任一项失败则不返回部分结果
func Aggregate(selection []model.SelectionItem, data *model.ReferenceData) (model.NutrientTotals, []model.SelectionDetail, error) {
	var totals model.NutrientTotals
	details := make([]model.SelectionDetail, 0, len(selection))

	for _, item := range selection {
		if err := ValidateSelectionItem(item); err != nil {
			return model.NutrientTotals{}, nil, err
		}

		food, ok := data.GetFood(item.FoodName)
		if !ok {
			return model.NutrientTotals{}, nil, &model.UnknownFoodError{FoodName: item.FoodName}
		}

		details = append(details, model.SelectionDetail{
			FoodName:    item.FoodName,
			Quantity:    item.Quantity,
			ServingSize: food.ServingSize,
		})

		for i, v := range food.Nutrients {
			totals[i] += v.OrZero() * item.Quantity
		}
	}

	return totals, details, nil
}
