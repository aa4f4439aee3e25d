package calculator

import (
	"nutriplan/internal/model"
)

// Compare 将合计与 RDA 目标逐项比较，返回差值（合计 - 目标）与目标值
// 目标缺省的营养素差值也为缺省，表示无 RDA 目标
func Compare(totals model.NutrientTotals, profileName string, data *model.ReferenceData) (comparison, targets model.NutrientValues, err error) {
	profile, ok := data.GetRdaProfile(profileName)
	if !ok {
		return comparison, targets, &model.UnknownProfileError{ProfileName: profileName}
	}

	targets = profile.Nutrients
	for _, n := range model.AllNutrients() {
		target := targets.Get(n)
		if !target.Valid {
			comparison.Set(n, model.Null())
			continue
		}
		comparison.Set(n, model.Float(totals.Get(n)-target.Float64))
	}

	return comparison, targets, nil
}
