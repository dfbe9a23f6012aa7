package repos

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/device-inventory/internal/domain/model"
)

var columnMapping = map[string]string{
	"id":        "id",
	"name":      "name",
	"brand":     "brand",
	"state":     "state",
	"createdAt": "created_at",
}

// CriteriaTranslator turns model criteria into squirrel clauses. Only
// whitelisted fields ever reach the generated SQL.
type CriteriaTranslator struct{}

func NewCriteriaTranslator() *CriteriaTranslator {
	return &CriteriaTranslator{}
}

func (t *CriteriaTranslator) ApplyToSelect(builder sq.SelectBuilder, criteria model.Criteria) (sq.SelectBuilder, error) {
	for _, filter := range criteria.Filters() {
		col, err := t.col(filter.Field)
		if err != nil {
			return builder, err
		}

		builder = builder.Where(sq.Eq{col: model.FilterText(filter.Value)})
	}

	for _, s := range criteria.Sorting() {
		col, err := t.col(s.Field)
		if err != nil {
			return builder, err
		}

		builder = builder.OrderBy(fmt.Sprintf("%s %s", col, s.Direction))
	}

	return builder, nil
}

func (t *CriteriaTranslator) col(field string) (string, error) {
	col, ok := columnMapping[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", model.ErrUnknownField, field)
	}

	return col, nil
}
