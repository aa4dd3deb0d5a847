package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edufacil/efs/core"
)

const orderingParam = "ordering"

// Ordering binds the "ordering" query param: a comma-separated field list
// where a leading "-" requests descending order.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	raw := ctx.QueryParam(orderingParam)
	if raw == "" {
		return
	}

	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		descending := strings.HasPrefix(field, "-")
		ord.Orderings = append(ord.Orderings, core.DBOrdering{
			Field:     strings.TrimPrefix(field, "-"),
			Ascending: !descending,
		})
	}
}
