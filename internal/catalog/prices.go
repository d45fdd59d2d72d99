package catalog

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// ErrInvalidPrice is returned when a price cell is not a finite number.
var ErrInvalidPrice = errors.New("invalid price")

// PriceRow is one submitted price line before parsing.
type PriceRow struct {
	Quantity string
	Unit     string
	Price    string
}

// ZipPriceRows pairs the parallel quantity, unit and price form lists by
// position. Lists of different lengths are truncated to the shortest.
func ZipPriceRows(quantities, units, prices []string) []PriceRow {
	n := len(quantities)
	if len(units) < n {
		n = len(units)
	}
	if len(prices) < n {
		n = len(prices)
	}
	rows := make([]PriceRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, PriceRow{Quantity: quantities[i], Unit: units[i], Price: prices[i]})
	}
	return rows
}

// BuildPrices keeps rows whose three cells are all non-empty and parses
// their price. One malformed price fails the whole list.
func BuildPrices(rows []PriceRow) ([]Price, error) {
	out := []Price{}
	for i, row := range rows {
		if row.Quantity == "" || row.Unit == "" || row.Price == "" {
			continue
		}
		v, err := cast.ToFloat64E(strings.TrimSpace(row.Price))
		if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
			err = errors.New("not a finite number")
		}
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidPrice, "row %d: %q", i+1, row.Price)
		}
		out = append(out, Price{Quantity: row.Quantity, Unit: row.Unit, Price: v})
	}
	return out, nil
}
