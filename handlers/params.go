package handlers

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hargun03/accidents-analysis/services"

	"github.com/gin-gonic/gin"
)

// ParseControls reads the widget values from the query string. Missing
// values take the widget defaults; anything else must be in range.
func ParseControls(c *gin.Context) (services.Controls, error) {
	ctrl := services.DefaultControls()

	if v := c.Query("injured"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ctrl, fmt.Errorf("%w: injured must be an integer", services.ErrInvalidControl)
		}
		ctrl.MinInjured = n
	}

	if v := c.Query("hour"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ctrl, fmt.Errorf("%w: hour must be an integer", services.ErrInvalidControl)
		}
		ctrl.Hour = n
	}

	if v := c.Query("affected"); v != "" {
		affected, err := services.ParseCategory(v)
		if err != nil {
			return ctrl, err
		}
		ctrl.Affected = affected
	}

	if v := c.Query("raw"); v != "" {
		raw, err := strconv.ParseBool(v)
		if err != nil {
			return ctrl, fmt.Errorf("%w: raw must be a boolean", services.ErrInvalidControl)
		}
		ctrl.ShowRaw = raw
	}

	return ctrl, ctrl.Validate()
}

// RowLimits restricts the optional rows parameter to the default and a
// fixed allow list, so callers cannot grow the memo table.
type RowLimits struct {
	Default int
	Allowed []int
}

func (l RowLimits) Parse(c *gin.Context) (int, error) {
	v := c.Query("rows")
	if v == "" {
		return l.Default, nil
	}
	n, err := strconv.Atoi(v)
	if err == nil && l.allows(n) {
		return n, nil
	}
	return 0, fmt.Errorf("%w: rows must be one of %v", services.ErrInvalidControl, l.choices())
}

func (l RowLimits) allows(n int) bool {
	if n == l.Default {
		return true
	}
	for _, a := range l.Allowed {
		if n == a {
			return true
		}
	}
	return false
}

func (l RowLimits) choices() []int {
	out := []int{l.Default}
	for _, a := range l.Allowed {
		if a != l.Default {
			out = append(out, a)
		}
	}
	sort.Ints(out)
	return out
}

func parseHour(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 || n > services.MaxHour {
		return 0, fmt.Errorf("%w: hour must be an integer between 0 and %d", services.ErrInvalidControl, services.MaxHour)
	}
	return n, nil
}
