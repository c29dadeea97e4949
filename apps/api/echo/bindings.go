package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/uzima/alama/core/student"
)

var (
	riskParam     = "risk"
	minScoreParam = "min_score"
	maxScoreParam = "max_score"
)

// StudentFilter binds the list endpoint's query params. Unparsable numeric
// params are ignored, in keeping with the intake's permissive policy.
type StudentFilter struct {
	Risk     string
	MinScore *float64
	MaxScore *float64
}

func (f *StudentFilter) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}

	f.Risk = strings.TrimSpace(ctx.QueryParam(riskParam))
	f.MinScore = parseScoreParam(ctx.QueryParam(minScoreParam))
	f.MaxScore = parseScoreParam(ctx.QueryParam(maxScoreParam))
}

func (f *StudentFilter) IsZero() bool {
	return f.Risk == "" && f.MinScore == nil && f.MaxScore == nil
}

func (f *StudentFilter) QueryFilter() student.QueryFilter {
	return student.QueryFilter{
		Risk:     f.Risk,
		MinScore: f.MinScore,
		MaxScore: f.MaxScore,
	}
}

func parseScoreParam(val string) *float64 {
	if val == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return nil
	}
	return &v
}
