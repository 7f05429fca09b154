package http

import (
	"time"

	"github.com/couchcryptid/tri-dashboard/internal/dashboard"
	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

type errorBody struct {
	Error     string           `json:"error"`
	ErrorKind domain.ErrorKind `json:"error_kind,omitempty"`
	Reason    string           `json:"reason,omitempty"`
}

type meta struct {
	Variant    string           `json:"variant"`
	Year       int              `json:"year"`
	Region     string           `json:"region"`
	Rows       int              `json:"rows"`
	LoadedAt   time.Time        `json:"loaded_at"`
	Join       domain.JoinStats `json:"join"`
	UnitErrors int              `json:"unit_errors"`
	Issues     []string         `json:"issues,omitempty"`
}

func newMeta(v dashboard.View) meta {
	return meta{
		Variant:    v.State.Variant,
		Year:       v.State.Year,
		Region:     v.State.Region,
		Rows:       v.Rows,
		LoadedAt:   v.LoadedAt,
		Join:       v.Join,
		UnitErrors: v.UnitErrors,
		Issues:     v.Issues,
	}
}

type countiesBody struct {
	Meta            meta                `json:"meta"`
	StatewidePounds float64             `json:"statewide_pounds"`
	StatewideTons   float64             `json:"statewide_tons"`
	SETxTons        float64             `json:"setx_tons"`
	Counties        []domain.GroupTotal `json:"counties"`
}

type groupsBody struct {
	Meta  meta             `json:"meta"`
	Chart domain.ChartData `json:"chart"`
}

type pivotBody struct {
	Meta    meta               `json:"meta"`
	Options []string           `json:"options"`
	Pivot   *domain.PivotTable `json:"pivot"`
}
