package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Hendyvelarius/lapidashboard-sub000/internal/dashboard"
)

type API struct {
	dash *dashboard.Dashboard
	mux  *http.ServeMux
}

func NewAPI(dash *dashboard.Dashboard) *API {
	api := &API{
		dash: dash,
		mux:  http.NewServeMux(),
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.mux.HandleFunc("/api/wip/summary", a.dash.GetSummary)
	a.mux.HandleFunc("/api/wip/summary/categories", a.dash.GetCategorySummary)
	a.mux.HandleFunc("/api/wip/detail", a.dash.GetDetail)
	a.mux.HandleFunc("/api/wip/unregistered", a.dash.GetUnregistered)
	a.mux.HandleFunc("/api/wip/refresh", a.dash.Refresh)

	a.mux.Handle("/metrics", promhttp.Handler())
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}
