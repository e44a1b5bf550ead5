package http

import "net/http"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "dashboard.html", dashboardView{
		pageMeta: pageMeta{Title: "Dashboard", View: viewDashboard},
		Summary:  s.svc.Summary(),
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	summary := s.svc.Summary()
	s.render(w, r, http.StatusOK, "analytics.html", analyticsView{
		pageMeta: pageMeta{Title: "Analytics", View: viewAnalytics},
		Summary:  summary,
		Months:   monthBars(summary.MonthlyBreakdown),
	})
}
