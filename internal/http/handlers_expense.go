package http

import (
	"errors"
	"net/http"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

func (s *Server) handleNewExpenseForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "form.html", formView{
		pageMeta: pageMeta{Title: "Add Expense", View: viewForm},
		Input: core.ExpenseInput{
			Category: string(core.FoodDining),
			Date:     s.svc.Today().String(),
		},
		Categories: core.Categories(),
	})
}

func (s *Server) handleEditExpenseForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, ok := s.svc.Get(id)
	if !ok {
		NotFoundError("Expense not found").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "form.html", formView{
		pageMeta:   pageMeta{Title: "Edit Expense", View: viewForm},
		Editing:    true,
		ID:         e.ID,
		Input:      core.InputOf(e),
		Categories: core.Categories(),
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	in, err := parseExpenseInput(r)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Parse form error", log.FieldError, err)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	e, err := s.svc.Create(r.Context(), in)
	if err != nil {
		s.writeWriteError(w, r, formView{
			pageMeta:   pageMeta{Title: "Add Expense", View: viewForm},
			Input:      in,
			Categories: core.Categories(),
		}, err)
		return
	}

	NewHTMXResponse().
		TriggerExpenseCreated(e.ID).
		TriggerSuccessNotification("Expense added").
		Redirect(r, "/").
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	in, err := parseExpenseInput(r)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Parse form error", log.FieldError, err)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	if _, err := s.svc.Update(r.Context(), id, in); err != nil {
		s.writeWriteError(w, r, formView{
			pageMeta:   pageMeta{Title: "Edit Expense", View: viewForm},
			Editing:    true,
			ID:         id,
			Input:      in,
			Categories: core.Categories(),
		}, err)
		return
	}

	NewHTMXResponse().
		TriggerExpenseUpdated(id).
		TriggerSuccessNotification("Expense updated").
		Redirect(r, "/").
		Write(w)
}

// handleDeleteExpense removes the expense. An unknown id is not an error.
// An htmx DELETE gets an empty 200 so the row can be swapped out in
// place; everything else goes back to the list.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.svc.Delete(r.Context(), id); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to delete expense",
			log.FieldExpenseID, id, log.FieldError, err)
		InternalServerError("Error deleting expense").Write(w)
		return
	}

	resp := NewHTMXResponse().TriggerExpenseDeleted(id)
	if isHTMX(r) && r.Method == http.MethodDelete {
		resp.Write(w)
		return
	}
	resp.Redirect(r, "/expenses").Write(w)
}

// writeWriteError answers a failed create or update: 422 with the form
// re-rendered for validation errors, 404 for an unknown id, 500 otherwise.
func (s *Server) writeWriteError(w http.ResponseWriter, r *http.Request, view formView, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		view.Error = verr.Error()
		view.Field = verr.Field
		s.render(w, r, http.StatusUnprocessableEntity, "form.html", view)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError("Expense not found").Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to save expense",
			log.FieldExpenseID, view.ID, log.FieldError, err)
		InternalServerError("Error saving expense").Write(w)
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r.URL.Query())
	records := s.svc.Search(f)

	s.render(w, r, http.StatusOK, "list.html", listView{
		pageMeta:   pageMeta{Title: "Expenses", View: viewList},
		Expenses:   records,
		Query:      f.Search,
		Category:   string(f.Category),
		Categories: s.svc.Categories(),
		Total:      analytics.Total(records),
		HasAny:     len(s.svc.List()) > 0,
		ExportURL:  "/expenses/export.csv" + filterQuery(f),
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r.URL.Query())
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	if _, err := s.svc.ExportCSV(r.Context(), w, f); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export failed",
			log.FieldOperation, log.OpExport, log.FieldError, err)
	}
}
