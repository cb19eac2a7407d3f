package workperiods

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/wpadmin/internal/platform/httpx"
)

// Handler exposes the console over JSON. Every mutating route runs its
// workflow to completion and answers with the resulting Snapshot.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	feed      *Feed
	location  *Location
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, feed *Feed, location *Location) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		feed:      feed,
		location:  location,
		validator: validator.New(),
	}
}

// MountRoutes registers work period routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/work-periods", func(r chi.Router) {
		r.Get("/", h.handleSnapshot)
		r.Post("/reload", h.handleReload)
		r.Get("/location", h.handleLocation)
		r.Put("/location", h.handleNavigate)

		r.Delete("/filters", h.handleResetFilters)
		r.Put("/filters/date-range", h.handleDateRange)
		r.Put("/filters/payment-statuses", h.handlePaymentStatuses)
		r.Put("/filters/user-handle", h.handleUserHandle)
		r.Put("/filters/only-failed-payments", h.handleOnlyFailedPayments)
		r.Put("/sorting/criteria", h.handleSortBy)
		r.Put("/sorting/order", h.handleSortOrder)
		r.Put("/pagination/page-number", h.handlePageNumber)
		r.Put("/pagination/page-size", h.handlePageSize)

		r.Put("/selection", h.handleSelect)
		r.Post("/selection/all", h.handleToggleAll)
		r.Post("/selection/visible", h.handleToggleVisible)
		r.Post("/payments/process", h.handleProcessPayments)

		r.Get("/notifications", h.handleNotifications)
		r.Delete("/notifications/{notificationID}", h.handleDismissNotification)

		r.Route("/{periodID}", func(r chi.Router) {
			r.Post("/toggle", h.handleTogglePeriod)
			r.Put("/details", h.handleDetails)
			r.Put("/details/hide-past-periods", h.handleHidePastPeriods)
			r.Put("/working-days", h.handleWorkingDays)
			r.Delete("/working-days/updated", h.handleWorkingDaysUpdated)
			r.Put("/billing-account", h.handleBookingBillingAccount)
			r.Post("/payments", h.handleAddPayment)
			r.Post("/payments/additional", h.handleAdditionalPayment)
			r.Put("/payments/billing-account", h.handlePaymentsBillingAccount)
			r.Patch("/payments/{paymentID}", h.handleUpdatePayment)
			r.Delete("/payments/{paymentID}", h.handleCancelPayment)
		})
	})
}

// workflowContext detaches workflows from the HTTP request so that a client
// disconnect does not leave a request slot pending.
func workflowContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (h *Handler) respond(w http.ResponseWriter) {
	snap := NewSnapshot(h.service.Store().State())
	if h.feed != nil {
		snap.Notifications = h.feed.List()
	}
	httpx.JSON(w, http.StatusOK, snap)
}

// decode reads and validates a JSON body. It writes the problem response
// itself and reports whether the handler may continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fe.Field()+": "+fe.Tag())
			}
			err = fmt.Errorf("%w: %s", httpx.ErrValidation, strings.Join(msgs, ", "))
		}
		httpx.RespondError(w, err)
		return false
	}
	return true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownPeriod), errors.Is(err, ErrUnknownPayment):
		httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrNotFound, err))
	case errors.Is(err, ErrInvalidDays), errors.Is(err, ErrInvalidAmount):
		httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrValidation, err))
	default:
		h.logger.Error("work periods workflow", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	h.respond(w)
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	h.service.LoadPage(workflowContext(r))
	h.respond(w)
}

func (h *Handler) handleLocation(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"query":   h.location.Query(),
		"history": h.location.History(),
	})
}

type navigateRequest struct {
	Query   string `json:"query" validate:"max=4096"`
	Replace bool   `json:"replace"`
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.location.Navigate(req.Query, req.Replace)
	h.service.UpdateFromQuery(workflowContext(r), req.Query)
	h.respond(w)
}

func (h *Handler) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	h.service.ResetFilters(workflowContext(r))
	h.respond(w)
}

type dateRangeRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) handleDateRange(w http.ResponseWriter, r *http.Request) {
	var req dateRangeRequest
	if !h.decode(w, r, &req) {
		return
	}
	loc := h.service.Store().State().CurrentWeek.Start.Location()
	date, err := time.ParseInLocation(DateFormatAPI, req.Date, loc)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	h.service.SetDateRange(workflowContext(r), date)
	h.respond(w)
}

type paymentStatusesRequest struct {
	Statuses map[string]bool `json:"statuses" validate:"required"`
}

func (h *Handler) handlePaymentStatuses(w http.ResponseWriter, r *http.Request) {
	var req paymentStatusesRequest
	if !h.decode(w, r, &req) {
		return
	}
	statuses := make(map[PaymentStatus]bool, len(req.Statuses))
	for name, on := range req.Statuses {
		status, ok := ParsePaymentStatus(name)
		if !ok {
			httpx.RespondError(w, fmt.Errorf("%w: unknown payment status %q", httpx.ErrValidation, name))
			return
		}
		statuses[status] = on
	}
	h.service.SetPaymentStatuses(workflowContext(r), statuses)
	h.respond(w)
}

type userHandleRequest struct {
	UserHandle string `json:"userHandle"`
}

func (h *Handler) handleUserHandle(w http.ResponseWriter, r *http.Request) {
	var req userHandleRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.service.SetUserHandle(workflowContext(r), strings.TrimSpace(req.UserHandle))
	h.respond(w)
}

type toggleRequest struct {
	On *bool `json:"on"`
}

func (h *Handler) handleOnlyFailedPayments(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.service.ToggleOnlyFailedPayments(workflowContext(r), req.On)
	h.respond(w)
}

type sortByRequest struct {
	Criteria string `json:"criteria" validate:"required"`
}

func (h *Handler) handleSortBy(w http.ResponseWriter, r *http.Request) {
	var req sortByRequest
	if !h.decode(w, r, &req) {
		return
	}
	criteria, ok := ParseSortBy(req.Criteria)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: unknown sort criteria %q", httpx.ErrValidation, req.Criteria))
		return
	}
	h.service.SetSortBy(workflowContext(r), criteria)
	h.respond(w)
}

type sortOrderRequest struct {
	Order string `json:"order" validate:"required,oneof=asc desc ASC DESC"`
}

func (h *Handler) handleSortOrder(w http.ResponseWriter, r *http.Request) {
	var req sortOrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, _ := ParseSortOrder(req.Order)
	h.service.SetSortOrder(workflowContext(r), order)
	h.respond(w)
}

type pageNumberRequest struct {
	PageNumber int `json:"pageNumber" validate:"required,gte=1"`
}

func (h *Handler) handlePageNumber(w http.ResponseWriter, r *http.Request) {
	var req pageNumberRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.service.SetPageNumber(workflowContext(r), req.PageNumber)
	h.respond(w)
}

type pageSizeRequest struct {
	PageSize int `json:"pageSize" validate:"required,oneof=10 20 50 100"`
}

func (h *Handler) handlePageSize(w http.ResponseWriter, r *http.Request) {
	var req pageSizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.service.SetPageSize(workflowContext(r), req.PageSize)
	h.respond(w)
}

type selectRequest struct {
	Periods map[string]bool `json:"periods" validate:"required"`
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.service.SelectPeriods(req.Periods)
	h.respond(w)
}

func (h *Handler) handleTogglePeriod(w http.ResponseWriter, r *http.Request) {
	h.service.TogglePeriod(chi.URLParam(r, "periodID"))
	h.respond(w)
}

func (h *Handler) handleToggleAll(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.service.ToggleAll(req.On)
	h.respond(w)
}

func (h *Handler) handleToggleVisible(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.service.ToggleVisible(req.On)
	h.respond(w)
}

func (h *Handler) handleProcessPayments(w http.ResponseWriter, r *http.Request) {
	h.service.ProcessPayments(workflowContext(r))
	h.respond(w)
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.feed.List())
}

func (h *Handler) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	if !h.feed.Dismiss(chi.URLParam(r, "notificationID")) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type detailsRequest struct {
	Show *bool `json:"show"`
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.ToggleDetails(workflowContext(r), chi.URLParam(r, "periodID"), req.Show); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respond(w)
}

type hidePastPeriodsRequest struct {
	Hide bool `json:"hide"`
}

func (h *Handler) handleHidePastPeriods(w http.ResponseWriter, r *http.Request) {
	var req hidePastPeriodsRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.service.SetDetailsHidePastPeriods(chi.URLParam(r, "periodID"), req.Hide)
	h.respond(w)
}

type workingDaysRequest struct {
	DaysWorked *int `json:"daysWorked" validate:"required,gte=0"`
}

func (h *Handler) handleWorkingDays(w http.ResponseWriter, r *http.Request) {
	var req workingDaysRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.UpdateWorkingDays(workflowContext(r), chi.URLParam(r, "periodID"), *req.DaysWorked); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respond(w)
}

func (h *Handler) handleWorkingDaysUpdated(w http.ResponseWriter, r *http.Request) {
	h.service.AcknowledgeWorkingDaysUpdated(chi.URLParam(r, "periodID"))
	h.respond(w)
}

type billingAccountRequest struct {
	BillingAccountID int64 `json:"billingAccountId" validate:"required,gt=0"`
}

func (h *Handler) handleBookingBillingAccount(w http.ResponseWriter, r *http.Request) {
	var req billingAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.UpdateResourceBookingBillingAccount(workflowContext(r), chi.URLParam(r, "periodID"), req.BillingAccountID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respond(w)
}

func (h *Handler) handlePaymentsBillingAccount(w http.ResponseWriter, r *http.Request) {
	var req billingAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.service.UpdatePaymentsBillingAccount(workflowContext(r), chi.URLParam(r, "periodID"), req.BillingAccountID)
	h.respond(w)
}

type paymentDaysRequest struct {
	Days int `json:"days" validate:"required,gte=1"`
}

func (h *Handler) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentDaysRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.service.AddPayment(workflowContext(r), chi.URLParam(r, "periodID"), req.Days); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respond(w)
}

type additionalPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) handleAdditionalPayment(w http.ResponseWriter, r *http.Request) {
	var req additionalPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.service.ProcessAdditionalPayment(workflowContext(r), chi.URLParam(r, "periodID"), req.Amount); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respond(w)
}

func (h *Handler) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentDaysRequest
	if !h.decode(w, r, &req) {
		return
	}
	_, err := h.service.UpdatePayment(workflowContext(r), chi.URLParam(r, "periodID"), chi.URLParam(r, "paymentID"), req.Days)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respond(w)
}

func (h *Handler) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	h.service.CancelPayment(workflowContext(r), chi.URLParam(r, "periodID"), chi.URLParam(r, "paymentID"))
	h.respond(w)
}
