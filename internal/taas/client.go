package taas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds every API call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Client wraps interactions with the TaaS API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient constructs a new client. A zero timeout selects DefaultTimeout.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListResourceBookings fetches one page of resource bookings with their work periods.
func (c *Client) ListResourceBookings(ctx context.Context, q ResourceBookingQuery) (ResourceBookingPage, error) {
	params := url.Values{}
	setParam(params, "fields", q.Fields)
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		params.Set("perPage", strconv.Itoa(q.PerPage))
	}
	setParam(params, "sortBy", q.SortBy)
	setParam(params, "sortOrder", q.SortOrder)
	setParam(params, "status", q.Status)
	setParam(params, "workPeriods.userHandle", q.UserHandle)
	setParam(params, "workPeriods.startDate", q.StartDate)
	setParam(params, "workPeriods.paymentStatus", strings.Join(q.PaymentStatuses, ","))
	setParam(params, "workPeriods.payments.status", q.PaymentsStatus)

	var page ResourceBookingPage
	header, err := c.do(ctx, http.MethodGet, "/resourceBookings", params, nil, &page.Items)
	if err != nil {
		return ResourceBookingPage{}, err
	}
	page.Pagination = paginationFromHeader(header)
	return page, nil
}

// GetWorkPeriod fetches one work period with its payments.
func (c *Client) GetWorkPeriod(ctx context.Context, id string) (WorkPeriod, error) {
	var period WorkPeriod
	_, err := c.do(ctx, http.MethodGet, "/work-periods/"+url.PathEscape(id), nil, nil, &period)
	return period, err
}

// ListWorkPeriods fetches every work period of a resource booking.
func (c *Client) ListWorkPeriods(ctx context.Context, resourceBookingID string) ([]WorkPeriod, error) {
	params := url.Values{}
	params.Set("resourceBookingIds", resourceBookingID)
	params.Set("sortBy", "startDate")
	params.Set("sortOrder", "asc")
	params.Set("perPage", "1000")
	var periods []WorkPeriod
	_, err := c.do(ctx, http.MethodGet, "/work-periods", params, nil, &periods)
	return periods, err
}

// ListBillingAccounts fetches the billing accounts of a project.
func (c *Client) ListBillingAccounts(ctx context.Context, projectID int64) ([]BillingAccount, error) {
	var accounts []BillingAccount
	path := fmt.Sprintf("/projects/%d/billingAccounts", projectID)
	_, err := c.do(ctx, http.MethodGet, path, nil, nil, &accounts)
	return accounts, err
}

// CreatePayment schedules a payment for a work period.
func (c *Client) CreatePayment(ctx context.Context, in PaymentCreate) (Payment, error) {
	var payment Payment
	_, err := c.do(ctx, http.MethodPost, "/work-period-payments", nil, in, &payment)
	return payment, err
}

// UpdatePayment edits an existing payment.
func (c *Client) UpdatePayment(ctx context.Context, id string, in PaymentUpdate) (Payment, error) {
	var payment Payment
	_, err := c.do(ctx, http.MethodPatch, "/work-period-payments/"+url.PathEscape(id), nil, in, &payment)
	return payment, err
}

// CancelPayment marks a payment as cancelled.
func (c *Client) CancelPayment(ctx context.Context, id string) (Payment, error) {
	return c.UpdatePayment(ctx, id, PaymentUpdate{Status: "cancelled"})
}

// UpdatePaymentsBillingAccount moves several payments to other billing
// accounts. Items that failed carry a non-nil Error.
func (c *Client) UpdatePaymentsBillingAccount(ctx context.Context, in []PaymentBillingAccountUpdate) ([]Payment, error) {
	var payments []Payment
	_, err := c.do(ctx, http.MethodPatch, "/work-period-payments", nil, in, &payments)
	return payments, err
}

// ProcessPayments schedules payments for an explicit list of work periods.
func (c *Client) ProcessPayments(ctx context.Context, in []PaymentRequest) ([]PaymentRequestResult, error) {
	var results []PaymentRequestResult
	_, err := c.do(ctx, http.MethodPost, "/work-period-payments/bulk", nil, in, &results)
	return results, err
}

// ProcessPaymentsByQuery schedules payments for every work period matching q.
func (c *Client) ProcessPaymentsByQuery(ctx context.Context, q PaymentsQuery) (PaymentsQueryResult, error) {
	query := map[string]any{}
	if q.Status != "" {
		query["status"] = q.Status
	}
	if q.UserHandle != "" {
		query["workPeriods.userHandle"] = q.UserHandle
	}
	if q.StartDate != "" {
		query["workPeriods.startDate"] = q.StartDate
	}
	if len(q.PaymentStatuses) > 0 {
		query["workPeriods.paymentStatus"] = strings.Join(q.PaymentStatuses, ",")
	}
	var result PaymentsQueryResult
	_, err := c.do(ctx, http.MethodPost, "/work-period-payments/query", nil, map[string]any{"query": query}, &result)
	return result, err
}

// UpdateWorkingDays sets the number of days worked in a work period.
func (c *Client) UpdateWorkingDays(ctx context.Context, id string, daysWorked int) (WorkPeriod, error) {
	var period WorkPeriod
	body := map[string]int{"daysWorked": daysWorked}
	_, err := c.do(ctx, http.MethodPatch, "/work-periods/"+url.PathEscape(id), nil, body, &period)
	return period, err
}

// UpdateResourceBookingBillingAccount assigns a billing account to a resource booking.
func (c *Client) UpdateResourceBookingBillingAccount(ctx context.Context, id string, billingAccountID int64) (ResourceBooking, error) {
	var booking ResourceBooking
	body := map[string]int64{"billingAccountId": billingAccountID}
	_, err := c.do(ctx, http.MethodPatch, "/resourceBookings/"+url.PathEscape(id), nil, body, &booking)
	return booking, err
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) (http.Header, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("taas: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("taas: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return resp.Header, newAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.Header, fmt.Errorf("taas: decode %s %s: %w", method, path, err)
	}
	return resp.Header, nil
}

func setParam(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func paginationFromHeader(h http.Header) Pagination {
	return Pagination{
		TotalCount: headerInt(h, "X-Total"),
		PageCount:  headerInt(h, "X-Total-Pages"),
		PageNumber: headerInt(h, "X-Page"),
		PageSize:   headerInt(h, "X-Per-Page"),
	}
}

func headerInt(h http.Header, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(h.Get(key)))
	if err != nil {
		return 0
	}
	return n
}
