package workperiods

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// URL query parameter names.
const (
	QueryStartDate          = "startDate"
	QueryPaymentStatuses    = "paymentStatuses"
	QueryOnlyFailedPayments = "onlyFailedPayments"
	QueryUserHandle         = "userHandle"
	QueryCriteria           = "criteria"
	QueryOrder              = "order"
	QueryPageNumber         = "pageNumber"
	QueryPageSize           = "pageSize"
)

// DecodeQuery applies a URL query string to s. Missing or invalid filter and
// sorting fields fall back to their defaults; missing or invalid page fields
// keep their current values. Returns s when nothing changes.
func DecodeQuery(query string, s *State) *State {
	// ParseQuery still returns the well-formed pairs when some are malformed.
	params, _ := url.ParseQuery(strings.TrimPrefix(query, "?"))

	filters := s.Filters
	sorting := s.Sorting
	pagination := s.Pagination
	changed := false

	week := s.CurrentWeek
	if raw := params.Get(QueryStartDate); raw != "" {
		if date, err := time.ParseInLocation(DateFormatAPI, raw, s.CurrentWeek.Start.Location()); err == nil {
			week = WeekOf(date)
		}
	}
	if !week.Equal(filters.DateRange) {
		filters.DateRange = week
		changed = true
	}

	statuses := map[PaymentStatus]bool{}
	if raw := params.Get(QueryPaymentStatuses); raw != "" {
		for _, token := range strings.Split(raw, ",") {
			if status, ok := ParsePaymentStatus(token); ok {
				statuses[status] = true
			}
		}
	}
	if !statusSetEqual(statuses, filters.PaymentStatuses) {
		filters.PaymentStatuses = statuses
		changed = true
	}

	onlyFailed := strings.HasPrefix(strings.ToLower(params.Get(QueryOnlyFailedPayments)), "y")
	if onlyFailed != filters.OnlyFailedPayments {
		filters.OnlyFailedPayments = onlyFailed
		changed = true
	}

	handle := truncateRunes(params.Get(QueryUserHandle), MaxUserHandleLength)
	if handle != filters.UserHandle {
		filters.UserHandle = handle
		changed = true
	}

	criteria, ok := ParseSortBy(params.Get(QueryCriteria))
	if !ok {
		criteria = DefaultSortBy
	}
	if criteria != sorting.Criteria {
		sorting.Criteria = criteria
		changed = true
	}

	order, _ := ParseSortOrder(params.Get(QueryOrder))
	if order != sorting.Order {
		sorting.Order = order
		changed = true
	}

	if n, err := strconv.Atoi(params.Get(QueryPageNumber)); err == nil && n > 0 && n != pagination.PageNumber {
		pagination.PageNumber = n
		changed = true
	}

	if n, err := strconv.Atoi(params.Get(QueryPageSize)); err == nil && IsValidPageSize(n) && n != pagination.PageSize {
		pagination.PageSize = n
		changed = true
	}

	if !changed {
		return s
	}
	next := s.clone()
	next.Filters = filters
	next.Sorting = sorting
	next.Pagination = pagination
	return next
}

// EncodeQuery renders the URL-persisted part of s. Default values are left
// out so that encoding decoded defaults yields an empty string.
func EncodeQuery(s *State) string {
	var parts []string
	add := func(key, value string) {
		parts = append(parts, key+"="+value)
	}

	if !s.Filters.DateRange.Equal(s.CurrentWeek) {
		add(QueryStartDate, s.Filters.DateRange.Start.Format(DateFormatAPI))
	}
	if statuses := s.Filters.SelectedPaymentStatuses(); len(statuses) > 0 {
		tokens := make([]string, len(statuses))
		for i, status := range statuses {
			tokens[i] = url.QueryEscape(strings.ToLower(string(status)))
		}
		add(QueryPaymentStatuses, strings.Join(tokens, ","))
	}
	if s.Filters.OnlyFailedPayments {
		add(QueryOnlyFailedPayments, "y")
	}
	if s.Filters.UserHandle != "" {
		add(QueryUserHandle, url.QueryEscape(s.Filters.UserHandle))
	}
	if s.Sorting.Criteria != DefaultSortBy && s.Sorting.Criteria != "" {
		add(QueryCriteria, strings.ToLower(string(s.Sorting.Criteria)))
	}
	if s.Sorting.Order != DefaultSortOrder && s.Sorting.Order != "" {
		add(QueryOrder, string(s.Sorting.Order))
	}
	if s.Pagination.PageNumber > 1 {
		add(QueryPageNumber, strconv.Itoa(s.Pagination.PageNumber))
	}
	if s.Pagination.PageSize != DefaultPageSize && IsValidPageSize(s.Pagination.PageSize) {
		add(QueryPageSize, strconv.Itoa(s.Pagination.PageSize))
	}
	return strings.Join(parts, "&")
}
