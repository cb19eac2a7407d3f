package workperiods

// ReasonsDisabled computes why a period cannot be selected for payment.
// filterWeek is the week shown; currentWeek is the calendar week of today.
func ReasonsDisabled(billingAccountID int64, daysWorked, daysPaid int, filterWeek, currentWeek Week) Reasons {
	var reasons Reasons
	if billingAccountID == 0 {
		reasons = reasons.Add(ReasonNoBillingAccount)
	}
	if daysWorked == daysPaid {
		reasons = reasons.Add(ReasonNoDaysToPayFor)
	}
	if filterWeek.After(currentWeek) {
		reasons = reasons.Add(ReasonNotAllowFutureWeek)
	}
	return reasons
}

// SelectionFlags derives the "all selected" hints from counts.
// selectable rows are the page rows minus the disabled ones. When the result
// set spans several pages isSelectedAll is only kept if it was already set.
func SelectionFlags(selectedCount, selectable, pageSize, totalCount int, wasSelectedAll bool) (isSelectedAll, isSelectedVisible bool) {
	full := selectable > 0 && selectedCount == selectable
	if totalCount > pageSize {
		if full {
			return wasSelectedAll, true
		}
		return false, false
	}
	return full, full
}

// derive recomputes the disabled map, drops disabled ids from the selection
// and refreshes the selection flags. s must be a private copy.
func derive(s *State) {
	disabled := make(map[string]Reasons, len(s.PeriodsDisabled))
	for _, period := range s.Periods {
		data := s.PeriodsData[period.ID]
		reasons := ReasonsDisabled(period.BillingAccountID, data.DaysWorked, data.DaysPaid, s.Filters.DateRange, s.CurrentWeek)
		if !reasons.Empty() {
			disabled[period.ID] = reasons
		}
	}
	s.PeriodsDisabled = disabled

	var selected map[string]bool
	for id := range s.PeriodsSelected {
		if _, ok := disabled[id]; ok {
			if selected == nil {
				selected = cloneMap(s.PeriodsSelected)
			}
			delete(selected, id)
		}
	}
	if selected != nil {
		s.PeriodsSelected = selected
	}
	deriveSelectionFlags(s)
}

func deriveSelectionFlags(s *State) {
	s.IsSelectedAll, s.IsSelectedVisible = SelectionFlags(
		len(s.PeriodsSelected),
		len(s.Periods)-len(s.PeriodsDisabled),
		s.Pagination.PageSize,
		s.Pagination.TotalCount,
		s.IsSelectedAll,
	)
}
