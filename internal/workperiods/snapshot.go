package workperiods

// Row is a page row as shown to the operator.
type Row struct {
	WorkPeriod
	Data     PeriodData     `json:"data"`
	Disabled Reasons        `json:"disabledReasons"`
	Selected bool           `json:"selected"`
	Failed   bool           `json:"failed"`
	Details  *PeriodDetails `json:"details,omitempty"`
}

// Snapshot is a read-only rendering of the console state.
type Snapshot struct {
	Query                string         `json:"query"`
	CurrentWeek          Week           `json:"currentWeek"`
	Error                string         `json:"error,omitempty"`
	IsLoading            bool           `json:"isLoading"`
	Filters              Filters        `json:"filters"`
	Sorting              Sorting        `json:"sorting"`
	Pagination           Pagination     `json:"pagination"`
	IsProcessingPayments bool           `json:"isProcessingPayments"`
	IsSelectedAll        bool           `json:"isSelectedAll"`
	IsSelectedVisible    bool           `json:"isSelectedVisible"`
	SelectedCount        int            `json:"selectedCount"`
	Rows                 []Row          `json:"rows"`
	Notifications        []Notification `json:"notifications,omitempty"`
}

// NewSnapshot renders s.
func NewSnapshot(s *State) Snapshot {
	snap := Snapshot{
		Query:                EncodeQuery(s),
		CurrentWeek:          s.CurrentWeek,
		Error:                s.Error,
		IsLoading:            s.Cancel != nil,
		Filters:              s.Filters,
		Sorting:              s.Sorting,
		Pagination:           s.Pagination,
		IsProcessingPayments: s.IsProcessingPayments,
		IsSelectedAll:        s.IsSelectedAll,
		IsSelectedVisible:    s.IsSelectedVisible,
		SelectedCount:        len(s.SelectedIDs()),
		Rows:                 make([]Row, 0, len(s.Periods)),
	}
	for _, p := range s.Periods {
		row := Row{
			WorkPeriod: p,
			Data:       s.PeriodsData[p.ID],
			Disabled:   s.PeriodsDisabled[p.ID],
			Selected:   s.PeriodsSelected[p.ID],
			Failed:     s.PeriodsFailed[p.ID],
		}
		if details, ok := s.PeriodsDetails[p.ID]; ok {
			row.Details = &details
		}
		snap.Rows = append(snap.Rows, row)
	}
	return snap
}
