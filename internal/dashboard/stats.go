package dashboard

import "github.com/hamed0406/uptimeboard/internal/domain"

// Stats counts targets by current status.
type Stats struct {
	Total    int `json:"total"`
	Healthy  int `json:"healthy"`
	Critical int `json:"critical"`
	Unknown  int `json:"unknown"`
}

func Compute(ss []domain.Summary) Stats {
	st := Stats{Total: len(ss)}
	for _, s := range ss {
		switch s.CurrentStatus {
		case domain.StatusGood:
			st.Healthy++
		case domain.StatusBad:
			st.Critical++
		default:
			st.Unknown++
		}
	}
	return st
}
