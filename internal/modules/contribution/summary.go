package contribution

import (
	"time"

	"github.com/aristath/indexboard/internal/domain"
	"github.com/aristath/indexboard/pkg/formulas"
)

// Summarize computes the index's own move from its open on start to its
// close on end. indexHistory must hold the index series only.
func Summarize(indexHistory []domain.PriceBar, start, end time.Time) (domain.IndexSummary, error) {
	start, end = domain.Day(start), domain.Day(end)

	first, err := singleBarOn(indexHistory, start)
	if err != nil {
		return domain.IndexSummary{}, err
	}
	last, err := singleBarOn(indexHistory, end)
	if err != nil {
		return domain.IndexSummary{}, err
	}

	if first.Open == 0 {
		return domain.IndexSummary{}, &domain.DataError{
			Op:  "summarize index",
			Msg: "index open on " + start.Format(domain.DateLayout) + " is zero",
			Err: domain.ErrZeroBase,
		}
	}

	change := last.Close - first.Open
	return domain.IndexSummary{
		Ticker:         first.Ticker,
		StartDate:      start,
		EndDate:        end,
		OpenAtStart:    first.Open,
		CloseAtEnd:     last.Close,
		AbsoluteChange: change,
		PercentChange:  formulas.RoundTo(formulas.PercentChange(first.Open, last.Close), 2),
	}, nil
}

func singleBarOn(history []domain.PriceBar, date time.Time) (domain.PriceBar, error) {
	var (
		found domain.PriceBar
		count int
	)
	for _, b := range history {
		if domain.Day(b.Date).Equal(date) {
			found = b
			count++
		}
	}

	switch count {
	case 0:
		return domain.PriceBar{}, domain.NewDataError("summarize index",
			"no index bar on %s", date.Format(domain.DateLayout))
	case 1:
		return found, nil
	default:
		return domain.PriceBar{}, domain.NewDataError("summarize index",
			"%d index bars on %s, expected one", count, date.Format(domain.DateLayout))
	}
}
