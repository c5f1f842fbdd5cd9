package plan

import (
	"sort"
	"strconv"

	"github.com/brightpath/planview-bfa-go/internal/domain"
)

// NoDraftNumber is the display placeholder for items excluded from the
// draft sequence.
const NoDraftNumber = "-"

// excludedFromSequence are the statuses that never consume a draft
// number.
var excludedFromSequence = map[domain.ItemStatus]bool{
	domain.StatusNSF:       true,
	domain.StatusCancelled: true,
}

// AssignSequence orders items ascending by payment date (missing dates
// sort first) and assigns the user-visible draft number: a running
// counter starting at 1 that skips NSF and Cancelled items, which get
// the "-" placeholder instead. Row numbers from normalization are left
// untouched.
//
// The input slice is not modified; a new ordered slice is returned.
func AssignSequence(items []domain.ScheduleItem) []domain.ScheduleItem {
	out := make([]domain.ScheduleItem, len(items))
	copy(out, items)

	// Stable sort keeps the incoming order among equal dates, so
	// re-running on refreshed data cannot shuffle same-day drafts.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PaymentTime().Before(out[j].PaymentTime())
	})

	counter := 0
	for i := range out {
		if excludedFromSequence[out[i].Status] {
			out[i].CalculatedDraftNumber = NoDraftNumber
			out[i].HasDraftNumber = false
			continue
		}
		counter++
		out[i].CalculatedDraftNumber = strconv.Itoa(counter)
		out[i].HasDraftNumber = true
	}
	return out
}
