// Package quota maps credential tiers to daily publication ceilings.
package quota

import (
	"fmt"
	"time"

	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/model"
)

// Unlimited is the ceiling of tiers without a daily limit.
const Unlimited = -1

var ceilings = map[model.Tier]int{
	model.TierFree:       10,
	model.TierDeveloper:  100,
	model.TierEnterprise: Unlimited,
}

// DailyLimit returns the ceiling of tier. Unknown tiers get the free ceiling.
func DailyLimit(tier model.Tier) int {
	if c, ok := ceilings[tier]; ok {
		return c
	}
	return ceilings[model.TierFree]
}

// LimitArg returns the ceiling as a nullable SQL argument: nil means unbounded.
func LimitArg(tier model.Tier) *int {
	c := DailyLimit(tier)
	if c == Unlimited {
		return nil
	}
	return &c
}

// ExceededError reports a rejected admission.
type ExceededError struct {
	Tier  model.Tier
	Limit int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("daily limit reached for %s tier (%d posts/day)", e.Tier, e.Limit)
}

func (e *ExceededError) Unwrap() error { return errs.ErrQuotaExceeded }

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UsedToday returns the posts counted against the day of now.
// A counter stamped with an earlier day has been reset.
func UsedToday(c *model.Credential, now time.Time) int {
	if c.LastPostDate == nil || !Day(*c.LastPostDate).Equal(Day(now)) {
		return 0
	}
	return c.PostsToday
}

// CheckAdmission decides from the credential snapshot whether a publish may proceed.
// The result is advisory: the publish transaction re-checks atomically.
func CheckAdmission(c *model.Credential, now time.Time) error {
	limit := DailyLimit(c.Tier)
	if limit == Unlimited {
		return nil
	}
	if UsedToday(c, now) >= limit {
		return &ExceededError{Tier: c.Tier, Limit: limit}
	}
	return nil
}
